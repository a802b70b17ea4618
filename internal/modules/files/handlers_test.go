package files

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"modulith/internal/config"
	"modulith/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupHandlerTest(t *testing.T, known ...uuid.UUID) *fiber.App {
	t.Helper()

	svc, _ := setupServiceTest(t, known...)

	middleware.InitMiddleware(&config.Config{
		SecretKey: "test-secret-key-12345678901234567890123456789012",
	})

	app := fiber.New()
	v1 := app.Group("/api/v1")
	NewHandler(svc).RegisterRoutes(v1)
	return app
}

func authHeader(t *testing.T, userID uuid.UUID) string {
	t.Helper()
	token, err := middleware.GenerateToken(userID, "tester")
	require.NoError(t, err)
	return "Bearer " + token
}

func multipartUpload(t *testing.T, filename, mimeType, content string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	hdr := make(textproto.MIMEHeader)
	hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	hdr.Set("Content-Type", mimeType)
	part, err := w.CreatePart(hdr)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func uploadFile(t *testing.T, app *fiber.App, owner uuid.UUID, filename, content string, public bool) File {
	t.Helper()
	fields := map[string]string{}
	if public {
		fields["is_public"] = "true"
	}
	body, contentType := multipartUpload(t, filename, "text/plain", content, fields)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/upload", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", authHeader(t, owner))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var file File
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&file))
	return file
}

func TestUploadEndpoint(t *testing.T) {
	app := setupHandlerTest(t)
	owner := uuid.New()

	file := uploadFile(t, app, owner, "hello.txt", "hello world", false)
	assert.Equal(t, "hello.txt", file.OriginalFilename)
	assert.Equal(t, int64(11), file.SizeBytes)
	assert.Equal(t, owner, file.OwnerID)
	assert.False(t, file.IsPublic)
}

func TestUploadEndpoint_RequiresAuth(t *testing.T) {
	app := setupHandlerTest(t)

	body, contentType := multipartUpload(t, "x.txt", "text/plain", "x", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/upload", body)
	req.Header.Set("Content-Type", contentType)

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestUploadEndpoint_MissingFilePart(t *testing.T) {
	app := setupHandlerTest(t)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("description", "no file here"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/upload", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", authHeader(t, uuid.New()))

	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestDownloadEndpoint(t *testing.T) {
	app := setupHandlerTest(t)
	owner := uuid.New()

	file := uploadFile(t, app, owner, "dl.txt", "downloaded-content", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+file.ID.String()+"/download", nil)
	req.Header.Set("Authorization", authHeader(t, owner))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, "downloaded-content", string(got))
	assert.Contains(t, resp.Header.Get(fiber.HeaderContentDisposition), "dl.txt")

	// The download bumped the counter
	req = httptest.NewRequest(http.MethodGet, "/api/v1/files/"+file.ID.String(), nil)
	req.Header.Set("Authorization", authHeader(t, owner))
	resp, err = app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var meta File
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&meta))
	assert.Equal(t, int64(1), meta.DownloadCount)
}

func TestDownloadEndpoint_ForbiddenForStrangers(t *testing.T) {
	app := setupHandlerTest(t)

	file := uploadFile(t, app, uuid.New(), "private.txt", "secret", false)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/"+file.ID.String()+"/download", nil)
	req.Header.Set("Authorization", authHeader(t, uuid.New()))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestShareEndpoint(t *testing.T) {
	owner := uuid.New()
	friend := uuid.New()
	app := setupHandlerTest(t, friend)

	file := uploadFile(t, app, owner, "shared.txt", "shared-content", false)

	payload, _ := json.Marshal(fiber.Map{"user_id": friend.String()})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/files/"+file.ID.String()+"/share", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader(t, owner))
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	// Friend can now read the metadata
	req = httptest.NewRequest(http.MethodGet, "/api/v1/files/"+file.ID.String(), nil)
	req.Header.Set("Authorization", authHeader(t, friend))
	resp, err = app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUpdateEndpoint_Visibility(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	app := setupHandlerTest(t)

	file := uploadFile(t, app, owner, "pub.txt", "going public", false)

	payload, _ := json.Marshal(fiber.Map{"is_public": true})
	req := httptest.NewRequest(http.MethodPut, "/api/v1/files/"+file.ID.String(), bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader(t, owner))
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Now anyone authenticated can read it
	req = httptest.NewRequest(http.MethodGet, "/api/v1/files/"+file.ID.String(), nil)
	req.Header.Set("Authorization", authHeader(t, stranger))
	resp, err = app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListEndpoint_OwnerOnly(t *testing.T) {
	owner := uuid.New()
	app := setupHandlerTest(t)

	uploadFile(t, app, owner, "one.txt", "1", false)
	uploadFile(t, app, owner, "two.txt", "2", true)
	uploadFile(t, app, uuid.New(), "other.txt", "3", true)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/files/?owner_only=true", nil)
	req.Header.Set("Authorization", authHeader(t, owner))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var page struct {
		Items []File `json:"items"`
		Meta  struct {
			TotalItems int64 `json:"total_items"`
		} `json:"meta"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&page))
	assert.Equal(t, int64(2), page.Meta.TotalItems)
	for _, f := range page.Items {
		assert.Equal(t, owner, f.OwnerID)
	}
}

func TestDeleteEndpoint(t *testing.T) {
	owner := uuid.New()
	app := setupHandlerTest(t)

	file := uploadFile(t, app, owner, "bye.txt", "bye", false)

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/files/"+file.ID.String(), nil)
	req.Header.Set("Authorization", authHeader(t, owner))
	resp, err := app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	req = httptest.NewRequest(http.MethodGet, "/api/v1/files/"+file.ID.String(), nil)
	req.Header.Set("Authorization", authHeader(t, owner))
	resp, err = app.Test(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

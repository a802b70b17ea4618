package files

import (
	"modulith/internal/api"
	"modulith/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes the file_management HTTP surface. All routes require an
// authenticated caller except public reads, which degrade gracefully.
type Handler struct {
	service *Service
}

// NewHandler returns the module's HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the module under /files on the given router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	files := router.Group("/files", middleware.AuthRequired)
	files.Post("/upload", h.Upload)
	files.Get("/", h.List)
	files.Get("/:id", h.Get)
	files.Put("/:id", h.Update)
	files.Delete("/:id", h.Delete)
	files.Post("/:id/share", h.Share)
	files.Get("/:id/download", h.Download)
}

func callerID(c *fiber.Ctx) (uuid.UUID, error) {
	id, ok := middleware.UserIDFromLocals(c)
	if !ok {
		return uuid.Nil, api.RespondWithError(c, fiber.StatusUnauthorized,
			api.NewUnauthorizedError("Authentication required"))
	}
	return id, nil
}

func parseFileID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid id parameter"))
	}
	return id, nil
}

// Upload handles POST /api/v1/files/upload
// @Summary Upload a file
// @Description Multipart upload with optional description and visibility
// @Tags files
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "File content"
// @Param description formData string false "Description"
// @Param is_public formData bool false "Public visibility"
// @Success 201 {object} File
// @Failure 400 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /files/upload [post]
func (h *Handler) Upload(c *fiber.Ctx) error {
	owner, err := callerID(c)
	if err != nil {
		return nil
	}

	header, err := c.FormFile("file")
	if err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("A multipart field named 'file' is required"))
	}

	src, err := header.Open()
	if err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Failed to read upload"))
	}
	defer src.Close()

	file, err := h.service.Upload(c.Context(), owner, UploadInput{
		OriginalFilename: header.Filename,
		MimeType:         header.Header.Get("Content-Type"),
		SizeBytes:        header.Size,
		Description:      c.FormValue("description"),
		IsPublic:         c.FormValue("is_public") == "true",
		Content:          src,
	})
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(file)
}

// Get handles GET /api/v1/files/:id
// @Summary Get file metadata
// @Tags files
// @Produce json
// @Param id path string true "File ID"
// @Success 200 {object} File
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /files/{id} [get]
func (h *Handler) Get(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return nil
	}
	id, err := parseFileID(c)
	if err != nil {
		return nil
	}

	file, err := h.service.Get(c.Context(), caller, id)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(file)
}

// List handles GET /api/v1/files
// @Summary List visible files
// @Tags files
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Param owner_only query bool false "Only files owned by the caller"
// @Param public_only query bool false "Only public files"
// @Success 200 {object} api.Paginated[File]
// @Security BearerAuth
// @Router /files [get]
func (h *Handler) List(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return nil
	}
	p := api.ParsePagination(c)

	list, total, err := h.service.List(c.Context(), caller,
		c.QueryBool("owner_only"), c.QueryBool("public_only"), p)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(api.NewPaginated(list, total, p))
}

// Update handles PUT /api/v1/files/:id
// @Summary Update file metadata
// @Tags files
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Param request body UpdateFileInput true "Fields to update"
// @Success 200 {object} File
// @Failure 403 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /files/{id} [put]
func (h *Handler) Update(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return nil
	}
	id, err := parseFileID(c)
	if err != nil {
		return nil
	}

	var in UpdateFileInput
	if err := c.BodyParser(&in); err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid request body"))
	}

	file, err := h.service.Update(c.Context(), caller, id, in)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(file)
}

// Delete handles DELETE /api/v1/files/:id
// @Summary Soft-delete a file
// @Tags files
// @Param id path string true "File ID"
// @Success 204
// @Failure 403 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /files/{id} [delete]
func (h *Handler) Delete(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return nil
	}
	id, err := parseFileID(c)
	if err != nil {
		return nil
	}

	if err := h.service.Delete(c.Context(), caller, id); err != nil {
		return api.RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// Share handles POST /api/v1/files/:id/share
// @Summary Share a file with another user
// @Tags files
// @Accept json
// @Produce json
// @Param id path string true "File ID"
// @Param request body object{user_id=string,can_write=bool} true "Share target"
// @Success 201 {object} FileShare
// @Failure 403 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /files/{id}/share [post]
func (h *Handler) Share(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return nil
	}
	id, err := parseFileID(c)
	if err != nil {
		return nil
	}

	var req struct {
		UserID   string `json:"user_id"`
		CanWrite bool   `json:"can_write"`
	}
	if err := c.BodyParser(&req); err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid request body"))
	}

	target, err := uuid.Parse(req.UserID)
	if err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid user_id"))
	}

	share, err := h.service.Share(c.Context(), caller, id, target, req.CanWrite)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(share)
}

// Download handles GET /api/v1/files/:id/download
// @Summary Download file content
// @Tags files
// @Produce octet-stream
// @Param id path string true "File ID"
// @Success 200 {file} binary
// @Failure 403 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Security BearerAuth
// @Router /files/{id}/download [get]
func (h *Handler) Download(c *fiber.Ctx) error {
	caller, err := callerID(c)
	if err != nil {
		return nil
	}
	id, err := parseFileID(c)
	if err != nil {
		return nil
	}

	file, rc, err := h.service.Download(c.Context(), caller, id)
	if err != nil {
		return api.RespondError(c, err)
	}

	c.Set(fiber.HeaderContentType, file.MimeType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+file.OriginalFilename+`"`)
	// fasthttp closes the stream for us because rc is an io.ReadCloser
	return c.SendStream(rc, int(file.SizeBytes))
}

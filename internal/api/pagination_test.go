package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseFrom(t *testing.T, target string) Pagination {
	t.Helper()
	app := fiber.New()
	var got Pagination
	app.Get("/", func(c *fiber.Ctx) error {
		got = ParsePagination(c)
		return c.SendStatus(fiber.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	return got
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   Pagination
	}{
		{"defaults", "/", Pagination{Page: 1, PageSize: DefaultPageSize}},
		{"explicit", "/?page=3&page_size=50", Pagination{Page: 3, PageSize: 50}},
		{"clamps page below one", "/?page=0", Pagination{Page: 1, PageSize: DefaultPageSize}},
		{"clamps oversized page_size", "/?page_size=10000", Pagination{Page: 1, PageSize: MaxPageSize}},
		{"non-numeric falls back", "/?page=abc&page_size=xyz", Pagination{Page: 1, PageSize: DefaultPageSize}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, parseFrom(t, tt.target))
		})
	}
}

func TestPaginationOffset(t *testing.T) {
	p := Pagination{Page: 3, PageSize: 20}
	assert.Equal(t, 40, p.Offset())
	assert.Equal(t, 20, p.Limit())
}

func TestNewPaginated(t *testing.T) {
	p := Pagination{Page: 2, PageSize: 10}
	out := NewPaginated([]int{1, 2, 3}, 25, p)

	assert.Equal(t, 3, len(out.Items))
	assert.Equal(t, int64(25), out.Meta.TotalItems)
	assert.Equal(t, 3, out.Meta.TotalPages)
	assert.True(t, out.Meta.HasNext)
	assert.True(t, out.Meta.HasPrevious)

	empty := NewPaginated[int](nil, 0, Pagination{Page: 1, PageSize: 10})
	assert.NotNil(t, empty.Items)
	assert.Equal(t, 0, empty.Meta.TotalPages)
	assert.False(t, empty.Meta.HasNext)
}

func TestStatusForError(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, StatusForError(NewNotFoundError("User", "x")))
	assert.Equal(t, http.StatusConflict, StatusForError(NewConflictError("duplicate")))
	assert.Equal(t, http.StatusBadRequest, StatusForError(NewValidationError("bad")))
	assert.Equal(t, http.StatusBadRequest, StatusForError(NewInvalidStateError("already active")))
	assert.Equal(t, http.StatusForbidden, StatusForError(NewForbiddenError("no")))
	assert.Equal(t, http.StatusUnauthorized, StatusForError(NewUnauthorizedError("who")))
	assert.Equal(t, http.StatusInternalServerError, StatusForError(assert.AnError))
}

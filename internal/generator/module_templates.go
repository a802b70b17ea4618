package generator

// Scaffolding templates. "~" stands in for the backtick of struct tags; the
// renderer substitutes it before parsing.

const modelTemplate = `// Package {{.Module}} is the {{.ModuleTitle}} bounded context.
package {{.Module}}

import (
	"time"

	"{{.ImportBase}}/internal/database"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ModuleName is the bounded-context name used for registration and gating.
const ModuleName = "{{.Module}}"

// {{.EntityPascal}} is the module's root entity.
type {{.EntityPascal}} struct {
	ID          uuid.UUID      ~json:"id" gorm:"type:uuid;primaryKey"~
	Name        string         ~json:"name" gorm:"size:255;not null"~
	Description string         ~json:"description" gorm:"size:1000"~
	CreatedAt   time.Time      ~json:"created_at"~
	UpdatedAt   time.Time      ~json:"updated_at"~
	DeletedAt   gorm.DeletedAt ~json:"-" gorm:"index"~
}

// TableName places the table in the module's schema.
func ({{.EntityPascal}}) TableName() string {
	return "{{.Table}}"
}

func (e *{{.EntityPascal}}) BeforeCreate(_ *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

func init() {
	database.RegisterModule(database.Module{
		Name:   ModuleName,
		Schema: ModuleName,
		Models: []interface{}{&{{.EntityPascal}}{}},
	})
}
`

const repositoryTemplate = `package {{.Module}}

import (
	"context"
	"errors"

	"{{.ImportBase}}/internal/api"
	"{{.ImportBase}}/internal/observability"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository defines persistence operations for {{.EntityPlural}}.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*{{.EntityPascal}}, error)
	List(ctx context.Context, limit, offset int) ([]{{.EntityPascal}}, int64, error)
	Create(ctx context.Context, e *{{.EntityPascal}}) error
	Update(ctx context.Context, e *{{.EntityPascal}}) error
	Delete(ctx context.Context, id uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns the GORM-backed Repository implementation.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id uuid.UUID) (*{{.EntityPascal}}, error) {
	var e {{.EntityPascal}}
	done := observability.TrackQuery("select", "{{.EntityPlural}}")
	defer done()

	if err := r.db.WithContext(ctx).First(&e, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, api.NewNotFoundError("{{.EntityPascal}}", id)
		}
		return nil, api.NewInternalError(err)
	}
	return &e, nil
}

func (r *repository) List(ctx context.Context, limit, offset int) ([]{{.EntityPascal}}, int64, error) {
	done := observability.TrackQuery("select", "{{.EntityPlural}}")
	defer done()

	var total int64
	if err := r.db.WithContext(ctx).Model(&{{.EntityPascal}}{}).Count(&total).Error; err != nil {
		return nil, 0, api.NewInternalError(err)
	}

	var list []{{.EntityPascal}}
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&list).Error; err != nil {
		return nil, 0, api.NewInternalError(err)
	}
	return list, total, nil
}

func (r *repository) Create(ctx context.Context, e *{{.EntityPascal}}) error {
	done := observability.TrackQuery("insert", "{{.EntityPlural}}")
	defer done()

	if err := r.db.WithContext(ctx).Create(e).Error; err != nil {
		return api.NewInternalError(err)
	}
	return nil
}

func (r *repository) Update(ctx context.Context, e *{{.EntityPascal}}) error {
	done := observability.TrackQuery("update", "{{.EntityPlural}}")
	defer done()

	if err := r.db.WithContext(ctx).Save(e).Error; err != nil {
		return api.NewInternalError(err)
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	done := observability.TrackQuery("delete", "{{.EntityPlural}}")
	defer done()

	res := r.db.WithContext(ctx).Delete(&{{.EntityPascal}}{}, "id = ?", id)
	if res.Error != nil {
		return api.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return api.NewNotFoundError("{{.EntityPascal}}", id)
	}
	return nil
}
`

const serviceTemplate = `package {{.Module}}

import (
	"context"
	"strings"

	"{{.ImportBase}}/internal/api"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Create{{.EntityPascal}}Input carries the fields accepted on creation.
type Create{{.EntityPascal}}Input struct {
	Name        string ~json:"name"~
	Description string ~json:"description"~
}

// Update{{.EntityPascal}}Input carries the mutable fields.
type Update{{.EntityPascal}}Input struct {
	Name        *string ~json:"name"~
	Description *string ~json:"description"~
}

// Service implements the module's application logic.
type Service struct {
	db   *gorm.DB
	repo Repository
}

// NewService returns the module's application service.
func NewService(db *gorm.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

func validateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return api.NewValidationError("Name is required")
	}
	if len(name) > 255 {
		return api.NewValidationError("Name must be at most 255 characters")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, in Create{{.EntityPascal}}Input) (*{{.EntityPascal}}, error) {
	if err := validateName(in.Name); err != nil {
		return nil, err
	}

	e := &{{.EntityPascal}}{
		Name:        strings.TrimSpace(in.Name),
		Description: strings.TrimSpace(in.Description),
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*{{.EntityPascal}}, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, p api.Pagination) ([]{{.EntityPascal}}, int64, error) {
	return s.repo.List(ctx, p.Limit(), p.Offset())
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in Update{{.EntityPascal}}Input) (*{{.EntityPascal}}, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := validateName(*in.Name); err != nil {
			return nil, err
		}
		e.Name = strings.TrimSpace(*in.Name)
	}
	if in.Description != nil {
		e.Description = strings.TrimSpace(*in.Description)
	}

	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
`

const handlersTemplate = `package {{.Module}}

import (
	"{{.ImportBase}}/internal/api"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes the {{.Module}} HTTP surface.
type Handler struct {
	service *Service
}

// NewHandler returns the module's HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the module under /{{.Route}} on the given router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	g := router.Group("/{{.Route}}")
	g.Post("/", h.Create)
	g.Get("/", h.List)
	g.Get("/:id", h.GetByID)
	g.Put("/:id", h.Update)
	g.Delete("/:id", h.Delete)
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid "+name+" parameter"))
	}
	return id, nil
}

// Create handles POST /api/v1/{{.Route}}
// @Summary Create {{.Entity}}
// @Tags {{.EntityPlural}}
// @Accept json
// @Produce json
// @Param request body Create{{.EntityPascal}}Input true "{{.EntityPascal}} data"
// @Success 201 {object} {{.EntityPascal}}
// @Failure 400 {object} api.ErrorResponse
// @Router /{{.Route}} [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in Create{{.EntityPascal}}Input
	if err := c.BodyParser(&in); err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid request body"))
	}

	e, err := h.service.Create(c.Context(), in)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(e)
}

// GetByID handles GET /api/v1/{{.Route}}/:id
// @Summary Get {{.Entity}} by ID
// @Tags {{.EntityPlural}}
// @Produce json
// @Param id path string true "{{.EntityPascal}} ID"
// @Success 200 {object} {{.EntityPascal}}
// @Failure 404 {object} api.ErrorResponse
// @Router /{{.Route}}/{id} [get]
func (h *Handler) GetByID(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	e, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(e)
}

// List handles GET /api/v1/{{.Route}}
// @Summary List {{.EntityPlural}}
// @Tags {{.EntityPlural}}
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size"
// @Success 200 {object} api.Paginated[{{.EntityPascal}}]
// @Router /{{.Route}} [get]
func (h *Handler) List(c *fiber.Ctx) error {
	p := api.ParsePagination(c)

	items, total, err := h.service.List(c.Context(), p)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(api.NewPaginated(items, total, p))
}

// Update handles PUT /api/v1/{{.Route}}/:id
// @Summary Update {{.Entity}}
// @Tags {{.EntityPlural}}
// @Accept json
// @Produce json
// @Param id path string true "{{.EntityPascal}} ID"
// @Param request body Update{{.EntityPascal}}Input true "Fields to update"
// @Success 200 {object} {{.EntityPascal}}
// @Failure 404 {object} api.ErrorResponse
// @Router /{{.Route}}/{id} [put]
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	var in Update{{.EntityPascal}}Input
	if err := c.BodyParser(&in); err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid request body"))
	}

	e, err := h.service.Update(c.Context(), id, in)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(e)
}

// Delete handles DELETE /api/v1/{{.Route}}/:id
// @Summary Delete {{.Entity}}
// @Tags {{.EntityPlural}}
// @Param id path string true "{{.EntityPascal}} ID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /{{.Route}}/{id} [delete]
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	if err := h.service.Delete(c.Context(), id); err != nil {
		return api.RespondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}
`

const seedTemplate = `package {{.Module}}

import (
	"context"
	"fmt"

	"{{.ImportBase}}/internal/observability"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// seedDescriptionMarker tags seeded rows so Clean removes only those.
const seedDescriptionMarker = "[seed]"

// Seeder populates the {{.Module}} schema with development data.
type Seeder struct {
	db *gorm.DB
}

// NewSeeder returns the module's seeder.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Name returns the module name the seeder belongs to.
func (s *Seeder) Name() string { return ModuleName }

// Clean removes previously seeded records.
func (s *Seeder) Clean(ctx context.Context) error {
	return s.db.WithContext(ctx).
		Unscoped().
		Where("description LIKE ?", "%"+seedDescriptionMarker+"%").
		Delete(&{{.EntityPascal}}{}).Error
}

// Seed tops the table up to count seeded records; re-runs are idempotent.
func (s *Seeder) Seed(ctx context.Context, count int) error {
	var existing int64
	if err := s.db.WithContext(ctx).Model(&{{.EntityPascal}}{}).
		Where("description LIKE ?", "%"+seedDescriptionMarker+"%").
		Count(&existing).Error; err != nil {
		return err
	}

	created := 0
	for i := int(existing); i < count; i++ {
		e := &{{.EntityPascal}}{
			Name:        gofakeit.ProductName(),
			Description: fmt.Sprintf("%s %s", seedDescriptionMarker, gofakeit.Sentence(8)),
		}
		if err := s.db.WithContext(ctx).Create(e).Error; err != nil {
			return err
		}
		created++
	}

	observability.SeededRecordsTotal.WithLabelValues(ModuleName).Add(float64(created))
	return nil
}
`

const serviceTestTemplate = `package {{.Module}}

import (
	"context"
	"testing"

	"{{.ImportBase}}/internal/api"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRepo struct {
	items map[uuid.UUID]*{{.EntityPascal}}
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{items: map[uuid.UUID]*{{.EntityPascal}}{}}
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*{{.EntityPascal}}, error) {
	if e, ok := f.items[id]; ok {
		out := *e
		return &out, nil
	}
	return nil, api.NewNotFoundError("{{.EntityPascal}}", id)
}

func (f *fakeRepo) List(_ context.Context, limit, offset int) ([]{{.EntityPascal}}, int64, error) {
	var out []{{.EntityPascal}}
	for _, e := range f.items {
		out = append(out, *e)
	}
	return out, int64(len(f.items)), nil
}

func (f *fakeRepo) Create(_ context.Context, e *{{.EntityPascal}}) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	stored := *e
	f.items[e.ID] = &stored
	return nil
}

func (f *fakeRepo) Update(_ context.Context, e *{{.EntityPascal}}) error {
	stored := *e
	f.items[e.ID] = &stored
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := f.items[id]; !ok {
		return api.NewNotFoundError("{{.EntityPascal}}", id)
	}
	delete(f.items, id)
	return nil
}

func TestCreateRequiresName(t *testing.T) {
	svc := NewService(nil, newFakeRepo())

	_, err := svc.Create(context.Background(), Create{{.EntityPascal}}Input{Name: "  "})
	require.Error(t, err)
	assert.Equal(t, api.CodeValidation, api.CodeOf(err))
}

func TestCreateAndGet(t *testing.T) {
	svc := NewService(nil, newFakeRepo())

	e, err := svc.Create(context.Background(), Create{{.EntityPascal}}Input{Name: "First"})
	require.NoError(t, err)

	got, err := svc.GetByID(context.Background(), e.ID)
	require.NoError(t, err)
	assert.Equal(t, "First", got.Name)
}

func TestDeleteMissing(t *testing.T) {
	svc := NewService(nil, newFakeRepo())

	err := svc.Delete(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, api.CodeNotFound, api.CodeOf(err))
}
`

package users

import (
	"time"

	"modulith/internal/api"
	"modulith/internal/cache"
	"modulith/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Handler exposes the user_management HTTP surface.
type Handler struct {
	service *Service
}

// NewHandler returns the module's HTTP handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the module under /users and /auth on the given router.
func (h *Handler) RegisterRoutes(router fiber.Router) {
	rdb := cache.GetClient()

	auth := router.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(rdb, 3, 10*time.Minute, "signup"), h.Signup)
	auth.Post("/login", middleware.RateLimit(rdb, 10, 5*time.Minute, "login"), h.Login)

	users := router.Group("/users")
	users.Post("/", h.Create)
	users.Get("/", h.List)
	users.Get("/email/:email", h.GetByEmail)
	users.Get("/username/:username", h.GetByUsername)
	users.Get("/:id", h.GetByID)
	users.Put("/:id", h.Update)
	users.Patch("/:id/email", h.ChangeEmail)
	users.Post("/:id/activate", h.Activate)
	users.Post("/:id/deactivate", h.Deactivate)
	users.Post("/:id/restore", h.Restore)
	users.Delete("/:id", h.Delete)
}

func parseUUIDParam(c *fiber.Ctx, name string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(name))
	if err != nil {
		return uuid.Nil, api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid "+name+" parameter"))
	}
	return id, nil
}

// Create handles POST /api/v1/users
// @Summary Create user
// @Description Register a new user with an optional profile
// @Tags users
// @Accept json
// @Produce json
// @Param request body CreateUserInput true "User data"
// @Success 201 {object} User
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /users [post]
func (h *Handler) Create(c *fiber.Ctx) error {
	var in CreateUserInput
	if err := c.BodyParser(&in); err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid request body"))
	}

	user, err := h.service.Create(c.Context(), in)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(user)
}

// GetByID handles GET /api/v1/users/:id
// @Summary Get user by ID
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} User
// @Failure 404 {object} api.ErrorResponse
// @Router /users/{id} [get]
func (h *Handler) GetByID(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	user, err := h.service.GetByID(c.Context(), id)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(user)
}

// GetByEmail handles GET /api/v1/users/email/:email
// @Summary Get user by email
// @Tags users
// @Produce json
// @Param email path string true "Email address"
// @Success 200 {object} User
// @Failure 404 {object} api.ErrorResponse
// @Router /users/email/{email} [get]
func (h *Handler) GetByEmail(c *fiber.Ctx) error {
	user, err := h.service.GetByEmail(c.Context(), c.Params("email"))
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(user)
}

// GetByUsername handles GET /api/v1/users/username/:username
// @Summary Get user by username
// @Tags users
// @Produce json
// @Param username path string true "Username"
// @Success 200 {object} User
// @Failure 404 {object} api.ErrorResponse
// @Router /users/username/{username} [get]
func (h *Handler) GetByUsername(c *fiber.Ctx) error {
	user, err := h.service.GetByUsername(c.Context(), c.Params("username"))
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(user)
}

// List handles GET /api/v1/users
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param page_size query int false "Page size (max 100)"
// @Success 200 {object} api.Paginated[User]
// @Router /users [get]
func (h *Handler) List(c *fiber.Ctx) error {
	p := api.ParsePagination(c)

	list, total, err := h.service.List(c.Context(), p)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(api.NewPaginated(list, total, p))
}

// Update handles PUT /api/v1/users/:id
// @Summary Update user names
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body UpdateUserInput true "New name fields"
// @Success 200 {object} User
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /users/{id} [put]
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	var in UpdateUserInput
	if err := c.BodyParser(&in); err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid request body"))
	}

	user, err := h.service.Update(c.Context(), id, in)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(user)
}

// ChangeEmail handles PATCH /api/v1/users/:id/email
// @Summary Change user email
// @Tags users
// @Accept json
// @Produce json
// @Param id path string true "User ID"
// @Param request body object{email=string} true "New email"
// @Success 200 {object} User
// @Failure 409 {object} api.ErrorResponse
// @Router /users/{id}/email [patch]
func (h *Handler) ChangeEmail(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	var req struct {
		Email string `json:"email"`
	}
	if err := c.BodyParser(&req); err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid request body"))
	}

	user, err := h.service.ChangeEmail(c.Context(), id, req.Email)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(user)
}

// Activate handles POST /api/v1/users/:id/activate
// @Summary Activate user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} User
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /users/{id}/activate [post]
func (h *Handler) Activate(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	user, err := h.service.Activate(c.Context(), id)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(user)
}

// Deactivate handles POST /api/v1/users/:id/deactivate
// @Summary Deactivate user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} User
// @Failure 400 {object} api.ErrorResponse
// @Failure 404 {object} api.ErrorResponse
// @Router /users/{id}/deactivate [post]
func (h *Handler) Deactivate(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	user, err := h.service.Deactivate(c.Context(), id)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(user)
}

// Delete handles DELETE /api/v1/users/:id
// @Summary Soft-delete user
// @Tags users
// @Param id path string true "User ID"
// @Success 204
// @Failure 404 {object} api.ErrorResponse
// @Router /users/{id} [delete]
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

// Restore handles POST /api/v1/users/:id/restore
// @Summary Restore soft-deleted user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} User
// @Failure 404 {object} api.ErrorResponse
// @Router /users/{id}/restore [post]
func (h *Handler) Restore(c *fiber.Ctx) error {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		return nil
	}

	user, err := h.service.Restore(c.Context(), id)
	if err != nil {
		return api.RespondError(c, err)
	}
	return c.JSON(user)
}

// Signup handles POST /api/v1/auth/signup
// @Summary User signup
// @Description Register a new account and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body CreateUserInput true "Signup request"
// @Success 201 {object} object{token=string,user=User}
// @Failure 400 {object} api.ErrorResponse
// @Failure 409 {object} api.ErrorResponse
// @Router /auth/signup [post]
func (h *Handler) Signup(c *fiber.Ctx) error {
	var in CreateUserInput
	if err := c.BodyParser(&in); err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid request body"))
	}

	if in.Password == "" {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Password is required"))
	}

	user, err := h.service.Create(c.Context(), in)
	if err != nil {
		return api.RespondError(c, err)
	}

	token, err := middleware.GenerateToken(user.ID, user.Username)
	if err != nil {
		return api.RespondWithError(c, fiber.StatusInternalServerError,
			api.NewInternalError(err))
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

// Login handles POST /api/v1/auth/login
// @Summary User login
// @Description Authenticate and return a JWT
// @Tags auth
// @Accept json
// @Produce json
// @Param request body object{email=string,password=string} true "Login credentials"
// @Success 200 {object} object{token=string,user=User}
// @Failure 401 {object} api.ErrorResponse
// @Router /auth/login [post]
func (h *Handler) Login(c *fiber.Ctx) error {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return api.RespondWithError(c, fiber.StatusBadRequest,
			api.NewValidationError("Invalid request body"))
	}

	user, err := h.service.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return api.RespondError(c, err)
	}

	token, err := middleware.GenerateToken(user.ID, user.Username)
	if err != nil {
		return api.RespondWithError(c, fiber.StatusInternalServerError,
			api.NewInternalError(err))
	}

	return c.JSON(fiber.Map{
		"token": token,
		"user":  user,
	})
}

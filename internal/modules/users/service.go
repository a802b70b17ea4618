package users

import (
	"context"
	"errors"

	"modulith/internal/api"
	"modulith/internal/database"
	"modulith/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateUserInput is the payload for creating an account.
type CreateUserInput struct {
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Password  string `json:"password"`
	Phone     string `json:"phone"`
	AvatarURL string `json:"avatar_url"`
	Bio       string `json:"bio"`
}

// UpdateUserInput is the payload for updating name fields.
type UpdateUserInput struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// Service implements the user_management business rules on top of Repository.
type Service struct {
	db   *gorm.DB
	repo Repository
}

// NewService wires the service with its database handle and repository.
func NewService(db *gorm.DB, repo Repository) *Service {
	return &Service{db: db, repo: repo}
}

// Create validates the input, hashes the password, and persists the user with
// its profile in one transaction.
func (s *Service) Create(ctx context.Context, in CreateUserInput) (*User, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, api.NewValidationError(err.Error())
	}
	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, api.NewValidationError(err.Error())
	}
	if err := validation.ValidateName("first_name", in.FirstName); err != nil {
		return nil, api.NewValidationError(err.Error())
	}
	if err := validation.ValidateName("last_name", in.LastName); err != nil {
		return nil, api.NewValidationError(err.Error())
	}

	user := &User{
		Email:     in.Email,
		Username:  in.Username,
		FirstName: in.FirstName,
		LastName:  in.LastName,
		IsActive:  true,
	}

	if in.Password != "" {
		if err := validation.ValidatePassword(in.Password); err != nil {
			return nil, api.NewValidationError(err.Error())
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, api.NewInternalError(err)
		}
		user.Password = string(hashed)
	}

	err := database.WithinTransaction(ctx, s.db, func(tx *gorm.DB) error {
		txRepo := NewRepository(tx)
		if err := txRepo.Create(ctx, user); err != nil {
			return err
		}

		profile := &UserProfile{
			UserID:    user.ID,
			Phone:     in.Phone,
			AvatarURL: in.AvatarURL,
			Bio:       in.Bio,
		}
		if err := tx.WithContext(ctx).Create(profile).Error; err != nil {
			return api.NewInternalError(err)
		}
		user.Profile = profile
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetByID returns the user or a not-found error.
func (s *Service) GetByID(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.GetByID(ctx, id)
}

// GetByEmail returns the user or a not-found error.
func (s *Service) GetByEmail(ctx context.Context, email string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, api.NewNotFoundError("User", email)
	}
	return user, nil
}

// GetByUsername returns the user or a not-found error.
func (s *Service) GetByUsername(ctx context.Context, username string) (*User, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, api.NewNotFoundError("User", username)
	}
	return user, nil
}

// List returns one page of users with the total count.
func (s *Service) List(ctx context.Context, p api.Pagination) ([]User, int64, error) {
	return s.repo.List(ctx, p.Limit(), p.Offset())
}

// Update changes the user's name fields.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in UpdateUserInput) (*User, error) {
	if err := validation.ValidateName("first_name", in.FirstName); err != nil {
		return nil, api.NewValidationError(err.Error())
	}
	if err := validation.ValidateName("last_name", in.LastName); err != nil {
		return nil, api.NewValidationError(err.Error())
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangeEmail sets a new email address, rejecting duplicates.
func (s *Service) ChangeEmail(ctx context.Context, id uuid.UUID, email string) (*User, error) {
	if err := validation.ValidateEmail(email); err != nil {
		return nil, api.NewValidationError(err.Error())
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if user.Email == email {
		return user, nil
	}

	existing, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, api.NewConflictError("A user with this email already exists")
	}

	user.Email = email
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Activate enables a deactivated account. Activating an active account is an
// invalid-state error.
func (s *Service) Activate(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if user.IsActive {
		return nil, api.NewInvalidStateError("User is already active")
	}

	user.IsActive = true
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate disables an active account. Deactivating an inactive account is
// an invalid-state error.
func (s *Service) Deactivate(ctx context.Context, id uuid.UUID) (*User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, api.NewInvalidStateError("User is already inactive")
	}

	user.IsActive = false
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Delete soft-deletes the user.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

// ActiveUserExists reports whether a live, active account with the given ID
// exists. Other modules use this to validate cross-module references.
func (s *Service) ActiveUserExists(ctx context.Context, id uuid.UUID) (bool, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		var appErr *api.AppError
		if errors.As(err, &appErr) && appErr.Code == api.CodeNotFound {
			return false, nil
		}
		return false, err
	}
	return user.IsActive, nil
}

// Authenticate verifies the email/password pair and returns the user. Missing
// users and bad passwords both map to the same unauthorized error.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || user.Password == "" {
		return nil, api.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, api.NewUnauthorizedError("Invalid credentials")
	}
	if !user.IsActive {
		return nil, api.NewUnauthorizedError("Account is deactivated")
	}
	return user, nil
}

// Restore brings a soft-deleted user back.
func (s *Service) Restore(ctx context.Context, id uuid.UUID) (*User, error) {
	if err := s.repo.Restore(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

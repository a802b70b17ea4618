package users

import (
	"context"
	"testing"

	"modulith/internal/api"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// fakeRepo is an in-memory Repository for service tests.
type fakeRepo struct {
	users   map[uuid.UUID]*User
	deleted map[uuid.UUID]*User
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:   map[uuid.UUID]*User{},
		deleted: map[uuid.UUID]*User{},
	}
}

func (f *fakeRepo) add(u *User) *User {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	f.users[u.ID] = u
	return u
}

func (f *fakeRepo) GetByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, api.NewNotFoundError("User", id)
	}
	return u, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) GetByUsername(_ context.Context, username string) (*User, error) {
	for _, u := range f.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) List(_ context.Context, limit, offset int) ([]User, int64, error) {
	var out []User
	for _, u := range f.users {
		out = append(out, *u)
	}
	return out, int64(len(f.users)), nil
}

func (f *fakeRepo) Create(_ context.Context, user *User) error {
	for _, u := range f.users {
		if u.Email == user.Email || u.Username == user.Username {
			return api.NewConflictError("A user with this email or username already exists")
		}
	}
	f.add(user)
	return nil
}

func (f *fakeRepo) Update(_ context.Context, user *User) error {
	f.users[user.ID] = user
	return nil
}

func (f *fakeRepo) Delete(_ context.Context, id uuid.UUID) error {
	u, ok := f.users[id]
	if !ok {
		return api.NewNotFoundError("User", id)
	}
	delete(f.users, id)
	f.deleted[id] = u
	return nil
}

func (f *fakeRepo) GetDeletedByID(_ context.Context, id uuid.UUID) (*User, error) {
	u, ok := f.deleted[id]
	if !ok {
		return nil, api.NewNotFoundError("User", id)
	}
	return u, nil
}

func (f *fakeRepo) Restore(_ context.Context, id uuid.UUID) error {
	u, ok := f.deleted[id]
	if !ok {
		return api.NewNotFoundError("User", id)
	}
	delete(f.deleted, id)
	f.users[id] = u
	return nil
}

func newTestService(repo Repository) *Service {
	// db is only needed by Create, which fake-repo tests do not exercise
	return NewService(nil, repo)
}

func TestService_Activate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	inactive := repo.add(&User{Email: "a@example.com", Username: "inactive_user", IsActive: false})

	user, err := svc.Activate(ctx, inactive.ID)
	require.NoError(t, err)
	assert.True(t, user.IsActive)

	// Activating again is an invalid state transition
	_, err = svc.Activate(ctx, inactive.ID)
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeInvalidState, appErr.Code)
}

func TestService_Deactivate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	active := repo.add(&User{Email: "b@example.com", Username: "active_user", IsActive: true})

	user, err := svc.Deactivate(ctx, active.ID)
	require.NoError(t, err)
	assert.False(t, user.IsActive)

	_, err = svc.Deactivate(ctx, active.ID)
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeInvalidState, appErr.Code)
}

func TestService_ChangeEmail(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	alice := repo.add(&User{Email: "alice@example.com", Username: "alice_w", IsActive: true})
	repo.add(&User{Email: "bob@example.com", Username: "bob_b", IsActive: true})

	user, err := svc.ChangeEmail(ctx, alice.ID, "alice.new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice.new@example.com", user.Email)

	// Same email again is a no-op
	user, err = svc.ChangeEmail(ctx, alice.ID, "alice.new@example.com")
	require.NoError(t, err)
	assert.Equal(t, "alice.new@example.com", user.Email)

	// Taking bob's email conflicts
	_, err = svc.ChangeEmail(ctx, alice.ID, "bob@example.com")
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeConflict, appErr.Code)

	// Invalid format is a validation error
	_, err = svc.ChangeEmail(ctx, alice.ID, "not-an-email")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeValidation, appErr.Code)
}

func TestService_GetByEmail_NotFound(t *testing.T) {
	svc := newTestService(newFakeRepo())

	_, err := svc.GetByEmail(context.Background(), "nobody@example.com")
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeNotFound, appErr.Code)
}

func TestService_Authenticate(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	hashed, err := bcrypt.GenerateFromPassword([]byte("CorrectHorse1!"), bcrypt.MinCost)
	require.NoError(t, err)
	repo.add(&User{
		Email:    "auth@example.com",
		Username: "auth_user",
		Password: string(hashed),
		IsActive: true,
	})

	user, err := svc.Authenticate(ctx, "auth@example.com", "CorrectHorse1!")
	require.NoError(t, err)
	assert.Equal(t, "auth_user", user.Username)

	var appErr *api.AppError

	_, err = svc.Authenticate(ctx, "auth@example.com", "wrong-password")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeUnauthorized, appErr.Code)

	_, err = svc.Authenticate(ctx, "missing@example.com", "CorrectHorse1!")
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeUnauthorized, appErr.Code)
}

func TestService_Authenticate_DeactivatedAccount(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)

	hashed, _ := bcrypt.GenerateFromPassword([]byte("CorrectHorse1!"), bcrypt.MinCost)
	repo.add(&User{
		Email:    "off@example.com",
		Username: "off_user",
		Password: string(hashed),
		IsActive: false,
	})

	_, err := svc.Authenticate(context.Background(), "off@example.com", "CorrectHorse1!")
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeUnauthorized, appErr.Code)
}

func TestService_Restore(t *testing.T) {
	repo := newFakeRepo()
	svc := newTestService(repo)
	ctx := context.Background()

	user := repo.add(&User{Email: "gone@example.com", Username: "gone_user", IsActive: true})
	require.NoError(t, svc.Delete(ctx, user.ID))

	restored, err := svc.Restore(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, restored.ID)

	// Restoring a live user is not found among deleted rows
	_, err = svc.Restore(ctx, user.ID)
	var appErr *api.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, api.CodeNotFound, appErr.Code)
}

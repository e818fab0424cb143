package repository

import (
	"context"

	"dayboard/internal/cache"
	"dayboard/internal/models"
	"dayboard/internal/storage"
)

// UserRepository defines persistence operations for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	GetProfile(ctx context.Context, id uint) (*models.Profile, error)
	Update(ctx context.Context, id uint, patch storage.UserPatch) (*models.User, error)
}

type userRepository struct {
	store storage.Store
}

// NewUserRepository returns a new UserRepository implementation.
func NewUserRepository(store storage.Store) UserRepository {
	return &userRepository{store: store}
}

func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	if user.Username == "" || user.Email == "" || user.Password == "" {
		return models.NewValidationError("Username, email, and password are required")
	}
	return observe("users", r.store.CreateUser(ctx, user))
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	user, err := r.store.GetUserByID(ctx, id)
	if err != nil {
		return nil, observe("users", err)
	}
	return user, nil
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	user, err := r.store.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, observe("users", err)
	}
	return user, nil
}

// GetProfile reads the client-safe profile through the cache.
func (r *userRepository) GetProfile(ctx context.Context, id uint) (*models.Profile, error) {
	var profile models.Profile
	err := cache.Aside(ctx, cache.ProfileKey(id), &profile, cache.ProfileTTL, func() error {
		user, err := r.store.GetUserByID(ctx, id)
		if err != nil {
			return observe("users", err)
		}
		profile = user.AsProfile()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (r *userRepository) Update(ctx context.Context, id uint, patch storage.UserPatch) (*models.User, error) {
	if patch.IsEmpty() {
		return nil, models.NewValidationError("No fields to update")
	}

	matched, err := r.store.UpdateUser(ctx, id, patch)
	if err != nil {
		return nil, observe("users", err)
	}
	if matched == 0 {
		return nil, models.NewNotFoundError("User")
	}

	cache.InvalidateUser(ctx, id)
	return r.GetByID(ctx, id)
}

// Package service holds the business logic layered between the HTTP handlers
// and the repositories.
package service

import (
	"context"
	"strings"

	"dayboard/internal/auth"
	"dayboard/internal/models"
	"dayboard/internal/repository"
	"dayboard/internal/storage"
)

// AccountService handles registration, login, and profile management.
type AccountService struct {
	users repository.UserRepository
	creds *auth.Credentials
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginInput struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateProfileInput struct {
	Avatar               *string `json:"avatar"`
	FirstName            *string `json:"first_name"`
	LastName             *string `json:"last_name"`
	Phone                *string `json:"phone"`
	Bio                  *string `json:"bio"`
	Timezone             *string `json:"timezone"`
	Theme                *string `json:"theme"`
	NotificationsEnabled *bool   `json:"notifications_enabled"`
}

// AuthResult is returned by Register and Login.
type AuthResult struct {
	Token string         `json:"token"`
	User  models.Profile `json:"user"`
}

func NewAccountService(users repository.UserRepository, creds *auth.Credentials) *AccountService {
	return &AccountService{users: users, creds: creds}
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)

	if in.Username == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Username, email, and password are required")
	}
	if len(in.Password) < 6 {
		return nil, models.NewValidationError("Password must be at least 6 characters")
	}
	if !strings.Contains(in.Email, "@") {
		return nil, models.NewValidationError("Invalid email address")
	}

	digest, err := s.creds.HashPassword(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: digest,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	token, err := s.creds.IssueToken(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &AuthResult{Token: token, User: user.AsProfile()}, nil
}

func (s *AccountService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if in.Username == "" || in.Password == "" {
		return nil, models.NewValidationError("Username and password are required")
	}

	user, err := s.users.GetByUsername(ctx, in.Username)
	if err != nil {
		// A missing account and a bad password are indistinguishable to the
		// caller.
		if models.ErrorCode(err) == models.CodeNotFound {
			return nil, models.NewUnauthorizedError("Invalid credentials")
		}
		return nil, err
	}
	if !s.creds.CheckPassword(in.Password, user.Password) {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}

	token, err := s.creds.IssueToken(user.ID, user.Username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	return &AuthResult{Token: token, User: user.AsProfile()}, nil
}

func (s *AccountService) Profile(ctx context.Context, userID uint) (*models.Profile, error) {
	return s.users.GetProfile(ctx, userID)
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uint, in UpdateProfileInput) (*models.Profile, error) {
	patch := storage.UserPatch{
		Avatar:               in.Avatar,
		FirstName:            in.FirstName,
		LastName:             in.LastName,
		Phone:                in.Phone,
		Bio:                  in.Bio,
		Timezone:             in.Timezone,
		Theme:                in.Theme,
		NotificationsEnabled: in.NotificationsEnabled,
	}
	if in.Theme != nil && *in.Theme != "light" && *in.Theme != "dark" {
		return nil, models.NewValidationError("Theme must be light or dark")
	}

	user, err := s.users.Update(ctx, userID, patch)
	if err != nil {
		return nil, err
	}
	profile := user.AsProfile()
	return &profile, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID uint, current, updated string) error {
	if current == "" || updated == "" {
		return models.NewValidationError("Current and new passwords are required")
	}
	if len(updated) < 6 {
		return models.NewValidationError("Password must be at least 6 characters")
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if !s.creds.CheckPassword(current, user.Password) {
		return models.NewUnauthorizedError("Current password is incorrect")
	}

	digest, err := s.creds.HashPassword(updated)
	if err != nil {
		return models.NewInternalError(err)
	}

	_, err = s.users.Update(ctx, userID, storage.UserPatch{Password: &digest})
	return err
}

package server

import (
	"dayboard/internal/models"
	"dayboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// GetProfile handles GET /api/profile.
func (s *Server) GetProfile(c *fiber.Ctx) error {
	profile, err := s.accountService.Profile(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// UpdateProfile handles PUT /api/profile.
func (s *Server) UpdateProfile(c *fiber.Ctx) error {
	var req service.UpdateProfileInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	profile, err := s.accountService.UpdateProfile(c.UserContext(), currentUserID(c), req)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(profile)
}

// ChangePassword handles PUT /api/profile/password.
func (s *Server) ChangePassword(c *fiber.Ctx) error {
	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	err := s.accountService.ChangePassword(c.UserContext(), currentUserID(c), req.CurrentPassword, req.NewPassword)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}

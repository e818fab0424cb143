package server

import (
	"time"

	"dayboard/internal/models"
	"dayboard/internal/storage"

	"github.com/gofiber/fiber/v2"
)

type eventPatchRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	StartDate   *time.Time `json:"start_date"`
	EndDate     *time.Time `json:"end_date"`
}

// ListEvents handles GET /api/events.
func (s *Server) ListEvents(c *fiber.Ctx) error {
	events, err := s.eventRepo.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(events)
}

// CreateEvent handles POST /api/events.
func (s *Server) CreateEvent(c *fiber.Ctx) error {
	var event models.Event
	if err := c.BodyParser(&event); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.eventRepo.Create(c.UserContext(), currentUserID(c), &event); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(event)
}

// GetEvent handles GET /api/events/:id.
func (s *Server) GetEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	event, err := s.eventRepo.Get(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(event)
}

// UpdateEvent handles PUT /api/events/:id.
func (s *Server) UpdateEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req eventPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	event, err := s.eventRepo.Update(c.UserContext(), id, currentUserID(c), storage.EventPatch{
		Title:       req.Title,
		Description: req.Description,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(event)
}

// DeleteEvent handles DELETE /api/events/:id.
func (s *Server) DeleteEvent(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.eventRepo.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Event deleted successfully"})
}

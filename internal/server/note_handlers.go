package server

import (
	"dayboard/internal/models"
	"dayboard/internal/storage"

	"github.com/gofiber/fiber/v2"
)

type notePatchRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Tags     *string `json:"tags"`
	Category *string `json:"category"`
}

// ListNotes handles GET /api/notes.
func (s *Server) ListNotes(c *fiber.Ctx) error {
	notes, err := s.noteRepo.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(notes)
}

// CreateNote handles POST /api/notes.
func (s *Server) CreateNote(c *fiber.Ctx) error {
	var note models.Note
	if err := c.BodyParser(&note); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.noteRepo.Create(c.UserContext(), currentUserID(c), &note); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(note)
}

// GetNote handles GET /api/notes/:id.
func (s *Server) GetNote(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	note, err := s.noteRepo.Get(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(note)
}

// UpdateNote handles PUT /api/notes/:id.
func (s *Server) UpdateNote(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req notePatchRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	note, err := s.noteRepo.Update(c.UserContext(), id, currentUserID(c), storage.NotePatch{
		Title:    req.Title,
		Content:  req.Content,
		Tags:     req.Tags,
		Category: req.Category,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(note)
}

// DeleteNote handles DELETE /api/notes/:id.
func (s *Server) DeleteNote(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.noteRepo.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Note deleted successfully"})
}

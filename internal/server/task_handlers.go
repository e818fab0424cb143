package server

import (
	"time"

	"dayboard/internal/models"
	"dayboard/internal/storage"

	"github.com/gofiber/fiber/v2"
)

type taskPatchRequest struct {
	Title       *string    `json:"title"`
	Description *string    `json:"description"`
	Completed   *bool      `json:"completed"`
	Priority    *string    `json:"priority"`
	Category    *string    `json:"category"`
	Tags        *string    `json:"tags"`
	DueDate     *time.Time `json:"due_date"`
	ReminderAt  *time.Time `json:"reminder_date"`
}

// ListTasks handles GET /api/tasks.
func (s *Server) ListTasks(c *fiber.Ctx) error {
	tasks, err := s.taskRepo.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(tasks)
}

// CreateTask handles POST /api/tasks.
func (s *Server) CreateTask(c *fiber.Ctx) error {
	var task models.Task
	if err := c.BodyParser(&task); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	if err := s.taskRepo.Create(c.UserContext(), currentUserID(c), &task); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(task)
}

// GetTask handles GET /api/tasks/:id.
func (s *Server) GetTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	task, err := s.taskRepo.Get(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(task)
}

// UpdateTask handles PUT /api/tasks/:id.
func (s *Server) UpdateTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req taskPatchRequest
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid request body"))
	}

	task, err := s.taskRepo.Update(c.UserContext(), id, currentUserID(c), storage.TaskPatch{
		Title:       req.Title,
		Description: req.Description,
		Completed:   req.Completed,
		Priority:    req.Priority,
		Category:    req.Category,
		Tags:        req.Tags,
		DueDate:     req.DueDate,
		ReminderAt:  req.ReminderAt,
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(task)
}

// DeleteTask handles DELETE /api/tasks/:id.
func (s *Server) DeleteTask(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	if err := s.taskRepo.Delete(c.UserContext(), id, currentUserID(c)); err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Task deleted successfully"})
}

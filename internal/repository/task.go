package repository

import (
	"context"

	"dayboard/internal/cache"
	"dayboard/internal/models"
	"dayboard/internal/storage"
)

// TaskRepository defines persistence operations for tasks.
type TaskRepository interface {
	Create(ctx context.Context, ownerID uint, task *models.Task) error
	List(ctx context.Context, ownerID uint) ([]models.Task, error)
	Get(ctx context.Context, id, ownerID uint) (*models.Task, error)
	Update(ctx context.Context, id, ownerID uint, patch storage.TaskPatch) (*models.Task, error)
	Delete(ctx context.Context, id, ownerID uint) error
}

type taskRepository struct {
	store storage.Store
}

// NewTaskRepository returns a new TaskRepository implementation.
func NewTaskRepository(store storage.Store) TaskRepository {
	return &taskRepository{store: store}
}

func (r *taskRepository) Create(ctx context.Context, ownerID uint, task *models.Task) error {
	if task.Title == "" {
		return models.NewValidationError("Title is required")
	}
	if task.Priority != "" && !models.ValidPriority(task.Priority) {
		return models.NewValidationError("Priority must be low, medium, or high")
	}

	task.ID = 0
	task.UserID = ownerID
	if err := r.store.CreateTask(ctx, task); err != nil {
		return observe("tasks", err)
	}
	cache.Invalidate(ctx, cache.StatsKey(ownerID))
	return nil
}

func (r *taskRepository) List(ctx context.Context, ownerID uint) ([]models.Task, error) {
	tasks, err := r.store.ListTasks(ctx, ownerID)
	if err != nil {
		return nil, observe("tasks", err)
	}
	return tasks, nil
}

func (r *taskRepository) Get(ctx context.Context, id, ownerID uint) (*models.Task, error) {
	task, err := r.store.GetTask(ctx, id, ownerID)
	if err != nil {
		return nil, observe("tasks", err)
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, id, ownerID uint, patch storage.TaskPatch) (*models.Task, error) {
	if patch.IsEmpty() {
		return nil, models.NewValidationError("No fields to update")
	}
	if patch.Title != nil && *patch.Title == "" {
		return nil, models.NewValidationError("Title cannot be empty")
	}
	if patch.Priority != nil && !models.ValidPriority(*patch.Priority) {
		return nil, models.NewValidationError("Priority must be low, medium, or high")
	}

	matched, err := r.store.UpdateTask(ctx, id, ownerID, patch)
	if err != nil {
		return nil, observe("tasks", err)
	}
	if matched == 0 {
		return nil, models.NewNotFoundError("Task")
	}

	cache.Invalidate(ctx, cache.StatsKey(ownerID))
	return r.Get(ctx, id, ownerID)
}

func (r *taskRepository) Delete(ctx context.Context, id, ownerID uint) error {
	matched, err := r.store.DeleteTask(ctx, id, ownerID)
	if err != nil {
		return observe("tasks", err)
	}
	if matched == 0 {
		return models.NewNotFoundError("Task")
	}
	cache.Invalidate(ctx, cache.StatsKey(ownerID))
	return nil
}

package repository

import (
	"context"

	"dayboard/internal/cache"
	"dayboard/internal/models"
	"dayboard/internal/storage"
)

// EventRepository defines persistence operations for calendar events.
type EventRepository interface {
	Create(ctx context.Context, ownerID uint, event *models.Event) error
	List(ctx context.Context, ownerID uint) ([]models.Event, error)
	Get(ctx context.Context, id, ownerID uint) (*models.Event, error)
	Update(ctx context.Context, id, ownerID uint, patch storage.EventPatch) (*models.Event, error)
	Delete(ctx context.Context, id, ownerID uint) error
}

type eventRepository struct {
	store storage.Store
}

// NewEventRepository returns a new EventRepository implementation.
func NewEventRepository(store storage.Store) EventRepository {
	return &eventRepository{store: store}
}

func (r *eventRepository) Create(ctx context.Context, ownerID uint, event *models.Event) error {
	if event.Title == "" {
		return models.NewValidationError("Title is required")
	}
	if event.StartDate.IsZero() || event.EndDate.IsZero() {
		return models.NewValidationError("Start date and end date are required")
	}

	event.ID = 0
	event.UserID = ownerID
	if err := r.store.CreateEvent(ctx, event); err != nil {
		return observe("events", err)
	}
	cache.Invalidate(ctx, cache.StatsKey(ownerID))
	return nil
}

func (r *eventRepository) List(ctx context.Context, ownerID uint) ([]models.Event, error) {
	events, err := r.store.ListEvents(ctx, ownerID)
	if err != nil {
		return nil, observe("events", err)
	}
	return events, nil
}

func (r *eventRepository) Get(ctx context.Context, id, ownerID uint) (*models.Event, error) {
	event, err := r.store.GetEvent(ctx, id, ownerID)
	if err != nil {
		return nil, observe("events", err)
	}
	return event, nil
}

func (r *eventRepository) Update(ctx context.Context, id, ownerID uint, patch storage.EventPatch) (*models.Event, error) {
	if patch.IsEmpty() {
		return nil, models.NewValidationError("No fields to update")
	}
	if patch.Title != nil && *patch.Title == "" {
		return nil, models.NewValidationError("Title cannot be empty")
	}

	matched, err := r.store.UpdateEvent(ctx, id, ownerID, patch)
	if err != nil {
		return nil, observe("events", err)
	}
	if matched == 0 {
		return nil, models.NewNotFoundError("Event")
	}
	return r.Get(ctx, id, ownerID)
}

func (r *eventRepository) Delete(ctx context.Context, id, ownerID uint) error {
	matched, err := r.store.DeleteEvent(ctx, id, ownerID)
	if err != nil {
		return observe("events", err)
	}
	if matched == 0 {
		return models.NewNotFoundError("Event")
	}
	cache.Invalidate(ctx, cache.StatsKey(ownerID))
	return nil
}

package repository

import (
	"context"

	"dayboard/internal/models"
	"dayboard/internal/storage"
)

// NotificationRepository defines persistence operations for in-app
// notifications.
type NotificationRepository interface {
	Create(ctx context.Context, ownerID uint, n *models.Notification) error
	List(ctx context.Context, ownerID uint) ([]models.Notification, error)
	MarkRead(ctx context.Context, id, ownerID uint) error
	Delete(ctx context.Context, id, ownerID uint) error
}

type notificationRepository struct {
	store storage.Store
}

// NewNotificationRepository returns a new NotificationRepository
// implementation.
func NewNotificationRepository(store storage.Store) NotificationRepository {
	return &notificationRepository{store: store}
}

func (r *notificationRepository) Create(ctx context.Context, ownerID uint, n *models.Notification) error {
	if n.Title == "" {
		return models.NewValidationError("Title is required")
	}

	n.ID = 0
	n.UserID = ownerID
	return observe("notifications", r.store.CreateNotification(ctx, n))
}

func (r *notificationRepository) List(ctx context.Context, ownerID uint) ([]models.Notification, error) {
	notifs, err := r.store.ListNotifications(ctx, ownerID)
	if err != nil {
		return nil, observe("notifications", err)
	}
	return notifs, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, id, ownerID uint) error {
	matched, err := r.store.MarkNotificationRead(ctx, id, ownerID)
	if err != nil {
		return observe("notifications", err)
	}
	if matched == 0 {
		return models.NewNotFoundError("Notification")
	}
	return nil
}

func (r *notificationRepository) Delete(ctx context.Context, id, ownerID uint) error {
	matched, err := r.store.DeleteNotification(ctx, id, ownerID)
	if err != nil {
		return observe("notifications", err)
	}
	if matched == 0 {
		return models.NewNotFoundError("Notification")
	}
	return nil
}

// Package storage defines the store contract every backend variant must
// satisfy. One implementation exists per backend (memory, gormstore,
// surreal); all are observably identical to callers.
//
// Shared semantics:
//   - inserts assign an identifier if absent, stamp creation time, and leave
//     the stored form in the passed record;
//   - updates and deletes return the matched count — 0 means wrong id or
//     wrong owner, indistinguishable on purpose;
//   - searches are case-insensitive substring matches ORed across each
//     collection's text fields;
//   - list ordering is fixed per collection (events by start date ascending;
//     notes by last update descending; tasks, files, and notifications by
//     creation time descending).
package storage

import (
	"context"
	"time"

	"dayboard/internal/models"
)

// Store is the full backend contract. Selected once at process start and
// injected; call sites never branch on the backend variant.
type Store interface {
	UserStore
	EventStore
	TaskStore
	NoteStore
	FileStore
	NotificationStore

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
	Close() error
}

// UserStore persists accounts. Username and email are unique; violations
// surface as CONFLICT, not a generic failure.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, id uint, patch UserPatch) (int64, error)
}

type EventStore interface {
	CreateEvent(ctx context.Context, event *models.Event) error
	ListEvents(ctx context.Context, ownerID uint) ([]models.Event, error)
	GetEvent(ctx context.Context, id, ownerID uint) (*models.Event, error)
	UpdateEvent(ctx context.Context, id, ownerID uint, patch EventPatch) (int64, error)
	DeleteEvent(ctx context.Context, id, ownerID uint) (int64, error)
	CountEvents(ctx context.Context, ownerID uint) (int64, error)
	SearchEvents(ctx context.Context, ownerID uint, term string) ([]models.Event, error)
}

type TaskStore interface {
	CreateTask(ctx context.Context, task *models.Task) error
	ListTasks(ctx context.Context, ownerID uint) ([]models.Task, error)
	GetTask(ctx context.Context, id, ownerID uint) (*models.Task, error)
	UpdateTask(ctx context.Context, id, ownerID uint, patch TaskPatch) (int64, error)
	DeleteTask(ctx context.Context, id, ownerID uint) (int64, error)
	// CountTasks counts the owner's tasks, restricted to completed ones when
	// completedOnly is set.
	CountTasks(ctx context.Context, ownerID uint, completedOnly bool) (int64, error)
	SearchTasks(ctx context.Context, ownerID uint, term string) ([]models.Task, error)
}

type NoteStore interface {
	CreateNote(ctx context.Context, note *models.Note) error
	ListNotes(ctx context.Context, ownerID uint) ([]models.Note, error)
	GetNote(ctx context.Context, id, ownerID uint) (*models.Note, error)
	UpdateNote(ctx context.Context, id, ownerID uint, patch NotePatch) (int64, error)
	DeleteNote(ctx context.Context, id, ownerID uint) (int64, error)
	CountNotes(ctx context.Context, ownerID uint) (int64, error)
	SearchNotes(ctx context.Context, ownerID uint, term string) ([]models.Note, error)
}

type FileStore interface {
	CreateFile(ctx context.Context, file *models.File) error
	ListFiles(ctx context.Context, ownerID uint) ([]models.File, error)
	GetFile(ctx context.Context, id, ownerID uint) (*models.File, error)
	DeleteFile(ctx context.Context, id, ownerID uint) (int64, error)
}

type NotificationStore interface {
	CreateNotification(ctx context.Context, n *models.Notification) error
	ListNotifications(ctx context.Context, ownerID uint) ([]models.Notification, error)
	MarkNotificationRead(ctx context.Context, id, ownerID uint) (int64, error)
	DeleteNotification(ctx context.Context, id, ownerID uint) (int64, error)
}

// Patch types carry partial updates. Nil fields are left untouched.

type UserPatch struct {
	Password             *string
	Avatar               *string
	FirstName            *string
	LastName             *string
	Phone                *string
	Bio                  *string
	Timezone             *string
	Theme                *string
	NotificationsEnabled *bool
}

type EventPatch struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
}

type TaskPatch struct {
	Title       *string
	Description *string
	Completed   *bool
	Priority    *string
	Category    *string
	Tags        *string
	DueDate     *time.Time
	ReminderAt  *time.Time
}

type NotePatch struct {
	Title    *string
	Content  *string
	Tags     *string
	Category *string
}

// IsEmpty reports whether the patch carries no fields.
func (p UserPatch) IsEmpty() bool {
	return p.Password == nil && p.Avatar == nil && p.FirstName == nil &&
		p.LastName == nil && p.Phone == nil && p.Bio == nil &&
		p.Timezone == nil && p.Theme == nil && p.NotificationsEnabled == nil
}

func (p EventPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.StartDate == nil && p.EndDate == nil
}

func (p TaskPatch) IsEmpty() bool {
	return p.Title == nil && p.Description == nil && p.Completed == nil &&
		p.Priority == nil && p.Category == nil && p.Tags == nil &&
		p.DueDate == nil && p.ReminderAt == nil
}

func (p NotePatch) IsEmpty() bool {
	return p.Title == nil && p.Content == nil && p.Tags == nil && p.Category == nil
}

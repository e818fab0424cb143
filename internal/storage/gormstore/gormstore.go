// Package gormstore implements the store contract on a relational database
// through GORM. The driver is chosen by configuration: Postgres for real
// deployments, SQLite for small installs and tests. Uniqueness and
// transactional consistency are delegated to the database; this adapter only
// translates results into the shared store semantics.
package gormstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dayboard/internal/config"
	"dayboard/internal/models"
	"dayboard/internal/storage"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

var _ storage.Store = (*Store)(nil)

// Store is a relational implementation of storage.Store.
type Store struct {
	db *gorm.DB
}

// Open connects to the configured relational database, runs migrations, and
// returns the store.
func Open(cfg *config.Config) (*Store, error) {
	var dialector gorm.Dialector
	switch cfg.StorageBackend {
	case config.BackendSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	case config.BackendPostgres:
		dsn := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode,
		)
		dialector = postgres.Open(dsn)
	default:
		return nil, fmt.Errorf("gormstore: unsupported backend %q", cfg.StorageBackend)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newSlogLogger()})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(25)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(5 * time.Minute)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

// NewWithDB wraps an already-open GORM handle. Used by tests.
func NewWithDB(db *gorm.DB) (*Store, error) {
	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}
	return store, nil
}

func (s *Store) migrate() error {
	err := s.db.AutoMigrate(
		&models.User{},
		&models.Event{},
		&models.Task{},
		&models.Note{},
		&models.File{},
		&models.Notification{},
	)
	if err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return models.NewBackendUnavailableError(err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return models.NewBackendUnavailableError(err)
	}
	return nil
}

func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// isUniqueViolation checks if a DB error is a unique constraint violation.
// Postgres reports SQLSTATE 23505; SQLite reports "UNIQUE constraint failed".
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "23505")
}

// wrapErr translates driver errors into the taxonomy.
func wrapErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return models.NewBackendTimeoutError(err)
	case errors.Is(err, gorm.ErrInvalidDB):
		return models.NewBackendUnavailableError(err)
	default:
		return models.NewInternalError(err)
	}
}

// ownerExists enforces the owner foreign-key invariant for engines (SQLite by
// default) that do not.
func (s *Store) ownerExists(ctx context.Context, ownerID uint) error {
	var n int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", ownerID).Count(&n).Error; err != nil {
		return wrapErr(err)
	}
	if n == 0 {
		return models.NewValidationError("Unknown owner")
	}
	return nil
}

// likePattern builds the case-insensitive substring pattern for term.
func likePattern(term string) string {
	return "%" + strings.ToLower(term) + "%"
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	if user.Timezone == "" {
		user.Timezone = "UTC"
	}
	if user.Theme == "" {
		user.Theme = "light"
	}
	if err := s.db.WithContext(ctx).Create(user).Error; err != nil {
		if isUniqueViolation(err) {
			return models.NewConflictError("Username or email already exists")
		}
		return wrapErr(err)
	}
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User")
		}
		return nil, wrapErr(err)
	}
	return &user, nil
}

func (s *Store) UpdateUser(ctx context.Context, id uint, patch storage.UserPatch) (int64, error) {
	fields := map[string]any{}
	if patch.Password != nil {
		fields["password"] = *patch.Password
	}
	if patch.Avatar != nil {
		fields["avatar"] = *patch.Avatar
	}
	if patch.FirstName != nil {
		fields["first_name"] = *patch.FirstName
	}
	if patch.LastName != nil {
		fields["last_name"] = *patch.LastName
	}
	if patch.Phone != nil {
		fields["phone"] = *patch.Phone
	}
	if patch.Bio != nil {
		fields["bio"] = *patch.Bio
	}
	if patch.Timezone != nil {
		fields["timezone"] = *patch.Timezone
	}
	if patch.Theme != nil {
		fields["theme"] = *patch.Theme
	}
	if patch.NotificationsEnabled != nil {
		fields["notifications_enabled"] = *patch.NotificationsEnabled
	}

	res := s.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

// --- events ---

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := s.ownerExists(ctx, event.UserID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(event).Error; err != nil {
		return wrapErr(err)
	}
	return nil
}

func (s *Store) ListEvents(ctx context.Context, ownerID uint) ([]models.Event, error) {
	events := make([]models.Event, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("start_date ASC, id ASC").
		Find(&events).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return events, nil
}

func (s *Store) GetEvent(ctx context.Context, id, ownerID uint) (*models.Event, error) {
	var event models.Event
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Event")
		}
		return nil, wrapErr(err)
	}
	return &event, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id, ownerID uint, patch storage.EventPatch) (int64, error) {
	fields := map[string]any{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.StartDate != nil {
		fields["start_date"] = *patch.StartDate
	}
	if patch.EndDate != nil {
		fields["end_date"] = *patch.EndDate
	}

	res := s.db.WithContext(ctx).Model(&models.Event{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields)
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id, ownerID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Event{})
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) CountEvents(ctx context.Context, ownerID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Event{}).Where("user_id = ?", ownerID).Count(&n).Error
	if err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}

func (s *Store) SearchEvents(ctx context.Context, ownerID uint, term string) ([]models.Event, error) {
	events := make([]models.Event, 0)
	pattern := likePattern(term)
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", ownerID, pattern, pattern).
		Order("id ASC").
		Find(&events).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return events, nil
}

// --- tasks ---

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if err := s.ownerExists(ctx, task.UserID); err != nil {
		return err
	}
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Category == "" {
		task.Category = models.DefaultCategory
	}
	if err := s.db.WithContext(ctx).Create(task).Error; err != nil {
		return wrapErr(err)
	}
	return nil
}

func (s *Store) ListTasks(ctx context.Context, ownerID uint) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&tasks).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return tasks, nil
}

func (s *Store) GetTask(ctx context.Context, id, ownerID uint) (*models.Task, error) {
	var task models.Task
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&task).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Task")
		}
		return nil, wrapErr(err)
	}
	return &task, nil
}

func (s *Store) UpdateTask(ctx context.Context, id, ownerID uint, patch storage.TaskPatch) (int64, error) {
	fields := map[string]any{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Description != nil {
		fields["description"] = *patch.Description
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}
	if patch.Priority != nil {
		fields["priority"] = *patch.Priority
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}
	if patch.Tags != nil {
		fields["tags"] = *patch.Tags
	}
	if patch.DueDate != nil {
		fields["due_date"] = *patch.DueDate
	}
	if patch.ReminderAt != nil {
		fields["reminder_at"] = *patch.ReminderAt
	}

	res := s.db.WithContext(ctx).Model(&models.Task{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields)
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) DeleteTask(ctx context.Context, id, ownerID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Task{})
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) CountTasks(ctx context.Context, ownerID uint, completedOnly bool) (int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Task{}).Where("user_id = ?", ownerID)
	if completedOnly {
		query = query.Where("completed = ?", true)
	}
	var n int64
	if err := query.Count(&n).Error; err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}

func (s *Store) SearchTasks(ctx context.Context, ownerID uint, term string) ([]models.Task, error) {
	tasks := make([]models.Task, 0)
	pattern := likePattern(term)
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND (LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(tags) LIKE ?)",
			ownerID, pattern, pattern, pattern).
		Order("id ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return tasks, nil
}

// --- notes ---

func (s *Store) CreateNote(ctx context.Context, note *models.Note) error {
	if err := s.ownerExists(ctx, note.UserID); err != nil {
		return err
	}
	if note.Category == "" {
		note.Category = models.DefaultCategory
	}
	if err := s.db.WithContext(ctx).Create(note).Error; err != nil {
		return wrapErr(err)
	}
	return nil
}

func (s *Store) ListNotes(ctx context.Context, ownerID uint) ([]models.Note, error) {
	notes := make([]models.Note, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("updated_at DESC, id DESC").
		Find(&notes).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return notes, nil
}

func (s *Store) GetNote(ctx context.Context, id, ownerID uint) (*models.Note, error) {
	var note models.Note
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&note).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("Note")
		}
		return nil, wrapErr(err)
	}
	return &note, nil
}

func (s *Store) UpdateNote(ctx context.Context, id, ownerID uint, patch storage.NotePatch) (int64, error) {
	fields := map[string]any{}
	if patch.Title != nil {
		fields["title"] = *patch.Title
	}
	if patch.Content != nil {
		fields["content"] = *patch.Content
	}
	if patch.Tags != nil {
		fields["tags"] = *patch.Tags
	}
	if patch.Category != nil {
		fields["category"] = *patch.Category
	}

	res := s.db.WithContext(ctx).Model(&models.Note{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Updates(fields)
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) DeleteNote(ctx context.Context, id, ownerID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Note{})
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) CountNotes(ctx context.Context, ownerID uint) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&models.Note{}).Where("user_id = ?", ownerID).Count(&n).Error
	if err != nil {
		return 0, wrapErr(err)
	}
	return n, nil
}

func (s *Store) SearchNotes(ctx context.Context, ownerID uint, term string) ([]models.Note, error) {
	notes := make([]models.Note, 0)
	pattern := likePattern(term)
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND (LOWER(title) LIKE ? OR LOWER(content) LIKE ? OR LOWER(tags) LIKE ?)",
			ownerID, pattern, pattern, pattern).
		Order("id ASC").
		Find(&notes).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return notes, nil
}

// --- files ---

func (s *Store) CreateFile(ctx context.Context, file *models.File) error {
	if err := s.ownerExists(ctx, file.UserID); err != nil {
		return err
	}
	if err := s.db.WithContext(ctx).Create(file).Error; err != nil {
		return wrapErr(err)
	}
	return nil
}

func (s *Store) ListFiles(ctx context.Context, ownerID uint) ([]models.File, error) {
	files := make([]models.File, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&files).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return files, nil
}

func (s *Store) GetFile(ctx context.Context, id, ownerID uint) (*models.File, error) {
	var file models.File
	err := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).First(&file).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("File")
		}
		return nil, wrapErr(err)
	}
	return &file, nil
}

func (s *Store) DeleteFile(ctx context.Context, id, ownerID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.File{})
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

// --- notifications ---

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if err := s.ownerExists(ctx, n.UserID); err != nil {
		return err
	}
	if n.Type == "" {
		n.Type = "info"
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return wrapErr(err)
	}
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, ownerID uint) ([]models.Notification, error) {
	notifs := make([]models.Notification, 0)
	err := s.db.WithContext(ctx).
		Where("user_id = ?", ownerID).
		Order("created_at DESC, id DESC").
		Find(&notifs).Error
	if err != nil {
		return nil, wrapErr(err)
	}
	return notifs, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, ownerID uint) (int64, error) {
	res := s.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, ownerID).
		Update("read", true)
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

func (s *Store) DeleteNotification(ctx context.Context, id, ownerID uint) (int64, error) {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Notification{})
	if res.Error != nil {
		return 0, wrapErr(res.Error)
	}
	return res.RowsAffected, nil
}

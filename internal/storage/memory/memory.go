// Package memory implements the store contract with process-local state. It
// is the default backend for development and tests; all data is lost on
// restart.
//
// The store is an explicitly owned object constructed once and shared by
// reference. Every mutation, including identifier assignment, happens under
// the owning collection's write lock, so concurrent inserts can never observe
// the same id or lose an update.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"dayboard/internal/models"
	"dayboard/internal/storage"
)

var _ storage.Store = (*Store)(nil)

// Store is an in-process implementation of storage.Store.
type Store struct {
	usersMu sync.RWMutex
	users   map[uint]*models.User
	userSeq uint

	eventsMu sync.RWMutex
	events   map[uint]*models.Event
	eventSeq uint

	tasksMu sync.RWMutex
	tasks   map[uint]*models.Task
	taskSeq uint

	notesMu sync.RWMutex
	notes   map[uint]*models.Note
	noteSeq uint

	filesMu sync.RWMutex
	files   map[uint]*models.File
	fileSeq uint

	notifsMu sync.RWMutex
	notifs   map[uint]*models.Notification
	notifSeq uint
}

// New returns an empty memory store.
func New() *Store {
	return &Store{
		users:  make(map[uint]*models.User),
		events: make(map[uint]*models.Event),
		tasks:  make(map[uint]*models.Task),
		notes:  make(map[uint]*models.Note),
		files:  make(map[uint]*models.File),
		notifs: make(map[uint]*models.Notification),
	}
}

// Ping always succeeds: the backend is the process itself.
func (s *Store) Ping(ctx context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// hasUser reports whether an owner id resolves to an existing user.
func (s *Store) hasUser(id uint) bool {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()
	_, ok := s.users[id]
	return ok
}

// contains is the shared case-insensitive substring predicate.
func contains(term string, fields ...string) bool {
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// --- users ---

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username || existing.Email == user.Email {
			return models.NewConflictError("Username or email already exists")
		}
	}

	s.userSeq++
	user.ID = s.userSeq
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Timezone == "" {
		user.Timezone = "UTC"
	}
	if user.Theme == "" {
		user.Theme = "light"
	}

	stored := *user
	s.users[user.ID] = &stored
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	user, ok := s.users[id]
	if !ok {
		return nil, models.NewNotFoundError("User")
	}
	out := *user
	return &out, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.usersMu.RLock()
	defer s.usersMu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			out := *user
			return &out, nil
		}
	}
	return nil, models.NewNotFoundError("User")
}

func (s *Store) UpdateUser(ctx context.Context, id uint, patch storage.UserPatch) (int64, error) {
	s.usersMu.Lock()
	defer s.usersMu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return 0, nil
	}

	if patch.Password != nil {
		user.Password = *patch.Password
	}
	if patch.Avatar != nil {
		user.Avatar = *patch.Avatar
	}
	if patch.FirstName != nil {
		user.FirstName = *patch.FirstName
	}
	if patch.LastName != nil {
		user.LastName = *patch.LastName
	}
	if patch.Phone != nil {
		user.Phone = *patch.Phone
	}
	if patch.Bio != nil {
		user.Bio = *patch.Bio
	}
	if patch.Timezone != nil {
		user.Timezone = *patch.Timezone
	}
	if patch.Theme != nil {
		user.Theme = *patch.Theme
	}
	if patch.NotificationsEnabled != nil {
		user.NotificationsEnabled = *patch.NotificationsEnabled
	}
	user.UpdatedAt = time.Now().UTC()
	return 1, nil
}

// --- events ---

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	if !s.hasUser(event.UserID) {
		return models.NewValidationError("Unknown owner")
	}

	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()

	s.eventSeq++
	event.ID = s.eventSeq
	event.CreatedAt = time.Now().UTC()

	stored := *event
	s.events[event.ID] = &stored
	return nil
}

func (s *Store) ListEvents(ctx context.Context, ownerID uint) ([]models.Event, error) {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()

	out := make([]models.Event, 0)
	for _, e := range s.events {
		if e.UserID == ownerID {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].StartDate.Equal(out[j].StartDate) {
			return out[i].ID < out[j].ID
		}
		return out[i].StartDate.Before(out[j].StartDate)
	})
	return out, nil
}

func (s *Store) GetEvent(ctx context.Context, id, ownerID uint) (*models.Event, error) {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()

	e, ok := s.events[id]
	if !ok || e.UserID != ownerID {
		return nil, models.NewNotFoundError("Event")
	}
	out := *e
	return &out, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id, ownerID uint, patch storage.EventPatch) (int64, error) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()

	e, ok := s.events[id]
	if !ok || e.UserID != ownerID {
		return 0, nil
	}

	if patch.Title != nil {
		e.Title = *patch.Title
	}
	if patch.Description != nil {
		e.Description = *patch.Description
	}
	if patch.StartDate != nil {
		e.StartDate = *patch.StartDate
	}
	if patch.EndDate != nil {
		e.EndDate = *patch.EndDate
	}
	return 1, nil
}

func (s *Store) DeleteEvent(ctx context.Context, id, ownerID uint) (int64, error) {
	s.eventsMu.Lock()
	defer s.eventsMu.Unlock()

	e, ok := s.events[id]
	if !ok || e.UserID != ownerID {
		return 0, nil
	}
	delete(s.events, id)
	return 1, nil
}

func (s *Store) CountEvents(ctx context.Context, ownerID uint) (int64, error) {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()

	var n int64
	for _, e := range s.events {
		if e.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (s *Store) SearchEvents(ctx context.Context, ownerID uint, term string) ([]models.Event, error) {
	s.eventsMu.RLock()
	defer s.eventsMu.RUnlock()

	out := make([]models.Event, 0)
	for _, e := range s.events {
		if e.UserID == ownerID && contains(term, e.Title, e.Description) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- tasks ---

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if !s.hasUser(task.UserID) {
		return models.NewValidationError("Unknown owner")
	}

	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	s.taskSeq++
	task.ID = s.taskSeq
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Category == "" {
		task.Category = models.DefaultCategory
	}

	stored := *task
	s.tasks[task.ID] = &stored
	return nil
}

func (s *Store) ListTasks(ctx context.Context, ownerID uint) ([]models.Task, error) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()

	out := make([]models.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == ownerID {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetTask(ctx context.Context, id, ownerID uint) (*models.Task, error) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return nil, models.NewNotFoundError("Task")
	}
	out := *t
	return &out, nil
}

func (s *Store) UpdateTask(ctx context.Context, id, ownerID uint, patch storage.TaskPatch) (int64, error) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return 0, nil
	}

	if patch.Title != nil {
		t.Title = *patch.Title
	}
	if patch.Description != nil {
		t.Description = *patch.Description
	}
	if patch.Completed != nil {
		t.Completed = *patch.Completed
	}
	if patch.Priority != nil {
		t.Priority = *patch.Priority
	}
	if patch.Category != nil {
		t.Category = *patch.Category
	}
	if patch.Tags != nil {
		t.Tags = *patch.Tags
	}
	if patch.DueDate != nil {
		due := *patch.DueDate
		t.DueDate = &due
	}
	if patch.ReminderAt != nil {
		rem := *patch.ReminderAt
		t.ReminderAt = &rem
	}
	t.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (s *Store) DeleteTask(ctx context.Context, id, ownerID uint) (int64, error) {
	s.tasksMu.Lock()
	defer s.tasksMu.Unlock()

	t, ok := s.tasks[id]
	if !ok || t.UserID != ownerID {
		return 0, nil
	}
	delete(s.tasks, id)
	return 1, nil
}

func (s *Store) CountTasks(ctx context.Context, ownerID uint, completedOnly bool) (int64, error) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()

	var n int64
	for _, t := range s.tasks {
		if t.UserID == ownerID && (!completedOnly || t.Completed) {
			n++
		}
	}
	return n, nil
}

func (s *Store) SearchTasks(ctx context.Context, ownerID uint, term string) ([]models.Task, error) {
	s.tasksMu.RLock()
	defer s.tasksMu.RUnlock()

	out := make([]models.Task, 0)
	for _, t := range s.tasks {
		if t.UserID == ownerID && contains(term, t.Title, t.Description, t.Tags) {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- notes ---

func (s *Store) CreateNote(ctx context.Context, note *models.Note) error {
	if !s.hasUser(note.UserID) {
		return models.NewValidationError("Unknown owner")
	}

	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	s.noteSeq++
	note.ID = s.noteSeq
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	if note.Category == "" {
		note.Category = models.DefaultCategory
	}

	stored := *note
	s.notes[note.ID] = &stored
	return nil
}

func (s *Store) ListNotes(ctx context.Context, ownerID uint) ([]models.Note, error) {
	s.notesMu.RLock()
	defer s.notesMu.RUnlock()

	out := make([]models.Note, 0)
	for _, n := range s.notes {
		if n.UserID == ownerID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].UpdatedAt.Equal(out[j].UpdatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].UpdatedAt.After(out[j].UpdatedAt)
	})
	return out, nil
}

func (s *Store) GetNote(ctx context.Context, id, ownerID uint) (*models.Note, error) {
	s.notesMu.RLock()
	defer s.notesMu.RUnlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != ownerID {
		return nil, models.NewNotFoundError("Note")
	}
	out := *n
	return &out, nil
}

func (s *Store) UpdateNote(ctx context.Context, id, ownerID uint, patch storage.NotePatch) (int64, error) {
	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != ownerID {
		return 0, nil
	}

	if patch.Title != nil {
		n.Title = *patch.Title
	}
	if patch.Content != nil {
		n.Content = *patch.Content
	}
	if patch.Tags != nil {
		n.Tags = *patch.Tags
	}
	if patch.Category != nil {
		n.Category = *patch.Category
	}
	n.UpdatedAt = time.Now().UTC()
	return 1, nil
}

func (s *Store) DeleteNote(ctx context.Context, id, ownerID uint) (int64, error) {
	s.notesMu.Lock()
	defer s.notesMu.Unlock()

	n, ok := s.notes[id]
	if !ok || n.UserID != ownerID {
		return 0, nil
	}
	delete(s.notes, id)
	return 1, nil
}

func (s *Store) CountNotes(ctx context.Context, ownerID uint) (int64, error) {
	s.notesMu.RLock()
	defer s.notesMu.RUnlock()

	var n int64
	for _, note := range s.notes {
		if note.UserID == ownerID {
			n++
		}
	}
	return n, nil
}

func (s *Store) SearchNotes(ctx context.Context, ownerID uint, term string) ([]models.Note, error) {
	s.notesMu.RLock()
	defer s.notesMu.RUnlock()

	out := make([]models.Note, 0)
	for _, n := range s.notes {
		if n.UserID == ownerID && contains(term, n.Title, n.Content, n.Tags) {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// --- files ---

func (s *Store) CreateFile(ctx context.Context, file *models.File) error {
	if !s.hasUser(file.UserID) {
		return models.NewValidationError("Unknown owner")
	}

	s.filesMu.Lock()
	defer s.filesMu.Unlock()

	s.fileSeq++
	file.ID = s.fileSeq
	file.CreatedAt = time.Now().UTC()

	stored := *file
	s.files[file.ID] = &stored
	return nil
}

func (s *Store) ListFiles(ctx context.Context, ownerID uint) ([]models.File, error) {
	s.filesMu.RLock()
	defer s.filesMu.RUnlock()

	out := make([]models.File, 0)
	for _, f := range s.files {
		if f.UserID == ownerID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetFile(ctx context.Context, id, ownerID uint) (*models.File, error) {
	s.filesMu.RLock()
	defer s.filesMu.RUnlock()

	f, ok := s.files[id]
	if !ok || f.UserID != ownerID {
		return nil, models.NewNotFoundError("File")
	}
	out := *f
	return &out, nil
}

func (s *Store) DeleteFile(ctx context.Context, id, ownerID uint) (int64, error) {
	s.filesMu.Lock()
	defer s.filesMu.Unlock()

	f, ok := s.files[id]
	if !ok || f.UserID != ownerID {
		return 0, nil
	}
	delete(s.files, id)
	return 1, nil
}

// --- notifications ---

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if !s.hasUser(n.UserID) {
		return models.NewValidationError("Unknown owner")
	}

	s.notifsMu.Lock()
	defer s.notifsMu.Unlock()

	s.notifSeq++
	n.ID = s.notifSeq
	n.CreatedAt = time.Now().UTC()
	if n.Type == "" {
		n.Type = "info"
	}

	stored := *n
	s.notifs[n.ID] = &stored
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, ownerID uint) ([]models.Notification, error) {
	s.notifsMu.RLock()
	defer s.notifsMu.RUnlock()

	out := make([]models.Notification, 0)
	for _, n := range s.notifs {
		if n.UserID == ownerID {
			out = append(out, *n)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, ownerID uint) (int64, error) {
	s.notifsMu.Lock()
	defer s.notifsMu.Unlock()

	n, ok := s.notifs[id]
	if !ok || n.UserID != ownerID {
		return 0, nil
	}
	n.Read = true
	return 1, nil
}

func (s *Store) DeleteNotification(ctx context.Context, id, ownerID uint) (int64, error) {
	s.notifsMu.Lock()
	defer s.notifsMu.Unlock()

	n, ok := s.notifs[id]
	if !ok || n.UserID != ownerID {
		return 0, nil
	}
	delete(s.notifs, id)
	return 1, nil
}

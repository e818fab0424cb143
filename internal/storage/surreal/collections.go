package surreal

import (
	"context"
	"time"

	"dayboard/internal/models"
	"dayboard/internal/storage"
)

// Row types mirror the domain models but carry the SurrealDB record id
// ("events:42") instead of the bare number.

type userRow struct {
	ID                   string    `json:"id,omitempty"`
	Username             string    `json:"username"`
	Email                string    `json:"email"`
	Password             string    `json:"password"`
	Avatar               string    `json:"avatar,omitempty"`
	FirstName            string    `json:"first_name,omitempty"`
	LastName             string    `json:"last_name,omitempty"`
	Phone                string    `json:"phone,omitempty"`
	Bio                  string    `json:"bio,omitempty"`
	Timezone             string    `json:"timezone"`
	Theme                string    `json:"theme"`
	NotificationsEnabled bool      `json:"notifications_enabled"`
	CreatedAt            time.Time `json:"created_at"`
	UpdatedAt            time.Time `json:"updated_at"`
}

func (r userRow) model() models.User {
	return models.User{
		ID:                   recordID(r.ID),
		Username:             r.Username,
		Email:                r.Email,
		Password:             r.Password,
		Avatar:               r.Avatar,
		FirstName:            r.FirstName,
		LastName:             r.LastName,
		Phone:                r.Phone,
		Bio:                  r.Bio,
		Timezone:             r.Timezone,
		Theme:                r.Theme,
		NotificationsEnabled: r.NotificationsEnabled,
		CreatedAt:            r.CreatedAt,
		UpdatedAt:            r.UpdatedAt,
	}
}

type eventRow struct {
	ID          string    `json:"id,omitempty"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	UserID      uint      `json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r eventRow) model() models.Event {
	return models.Event{
		ID:          recordID(r.ID),
		Title:       r.Title,
		Description: r.Description,
		StartDate:   r.StartDate,
		EndDate:     r.EndDate,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
	}
}

type taskRow struct {
	ID          string     `json:"id,omitempty"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Completed   bool       `json:"completed"`
	Priority    string     `json:"priority"`
	Category    string     `json:"category"`
	Tags        string     `json:"tags,omitempty"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	ReminderAt  *time.Time `json:"reminder_date,omitempty"`
	UserID      uint       `json:"user_id"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (r taskRow) model() models.Task {
	return models.Task{
		ID:          recordID(r.ID),
		Title:       r.Title,
		Description: r.Description,
		Completed:   r.Completed,
		Priority:    r.Priority,
		Category:    r.Category,
		Tags:        r.Tags,
		DueDate:     r.DueDate,
		ReminderAt:  r.ReminderAt,
		UserID:      r.UserID,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

type noteRow struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Content   string    `json:"content,omitempty"`
	Tags      string    `json:"tags,omitempty"`
	Category  string    `json:"category"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r noteRow) model() models.Note {
	return models.Note{
		ID:        recordID(r.ID),
		Title:     r.Title,
		Content:   r.Content,
		Tags:      r.Tags,
		Category:  r.Category,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

type fileRow struct {
	ID           string    `json:"id,omitempty"`
	Filename     string    `json:"filename"`
	OriginalName string    `json:"original_name"`
	Path         string    `json:"file_path"`
	Size         int64     `json:"file_size"`
	MimeType     string    `json:"mime_type"`
	UserID       uint      `json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

func (r fileRow) model() models.File {
	return models.File{
		ID:           recordID(r.ID),
		Filename:     r.Filename,
		OriginalName: r.OriginalName,
		Path:         r.Path,
		Size:         r.Size,
		MimeType:     r.MimeType,
		UserID:       r.UserID,
		CreatedAt:    r.CreatedAt,
	}
}

type notificationRow struct {
	ID        string    `json:"id,omitempty"`
	Title     string    `json:"title"`
	Message   string    `json:"message,omitempty"`
	Type      string    `json:"type"`
	Read      bool      `json:"read"`
	UserID    uint      `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (r notificationRow) model() models.Notification {
	return models.Notification{
		ID:        recordID(r.ID),
		Title:     r.Title,
		Message:   r.Message,
		Type:      r.Type,
		Read:      r.Read,
		UserID:    r.UserID,
		CreatedAt: r.CreatedAt,
	}
}

// create allocates an id from the collection counter and stores content at
// the resulting record.
func (s *Store) create(ctx context.Context, collection string, content map[string]any) (uint, error) {
	id, err := s.nextID(ctx, collection)
	if err != nil {
		return 0, err
	}
	vars := thing(collection, id)
	vars["data"] = content
	_, err = queryRows[map[string]any](s, ctx,
		"CREATE type::thing($tb, $id) CONTENT $data", vars)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// Users

func (s *Store) CreateUser(ctx context.Context, user *models.User) error {
	// Fast path only; the unique indexes defined at Open are what actually
	// enforce this under concurrent registrations.
	taken, err := s.count(ctx,
		"SELECT count() AS count FROM users WHERE username = $username OR email = $email GROUP ALL",
		map[string]any{"username": user.Username, "email": user.Email})
	if err != nil {
		return err
	}
	if taken > 0 {
		return models.NewConflictError("Username or email already exists")
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	if user.Timezone == "" {
		user.Timezone = "UTC"
	}
	if user.Theme == "" {
		user.Theme = "light"
	}

	id, err := s.create(ctx, "users", map[string]any{
		"username":              user.Username,
		"email":                 user.Email,
		"password":              user.Password,
		"avatar":                user.Avatar,
		"first_name":            user.FirstName,
		"last_name":             user.LastName,
		"phone":                 user.Phone,
		"bio":                   user.Bio,
		"timezone":              user.Timezone,
		"theme":                 user.Theme,
		"notifications_enabled": user.NotificationsEnabled,
		"created_at":            user.CreatedAt,
		"updated_at":            user.UpdatedAt,
	})
	if err != nil {
		if isIndexViolation(err) {
			return models.NewConflictError("Username or email already exists")
		}
		return err
	}
	user.ID = id
	return nil
}

func (s *Store) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	rows, err := queryRows[userRow](s, ctx,
		"SELECT * FROM type::thing('users', $id)", map[string]any{"id": id})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("User")
	}
	u := rows[0].model()
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	rows, err := queryRows[userRow](s, ctx,
		"SELECT * FROM users WHERE username = $username LIMIT 1",
		map[string]any{"username": username})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("User")
	}
	u := rows[0].model()
	return &u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id uint, patch storage.UserPatch) (int64, error) {
	merge := map[string]any{"updated_at": time.Now().UTC()}
	setIf(merge, "password", patch.Password)
	setIf(merge, "avatar", patch.Avatar)
	setIf(merge, "first_name", patch.FirstName)
	setIf(merge, "last_name", patch.LastName)
	setIf(merge, "phone", patch.Phone)
	setIf(merge, "bio", patch.Bio)
	setIf(merge, "timezone", patch.Timezone)
	setIf(merge, "theme", patch.Theme)
	setIf(merge, "notifications_enabled", patch.NotificationsEnabled)

	vars := thing("users", id)
	vars["patch"] = merge
	return s.affected(ctx, "UPDATE type::thing($tb, $id) MERGE $patch RETURN AFTER", vars)
}

// Events

func (s *Store) CreateEvent(ctx context.Context, event *models.Event) error {
	if err := s.ownerExists(ctx, event.UserID); err != nil {
		return err
	}
	event.CreatedAt = time.Now().UTC()
	id, err := s.create(ctx, "events", map[string]any{
		"title":       event.Title,
		"description": event.Description,
		"start_date":  event.StartDate.UTC(),
		"end_date":    event.EndDate.UTC(),
		"user_id":     event.UserID,
		"created_at":  event.CreatedAt,
	})
	if err != nil {
		return err
	}
	event.ID = id
	return nil
}

func (s *Store) ListEvents(ctx context.Context, ownerID uint) ([]models.Event, error) {
	rows, err := queryRows[eventRow](s, ctx,
		"SELECT * FROM events WHERE user_id = $owner ORDER BY start_date ASC, id ASC",
		map[string]any{"owner": ownerID})
	if err != nil {
		return nil, err
	}
	return mapRows(rows, eventRow.model), nil
}

func (s *Store) GetEvent(ctx context.Context, id, ownerID uint) (*models.Event, error) {
	rows, err := queryRows[eventRow](s, ctx,
		"SELECT * FROM type::thing('events', $id) WHERE user_id = $owner",
		map[string]any{"id": id, "owner": ownerID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("Event")
	}
	e := rows[0].model()
	return &e, nil
}

func (s *Store) UpdateEvent(ctx context.Context, id, ownerID uint, patch storage.EventPatch) (int64, error) {
	merge := map[string]any{}
	setIf(merge, "title", patch.Title)
	setIf(merge, "description", patch.Description)
	setIf(merge, "start_date", patch.StartDate)
	setIf(merge, "end_date", patch.EndDate)
	return s.updateOwned(ctx, "events", id, ownerID, merge)
}

func (s *Store) DeleteEvent(ctx context.Context, id, ownerID uint) (int64, error) {
	return s.deleteOwned(ctx, "events", id, ownerID)
}

func (s *Store) CountEvents(ctx context.Context, ownerID uint) (int64, error) {
	return s.count(ctx,
		"SELECT count() AS count FROM events WHERE user_id = $owner GROUP ALL",
		map[string]any{"owner": ownerID})
}

func (s *Store) SearchEvents(ctx context.Context, ownerID uint, term string) ([]models.Event, error) {
	rows, err := queryRows[eventRow](s, ctx,
		`SELECT * FROM events WHERE user_id = $owner
		 AND (string::contains(string::lowercase(title ?? ''), $term)
		   OR string::contains(string::lowercase(description ?? ''), $term))
		 ORDER BY id ASC`,
		map[string]any{"owner": ownerID, "term": lowerTerm(term)})
	if err != nil {
		return nil, err
	}
	return mapRows(rows, eventRow.model), nil
}

// Tasks

func (s *Store) CreateTask(ctx context.Context, task *models.Task) error {
	if err := s.ownerExists(ctx, task.UserID); err != nil {
		return err
	}
	now := time.Now().UTC()
	task.CreatedAt = now
	task.UpdatedAt = now
	if task.Priority == "" {
		task.Priority = models.PriorityMedium
	}
	if task.Category == "" {
		task.Category = models.DefaultCategory
	}
	content := map[string]any{
		"title":       task.Title,
		"description": task.Description,
		"completed":   task.Completed,
		"priority":    task.Priority,
		"category":    task.Category,
		"tags":        task.Tags,
		"user_id":     task.UserID,
		"created_at":  task.CreatedAt,
		"updated_at":  task.UpdatedAt,
	}
	if task.DueDate != nil {
		content["due_date"] = task.DueDate.UTC()
	}
	if task.ReminderAt != nil {
		content["reminder_date"] = task.ReminderAt.UTC()
	}
	id, err := s.create(ctx, "tasks", content)
	if err != nil {
		return err
	}
	task.ID = id
	return nil
}

func (s *Store) ListTasks(ctx context.Context, ownerID uint) ([]models.Task, error) {
	rows, err := queryRows[taskRow](s, ctx,
		"SELECT * FROM tasks WHERE user_id = $owner ORDER BY created_at DESC, id DESC",
		map[string]any{"owner": ownerID})
	if err != nil {
		return nil, err
	}
	return mapRows(rows, taskRow.model), nil
}

func (s *Store) GetTask(ctx context.Context, id, ownerID uint) (*models.Task, error) {
	rows, err := queryRows[taskRow](s, ctx,
		"SELECT * FROM type::thing('tasks', $id) WHERE user_id = $owner",
		map[string]any{"id": id, "owner": ownerID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("Task")
	}
	t := rows[0].model()
	return &t, nil
}

func (s *Store) UpdateTask(ctx context.Context, id, ownerID uint, patch storage.TaskPatch) (int64, error) {
	merge := map[string]any{"updated_at": time.Now().UTC()}
	setIf(merge, "title", patch.Title)
	setIf(merge, "description", patch.Description)
	setIf(merge, "completed", patch.Completed)
	setIf(merge, "priority", patch.Priority)
	setIf(merge, "category", patch.Category)
	setIf(merge, "tags", patch.Tags)
	setIf(merge, "due_date", patch.DueDate)
	setIf(merge, "reminder_date", patch.ReminderAt)
	return s.updateOwned(ctx, "tasks", id, ownerID, merge)
}

func (s *Store) DeleteTask(ctx context.Context, id, ownerID uint) (int64, error) {
	return s.deleteOwned(ctx, "tasks", id, ownerID)
}

func (s *Store) CountTasks(ctx context.Context, ownerID uint, completedOnly bool) (int64, error) {
	if completedOnly {
		return s.count(ctx,
			"SELECT count() AS count FROM tasks WHERE user_id = $owner AND completed = true GROUP ALL",
			map[string]any{"owner": ownerID})
	}
	return s.count(ctx,
		"SELECT count() AS count FROM tasks WHERE user_id = $owner GROUP ALL",
		map[string]any{"owner": ownerID})
}

func (s *Store) SearchTasks(ctx context.Context, ownerID uint, term string) ([]models.Task, error) {
	rows, err := queryRows[taskRow](s, ctx,
		`SELECT * FROM tasks WHERE user_id = $owner
		 AND (string::contains(string::lowercase(title ?? ''), $term)
		   OR string::contains(string::lowercase(description ?? ''), $term)
		   OR string::contains(string::lowercase(tags ?? ''), $term))
		 ORDER BY id ASC`,
		map[string]any{"owner": ownerID, "term": lowerTerm(term)})
	if err != nil {
		return nil, err
	}
	return mapRows(rows, taskRow.model), nil
}

// Notes

func (s *Store) CreateNote(ctx context.Context, note *models.Note) error {
	if err := s.ownerExists(ctx, note.UserID); err != nil {
		return err
	}
	now := time.Now().UTC()
	note.CreatedAt = now
	note.UpdatedAt = now
	if note.Category == "" {
		note.Category = models.DefaultCategory
	}
	id, err := s.create(ctx, "notes", map[string]any{
		"title":      note.Title,
		"content":    note.Content,
		"tags":       note.Tags,
		"category":   note.Category,
		"user_id":    note.UserID,
		"created_at": note.CreatedAt,
		"updated_at": note.UpdatedAt,
	})
	if err != nil {
		return err
	}
	note.ID = id
	return nil
}

func (s *Store) ListNotes(ctx context.Context, ownerID uint) ([]models.Note, error) {
	rows, err := queryRows[noteRow](s, ctx,
		"SELECT * FROM notes WHERE user_id = $owner ORDER BY updated_at DESC, id DESC",
		map[string]any{"owner": ownerID})
	if err != nil {
		return nil, err
	}
	return mapRows(rows, noteRow.model), nil
}

func (s *Store) GetNote(ctx context.Context, id, ownerID uint) (*models.Note, error) {
	rows, err := queryRows[noteRow](s, ctx,
		"SELECT * FROM type::thing('notes', $id) WHERE user_id = $owner",
		map[string]any{"id": id, "owner": ownerID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("Note")
	}
	n := rows[0].model()
	return &n, nil
}

func (s *Store) UpdateNote(ctx context.Context, id, ownerID uint, patch storage.NotePatch) (int64, error) {
	merge := map[string]any{"updated_at": time.Now().UTC()}
	setIf(merge, "title", patch.Title)
	setIf(merge, "content", patch.Content)
	setIf(merge, "tags", patch.Tags)
	setIf(merge, "category", patch.Category)
	return s.updateOwned(ctx, "notes", id, ownerID, merge)
}

func (s *Store) DeleteNote(ctx context.Context, id, ownerID uint) (int64, error) {
	return s.deleteOwned(ctx, "notes", id, ownerID)
}

func (s *Store) CountNotes(ctx context.Context, ownerID uint) (int64, error) {
	return s.count(ctx,
		"SELECT count() AS count FROM notes WHERE user_id = $owner GROUP ALL",
		map[string]any{"owner": ownerID})
}

func (s *Store) SearchNotes(ctx context.Context, ownerID uint, term string) ([]models.Note, error) {
	rows, err := queryRows[noteRow](s, ctx,
		`SELECT * FROM notes WHERE user_id = $owner
		 AND (string::contains(string::lowercase(title ?? ''), $term)
		   OR string::contains(string::lowercase(content ?? ''), $term)
		   OR string::contains(string::lowercase(tags ?? ''), $term))
		 ORDER BY id ASC`,
		map[string]any{"owner": ownerID, "term": lowerTerm(term)})
	if err != nil {
		return nil, err
	}
	return mapRows(rows, noteRow.model), nil
}

// Files

func (s *Store) CreateFile(ctx context.Context, file *models.File) error {
	if err := s.ownerExists(ctx, file.UserID); err != nil {
		return err
	}
	file.CreatedAt = time.Now().UTC()
	id, err := s.create(ctx, "files", map[string]any{
		"filename":      file.Filename,
		"original_name": file.OriginalName,
		"file_path":     file.Path,
		"file_size":     file.Size,
		"mime_type":     file.MimeType,
		"user_id":       file.UserID,
		"created_at":    file.CreatedAt,
	})
	if err != nil {
		return err
	}
	file.ID = id
	return nil
}

func (s *Store) ListFiles(ctx context.Context, ownerID uint) ([]models.File, error) {
	rows, err := queryRows[fileRow](s, ctx,
		"SELECT * FROM files WHERE user_id = $owner ORDER BY created_at DESC, id DESC",
		map[string]any{"owner": ownerID})
	if err != nil {
		return nil, err
	}
	return mapRows(rows, fileRow.model), nil
}

func (s *Store) GetFile(ctx context.Context, id, ownerID uint) (*models.File, error) {
	rows, err := queryRows[fileRow](s, ctx,
		"SELECT * FROM type::thing('files', $id) WHERE user_id = $owner",
		map[string]any{"id": id, "owner": ownerID})
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, models.NewNotFoundError("File")
	}
	f := rows[0].model()
	return &f, nil
}

func (s *Store) DeleteFile(ctx context.Context, id, ownerID uint) (int64, error) {
	return s.deleteOwned(ctx, "files", id, ownerID)
}

// Notifications

func (s *Store) CreateNotification(ctx context.Context, n *models.Notification) error {
	if err := s.ownerExists(ctx, n.UserID); err != nil {
		return err
	}
	n.CreatedAt = time.Now().UTC()
	if n.Type == "" {
		n.Type = "info"
	}
	id, err := s.create(ctx, "notifications", map[string]any{
		"title":      n.Title,
		"message":    n.Message,
		"type":       n.Type,
		"read":       n.Read,
		"user_id":    n.UserID,
		"created_at": n.CreatedAt,
	})
	if err != nil {
		return err
	}
	n.ID = id
	return nil
}

func (s *Store) ListNotifications(ctx context.Context, ownerID uint) ([]models.Notification, error) {
	rows, err := queryRows[notificationRow](s, ctx,
		"SELECT * FROM notifications WHERE user_id = $owner ORDER BY created_at DESC, id DESC",
		map[string]any{"owner": ownerID})
	if err != nil {
		return nil, err
	}
	return mapRows(rows, notificationRow.model), nil
}

func (s *Store) MarkNotificationRead(ctx context.Context, id, ownerID uint) (int64, error) {
	return s.updateOwned(ctx, "notifications", id, ownerID, map[string]any{"read": true})
}

func (s *Store) DeleteNotification(ctx context.Context, id, ownerID uint) (int64, error) {
	return s.deleteOwned(ctx, "notifications", id, ownerID)
}

// Helpers

func (s *Store) updateOwned(ctx context.Context, collection string, id, ownerID uint, merge map[string]any) (int64, error) {
	vars := thing(collection, id)
	vars["owner"] = ownerID
	vars["patch"] = merge
	return s.affected(ctx,
		"UPDATE type::thing($tb, $id) MERGE $patch WHERE user_id = $owner RETURN AFTER", vars)
}

func (s *Store) deleteOwned(ctx context.Context, collection string, id, ownerID uint) (int64, error) {
	vars := thing(collection, id)
	vars["owner"] = ownerID
	return s.affected(ctx,
		"DELETE type::thing($tb, $id) WHERE user_id = $owner RETURN BEFORE", vars)
}

func setIf[T any](m map[string]any, key string, v *T) {
	if v != nil {
		m[key] = *v
	}
}

func mapRows[R, M any](rows []R, conv func(R) M) []M {
	out := make([]M, 0, len(rows))
	for _, r := range rows {
		out = append(out, conv(r))
	}
	return out
}

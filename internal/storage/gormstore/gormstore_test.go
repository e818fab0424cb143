package gormstore

import (
	"context"
	"regexp"
	"testing"
	"time"

	"dayboard/internal/models"
	"dayboard/internal/storage"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	store, err := NewWithDB(db)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedUser(t *testing.T, store *Store, username string) *models.User {
	t.Helper()
	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "hashed",
	}
	require.NoError(t, store.CreateUser(context.Background(), user))
	return user
}

func TestCreateUser_DuplicateUsername(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	seedUser(t, store, "alice")

	err := store.CreateUser(ctx, &models.User{
		Username: "alice",
		Email:    "other@example.com",
		Password: "hashed",
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
}

func TestCreateUser_AppliesDefaults(t *testing.T) {
	store := setupStore(t)

	user := seedUser(t, store, "bob")

	assert.Equal(t, "UTC", user.Timezone)
	assert.Equal(t, "light", user.Theme)
	assert.NotZero(t, user.ID)
}

func TestCreateEvent_UnknownOwner(t *testing.T) {
	store := setupStore(t)

	err := store.CreateEvent(context.Background(), &models.Event{
		Title:     "Orphan",
		StartDate: time.Now(),
		EndDate:   time.Now().Add(time.Hour),
		UserID:    999,
	})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestUpdateEvent_OwnershipScoping(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()

	owner := seedUser(t, store, "owner")
	other := seedUser(t, store, "other")

	event := &models.Event{
		Title:     "Planning",
		StartDate: time.Now(),
		EndDate:   time.Now().Add(time.Hour),
		UserID:    owner.ID,
	}
	require.NoError(t, store.CreateEvent(ctx, event))

	title := "Hijacked"
	matched, err := store.UpdateEvent(ctx, event.ID, other.ID, storage.EventPatch{Title: &title})
	require.NoError(t, err)
	assert.Zero(t, matched)

	matched, err = store.DeleteEvent(ctx, event.ID, other.ID)
	require.NoError(t, err)
	assert.Zero(t, matched)

	got, err := store.GetEvent(ctx, event.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, "Planning", got.Title)
}

func TestListEvents_OrderedByStartDate(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "carol")

	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{48 * time.Hour, 0, 24 * time.Hour} {
		require.NoError(t, store.CreateEvent(ctx, &models.Event{
			Title:     "Meeting",
			StartDate: base.Add(offset),
			EndDate:   base.Add(offset + time.Hour),
			UserID:    owner.ID,
		}))
	}

	events, err := store.ListEvents(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[0].StartDate.Before(events[1].StartDate))
	assert.True(t, events[1].StartDate.Before(events[2].StartDate))
}

func TestCountTasks_CompletedOnly(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "dave")

	for i, done := range []bool{true, true, true, false} {
		require.NoError(t, store.CreateTask(ctx, &models.Task{
			Title:     "Task",
			Completed: done,
			UserID:    owner.ID,
			CreatedAt: time.Now().Add(time.Duration(i) * time.Second),
		}))
	}

	total, err := store.CountTasks(ctx, owner.ID, false)
	require.NoError(t, err)
	assert.Equal(t, int64(4), total)

	completed, err := store.CountTasks(ctx, owner.ID, true)
	require.NoError(t, err)
	assert.Equal(t, int64(3), completed)
}

func TestSearchNotes_CaseInsensitiveSubstring(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "erin")
	other := seedUser(t, store, "frank")

	require.NoError(t, store.CreateNote(ctx, &models.Note{
		Title:   "Quarterly Review",
		Content: "budget numbers",
		UserID:  owner.ID,
	}))
	require.NoError(t, store.CreateNote(ctx, &models.Note{
		Title:   "Groceries",
		Content: "milk and QUARTERS for laundry",
		UserID:  owner.ID,
	}))
	require.NoError(t, store.CreateNote(ctx, &models.Note{
		Title:  "Quarter horse",
		UserID: other.ID,
	}))

	notes, err := store.SearchNotes(ctx, owner.ID, "quarter")
	require.NoError(t, err)
	assert.Len(t, notes, 2)
	for _, n := range notes {
		assert.Equal(t, owner.ID, n.UserID)
	}
}

func TestTaskDefaults(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "grace")

	task := &models.Task{Title: "Bare", UserID: owner.ID}
	require.NoError(t, store.CreateTask(ctx, task))

	got, err := store.GetTask(ctx, task.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, models.PriorityMedium, got.Priority)
	assert.Equal(t, models.DefaultCategory, got.Category)
	assert.False(t, got.Completed)
}

func TestMarkNotificationRead(t *testing.T) {
	store := setupStore(t)
	ctx := context.Background()
	owner := seedUser(t, store, "heidi")

	n := &models.Notification{Title: "Reminder", UserID: owner.ID}
	require.NoError(t, store.CreateNotification(ctx, n))
	assert.Equal(t, "info", n.Type)

	matched, err := store.MarkNotificationRead(ctx, n.ID, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), matched)

	notifs, err := store.ListNotifications(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, notifs, 1)
	assert.True(t, notifs[0].Read)
}

func setupMockDB(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	return &Store{db: gormDB}, mock
}

func TestCountEvents_DeadlineMapsToTimeout(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "events" WHERE user_id = $1`)).
		WithArgs(7).
		WillReturnError(context.DeadlineExceeded)

	_, err := store.CountEvents(context.Background(), uint(7))
	require.Error(t, err)
	assert.Equal(t, models.CodeBackendTimeout, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetUserByID_DriverErrorMapsToInternal(t *testing.T) {
	store, mock := setupMockDB(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
		WithArgs(1, 1).
		WillReturnError(assert.AnError)

	_, err := store.GetUserByID(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, models.CodeInternal, models.ErrorCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

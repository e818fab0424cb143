package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"dayboard/internal/models"
	"dayboard/internal/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestUser(t *testing.T, s *Store, name string) *models.User {
	t.Helper()
	u := &models.User{
		Username: name,
		Email:    name + "@example.com",
		Password: "digest",
	}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestCreateUser_DuplicateIsConflict(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	newTestUser(t, s, "alice")

	err := s.CreateUser(ctx, &models.User{Username: "alice", Email: "other@example.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))

	err = s.CreateUser(ctx, &models.User{Username: "someone", Email: "alice@example.com", Password: "x"})
	require.Error(t, err)
	assert.Equal(t, models.CodeConflict, models.ErrorCode(err))
}

func TestCreateUser_ConcurrentInsertsAssignDistinctIDs(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	const n = 64
	ids := make(chan uint, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			u := &models.User{
				Username: fmt.Sprintf("user-%d", i),
				Email:    fmt.Sprintf("user-%d@example.com", i),
				Password: "digest",
			}
			if err := s.CreateUser(ctx, u); err == nil {
				ids <- u.ID
			}
		}(i)
	}
	wg.Wait()
	close(ids)

	seen := make(map[uint]bool)
	for id := range ids {
		assert.False(t, seen[id], "id %d assigned twice", id)
		seen[id] = true
	}
	assert.Len(t, seen, n)
}

func TestEvents_ListOrderedByStartDate(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	owner := newTestUser(t, s, "calendar")

	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{48 * time.Hour, 0, 24 * time.Hour} {
		require.NoError(t, s.CreateEvent(ctx, &models.Event{
			Title:     "event",
			StartDate: base.Add(offset),
			EndDate:   base.Add(offset + time.Hour),
			UserID:    owner.ID,
		}))
	}

	events, err := s.ListEvents(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, events, 3)
	assert.True(t, events[0].StartDate.Before(events[1].StartDate))
	assert.True(t, events[1].StartDate.Before(events[2].StartDate))
}

func TestEvents_OwnershipScoping(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	alice := newTestUser(t, s, "alice")
	bob := newTestUser(t, s, "bob")

	event := &models.Event{
		Title:     "private",
		StartDate: time.Now(),
		EndDate:   time.Now().Add(time.Hour),
		UserID:    alice.ID,
	}
	require.NoError(t, s.CreateEvent(ctx, event))

	// Wrong owner behaves exactly like a missing record.
	_, err := s.GetEvent(ctx, event.ID, bob.ID)
	require.Error(t, err)
	assert.Equal(t, models.CodeNotFound, models.ErrorCode(err))

	title := "stolen"
	n, err := s.UpdateEvent(ctx, event.ID, bob.ID, storage.EventPatch{Title: &title})
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = s.DeleteEvent(ctx, event.ID, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	events, err := s.ListEvents(ctx, bob.ID)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestTasks_UpdateIsIdempotentOnCompleted(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	owner := newTestUser(t, s, "worker")

	task := &models.Task{Title: "ship it", UserID: owner.ID}
	require.NoError(t, s.CreateTask(ctx, task))

	done := true
	for i := 0; i < 2; i++ {
		n, err := s.UpdateTask(ctx, task.ID, owner.ID, storage.TaskPatch{Completed: &done})
		require.NoError(t, err)
		assert.EqualValues(t, 1, n)
	}

	tasks, err := s.ListTasks(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
}

func TestTasks_Defaults(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	owner := newTestUser(t, s, "worker")

	task := &models.Task{Title: "plain", UserID: owner.ID}
	require.NoError(t, s.CreateTask(ctx, task))
	assert.Equal(t, models.PriorityMedium, task.Priority)
	assert.Equal(t, models.DefaultCategory, task.Category)
	assert.False(t, task.Completed)
	assert.NotZero(t, task.ID)
	assert.False(t, task.CreatedAt.IsZero())
}

func TestCountTasks_CompletedOnly(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	owner := newTestUser(t, s, "counter")

	done := true
	for i := 0; i < 4; i++ {
		task := &models.Task{Title: fmt.Sprintf("task %d", i), UserID: owner.ID}
		require.NoError(t, s.CreateTask(ctx, task))
		if i < 3 {
			_, err := s.UpdateTask(ctx, task.ID, owner.ID, storage.TaskPatch{Completed: &done})
			require.NoError(t, err)
		}
	}

	total, err := s.CountTasks(ctx, owner.ID, false)
	require.NoError(t, err)
	assert.EqualValues(t, 4, total)

	completed, err := s.CountTasks(ctx, owner.ID, true)
	require.NoError(t, err)
	assert.EqualValues(t, 3, completed)
}

func TestSearchNotes_CaseInsensitiveSubstring(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	owner := newTestUser(t, s, "searcher")

	require.NoError(t, s.CreateNote(ctx, &models.Note{Title: "Quarterly Review", UserID: owner.ID}))
	require.NoError(t, s.CreateNote(ctx, &models.Note{Title: "Groceries", Content: "milk", UserID: owner.ID}))

	notes, err := s.SearchNotes(ctx, owner.ID, "quarter")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Quarterly Review", notes[0].Title)

	// Content and tags are searched too.
	notes, err = s.SearchNotes(ctx, owner.ID, "MILK")
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "Groceries", notes[0].Title)
}

func TestCreate_UnknownOwnerRejected(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()

	err := s.CreateNote(ctx, &models.Note{Title: "orphan", UserID: 42})
	require.Error(t, err)
	assert.Equal(t, models.CodeValidation, models.ErrorCode(err))
}

func TestNotes_UpdateRefreshesTimestampAndReorders(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	owner := newTestUser(t, s, "writer")

	first := &models.Note{Title: "first", UserID: owner.ID}
	require.NoError(t, s.CreateNote(ctx, first))
	second := &models.Note{Title: "second", UserID: owner.ID}
	require.NoError(t, s.CreateNote(ctx, second))

	time.Sleep(5 * time.Millisecond)
	content := "edited"
	n, err := s.UpdateNote(ctx, first.ID, owner.ID, storage.NotePatch{Content: &content})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	notes, err := s.ListNotes(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, notes, 2)
	assert.Equal(t, first.ID, notes[0].ID, "most recently updated note should list first")
}

func TestNotifications_MarkRead(t *testing.T) {
	t.Parallel()
	s := New()
	ctx := context.Background()
	owner := newTestUser(t, s, "reader")

	notif := &models.Notification{Title: "hello", UserID: owner.ID}
	require.NoError(t, s.CreateNotification(ctx, notif))
	assert.Equal(t, "info", notif.Type)

	n, err := s.MarkNotificationRead(ctx, notif.ID, owner.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	list, err := s.ListNotifications(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].Read)
}

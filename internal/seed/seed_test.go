package seed

import (
	"context"
	"testing"

	"dayboard/internal/auth"
	"dayboard/internal/storage/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeederPopulatesAllCollections(t *testing.T) {
	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })
	ctx := context.Background()

	s := NewSeeder(store, auth.NewCredentials("test-secret"))

	users, err := s.Users(ctx, 3)
	require.NoError(t, err)
	require.Len(t, users, 3)

	require.NoError(t, s.Content(ctx, users, 2))

	for _, user := range users {
		events, err := store.ListEvents(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, events, 2)

		tasks, err := store.ListTasks(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, tasks, 2)

		notes, err := store.ListNotes(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, notes, 2)

		notifs, err := store.ListNotifications(ctx, user.ID)
		require.NoError(t, err)
		assert.Len(t, notifs, 1)
	}
}

func TestSeededPasswordVerifies(t *testing.T) {
	store := memory.New()
	t.Cleanup(func() { _ = store.Close() })

	creds := auth.NewCredentials("test-secret")
	s := NewSeeder(store, creds)

	users, err := s.Users(context.Background(), 1)
	require.NoError(t, err)
	assert.True(t, creds.CheckPassword(DemoPassword, users[0].Password))
}

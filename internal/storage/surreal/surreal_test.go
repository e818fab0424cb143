package surreal

import (
	"errors"
	"testing"
	"time"

	"dayboard/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestRecordID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want uint
	}{
		{"plain", "events:42", 42},
		{"bracketed", "events:⟨42⟩", 42},
		{"backticked", "events:`42`", 42},
		{"no separator", "events", 0},
		{"non-numeric", "events:abc", 0},
		{"empty", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recordID(tt.in))
		})
	}
}

func TestIsIndexViolation(t *testing.T) {
	raw := errors.New("status: ERR, detail: Database index `users_username` already contains 'alice'")
	assert.True(t, isIndexViolation(raw))
	assert.True(t, isIndexViolation(models.NewInternalError(raw)))

	assert.False(t, isIndexViolation(nil))
	assert.False(t, isIndexViolation(errors.New("connection reset")))
}

func TestSetIfSkipsNilFields(t *testing.T) {
	m := map[string]any{}
	title := "Standup"
	setIf(m, "title", &title)
	setIf[string](m, "description", nil)

	assert.Equal(t, map[string]any{"title": "Standup"}, m)
}

func TestRowModelRoundTrip(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Second)
	row := taskRow{
		ID:        "tasks:7",
		Title:     "Ship release",
		Completed: true,
		Priority:  "high",
		Category:  "work",
		UserID:    3,
		CreatedAt: now,
		UpdatedAt: now,
	}

	task := row.model()

	assert.Equal(t, uint(7), task.ID)
	assert.Equal(t, "Ship release", task.Title)
	assert.True(t, task.Completed)
	assert.Equal(t, uint(3), task.UserID)
	assert.Nil(t, task.DueDate)
}

func TestMapRowsPreservesOrder(t *testing.T) {
	rows := []eventRow{
		{ID: "events:1", Title: "first"},
		{ID: "events:2", Title: "second"},
	}

	events := mapRows(rows, eventRow.model)

	assert.Len(t, events, 2)
	assert.Equal(t, uint(1), events[0].ID)
	assert.Equal(t, uint(2), events[1].ID)
}

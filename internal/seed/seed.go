// Package seed populates a store with demo data for local development.
package seed

import (
	"context"
	"fmt"
	"time"

	"dayboard/internal/auth"
	"dayboard/internal/models"
	"dayboard/internal/storage"

	"github.com/brianvoe/gofakeit/v6"
)

// Seeder creates fake users and content through the store contract, so any
// backend can be seeded.
type Seeder struct {
	store storage.Store
	creds *auth.Credentials
}

// DemoPassword is the password every seeded account gets.
const DemoPassword = "password123"

func NewSeeder(store storage.Store, creds *auth.Credentials) *Seeder {
	gofakeit.Seed(time.Now().UnixNano())
	return &Seeder{store: store, creds: creds}
}

// Users creates n accounts with a shared demo password.
func (s *Seeder) Users(ctx context.Context, n int) ([]models.User, error) {
	digest, err := s.creds.HashPassword(DemoPassword)
	if err != nil {
		return nil, err
	}

	users := make([]models.User, 0, n)
	for i := 0; i < n; i++ {
		user := models.User{
			Username:  fmt.Sprintf("%s%d", gofakeit.Username(), i),
			Email:     fmt.Sprintf("seed%d.%s", i, gofakeit.Email()),
			Password:  digest,
			FirstName: gofakeit.FirstName(),
			LastName:  gofakeit.LastName(),
			Bio:       gofakeit.Sentence(8),
		}
		if err := s.store.CreateUser(ctx, &user); err != nil {
			return nil, fmt.Errorf("seed user %d: %w", i, err)
		}
		users = append(users, user)
	}
	return users, nil
}

// Content fills each user's calendar, task list, and notebook.
func (s *Seeder) Content(ctx context.Context, users []models.User, perUser int) error {
	priorities := []string{models.PriorityLow, models.PriorityMedium, models.PriorityHigh}

	for _, user := range users {
		for i := 0; i < perUser; i++ {
			start := gofakeit.DateRange(time.Now(), time.Now().AddDate(0, 1, 0))
			event := models.Event{
				Title:       gofakeit.Sentence(3),
				Description: gofakeit.Sentence(10),
				StartDate:   start,
				EndDate:     start.Add(time.Hour),
				UserID:      user.ID,
			}
			if err := s.store.CreateEvent(ctx, &event); err != nil {
				return fmt.Errorf("seed event: %w", err)
			}

			task := models.Task{
				Title:     gofakeit.Sentence(4),
				Completed: gofakeit.Bool(),
				Priority:  priorities[gofakeit.Number(0, 2)],
				Category:  gofakeit.RandomString([]string{"work", "home", "general"}),
				UserID:    user.ID,
			}
			if err := s.store.CreateTask(ctx, &task); err != nil {
				return fmt.Errorf("seed task: %w", err)
			}

			note := models.Note{
				Title:   gofakeit.Sentence(3),
				Content: gofakeit.Paragraph(1, 3, 8, "\n"),
				UserID:  user.ID,
			}
			if err := s.store.CreateNote(ctx, &note); err != nil {
				return fmt.Errorf("seed note: %w", err)
			}
		}

		welcome := models.Notification{
			Title:   "Welcome to Dayboard",
			Message: "Your demo account is ready.",
			UserID:  user.ID,
		}
		if err := s.store.CreateNotification(ctx, &welcome); err != nil {
			return fmt.Errorf("seed notification: %w", err)
		}
	}
	return nil
}

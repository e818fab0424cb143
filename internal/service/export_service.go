package service

import (
	"context"
	"time"

	"dayboard/internal/models"
	"dayboard/internal/repository"
)

// ExportService produces and consumes account snapshots.
type ExportService struct {
	users  repository.UserRepository
	events repository.EventRepository
	tasks  repository.TaskRepository
	notes  repository.NoteRepository
}

// ExportBundle is a portable snapshot of one account's data. File metadata is
// deliberately excluded: the bytes on disk would not survive the round trip.
type ExportBundle struct {
	ExportDate time.Time      `json:"export_date"`
	UserID     uint           `json:"user_id"`
	Events     []models.Event `json:"events"`
	Tasks      []models.Task  `json:"tasks"`
	Notes      []models.Note  `json:"notes"`
}

// ImportReport summarizes a bundle import. Failed records are skipped, not
// fatal; the rest of the bundle still lands.
type ImportReport struct {
	Imported int `json:"imported"`
	Failed   int `json:"errors"`
}

func NewExportService(users repository.UserRepository, events repository.EventRepository,
	tasks repository.TaskRepository, notes repository.NoteRepository) *ExportService {
	return &ExportService{users: users, events: events, tasks: tasks, notes: notes}
}

func (s *ExportService) Export(ctx context.Context, ownerID uint) (*ExportBundle, error) {
	if _, err := s.users.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}
	events, err := s.events.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	notes, err := s.notes.List(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	return &ExportBundle{
		ExportDate: time.Now().UTC(),
		UserID:     ownerID,
		Events:     events,
		Tasks:      tasks,
		Notes:      notes,
	}, nil
}

// Import replays a bundle into ownerID's account. Identifiers from the bundle
// are discarded; every record is created fresh under the importing user.
func (s *ExportService) Import(ctx context.Context, ownerID uint, bundle *ExportBundle) (*ImportReport, error) {
	if bundle == nil {
		return nil, models.NewValidationError("Import data is required")
	}
	if len(bundle.Events) == 0 && len(bundle.Tasks) == 0 && len(bundle.Notes) == 0 {
		return nil, models.NewValidationError("Import data contains no records")
	}

	report := &ImportReport{}
	tally := func(err error) {
		if err != nil {
			report.Failed++
		} else {
			report.Imported++
		}
	}

	for i := range bundle.Events {
		event := bundle.Events[i]
		tally(s.events.Create(ctx, ownerID, &event))
	}
	for i := range bundle.Tasks {
		task := bundle.Tasks[i]
		tally(s.tasks.Create(ctx, ownerID, &task))
	}
	for i := range bundle.Notes {
		note := bundle.Notes[i]
		tally(s.notes.Create(ctx, ownerID, &note))
	}

	return report, nil
}

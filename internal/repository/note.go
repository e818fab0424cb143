package repository

import (
	"context"

	"dayboard/internal/cache"
	"dayboard/internal/models"
	"dayboard/internal/storage"
)

// NoteRepository defines persistence operations for notes.
type NoteRepository interface {
	Create(ctx context.Context, ownerID uint, note *models.Note) error
	List(ctx context.Context, ownerID uint) ([]models.Note, error)
	Get(ctx context.Context, id, ownerID uint) (*models.Note, error)
	Update(ctx context.Context, id, ownerID uint, patch storage.NotePatch) (*models.Note, error)
	Delete(ctx context.Context, id, ownerID uint) error
}

type noteRepository struct {
	store storage.Store
}

// NewNoteRepository returns a new NoteRepository implementation.
func NewNoteRepository(store storage.Store) NoteRepository {
	return &noteRepository{store: store}
}

func (r *noteRepository) Create(ctx context.Context, ownerID uint, note *models.Note) error {
	if note.Title == "" {
		return models.NewValidationError("Title is required")
	}

	note.ID = 0
	note.UserID = ownerID
	if err := r.store.CreateNote(ctx, note); err != nil {
		return observe("notes", err)
	}
	cache.Invalidate(ctx, cache.StatsKey(ownerID))
	return nil
}

func (r *noteRepository) List(ctx context.Context, ownerID uint) ([]models.Note, error) {
	notes, err := r.store.ListNotes(ctx, ownerID)
	if err != nil {
		return nil, observe("notes", err)
	}
	return notes, nil
}

func (r *noteRepository) Get(ctx context.Context, id, ownerID uint) (*models.Note, error) {
	note, err := r.store.GetNote(ctx, id, ownerID)
	if err != nil {
		return nil, observe("notes", err)
	}
	return note, nil
}

func (r *noteRepository) Update(ctx context.Context, id, ownerID uint, patch storage.NotePatch) (*models.Note, error) {
	if patch.IsEmpty() {
		return nil, models.NewValidationError("No fields to update")
	}
	if patch.Title != nil && *patch.Title == "" {
		return nil, models.NewValidationError("Title cannot be empty")
	}

	matched, err := r.store.UpdateNote(ctx, id, ownerID, patch)
	if err != nil {
		return nil, observe("notes", err)
	}
	if matched == 0 {
		return nil, models.NewNotFoundError("Note")
	}
	return r.Get(ctx, id, ownerID)
}

func (r *noteRepository) Delete(ctx context.Context, id, ownerID uint) error {
	matched, err := r.store.DeleteNote(ctx, id, ownerID)
	if err != nil {
		return observe("notes", err)
	}
	if matched == 0 {
		return models.NewNotFoundError("Note")
	}
	cache.Invalidate(ctx, cache.StatsKey(ownerID))
	return nil
}

package repository

import (
	"context"

	"dayboard/internal/cache"
	"dayboard/internal/models"
	"dayboard/internal/storage"
)

// FileRepository defines persistence operations for upload metadata.
type FileRepository interface {
	Create(ctx context.Context, ownerID uint, file *models.File) error
	List(ctx context.Context, ownerID uint) ([]models.File, error)
	Get(ctx context.Context, id, ownerID uint) (*models.File, error)
	Delete(ctx context.Context, id, ownerID uint) (*models.File, error)
}

type fileRepository struct {
	store storage.Store
}

// NewFileRepository returns a new FileRepository implementation.
func NewFileRepository(store storage.Store) FileRepository {
	return &fileRepository{store: store}
}

func (r *fileRepository) Create(ctx context.Context, ownerID uint, file *models.File) error {
	if file.Filename == "" || file.Path == "" {
		return models.NewValidationError("Filename and path are required")
	}

	file.ID = 0
	file.UserID = ownerID
	if err := r.store.CreateFile(ctx, file); err != nil {
		return observe("files", err)
	}
	cache.Invalidate(ctx, cache.StatsKey(ownerID))
	return nil
}

func (r *fileRepository) List(ctx context.Context, ownerID uint) ([]models.File, error) {
	files, err := r.store.ListFiles(ctx, ownerID)
	if err != nil {
		return nil, observe("files", err)
	}
	return files, nil
}

func (r *fileRepository) Get(ctx context.Context, id, ownerID uint) (*models.File, error) {
	file, err := r.store.GetFile(ctx, id, ownerID)
	if err != nil {
		return nil, observe("files", err)
	}
	return file, nil
}

// Delete removes the metadata record and returns it so the caller can unlink
// the bytes on disk.
func (r *fileRepository) Delete(ctx context.Context, id, ownerID uint) (*models.File, error) {
	file, err := r.Get(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	matched, err := r.store.DeleteFile(ctx, id, ownerID)
	if err != nil {
		return nil, observe("files", err)
	}
	if matched == 0 {
		return nil, models.NewNotFoundError("File")
	}
	cache.Invalidate(ctx, cache.StatsKey(ownerID))
	return file, nil
}

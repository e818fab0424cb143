package server

import (
	"fmt"
	"os"
	"path/filepath"

	"dayboard/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// maxUploadSize caps a single upload at 10 MB.
const maxUploadSize = 10 << 20

// UploadFile handles POST /api/upload. The bytes land on disk under the
// configured upload directory; the store only tracks metadata.
func (s *Server) UploadFile(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return models.RespondWithError(c, models.NewValidationError("No file uploaded"))
	}
	if file.Size > maxUploadSize {
		return models.RespondWithError(c, models.NewValidationError("File exceeds the 10MB limit"))
	}

	if err := os.MkdirAll(s.config.UploadDir, 0o755); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	// Stored name is unique and never derived from client input.
	stored := fmt.Sprintf("%s%s", uuid.New().String(), filepath.Ext(file.Filename))
	path := filepath.Join(s.config.UploadDir, stored)
	if err := c.SaveFile(file, path); err != nil {
		return models.RespondWithError(c, models.NewInternalError(err))
	}

	record := &models.File{
		Filename:     stored,
		OriginalName: file.Filename,
		Path:         path,
		Size:         file.Size,
		MimeType:     file.Header.Get("Content-Type"),
	}
	if err := s.fileRepo.Create(c.UserContext(), currentUserID(c), record); err != nil {
		_ = os.Remove(path)
		return models.RespondWithError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(record)
}

// ListFiles handles GET /api/files.
func (s *Server) ListFiles(c *fiber.Ctx) error {
	files, err := s.fileRepo.List(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(files)
}

// DownloadFile handles GET /api/files/:id/download.
func (s *Server) DownloadFile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	file, err := s.fileRepo.Get(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.Download(file.Path, file.OriginalName)
}

// DeleteFile handles DELETE /api/files/:id. The metadata record goes first;
// a leftover on disk is preferable to a dangling record.
func (s *Server) DeleteFile(c *fiber.Ctx) error {
	id, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	file, err := s.fileRepo.Delete(c.UserContext(), id, currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	_ = os.Remove(file.Path)
	return c.JSON(fiber.Map{"message": "File deleted successfully"})
}

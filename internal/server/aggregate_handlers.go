package server

import (
	"strings"

	"dayboard/internal/models"
	"dayboard/internal/service"

	"github.com/gofiber/fiber/v2"
)

// Search handles GET /api/search?q=term&type=events|tasks|notes. Without a
// type filter every collection is searched; type accepts a comma-separated
// list.
func (s *Server) Search(c *fiber.Ctx) error {
	var collections []string
	if t := c.Query("type"); t != "" {
		collections = strings.Split(t, ",")
	}

	results, err := s.searchService.Search(c.UserContext(), currentUserID(c), c.Query("q"), collections)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(results)
}

// Stats handles GET /api/stats.
func (s *Server) Stats(c *fiber.Ctx) error {
	stats, err := s.statsService.Stats(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(stats)
}

// Export handles GET /api/export.
func (s *Server) Export(c *fiber.Ctx) error {
	bundle, err := s.exportService.Export(c.UserContext(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, err)
	}
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="dayboard-export.json"`)
	return c.JSON(bundle)
}

// Import handles POST /api/import.
func (s *Server) Import(c *fiber.Ctx) error {
	var bundle service.ExportBundle
	if err := c.BodyParser(&bundle); err != nil {
		return models.RespondWithError(c, models.NewValidationError("Invalid import data"))
	}

	report, err := s.exportService.Import(c.UserContext(), currentUserID(c), &bundle)
	if err != nil {
		return models.RespondWithError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":  "Import completed",
		"imported": report.Imported,
		"errors":   report.Failed,
	})
}

package server

import (
	"encoding/json"
	"fmt"
	"time"

	"dayboard/internal/cache"
	"dayboard/internal/models"

	"github.com/gofiber/fiber/v2"
)

// feedTimeout bounds the upstream fetch so a slow blog host cannot pin
// request goroutines.
const feedTimeout = 10 * time.Second

// BlogFeed handles GET /api/feed. It proxies the configured blog feed so
// browser clients avoid CORS problems, caching the upstream response.
func (s *Server) BlogFeed(c *fiber.Ctx) error {
	if s.config.FeedURL == "" {
		return models.RespondWithError(c, models.NewNotFoundError("Feed"))
	}

	var feed json.RawMessage
	err := cache.Aside(c.UserContext(), cache.FeedKey, &feed, cache.FeedTTL, func() error {
		agent := fiber.Get(s.config.FeedURL).Timeout(feedTimeout)
		status, body, errs := agent.Bytes()
		if len(errs) > 0 {
			return models.NewBackendUnavailableError(errs[0])
		}
		if status != fiber.StatusOK {
			return models.NewBackendUnavailableError(fmt.Errorf("feed upstream returned %d", status))
		}
		if !json.Valid(body) {
			return models.NewBackendUnavailableError(fmt.Errorf("feed upstream returned non-JSON body"))
		}
		feed = json.RawMessage(body)
		return nil
	})
	if err != nil {
		return models.RespondWithError(c, err)
	}

	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(feed)
}

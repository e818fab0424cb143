package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"dayboard/internal/middleware"
	"dayboard/internal/models"
	"dayboard/internal/storage"
)

// SearchService fans a query out across the searchable collections.
type SearchService struct {
	store storage.Store
}

// Searchable collection names accepted as search targets.
const (
	CollectionEvents = "events"
	CollectionTasks  = "tasks"
	CollectionNotes  = "notes"
)

// SearchResults groups matches per collection. A collection that failed shows
// up empty with its error code under Failures; the other groups are still
// served.
type SearchResults struct {
	Query    string            `json:"query"`
	Events   []models.Event    `json:"events"`
	Tasks    []models.Task     `json:"tasks"`
	Notes    []models.Note     `json:"notes"`
	Failures map[string]string `json:"failures,omitempty"`
}

func NewSearchService(store storage.Store) *SearchService {
	return &SearchService{store: store}
}

// Search runs one search per requested collection concurrently and joins
// before returning. An empty collections list means all three. Results never
// mix owners: every branch is scoped to ownerID.
func (s *SearchService) Search(ctx context.Context, ownerID uint, query string, collections []string) (*SearchResults, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}

	targets, err := resolveTargets(collections)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	defer func() {
		middleware.FanoutLatency.WithLabelValues("search").Observe(time.Since(start).Seconds())
	}()

	results := &SearchResults{
		Query:  query,
		Events: []models.Event{},
		Tasks:  []models.Task{},
		Notes:  []models.Note{},
	}

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		failures = map[string]string{}
	)

	fail := func(collection string, err error) {
		mu.Lock()
		failures[collection] = models.ErrorCode(err)
		mu.Unlock()
		middleware.Logger.WarnContext(ctx, "search branch failed",
			"collection", collection, "error", err)
	}

	if targets[CollectionEvents] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			events, err := s.store.SearchEvents(ctx, ownerID, query)
			if err != nil {
				fail(CollectionEvents, err)
				return
			}
			results.Events = events
		}()
	}
	if targets[CollectionTasks] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tasks, err := s.store.SearchTasks(ctx, ownerID, query)
			if err != nil {
				fail(CollectionTasks, err)
				return
			}
			results.Tasks = tasks
		}()
	}
	if targets[CollectionNotes] {
		wg.Add(1)
		go func() {
			defer wg.Done()
			notes, err := s.store.SearchNotes(ctx, ownerID, query)
			if err != nil {
				fail(CollectionNotes, err)
				return
			}
			results.Notes = notes
		}()
	}
	wg.Wait()

	if len(failures) > 0 {
		results.Failures = failures
	}
	return results, nil
}

// resolveTargets normalizes the requested collection names. Empty input means
// every searchable collection; an unknown name is a validation error.
func resolveTargets(collections []string) (map[string]bool, error) {
	targets := map[string]bool{}
	for _, name := range collections {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		switch name {
		case CollectionEvents, CollectionTasks, CollectionNotes:
			targets[name] = true
		default:
			return nil, models.NewValidationError("Search type must be events, tasks, or notes")
		}
	}
	if len(targets) == 0 {
		targets[CollectionEvents] = true
		targets[CollectionTasks] = true
		targets[CollectionNotes] = true
	}
	return targets, nil
}

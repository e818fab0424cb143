package service

import (
	"context"
	"math"
	"sync"
	"time"

	"dayboard/internal/cache"
	"dayboard/internal/middleware"
	"dayboard/internal/storage"
)

// StatsService aggregates per-user counts across collections.
type StatsService struct {
	store storage.Store
}

// Stats is the per-user dashboard summary. CompletionRate is a whole
// percentage, rounded half away from zero; it is 0 when there are no tasks.
type Stats struct {
	Events         int64 `json:"events"`
	Tasks          int64 `json:"tasks"`
	CompletedTasks int64 `json:"completed_tasks"`
	Notes          int64 `json:"notes"`
	CompletionRate int   `json:"completion_rate"`
}

func NewStatsService(store storage.Store) *StatsService {
	return &StatsService{store: store}
}

// Stats runs the four counts concurrently and joins before computing the
// completion rate. Unlike search, a single failed count fails the whole
// request: a partial dashboard summary would be misleading.
func (s *StatsService) Stats(ctx context.Context, ownerID uint) (*Stats, error) {
	var stats Stats
	err := cache.Aside(ctx, cache.StatsKey(ownerID), &stats, cache.StatsTTL, func() error {
		start := time.Now()
		defer func() {
			middleware.FanoutLatency.WithLabelValues("stats").Observe(time.Since(start).Seconds())
		}()

		var wg sync.WaitGroup
		errs := make([]error, 4)

		wg.Add(4)
		go func() {
			defer wg.Done()
			stats.Events, errs[0] = s.store.CountEvents(ctx, ownerID)
		}()
		go func() {
			defer wg.Done()
			stats.Tasks, errs[1] = s.store.CountTasks(ctx, ownerID, false)
		}()
		go func() {
			defer wg.Done()
			stats.CompletedTasks, errs[2] = s.store.CountTasks(ctx, ownerID, true)
		}()
		go func() {
			defer wg.Done()
			stats.Notes, errs[3] = s.store.CountNotes(ctx, ownerID)
		}()
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return err
			}
		}

		stats.CompletionRate = completionRate(stats.CompletedTasks, stats.Tasks)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &stats, nil
}

func completionRate(completed, total int64) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(completed) / float64(total) * 100))
}

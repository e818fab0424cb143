// Package surreal implements the store contract against a hosted SurrealDB
// instance over its websocket RPC client.
//
// Record ids carry the numeric identifier (`events:42`); a per-collection
// counter record hands out the next number. The client API has no context
// support, so every call runs under a local deadline and reports
// BACKEND_TIMEOUT when it elapses — an aggregator fan-in above this adapter
// never hangs on a stuck connection.
package surreal

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"dayboard/internal/config"
	"dayboard/internal/models"
	"dayboard/internal/storage"

	surrealdb "github.com/surrealdb/surrealdb.go"
	"github.com/surrealdb/surrealdb.go/pkg/marshal"
)

// DefaultTimeout bounds every backend call.
const DefaultTimeout = 5 * time.Second

var _ storage.Store = (*Store)(nil)

// Store is a hosted SurrealDB implementation of storage.Store.
type Store struct {
	db      *surrealdb.DB
	timeout time.Duration
}

// Open connects and authenticates against the configured SurrealDB endpoint.
func Open(cfg *config.Config) (*Store, error) {
	db, err := surrealdb.New(cfg.SurrealURL)
	if err != nil {
		return nil, models.NewBackendUnavailableError(err)
	}
	if _, err := db.Signin(map[string]any{"user": cfg.SurrealUser, "pass": cfg.SurrealPass}); err != nil {
		return nil, models.NewBackendUnavailableError(err)
	}
	if _, err := db.Use(cfg.SurrealNS, cfg.SurrealDB); err != nil {
		return nil, models.NewBackendUnavailableError(err)
	}

	s := &Store{db: db, timeout: DefaultTimeout}

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	if err := s.defineIndexes(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// defineIndexes pins account uniqueness to the backend. The database rejects
// the second of two concurrent registrations; any pre-check above this layer
// is only a fast path.
func (s *Store) defineIndexes(ctx context.Context) error {
	_, err := s.query(ctx,
		`DEFINE INDEX users_username ON TABLE users COLUMNS username UNIQUE;
		 DEFINE INDEX users_email ON TABLE users COLUMNS email UNIQUE`, nil)
	return err
}

// isIndexViolation reports whether err carries a SurrealDB unique index
// violation ("Database index `users_username` already contains ...").
func isIndexViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "already contains")
}

func (s *Store) Ping(ctx context.Context) error {
	_, err := s.query(ctx, "RETURN 1", nil)
	return err
}

func (s *Store) Close() error {
	s.db.Close()
	return nil
}

// query runs a SurrealQL statement under the store's deadline.
func (s *Store) query(ctx context.Context, sql string, vars map[string]any) (any, error) {
	type outcome struct {
		res any
		err error
	}
	ch := make(chan outcome, 1)
	go func() {
		res, err := s.db.Query(sql, vars)
		ch <- outcome{res, err}
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, models.NewBackendTimeoutError(ctx.Err())
	case <-timer.C:
		return nil, models.NewBackendTimeoutError(fmt.Errorf("query exceeded %s", s.timeout))
	case o := <-ch:
		if o.err != nil {
			return nil, models.NewBackendUnavailableError(o.err)
		}
		return o.res, nil
	}
}

// queryRows runs sql and unmarshals the first statement's result set.
func queryRows[T any](s *Store, ctx context.Context, sql string, vars map[string]any) ([]T, error) {
	res, err := s.query(ctx, sql, vars)
	if err != nil {
		return nil, err
	}
	var raw []marshal.RawQuery[[]T]
	if err := marshal.UnmarshalRaw(res, &raw); err != nil {
		return nil, models.NewInternalError(err)
	}
	if len(raw) == 0 {
		return nil, nil
	}
	return raw[0].Result, nil
}

// nextID increments the collection's counter record and returns the new
// value. SurrealDB serializes writes to a single record, so concurrent
// inserts never observe the same number.
func (s *Store) nextID(ctx context.Context, collection string) (uint, error) {
	type counterRow struct {
		Value uint `json:"value"`
	}
	rows, err := queryRows[counterRow](s, ctx,
		"UPDATE type::thing('counter', $tb) SET value += 1 RETURN AFTER",
		map[string]any{"tb": collection})
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, models.NewInternalError(fmt.Errorf("counter update for %s returned no rows", collection))
	}
	return rows[0].Value, nil
}

// recordID parses the numeric suffix of a SurrealDB record id like
// "events:42" (or "events:⟨42⟩").
func recordID(id string) uint {
	_, num, ok := strings.Cut(id, ":")
	if !ok {
		return 0
	}
	num = strings.Trim(num, "⟨⟩`")
	n, err := strconv.ParseUint(num, 10, 32)
	if err != nil {
		return 0
	}
	return uint(n)
}

func lowerTerm(term string) string {
	return strings.ToLower(term)
}

func thing(collection string, id uint) map[string]any {
	return map[string]any{"tb": collection, "id": id}
}

func (s *Store) ownerExists(ctx context.Context, ownerID uint) error {
	rows, err := queryRows[userRow](s, ctx,
		"SELECT * FROM type::thing('users', $id)", map[string]any{"id": ownerID})
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		return models.NewValidationError("Unknown owner")
	}
	return nil
}

// count runs a grouped count over a collection for one owner.
func (s *Store) count(ctx context.Context, sql string, vars map[string]any) (int64, error) {
	type countRow struct {
		Count int64 `json:"count"`
	}
	rows, err := queryRows[countRow](s, ctx, sql, vars)
	if err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Count, nil
}

// affected runs a statement and reports how many records it touched.
func (s *Store) affected(ctx context.Context, sql string, vars map[string]any) (int64, error) {
	rows, err := queryRows[map[string]any](s, ctx, sql, vars)
	if err != nil {
		return 0, err
	}
	return int64(len(rows)), nil
}

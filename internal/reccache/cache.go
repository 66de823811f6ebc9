package reccache

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/yu-a0/discovery-engine-suite/internal/logging"
)

// Store persists recommendation lists by decimal entity id.
type Store interface {
	Get(ctx context.Context, entityID string) ([]json.RawMessage, bool, error)
	Put(ctx context.Context, entityID string, records []json.RawMessage) error
}

// Admin exposes the maintenance operations used by `discover cache`.
type Admin interface {
	Keys(ctx context.Context) ([]string, error)
	Delete(ctx context.Context, entityID string) (bool, error)
	Clear(ctx context.Context) error
}

// Backend is a Store that can also be administered and released.
type Backend interface {
	Store
	Admin
	// Location describes where entries live, for display.
	Location() string
	Close() error
}

// Fetcher retrieves a recommendation list from upstream on a cache miss.
type Fetcher func(ctx context.Context) ([]json.RawMessage, error)

// Cache wraps a Store with get-or-fetch semantics.
type Cache struct {
	store  Store
	logger *slog.Logger
}

// New returns a Cache over store.
func New(store Store, logger *slog.Logger) *Cache {
	return &Cache{
		store:  store,
		logger: logging.NewComponentLogger(logger, "reccache"),
	}
}

// Key formats an entity id the way every backend stores it.
func Key(entityID int64) string {
	return strconv.FormatInt(entityID, 10)
}

// GetOrFetch returns the cached list for entityID, calling fetch and storing
// its result on a miss. Fetch errors are returned and nothing is stored. A
// backend read or write failure is logged and does not hide fresh results.
func (c *Cache) GetOrFetch(ctx context.Context, entityID int64, fetch Fetcher) ([]json.RawMessage, error) {
	key := Key(entityID)

	records, found, err := c.store.Get(ctx, key)
	if err != nil {
		logging.WarnWithContext(c.logger, "recommendation cache read failed",
			"reccache_read_failed",
			logging.String("entity_id", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "recommendations will be fetched again"))
	} else if found {
		c.logger.Debug("recommendation cache hit",
			logging.String("entity_id", key),
			logging.Int("records", len(records)))
		return records, nil
	}

	records, err = fetch(ctx)
	if err != nil {
		return nil, err
	}
	if records == nil {
		records = []json.RawMessage{}
	}

	if err := c.store.Put(ctx, key, records); err != nil {
		logging.WarnWithContext(c.logger, "recommendation cache write failed",
			"reccache_write_failed",
			logging.String("entity_id", key),
			logging.Error(err),
			logging.String(logging.FieldImpact, "the next lookup will call TMDB again"))
		return records, nil
	}
	c.logger.Debug("recommendation cache stored",
		logging.String("entity_id", key),
		logging.Int("records", len(records)))
	return records, nil
}

func cloneRecords(records []json.RawMessage) []json.RawMessage {
	out := make([]json.RawMessage, len(records))
	for i, rec := range records {
		out[i] = append(json.RawMessage(nil), rec...)
	}
	return out
}

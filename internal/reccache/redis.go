package reccache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
)

const scanBatch = 100

// RedisOptions addresses the Redis instance and key namespace.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// RedisStore keeps one string key per entity id under Prefix.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *slog.Logger
}

// OpenRedis connects and pings the server so a bad address fails early.
func OpenRedis(ctx context.Context, opts RedisOptions, logger *slog.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, services.Wrap(services.ErrUpstreamUnavailable, "reccache", "redis ping", opts.Addr, err)
	}
	return &RedisStore{
		client: client,
		prefix: opts.Prefix,
		logger: logging.NewComponentLogger(logger, "reccache"),
	}, nil
}

func (r *RedisStore) key(entityID string) string {
	return r.prefix + entityID
}

func (r *RedisStore) Get(ctx context.Context, entityID string) ([]json.RawMessage, bool, error) {
	payload, err := r.client.Get(ctx, r.key(entityID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, services.Wrap(services.ErrUpstreamUnavailable, "reccache", "redis get", entityID, err)
	}

	var records []json.RawMessage
	if err := json.Unmarshal(payload, &records); err != nil {
		logging.WarnWithContext(r.logger, "ignoring malformed cached recommendations",
			"reccache_load_failed",
			logging.String("entity_id", entityID),
			logging.Error(services.Wrap(services.ErrMalformedCache, "reccache", "redis get", entityID, err)),
			logging.String(logging.FieldImpact, "recommendations will be fetched again and the key replaced"))
		return nil, false, nil
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, true, nil
}

func (r *RedisStore) Put(ctx context.Context, entityID string, records []json.RawMessage) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode recommendations: %w", err)
	}
	if err := r.client.Set(ctx, r.key(entityID), payload, 0).Err(); err != nil {
		return services.Wrap(services.ErrUpstreamUnavailable, "reccache", "redis set", entityID, err)
	}
	return nil
}

func (r *RedisStore) Keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := r.client.Scan(ctx, 0, r.prefix+"*", scanBatch).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, strings.TrimPrefix(iter.Val(), r.prefix))
	}
	if err := iter.Err(); err != nil {
		return nil, services.Wrap(services.ErrUpstreamUnavailable, "reccache", "redis scan", r.prefix, err)
	}
	sort.Strings(keys)
	return keys, nil
}

func (r *RedisStore) Delete(ctx context.Context, entityID string) (bool, error) {
	n, err := r.client.Del(ctx, r.key(entityID)).Result()
	if err != nil {
		return false, services.Wrap(services.ErrUpstreamUnavailable, "reccache", "redis del", entityID, err)
	}
	return n > 0, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	keys, err := r.Keys(ctx)
	if err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, key := range keys {
		full[i] = r.key(key)
	}
	if err := r.client.Del(ctx, full...).Err(); err != nil {
		return services.Wrap(services.ErrUpstreamUnavailable, "reccache", "redis clear", r.prefix, err)
	}
	return nil
}

func (r *RedisStore) Location() string {
	return fmt.Sprintf("redis://%s/%d %s*", r.client.Options().Addr, r.client.Options().DB, r.prefix)
}

func (r *RedisStore) Close() error {
	return r.client.Close()
}

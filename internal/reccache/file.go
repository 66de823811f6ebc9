package reccache

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"sync"

	gojson "github.com/goccy/go-json"

	"github.com/yu-a0/discovery-engine-suite/internal/fileutil"
	"github.com/yu-a0/discovery-engine-suite/internal/logging"
	"github.com/yu-a0/discovery-engine-suite/internal/services"
)

// FileStore keeps every entry in one JSON object on disk, keyed by entity
// id. The document is read on first use and rewritten in full after every
// change while holding an advisory lock beside the file.
type FileStore struct {
	path    string
	logger  *slog.Logger
	mu      sync.RWMutex
	loaded  bool
	entries map[string][]json.RawMessage
}

// NewFileStore returns a store backed by path. The file is created lazily.
func NewFileStore(path string, logger *slog.Logger) *FileStore {
	return &FileStore{
		path:    path,
		logger:  logging.NewComponentLogger(logger, "reccache"),
		entries: make(map[string][]json.RawMessage),
	}
}

func (f *FileStore) Get(_ context.Context, entityID string) ([]json.RawMessage, bool, error) {
	f.ensureLoaded()

	f.mu.RLock()
	defer f.mu.RUnlock()
	records, ok := f.entries[entityID]
	if !ok {
		return nil, false, nil
	}
	return cloneRecords(records), true, nil
}

func (f *FileStore) Put(ctx context.Context, entityID string, records []json.RawMessage) error {
	return f.rewrite(ctx, func(entries map[string][]json.RawMessage) bool {
		entries[entityID] = cloneRecords(records)
		return true
	})
}

func (f *FileStore) Keys(context.Context) ([]string, error) {
	f.ensureLoaded()

	f.mu.RLock()
	defer f.mu.RUnlock()
	keys := make([]string, 0, len(f.entries))
	for key := range f.entries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys, nil
}

func (f *FileStore) Delete(ctx context.Context, entityID string) (bool, error) {
	removed := false
	err := f.rewrite(ctx, func(entries map[string][]json.RawMessage) bool {
		if _, ok := entries[entityID]; !ok {
			return false
		}
		delete(entries, entityID)
		removed = true
		return true
	})
	return removed, err
}

func (f *FileStore) Clear(ctx context.Context) error {
	return f.rewrite(ctx, func(entries map[string][]json.RawMessage) bool {
		for key := range entries {
			delete(entries, key)
		}
		return true
	})
}

func (f *FileStore) Location() string { return f.path }

func (f *FileStore) Close() error { return nil }

func (f *FileStore) ensureLoaded() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loaded {
		return
	}
	f.entries = f.readDocument()
	f.loaded = true
}

// rewrite re-reads the document under the file lock, applies mutate, and
// writes the result back when mutate reports a change. Entries another
// process stored since our first read are kept.
func (f *FileStore) rewrite(ctx context.Context, mutate func(map[string][]json.RawMessage) bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	return fileutil.WithLock(ctx, f.path, func() error {
		entries := f.readDocument()
		if !mutate(entries) {
			f.entries = entries
			f.loaded = true
			return nil
		}
		data, err := gojson.Marshal(entries)
		if err != nil {
			return fmt.Errorf("encode cache document: %w", err)
		}
		if err := fileutil.WriteFileAtomic(f.path, data, 0o644); err != nil {
			return fmt.Errorf("persist cache: %w", err)
		}
		f.entries = entries
		f.loaded = true
		return nil
	})
}

// readDocument returns the on-disk entries. A missing file is an empty cache;
// an unreadable or malformed one is logged and also treated as empty.
func (f *FileStore) readDocument() map[string][]json.RawMessage {
	entries := make(map[string][]json.RawMessage)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			f.warnLoad(fmt.Errorf("read cache file: %w", err))
		}
		return entries
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return entries
	}
	if err := gojson.Unmarshal(data, &entries); err != nil {
		f.warnLoad(services.Wrap(services.ErrMalformedCache, "reccache", "load", f.path, err))
		return make(map[string][]json.RawMessage)
	}
	if entries == nil {
		entries = make(map[string][]json.RawMessage)
	}
	return entries
}

func (f *FileStore) warnLoad(err error) {
	logging.WarnWithContext(f.logger, "failed to load recommendation cache",
		"reccache_load_failed",
		logging.String("path", f.path),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "cache will start empty; the file is replaced on the next save"),
		logging.String(logging.FieldImpact, "previously cached recommendations will be fetched again"))
}

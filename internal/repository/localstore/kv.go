package localstore

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// KV is a file-backed JSON key-value store. The whole map lives in memory
// once loaded; every successful write serializes it back to disk. It is a
// single-process persistence primitive: the mutex covers concurrent
// handlers, nothing more.
type KV struct {
	path   string
	logger *zap.Logger

	mu     sync.Mutex
	cache  map[string]json.RawMessage
	loaded bool
}

// NewKV creates a store persisting to the given file path. The file is read
// lazily on first access.
func NewKV(path string, logger *zap.Logger) *KV {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &KV{path: path, logger: logger}
}

// load reads the backing file into the cache. A missing or unparseable file
// is treated as "no stored data": the error is logged and the store starts
// from an empty map.
func (kv *KV) load() {
	if kv.loaded {
		return
	}
	kv.loaded = true
	kv.cache = make(map[string]json.RawMessage)

	data, err := os.ReadFile(kv.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			kv.logger.Warn("failed reading data file, starting empty", zap.String("path", kv.path), zap.Error(err))
		}
		return
	}

	if err := json.Unmarshal(data, &kv.cache); err != nil {
		kv.logger.Warn("data file is not valid JSON, starting empty", zap.String("path", kv.path), zap.Error(err))
		kv.cache = make(map[string]json.RawMessage)
	}
}

// flush serializes the cache to disk. Write failures are logged and
// swallowed: the in-memory state still advances and the next successful
// flush catches the file up.
func (kv *KV) flush() {
	data, err := json.MarshalIndent(kv.cache, "", "  ")
	if err != nil {
		kv.logger.Error("failed to serialize store", zap.Error(err))
		return
	}
	if dir := filepath.Dir(kv.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			kv.logger.Error("failed creating data directory", zap.String("dir", dir), zap.Error(err))
			return
		}
	}
	if err := os.WriteFile(kv.path, data, 0o600); err != nil {
		kv.logger.Error("failed writing data file", zap.String("path", kv.path), zap.Error(err))
	}
}

// Read returns the value stored under key, or seeds the key with def and
// returns def when the key is absent or its stored value fails to parse.
func Read[T any](kv *KV, key string, def T) T {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.load()

	raw, ok := kv.cache[key]
	if ok {
		var value T
		if err := json.Unmarshal(raw, &value); err == nil {
			return value
		}
		kv.logger.Warn("stored value failed to parse, resetting to default", zap.String("key", key))
	}

	kv.setLocked(key, def)
	return def
}

// Write replaces the value stored under key.
func Write[T any](kv *KV, key string, value T) {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.load()
	kv.setLocked(key, value)
}

// Update applies fn to the previous value (or def when none is stored) and
// persists the result. The store lock is held for the whole read-modify-write
// so rapid sequential updates never race each other.
func Update[T any](kv *KV, key string, def T, fn func(T) T) T {
	kv.mu.Lock()
	defer kv.mu.Unlock()
	kv.load()

	prev := def
	if raw, ok := kv.cache[key]; ok {
		if err := json.Unmarshal(raw, &prev); err != nil {
			kv.logger.Warn("stored value failed to parse, updating from default", zap.String("key", key))
			prev = def
		}
	}

	next := fn(prev)
	kv.setLocked(key, next)
	return next
}

func (kv *KV) setLocked(key string, value any) {
	raw, err := json.Marshal(value)
	if err != nil {
		kv.logger.Error("failed to serialize value", zap.String("key", key), zap.Error(err))
		return
	}
	kv.cache[key] = raw
	kv.flush()
}

// Path returns the backing file location.
func (kv *KV) Path() string {
	return kv.path
}

package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/soundprediction/go-domainprompts/pkg/llm"
)

// RenderEntry is a cached prompt render.
type RenderEntry struct {
	TemplateSet string        `json:"template_set"`
	Source      string        `json:"source"`
	Domain      string        `json:"domain"`
	Fallback    bool          `json:"fallback"`
	Messages    []llm.Message `json:"messages"`
}

// RenderCache stores rendered prompts. Keys include the registry generation,
// so any registration or alias change invalidates earlier entries.
type RenderCache struct {
	store  Cache
	ttl    time.Duration
	logger *slog.Logger
}

// NewRenderCache wraps store. Entries expire after ttl.
func NewRenderCache(store Cache, ttl time.Duration, logger *slog.Logger) *RenderCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &RenderCache{store: store, ttl: ttl, logger: logger}
}

// RenderKey derives the cache key of a render request. Map keys are encoded
// in sorted order, so equal contexts hash equally.
func RenderKey(generation uint64, family, operation string, context map[string]interface{}) (string, error) {
	payload, err := json.Marshal(context)
	if err != nil {
		return "", fmt.Errorf("failed to encode render context: %w", err)
	}
	h := sha256.New()
	fmt.Fprintf(h, "%d\x00%s\x00%s\x00", generation, family, operation)
	h.Write(payload)
	return "render:" + hex.EncodeToString(h.Sum(nil)), nil
}

// Get returns the entry for key. Misses and decode failures both report false.
func (c *RenderCache) Get(key string) (*RenderEntry, bool) {
	data, err := c.store.Get(key)
	if err != nil {
		if !errors.Is(err, ErrKeyNotFound) {
			c.logger.Warn("Render cache read failed", "key", key, "error", err)
		}
		return nil, false
	}
	var entry RenderEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		c.logger.Warn("Dropping undecodable render cache entry", "key", key, "error", err)
		_ = c.store.Delete(key)
		return nil, false
	}
	return &entry, true
}

// Put stores entry under key.
func (c *RenderCache) Put(key string, entry *RenderEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to encode render cache entry: %w", err)
	}
	if err := c.store.Set(key, data, c.ttl); err != nil {
		return fmt.Errorf("failed to write render cache entry: %w", err)
	}
	return nil
}

// Close closes the underlying store.
func (c *RenderCache) Close() error {
	return c.store.Close()
}

// Package cache stores answered queries so repeated questions skip the
// retrieval pipeline.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Cache is the answer cache interface.
type Cache interface {
	Get(key string) (value string, found bool, err error)
	Set(key string, value string, ttl time.Duration) error
	Delete(key string) error
	Clear() error
}

// Factory builds a cache from its config.
type Factory func(config Config) (Cache, error)

var registry = make(map[string]Factory)

// RegisterCache registers a cache implementation.
func RegisterCache(name string, factory Factory) {
	registry[name] = factory
}

// NewCache creates the configured cache. An empty type means memory.
func NewCache(config Config) (Cache, error) {
	name := config.Type
	if name == "" {
		name = "memory"
	}
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown cache type: %s", name)
	}
	return factory(config)
}

// Config holds cache settings.
type Config struct {
	// Type selects the implementation: "memory" or "redis".
	Type string
	// RedisAddr is the redis address (redis only).
	RedisAddr string
	// RedisPassword is the redis password (redis only).
	RedisPassword string
	// RedisDB is the redis database number (redis only).
	RedisDB int
	// DefaultTTL is the expiry applied when Set gets a zero ttl.
	DefaultTTL time.Duration
	// CleanupInterval is the expired-entry sweep period (memory only).
	CleanupInterval time.Duration
}

// DefaultConfig returns the standard cache settings.
func DefaultConfig() Config {
	return Config{
		Type:            "memory",
		DefaultTTL:      time.Hour * 24,
		CleanupInterval: time.Minute * 10,
	}
}

// GenerateCacheKey builds a stable key from a prefix and parts.
func GenerateCacheKey(prefix string, parts ...string) string {
	return strings.Join(append([]string{prefix}, parts...), ":")
}

// AnswerKey hashes a query and language into a cache key, so long or
// non-ASCII queries produce bounded keys.
func AnswerKey(userID, language, query string) string {
	sum := sha256.Sum256([]byte(query))
	return GenerateCacheKey("answer", userID, language, hex.EncodeToString(sum[:16]))
}

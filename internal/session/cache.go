// Package session manages the server-side lifetime of a console session:
// the resume cache that lets a returning browser tab pick up its navigation
// position, and the registry of live per-session applications.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/remails/console/model"
)

// Snapshot is the state needed to resume a session where it left off: the
// committed route and the history stack around it. The application state
// itself is not cached; loaders rebuild it on the resumed route.
type Snapshot struct {
	SessionID string               `json:"session_id"`
	FullPath  string               `json:"full_path"`
	Route     model.RouterState    `json:"route"`
	History   []model.HistoryEntry `json:"history"`
	Index     int                  `json:"index"`
	SavedAt   time.Time            `json:"saved_at"`
}

// ResumeCache stores session snapshots with a TTL.
// The key format is "resume:{sessionId}".
type ResumeCache interface {
	// Save stores a snapshot, replacing any previous one for the session.
	Save(ctx context.Context, snap Snapshot, ttl time.Duration) error

	// Load returns the snapshot for a session, if one exists and has not
	// expired.
	Load(ctx context.Context, sessionID string) (Snapshot, bool, error)

	// Drop removes the snapshot for a session.
	Drop(ctx context.Context, sessionID string) error

	// HealthCheck verifies the cache's backing connection.
	HealthCheck(ctx context.Context) error
}

// FormatResumeKey builds the standard resume cache key.
func FormatResumeKey(sessionID string) string {
	return fmt.Sprintf("resume:%s", sessionID)
}

// --- MemoryResumeCache ---

// MemoryResumeCache is an in-memory ResumeCache with TTL support. Suitable
// for testing and single-instance deployments.
type MemoryResumeCache struct {
	mu      sync.RWMutex
	entries map[string]*memSnapshot
}

type memSnapshot struct {
	snap      Snapshot
	expiresAt time.Time
}

// NewMemoryResumeCache creates a new in-memory resume cache.
func NewMemoryResumeCache() *MemoryResumeCache {
	return &MemoryResumeCache{entries: make(map[string]*memSnapshot)}
}

// Save stores a snapshot with TTL.
func (c *MemoryResumeCache) Save(_ context.Context, snap Snapshot, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[FormatResumeKey(snap.SessionID)] = &memSnapshot{
		snap:      snap,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// Load returns the snapshot for a session, honoring TTL.
func (c *MemoryResumeCache) Load(_ context.Context, sessionID string) (Snapshot, bool, error) {
	key := FormatResumeKey(sessionID)

	c.mu.RLock()
	entry, exists := c.entries[key]
	c.mu.RUnlock()

	if !exists {
		return Snapshot{}, false, nil
	}
	if time.Now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return Snapshot{}, false, nil
	}
	return entry.snap, true, nil
}

// Drop removes the snapshot for a session.
func (c *MemoryResumeCache) Drop(_ context.Context, sessionID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, FormatResumeKey(sessionID))
	return nil
}

// HealthCheck always succeeds for the in-memory cache.
func (c *MemoryResumeCache) HealthCheck(_ context.Context) error {
	return nil
}

// Len returns the number of entries (including expired ones). For testing.
func (c *MemoryResumeCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// --- RedisResumeCache ---

// RedisResumeCache is a Redis-backed ResumeCache with TTL.
type RedisResumeCache struct {
	client redis.Cmdable
}

// NewRedisResumeCache creates a new Redis-backed resume cache.
func NewRedisResumeCache(client redis.Cmdable) *RedisResumeCache {
	return &RedisResumeCache{client: client}
}

// Save stores a snapshot in Redis with TTL.
func (c *RedisResumeCache) Save(ctx context.Context, snap Snapshot, ttl time.Duration) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("marshal resume snapshot: %w", err)
	}

	key := FormatResumeKey(snap.SessionID)
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %q: %w", key, err)
	}
	return nil
}

// Load returns the snapshot for a session from Redis.
func (c *RedisResumeCache) Load(ctx context.Context, sessionID string) (Snapshot, bool, error) {
	key := FormatResumeKey(sessionID)

	raw, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return Snapshot{}, false, nil
	}
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("redis get %q: %w", key, err)
	}

	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return Snapshot{}, false, fmt.Errorf("unmarshal resume snapshot %q: %w", key, err)
	}
	return snap, true, nil
}

// Drop removes the snapshot for a session.
func (c *RedisResumeCache) Drop(ctx context.Context, sessionID string) error {
	key := FormatResumeKey(sessionID)
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}

// HealthCheck pings Redis.
func (c *RedisResumeCache) HealthCheck(ctx context.Context) error {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}

package kv

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"
)

type memEntry struct {
	value     []byte
	expiresAt *time.Time
}

// Memory is an in-memory KV implementation with the same error contract
// as the SQLite-backed store. It is used by tests and dry runs.
type Memory struct {
	mu   sync.RWMutex
	data map[string]memEntry
}

var _ KV = (*Memory)(nil)

// NewMemory creates an empty in-memory KV store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]memEntry)}
}

// Get retrieves and deserializes a value by key.
// Returns an error wrapping sql.ErrNoRows if the key does not exist.
// Expired entries are lazily deleted and treated as missing.
func (m *Memory) Get(ctx context.Context, key string, dest any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.data[key]
	if !ok || m.expired(entry) {
		delete(m.data, key)
		return fmt.Errorf("kv get %q: %w", key, sql.ErrNoRows)
	}

	if err := json.Unmarshal(entry.value, dest); err != nil {
		return fmt.Errorf("kv get %q unmarshal: %w", key, err)
	}

	return nil
}

// Set stores a value with no expiry.
func (m *Memory) Set(ctx context.Context, key string, value any) error {
	return m.set(key, value, nil)
}

// SetTTL stores a value that expires after the given duration.
func (m *Memory) SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error {
	expiresAt := time.Now().Add(ttl)
	return m.set(key, value, &expiresAt)
}

// Delete removes a key.
func (m *Memory) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Has returns whether a key exists (and is not expired).
func (m *Memory) Has(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if m.expired(entry) {
		delete(m.data, key)
		return false, nil
	}

	return true, nil
}

// ListKeys returns all non-expired keys in sorted order.
func (m *Memory) ListKeys(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	keys := make([]string, 0, len(m.data))
	for k, entry := range m.data {
		if m.expired(entry) {
			delete(m.data, k)
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys, nil
}

func (m *Memory) set(key string, value any, expiresAt *time.Time) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("kv set %q marshal: %w", key, err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = memEntry{value: raw, expiresAt: expiresAt}

	return nil
}

func (m *Memory) expired(entry memEntry) bool {
	return entry.expiresAt != nil && entry.expiresAt.Before(time.Now())
}

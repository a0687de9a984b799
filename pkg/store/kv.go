package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"
)

// ReloadKey is the key reload reasons are written under.
const ReloadKey = "TMReload"

// DefaultReloadTTL is how long a reload reason stays readable.
const DefaultReloadTTL = 24 * time.Hour

// SetValue stores value under key until ttl has passed.
func (s *Store) SetValue(ctx context.Context, key, value string, ttl time.Duration) error {
	expires := s.now().Add(ttl).Unix()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (key, value, expires_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, expires_at = excluded.expires_at
	`, key, value, expires)
	if err != nil {
		return fmt.Errorf("failed to set %q: %w", key, err)
	}
	return nil
}

// Value returns the live value stored under key. Expired entries read as
// missing.
func (s *Store) Value(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, `
		SELECT value FROM kv WHERE key = ? AND expires_at > ?
	`, key, s.now().Unix()).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get %q: %w", key, err)
	}
	return value, true, nil
}

// Purge deletes expired entries and returns how many were removed.
func (s *Store) Purge(ctx context.Context) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM kv WHERE expires_at <= ?`, s.now().Unix())
	if err != nil {
		return 0, fmt.Errorf("failed to purge: %w", err)
	}
	return res.RowsAffected()
}

// ReloadKV is a reload signal written to the key/value table, for hosts in
// another process that poll for rebuild requests.
type ReloadKV struct {
	store *Store
	ttl   time.Duration
}

// Reload returns a reload signal stored in s. A non-positive ttl uses
// DefaultReloadTTL.
func (s *Store) Reload(ttl time.Duration) *ReloadKV {
	if ttl <= 0 {
		ttl = DefaultReloadTTL
	}
	return &ReloadKV{store: s, ttl: ttl}
}

// Signal records reason as the latest reload request.
func (r *ReloadKV) Signal(reason string) error {
	return r.store.SetValue(context.Background(), ReloadKey, reason, r.ttl)
}

// Last returns the latest unexpired reload reason.
func (r *ReloadKV) Last(ctx context.Context) (string, bool, error) {
	return r.store.Value(ctx, ReloadKey)
}

// MemoryReload is an in-process reload signal. Reasons are delivered on C
// without blocking and kept in order for inspection.
type MemoryReload struct {
	C chan string

	mu      sync.Mutex
	history []string
}

// NewMemoryReload returns a signal whose channel buffers up to size
// pending reasons; further reasons are dropped from the channel but still
// recorded.
func NewMemoryReload(size int) *MemoryReload {
	return &MemoryReload{C: make(chan string, size)}
}

func (m *MemoryReload) Signal(reason string) error {
	m.mu.Lock()
	m.history = append(m.history, reason)
	m.mu.Unlock()
	select {
	case m.C <- reason:
	default:
	}
	return nil
}

// History returns every reason signalled so far.
func (m *MemoryReload) History() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.history...)
}

package settings

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/minjae-ko/chatmarks/internal/db"
)

// DefaultDebounce is how long the store waits after a mutation before
// writing dirty keys back to the database. Rapid successive mutations
// within this window are coalesced into a single physical write.
const DefaultDebounce = 300 * time.Millisecond

// Store persists JSON-valued settings keys in SQLite. Writes are
// debounced: callers mutate the in-memory cache synchronously and the
// store flushes dirty keys in the background. Durability is eventual,
// not immediate; Flush forces a write.
type Store struct {
	db    *db.DB
	delay time.Duration

	mu    sync.Mutex
	cache map[string]json.RawMessage
	dirty map[string]bool
	timer *time.Timer
}

// NewStore creates a Store and loads all existing keys into memory.
func NewStore(database *db.DB, delay time.Duration) (*Store, error) {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	s := &Store{
		db:    database,
		delay: delay,
		cache: make(map[string]json.RawMessage),
		dirty: make(map[string]bool),
	}
	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load() error {
	rows, err := s.db.Query("SELECT key, value FROM settings")
	if err != nil {
		return fmt.Errorf("loading settings: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return fmt.Errorf("scanning settings row: %w", err)
		}
		s.cache[key] = json.RawMessage(value)
	}
	return rows.Err()
}

// Get unmarshals the value stored under key into v. Returns false when
// the key has never been written.
func (s *Store) Get(key string, v any) (bool, error) {
	s.mu.Lock()
	raw, ok := s.cache[key]
	s.mu.Unlock()

	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return false, fmt.Errorf("unmarshalling setting %s: %w", key, err)
	}
	return true, nil
}

// Put stores v under key in memory and schedules a debounced write-back.
// The call returns before anything reaches disk.
func (s *Store) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling setting %s: %w", key, err)
	}

	s.mu.Lock()
	s.cache[key] = raw
	s.dirty[key] = true
	s.scheduleLocked()
	s.mu.Unlock()
	return nil
}

// scheduleLocked arms (or re-arms) the debounce timer. Caller holds mu.
func (s *Store) scheduleLocked() {
	if s.timer != nil {
		s.timer.Reset(s.delay)
		return
	}
	s.timer = time.AfterFunc(s.delay, func() {
		// Write-back is fire-and-forget; callers never block on it.
		_ = s.Flush(context.Background())
	})
}

// Flush writes all dirty keys to the database immediately. On failure
// the keys stay in the write-back set for the next flush.
func (s *Store) Flush(ctx context.Context) error {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	pending := make(map[string]json.RawMessage, len(s.dirty))
	for key := range s.dirty {
		pending[key] = s.cache[key]
	}
	s.dirty = make(map[string]bool)
	s.mu.Unlock()

	if len(pending) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		s.redirty(pending)
		return fmt.Errorf("starting settings flush: %w", err)
	}
	defer tx.Rollback()

	for key, raw := range pending {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO settings (key, value, updated_at) VALUES (?, ?, datetime('now'))
			ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
			key, string(raw),
		); err != nil {
			s.redirty(pending)
			return fmt.Errorf("writing setting %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		s.redirty(pending)
		return fmt.Errorf("committing settings flush: %w", err)
	}
	return nil
}

// redirty puts keys back into the write-back set after a failed flush,
// so the next flush retries them. The cached values stay as they are;
// a Put that raced the failed flush already holds the newer value.
func (s *Store) redirty(pending map[string]json.RawMessage) {
	s.mu.Lock()
	for key := range pending {
		s.dirty[key] = true
	}
	s.mu.Unlock()
}

// Close flushes pending writes and stops the debounce timer.
func (s *Store) Close() error {
	return s.Flush(context.Background())
}

// UpdatedAt reports when a key was last physically written, for
// diagnostics. Returns the zero time for unwritten keys.
func (s *Store) UpdatedAt(ctx context.Context, key string) (time.Time, error) {
	var ts string
	err := s.db.QueryRowContext(ctx, "SELECT updated_at FROM settings WHERE key = ?", key).Scan(&ts)
	if err == sql.ErrNoRows {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("reading settings timestamp: %w", err)
	}
	t, err := time.Parse(time.DateTime, ts)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing settings timestamp: %w", err)
	}
	return t, nil
}

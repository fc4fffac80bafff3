package macrolog

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/hyperengineering/macrolog/internal/store/migrations"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

const schemaVersion = "1"

// Persistent storage keys. The snapshot lives under one namespace key; the
// sync bookkeeping entries are independent of the snapshot schema and must
// survive restarts on their own.
const (
	keySnapshot        = "snapshot"
	keyLastLocalUpdate = "last-local-update-time"
	keyLastServerSync  = "last-server-sync-time"
	keySyncHistory     = "sync-history"
	keyCooldownUntil   = "sync-cooldown-until"
)

// syncHistoryCap bounds the stored sync attempt history to the most recent
// entries.
const syncHistoryCap = 30

// Store is the durable key-value surface backing the client: whole-snapshot
// persistence plus small bookkeeping entries, all in one local SQLite file.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	closed bool
	path   string
}

// NewStore opens or creates the local nutrition database.
func NewStore(path string) (*Store, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &Store{db: db, path: path}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate schema: %w", err)
	}

	return store, nil
}

func (s *Store) migrate() error {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("store: set goose dialect: %w", err)
	}
	if err := goose.Up(s.db, "."); err != nil {
		return fmt.Errorf("store: run migrations: %w", err)
	}

	// Set schema version if not set
	_, err := s.db.Exec(`
		INSERT OR IGNORE INTO metadata (key, value, updated_at) VALUES ('schema_version', ?, ?)
	`, schemaVersion, time.Now().UTC().Format(time.RFC3339))
	return err
}

// Get retrieves a raw value by key. Returns "" without error when the key
// is absent.
func (s *Store) Get(key string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return "", ErrStoreClosed
	}

	var value string
	err := s.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("store: get %s: %w", key, err)
	}
	return value, nil
}

// Set writes a raw value under a key, replacing any previous value.
func (s *Store) Set(key, value string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	return s.set(key, value)
}

func (s *Store) set(key, value string) error {
	_, err := s.db.Exec(`
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("store: set %s: %w", key, err)
	}
	return nil
}

// Delete removes a key. Deleting an absent key is a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if _, err := s.db.Exec(`DELETE FROM metadata WHERE key = ?`, key); err != nil {
		return fmt.Errorf("store: delete %s: %w", key, err)
	}
	return nil
}

// SaveSnapshot persists the whole snapshot and stamps the last-local-update
// bookkeeping key in one transaction, so a snapshot on disk is never newer
// than its recorded update time.
func (s *Store) SaveSnapshot(snap *Snapshot, updatedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("store: encode snapshot: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("store: begin transaction: %w", err)
	}
	defer tx.Rollback() // no-op if committed

	now := time.Now().UTC().Format(time.RFC3339)
	upsert := `
		INSERT INTO metadata (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`
	if _, err := tx.Exec(upsert, keySnapshot, string(data), now); err != nil {
		return fmt.Errorf("store: save snapshot: %w", err)
	}
	millis := "0"
	if !updatedAt.IsZero() {
		millis = strconv.FormatInt(updatedAt.UnixMilli(), 10)
	}
	if _, err := tx.Exec(upsert, keyLastLocalUpdate, millis, now); err != nil {
		return fmt.Errorf("store: stamp local update: %w", err)
	}

	return tx.Commit()
}

// LoadSnapshot reads the persisted snapshot. Returns an empty snapshot when
// none has been saved yet.
func (s *Store) LoadSnapshot() (*Snapshot, error) {
	raw, err := s.Get(keySnapshot)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return NewSnapshot(), nil
	}

	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		return nil, fmt.Errorf("store: decode snapshot: %w", err)
	}
	if snap.Days == nil {
		snap.Days = make(map[string]*DailyLog)
	}
	return &snap, nil
}

// LastLocalUpdate returns the time of the most recent local mutation, or the
// zero time when nothing has been recorded.
func (s *Store) LastLocalUpdate() (time.Time, error) {
	return s.getMillis(keyLastLocalUpdate)
}

// LastServerSync returns the time of the last successful server sync.
func (s *Store) LastServerSync() (time.Time, error) {
	return s.getMillis(keyLastServerSync)
}

// SetLastServerSync records the time of a successful server sync.
func (s *Store) SetLastServerSync(t time.Time) error {
	return s.Set(keyLastServerSync, strconv.FormatInt(t.UnixMilli(), 10))
}

func (s *Store) getMillis(key string) (time.Time, error) {
	raw, err := s.Get(key)
	if err != nil {
		return time.Time{}, err
	}
	if raw == "" {
		return time.Time{}, nil
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("store: parse %s: %w", key, err)
	}
	if millis <= 0 {
		return time.Time{}, nil
	}
	return time.UnixMilli(millis).UTC(), nil
}

// SyncHistory returns the recorded sync attempt times, oldest first.
func (s *Store) SyncHistory() ([]time.Time, error) {
	raw, err := s.Get(keySyncHistory)
	if err != nil {
		return nil, err
	}
	if raw == "" {
		return nil, nil
	}

	var millis []int64
	if err := json.Unmarshal([]byte(raw), &millis); err != nil {
		return nil, fmt.Errorf("store: decode sync history: %w", err)
	}

	times := make([]time.Time, len(millis))
	for i, ms := range millis {
		times[i] = time.UnixMilli(ms).UTC()
	}
	return times, nil
}

// AppendSyncAttempt records a sync attempt, keeping only the most recent
// syncHistoryCap entries.
func (s *Store) AppendSyncAttempt(t time.Time) error {
	history, err := s.SyncHistory()
	if err != nil {
		return err
	}

	history = append(history, t)
	if len(history) > syncHistoryCap {
		history = history[len(history)-syncHistoryCap:]
	}

	millis := make([]int64, len(history))
	for i, ts := range history {
		millis[i] = ts.UnixMilli()
	}
	data, err := json.Marshal(millis)
	if err != nil {
		return fmt.Errorf("store: encode sync history: %w", err)
	}
	return s.Set(keySyncHistory, string(data))
}

// CooldownUntil returns the persisted cooldown-expiry marker, or the zero
// time when no cooldown is active.
func (s *Store) CooldownUntil() (time.Time, error) {
	return s.getMillis(keyCooldownUntil)
}

// SetCooldownUntil persists the cooldown-expiry marker.
func (s *Store) SetCooldownUntil(t time.Time) error {
	return s.Set(keyCooldownUntil, strconv.FormatInt(t.UnixMilli(), 10))
}

// ClearCooldown removes the cooldown-expiry marker.
func (s *Store) ClearCooldown() error {
	return s.Delete(keyCooldownUntil)
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Close closes the store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}

	s.closed = true
	return s.db.Close()
}

package macrolog

import (
	"path/filepath"
	"testing"
	"time"
)

func TestNewStore_CreatesMetadataTable(t *testing.T) {
	store := newTestStore(t)

	var name string
	err := store.db.QueryRow(
		"SELECT name FROM sqlite_master WHERE type='table' AND name='metadata'",
	).Scan(&name)
	if err != nil {
		t.Errorf("metadata table not found: %v", err)
	}
}

func TestNewStore_EnablesWAL(t *testing.T) {
	store := newTestStore(t)

	var journalMode string
	err := store.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode)
	if err != nil {
		t.Fatalf("failed to query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected journal_mode=wal, got %q", journalMode)
	}
}

func TestNewStore_SetsSchemaVersion(t *testing.T) {
	store := newTestStore(t)

	value, err := store.Get("schema_version")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if value != schemaVersion {
		t.Errorf("expected schema_version=%q, got %q", schemaVersion, value)
	}
}

func TestNewStore_Idempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store1, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("first NewStore failed: %v", err)
	}
	store1.Close()

	store2, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("second NewStore failed: %v", err)
	}
	defer store2.Close()
}

func TestStore_GetSetDelete(t *testing.T) {
	store := newTestStore(t)

	value, err := store.Get("missing")
	if err != nil {
		t.Fatalf("Get missing key failed: %v", err)
	}
	if value != "" {
		t.Errorf("expected empty value for missing key, got %q", value)
	}

	if err := store.Set("k", "v1"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Set("k", "v2"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}

	value, _ = store.Get("k")
	if value != "v2" {
		t.Errorf("expected v2 after overwrite, got %q", value)
	}

	if err := store.Delete("k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if err := store.Delete("k"); err != nil {
		t.Errorf("deleting absent key should be a no-op: %v", err)
	}
	value, _ = store.Get("k")
	if value != "" {
		t.Errorf("expected empty value after delete, got %q", value)
	}
}

func TestStore_SnapshotRoundTrip(t *testing.T) {
	store := newTestStore(t)

	snap := NewSnapshot()
	snap.Goals = Goals{Calories: 2000, UpdatedAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)}
	day := snap.Day("2024-01-10")
	day.Meals = append(day.Meals, makeMeal("m1", 200, 10, 20, 5, 1.5))
	day.recalc()
	day.WaterML = 500

	updatedAt := time.Date(2024, 1, 10, 9, 30, 0, 0, time.UTC)
	if err := store.SaveSnapshot(snap, updatedAt); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}

	loaded, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if loaded.Goals.Calories != 2000 {
		t.Errorf("goals lost in round trip: %+v", loaded.Goals)
	}
	loadedDay, ok := loaded.Days["2024-01-10"]
	if !ok {
		t.Fatal("day lost in round trip")
	}
	if len(loadedDay.Meals) != 1 || loadedDay.Meals[0].ID != "m1" {
		t.Errorf("meals lost in round trip: %+v", loadedDay.Meals)
	}
	if loadedDay.Totals.Calories != 300 {
		t.Errorf("totals lost in round trip: %v", loadedDay.Totals.Calories)
	}

	// Saving the snapshot also stamps the last-local-update key.
	lastLocal, err := store.LastLocalUpdate()
	if err != nil {
		t.Fatalf("LastLocalUpdate failed: %v", err)
	}
	if !lastLocal.Equal(updatedAt) {
		t.Errorf("expected last local update %v, got %v", updatedAt, lastLocal)
	}
}

func TestStore_LoadSnapshot_EmptyStore(t *testing.T) {
	store := newTestStore(t)

	snap, err := store.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if snap == nil || snap.Days == nil {
		t.Fatal("expected initialized empty snapshot")
	}
	if len(snap.Days) != 0 {
		t.Errorf("expected no days, got %d", len(snap.Days))
	}
}

func TestStore_SyncHistoryCap(t *testing.T) {
	store := newTestStore(t)

	base := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	for i := 0; i < syncHistoryCap+10; i++ {
		if err := store.AppendSyncAttempt(base.Add(time.Duration(i) * time.Second)); err != nil {
			t.Fatalf("AppendSyncAttempt %d failed: %v", i, err)
		}
	}

	history, err := store.SyncHistory()
	if err != nil {
		t.Fatalf("SyncHistory failed: %v", err)
	}
	if len(history) != syncHistoryCap {
		t.Fatalf("expected history capped at %d, got %d", syncHistoryCap, len(history))
	}
	// Oldest entries are dropped; the newest survive.
	if !history[len(history)-1].Equal(base.Add(39 * time.Second)) {
		t.Errorf("unexpected newest entry: %v", history[len(history)-1])
	}
	if !history[0].Equal(base.Add(10 * time.Second)) {
		t.Errorf("unexpected oldest entry: %v", history[0])
	}
}

func TestStore_BookkeepingSurvivesReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	store, err := NewStore(dbPath)
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}

	syncedAt := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)
	if err := store.SetLastServerSync(syncedAt); err != nil {
		t.Fatalf("SetLastServerSync failed: %v", err)
	}
	if err := store.AppendSyncAttempt(syncedAt); err != nil {
		t.Fatalf("AppendSyncAttempt failed: %v", err)
	}
	if err := store.SetCooldownUntil(syncedAt.Add(3 * time.Minute)); err != nil {
		t.Fatalf("SetCooldownUntil failed: %v", err)
	}
	store.Close()

	store, err = NewStore(dbPath)
	if err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer store.Close()

	lastSync, _ := store.LastServerSync()
	if !lastSync.Equal(syncedAt) {
		t.Errorf("last server sync lost on reopen: %v", lastSync)
	}
	history, _ := store.SyncHistory()
	if len(history) != 1 || !history[0].Equal(syncedAt) {
		t.Errorf("sync history lost on reopen: %v", history)
	}
	until, _ := store.CooldownUntil()
	if !until.Equal(syncedAt.Add(3 * time.Minute)) {
		t.Errorf("cooldown marker lost on reopen: %v", until)
	}
}

func TestStore_ClosedOperations(t *testing.T) {
	store := newTestStore(t)
	store.Close()

	if _, err := store.Get("k"); err != ErrStoreClosed {
		t.Errorf("Get on closed store: expected ErrStoreClosed, got %v", err)
	}
	if err := store.Set("k", "v"); err != ErrStoreClosed {
		t.Errorf("Set on closed store: expected ErrStoreClosed, got %v", err)
	}
	if err := store.SaveSnapshot(NewSnapshot(), time.Now()); err != ErrStoreClosed {
		t.Errorf("SaveSnapshot on closed store: expected ErrStoreClosed, got %v", err)
	}
}

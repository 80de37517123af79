package settings

import (
	"context"
	"testing"
	"time"

	"github.com/minjae-ko/chatmarks/internal/db"
)

func setupStore(t *testing.T) *Store {
	t.Helper()
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	t.Cleanup(func() { database.Close() })

	store, err := NewStore(database, time.Hour) // long delay so tests control flushing
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPutGetRoundTrip(t *testing.T) {
	store := setupStore(t)

	type blob struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	if err := store.Put("test", blob{Name: "alpha", Count: 3}); err != nil {
		t.Fatalf("Put: %v", err)
	}

	var got blob
	ok, err := store.Get("test", &got)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok {
		t.Fatal("expected key to exist")
	}
	if got.Name != "alpha" || got.Count != 3 {
		t.Errorf("got %+v, want {alpha 3}", got)
	}
}

func TestGetMissingKey(t *testing.T) {
	store := setupStore(t)

	var v map[string]string
	ok, err := store.Get("never-written", &v)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if ok {
		t.Error("expected missing key to report ok=false")
	}
}

func TestFlushPersistsAcrossReload(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	store, err := NewStore(database, time.Hour)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Put("k", map[string]int{"n": 7}); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	// A second store over the same database sees the flushed value.
	reloaded, err := NewStore(database, time.Hour)
	if err != nil {
		t.Fatalf("NewStore (reload): %v", err)
	}
	var v map[string]int
	ok, err := reloaded.Get("k", &v)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !ok || v["n"] != 7 {
		t.Errorf("reloaded value = %v (ok=%v), want n=7", v, ok)
	}
}

func TestFlushCoalescesMutations(t *testing.T) {
	store := setupStore(t)

	for i := 0; i < 10; i++ {
		if err := store.Put("counter", i); err != nil {
			t.Fatalf("Put: %v", err)
		}
	}
	if err := store.Flush(context.Background()); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	var n int
	ok, err := store.Get("counter", &n)
	if err != nil || !ok {
		t.Fatalf("Get: ok=%v err=%v", ok, err)
	}
	if n != 9 {
		t.Errorf("counter = %d, want 9 (last write wins)", n)
	}
}

func TestFailedFlushKeepsKeysDirty(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}

	store, err := NewStore(database, time.Hour)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.Put("k", "v"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	database.Close()

	if err := store.Flush(context.Background()); err == nil {
		t.Fatal("expected flush against a closed database to fail")
	}

	store.mu.Lock()
	dirty := store.dirty["k"]
	store.mu.Unlock()
	if !dirty {
		t.Error("failed flush dropped the key from the write-back set")
	}
}

func TestDebouncedWriteEventuallyLands(t *testing.T) {
	database, err := db.OpenMemory()
	if err != nil {
		t.Fatalf("OpenMemory: %v", err)
	}
	defer database.Close()

	store, err := NewStore(database, 10*time.Millisecond)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	defer store.Close()

	if err := store.Put("k", "v"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		var count int
		if err := database.QueryRow("SELECT COUNT(*) FROM settings WHERE key = 'k'").Scan(&count); err != nil {
			t.Fatalf("counting rows: %v", err)
		}
		if count == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("debounced write never reached the database")
}

func TestLoadPreferencesDefaults(t *testing.T) {
	store := setupStore(t)

	prefs, err := LoadPreferences(store)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if !prefs.Enabled {
		t.Error("expected enabled by default")
	}
	if prefs.DefaultBookmarkColor != DefaultColor {
		t.Errorf("DefaultBookmarkColor = %q, want %q", prefs.DefaultBookmarkColor, DefaultColor)
	}
	if len(prefs.BookmarkColors) != 4 || len(prefs.HighlightColors) != 4 {
		t.Errorf("palette sizes = %d/%d, want 4/4", len(prefs.BookmarkColors), len(prefs.HighlightColors))
	}
}

func TestSaveAndReloadPreferences(t *testing.T) {
	store := setupStore(t)

	prefs := DefaultPreferences()
	prefs.DefaultBookmarkColor = "#a3ccda"
	prefs.Enabled = false
	if err := SavePreferences(store, prefs); err != nil {
		t.Fatalf("SavePreferences: %v", err)
	}

	got, err := LoadPreferences(store)
	if err != nil {
		t.Fatalf("LoadPreferences: %v", err)
	}
	if got.DefaultBookmarkColor != "#a3ccda" {
		t.Errorf("DefaultBookmarkColor = %q, want #a3ccda", got.DefaultBookmarkColor)
	}
	if got.Enabled {
		t.Error("expected enabled=false after save")
	}
}

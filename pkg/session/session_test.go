package session

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
)

func testRecents(t *testing.T) *Recents {
	t.Helper()
	path := filepath.Join(t.TempDir(), "recents.json")
	r, err := NewRecents(path)
	if err != nil {
		t.Fatalf("NewRecents failed: %v", err)
	}
	return r
}

func TestRecentsTouchAndList(t *testing.T) {
	r := testRecents(t)

	if err := r.Touch(Entry{URL: "https://first.test/", Title: "First"}); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if err := r.Touch(Entry{URL: "https://second.test/", Title: "Second", Mode: "pile"}); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	entries, err := r.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Should list 2 entries, got %d", len(entries))
	}
	if entries[0].URL != "https://second.test/" {
		t.Errorf("Most recent entry should come first, got %s", entries[0].URL)
	}
	if entries[0].Mode != "pile" {
		t.Errorf("Mode should round-trip, got %q", entries[0].Mode)
	}
	if entries[1].Title != "First" {
		t.Errorf("Title should round-trip, got %q", entries[1].Title)
	}
	if entries[0].LastUsed.IsZero() {
		t.Error("LastUsed should be set")
	}
}

func TestRecentsUpsertMovesToFront(t *testing.T) {
	r := testRecents(t)

	for _, url := range []string{"https://a.test/", "https://b.test/"} {
		if err := r.Touch(Entry{URL: url, Title: url}); err != nil {
			t.Fatalf("Touch failed: %v", err)
		}
	}
	// Revisit a with no title: moves to front, keeps stored title
	if err := r.Touch(Entry{URL: "https://a.test/"}); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	entries, err := r.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("Upsert should not grow the list, got %d entries", len(entries))
	}
	if entries[0].URL != "https://a.test/" {
		t.Errorf("Revisited blog should move to front, got %s", entries[0].URL)
	}
	if entries[0].Title != "https://a.test/" {
		t.Errorf("Stored title should survive an empty Touch, got %q", entries[0].Title)
	}
	if entries[0].Visits != 2 {
		t.Errorf("Visits should count both touches, got %d", entries[0].Visits)
	}
}

func TestRecentsTrailingSlashDedupe(t *testing.T) {
	r := testRecents(t)

	if err := r.Touch(Entry{URL: "https://blog.test/"}); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if err := r.Touch(Entry{URL: "https://blog.test"}); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	entries, err := r.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Trailing slash should not duplicate an entry, got %d", len(entries))
	}
}

func TestRecentsCap(t *testing.T) {
	r := testRecents(t)

	for i := 0; i < MaxEntries+2; i++ {
		url := fmt.Sprintf("https://blog%d.test/", i)
		if err := r.Touch(Entry{URL: url}); err != nil {
			t.Fatalf("Touch failed: %v", err)
		}
	}

	entries, err := r.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != MaxEntries {
		t.Fatalf("List should cap at %d, got %d", MaxEntries, len(entries))
	}
	if entries[0].URL != fmt.Sprintf("https://blog%d.test/", MaxEntries+1) {
		t.Errorf("Newest entry should survive the cap, got %s", entries[0].URL)
	}
	for _, e := range entries {
		if e.URL == "https://blog0.test/" || e.URL == "https://blog1.test/" {
			t.Errorf("Oldest entries should fall off, found %s", e.URL)
		}
	}
}

func TestRecentsRemove(t *testing.T) {
	r := testRecents(t)

	if err := r.Touch(Entry{URL: "https://keep.test/"}); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if err := r.Touch(Entry{URL: "https://drop.test/"}); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}

	if err := r.Remove("https://drop.test"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	// Unknown URL is not an error
	if err := r.Remove("https://never.test/"); err != nil {
		t.Errorf("Removing unknown URL should not fail: %v", err)
	}

	entries, err := r.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 || entries[0].URL != "https://keep.test/" {
		t.Errorf("Only the kept entry should remain, got %+v", entries)
	}
}

func TestRecentsClear(t *testing.T) {
	r := testRecents(t)

	if err := r.Touch(Entry{URL: "https://blog.test/"}); err != nil {
		t.Fatalf("Touch failed: %v", err)
	}
	if err := r.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	// Clearing twice is fine
	if err := r.Clear(); err != nil {
		t.Errorf("Second clear should not fail: %v", err)
	}

	entries, err := r.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("List should be empty after clear, got %d entries", len(entries))
	}
}

func TestRecentsCorruptFileStartsOver(t *testing.T) {
	r := testRecents(t)

	if err := os.WriteFile(r.Path(), []byte("{not json"), 0600); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	entries, err := r.List()
	if err != nil {
		t.Fatalf("List should tolerate a corrupt file: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("Corrupt file should read as empty, got %d entries", len(entries))
	}

	// And a touch rebuilds it
	if err := r.Touch(Entry{URL: "https://blog.test/"}); err != nil {
		t.Fatalf("Touch after corruption failed: %v", err)
	}
	entries, err = r.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Touch should rebuild the list, got %d entries", len(entries))
	}
}

func TestRecentsRejectsEmptyURL(t *testing.T) {
	r := testRecents(t)
	if err := r.Touch(Entry{Title: "no url"}); err == nil {
		t.Error("Touch without URL should fail")
	}
}

package history

import (
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"), nil)
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)

	store.Record(Deployment{Subdomain: "a.example.com", Outcome: "verified"})
	store.Record(Deployment{
		Subdomain: "b.example.com",
		RepoURL:   "https://github.com/owner/repo.git",
		HTTPS:     true,
		Outcome:   "verification-failed",
		Elapsed:   42 * time.Second,
	})

	recent, err := store.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("Recent() returned %d rows, want 2", len(recent))
	}

	newest := recent[0]
	if newest.Subdomain != "b.example.com" {
		t.Errorf("newest row is %q, want b.example.com", newest.Subdomain)
	}
	if !newest.HTTPS || newest.RepoURL != "https://github.com/owner/repo.git" {
		t.Errorf("row fields lost: %+v", newest)
	}
	if newest.Outcome != "verification-failed" {
		t.Errorf("Outcome = %q", newest.Outcome)
	}
	if newest.Elapsed != 42*time.Second {
		t.Errorf("Elapsed = %v, want 42s", newest.Elapsed)
	}
	if newest.CreatedAt.IsZero() {
		t.Error("CreatedAt not populated")
	}
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < 5; i++ {
		store.Record(Deployment{Subdomain: "site.example.com", Outcome: "verified"})
	}

	recent, err := store.Recent(3)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 3 {
		t.Errorf("Recent(3) returned %d rows", len(recent))
	}
}

func TestRecentEmpty(t *testing.T) {
	store := openTestStore(t)

	recent, err := store.Recent(0)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 0 {
		t.Errorf("expected no rows, got %d", len(recent))
	}
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")

	first, err := Open(path, nil)
	if err != nil {
		t.Fatalf("first Open() error = %v", err)
	}
	first.Record(Deployment{Subdomain: "a.example.com", Outcome: "verified"})
	first.Close()

	second, err := Open(path, nil)
	if err != nil {
		t.Fatalf("second Open() error = %v", err)
	}
	defer second.Close()

	recent, err := second.Recent(10)
	if err != nil {
		t.Fatalf("Recent() error = %v", err)
	}
	if len(recent) != 1 {
		t.Errorf("rows lost across reopen: %d", len(recent))
	}
}

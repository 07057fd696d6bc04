package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/aksuhana/JS-PLAY-AROUND/internal/storage"
)

func testStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening memory db: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

var base = time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

func record(t *testing.T, s *SQLiteStore, r storage.Run) {
	t.Helper()
	if err := s.RecordRun(context.Background(), &r); err != nil {
		t.Fatalf("RecordRun(%s): %v", r.ID, err)
	}
}

func TestRecordAndGetRun(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	run := storage.Run{
		ID:          "abc12345-0000-0000-0000-000000000000",
		Dialect:     "ts",
		Status:      storage.StatusFault,
		FaultKind:   "transpile",
		Origin:      storage.OriginHTTP,
		OutputBytes: 40,
		DurationMs:  12,
		CreatedAt:   base.Add(123 * time.Millisecond),
	}
	record(t, s, run)

	got, err := s.GetRun(ctx, run.ID)
	if err != nil {
		t.Fatalf("GetRun: %v", err)
	}
	if diff := cmp.Diff(&run, got); diff != "" {
		t.Errorf("GetRun mismatch (-want +got):\n%s", diff)
	}
}

func TestRecordRunDefaults(t *testing.T) {
	s := testStore(t)

	r := &storage.Run{ID: "r1", Dialect: "js", Status: storage.StatusOK}
	if err := s.RecordRun(context.Background(), r); err != nil {
		t.Fatalf("RecordRun: %v", err)
	}
	if r.CreatedAt.IsZero() {
		t.Error("created_at should be set")
	}
	if err := s.RecordRun(context.Background(), &storage.Run{Status: storage.StatusOK}); err == nil {
		t.Error("expected error for missing id")
	}
	if err := s.RecordRun(context.Background(), &storage.Run{ID: "r2", Status: "weird"}); err == nil {
		t.Error("expected constraint error for unknown status")
	}
}

func TestGetRunByPrefix(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	record(t, s, storage.Run{ID: "abc00000-1", Status: storage.StatusOK, CreatedAt: base})
	record(t, s, storage.Run{ID: "abc11111-1", Status: storage.StatusOK, CreatedAt: base})

	got, err := s.GetRun(ctx, "abc1")
	if err != nil {
		t.Fatalf("GetRun by prefix: %v", err)
	}
	if got.ID != "abc11111-1" {
		t.Errorf("got ID %q", got.ID)
	}

	if _, err := s.GetRun(ctx, "abc"); err == nil || errors.Is(err, storage.ErrNotFound) {
		t.Errorf("ambiguous prefix err = %v", err)
	}
	if _, err := s.GetRun(ctx, "zzz"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("missing run err = %v, want ErrNotFound", err)
	}
	// LIKE wildcards are not honoured in prefixes.
	if _, err := s.GetRun(ctx, "abc_"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("wildcard prefix err = %v, want ErrNotFound", err)
	}
}

func TestListRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	record(t, s, storage.Run{ID: "a", Dialect: "js", Status: storage.StatusOK, CreatedAt: base})
	record(t, s, storage.Run{ID: "b", Dialect: "ts", Status: storage.StatusFault, CreatedAt: base.Add(time.Second)})
	record(t, s, storage.Run{ID: "c", Dialect: "ts", Status: storage.StatusOK, CreatedAt: base.Add(2 * time.Second)})

	ids := func(runs []storage.Run) []string {
		out := make([]string, len(runs))
		for i, r := range runs {
			out[i] = r.ID
		}
		return out
	}

	tests := []struct {
		name string
		opts storage.RunListOptions
		want []string
	}{
		{"all newest first", storage.RunListOptions{}, []string{"c", "b", "a"}},
		{"by status", storage.RunListOptions{Status: storage.StatusOK}, []string{"c", "a"}},
		{"by dialect", storage.RunListOptions{Dialect: "ts"}, []string{"c", "b"}},
		{"paged", storage.RunListOptions{Limit: 1, Offset: 1}, []string{"b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runs, err := s.ListRuns(ctx, tt.opts)
			if err != nil {
				t.Fatalf("ListRuns: %v", err)
			}
			if diff := cmp.Diff(tt.want, ids(runs)); diff != "" {
				t.Errorf("ids mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestPruneRuns(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	record(t, s, storage.Run{ID: "old", Status: storage.StatusOK, CreatedAt: base.Add(-48 * time.Hour)})
	record(t, s, storage.Run{ID: "new", Status: storage.StatusOK, CreatedAt: base})

	n, err := s.PruneRuns(ctx, base.Add(-time.Hour))
	if err != nil {
		t.Fatalf("PruneRuns: %v", err)
	}
	if n != 1 {
		t.Errorf("pruned %d, want 1", n)
	}
	runs, err := s.ListRuns(ctx, storage.RunListOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != "new" {
		t.Errorf("remaining = %+v", runs)
	}
}

func TestReopenFileDatabase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "runs.db")

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	record(t, s, storage.Run{ID: "persisted", Status: storage.StatusOK, CreatedAt: base})
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	s, err = Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer s.Close()
	if _, err := s.GetRun(context.Background(), "persisted"); err != nil {
		t.Errorf("GetRun after reopen: %v", err)
	}
}

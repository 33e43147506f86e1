package store

import (
	"context"
	"reflect"
	"testing"
)

func TestHistory_PersistsAcrossOpens(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}

	st, err := s.LoadHistory(ctx, 0)
	if err != nil {
		t.Fatalf("LoadHistory: %v", err)
	}
	if st.Len() != 0 {
		t.Fatalf("expected empty history on fresh store")
	}

	st.Push("/musicalist/?content=a")
	st.Push("/musicalist/?content=b")
	st.Push("/musicalist/?content=c")
	if !st.Go(-1) {
		t.Fatalf("expected to step back")
	}
	if err := s.SaveHistory(ctx, st); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}

	again, err := s.LoadHistory(ctx, 0)
	if err != nil {
		t.Fatalf("LoadHistory again: %v", err)
	}
	entries, idx := again.Snapshot()
	want := []string{"/musicalist/?content=a", "/musicalist/?content=b", "/musicalist/?content=c"}
	if !reflect.DeepEqual(entries, want) {
		t.Fatalf("unexpected entries: %v", entries)
	}
	if idx != 1 || again.Current() != "/musicalist/?content=b" {
		t.Fatalf("expected cursor on b, got %d (%q)", idx, again.Current())
	}

	// Pushing after an undo drops the redo branch, and that survives a save.
	again.Push("/musicalist/?content=d")
	if err := s.SaveHistory(ctx, again); err != nil {
		t.Fatalf("SaveHistory: %v", err)
	}
	third, err := s.LoadHistory(ctx, 0)
	if err != nil {
		t.Fatalf("LoadHistory third: %v", err)
	}
	entries, _ = third.Snapshot()
	if len(entries) != 3 || entries[2] != "/musicalist/?content=d" {
		t.Fatalf("unexpected entries after truncation: %v", entries)
	}
}

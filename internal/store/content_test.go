package store

import (
	"context"
	"reflect"
	"testing"

	"musicalist/internal/codec"
	"musicalist/internal/model"
)

func TestContentKey(t *testing.T) {
	if got := ContentKey(""); got != "content" {
		t.Fatalf("anonymous key: %q", got)
	}
	if got := ContentKey("alice"); got != "content/alice" {
		t.Fatalf("author key: %q", got)
	}
}

func TestContent_PersistWritesBothSlots(t *testing.T) {
	ctx := context.Background()
	c := NewContent(NewMemory(), nil)

	s := model.ListState{FormatVersion: model.CurrentFormatVersion, Author: "alice", Items: []model.ListItem{{ID: 1, CatalogID: 1}}}
	tok := codec.Encode(s)
	if err := c.Persist(ctx, s, tok); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	for _, author := range []string{"", "alice"} {
		got, ok := c.Get(ctx, author)
		if !ok || got != tok {
			t.Fatalf("slot %q: got (%q,%v)", author, got, ok)
		}
	}
	authors, err := c.Authors(ctx)
	if err != nil {
		t.Fatalf("Authors: %v", err)
	}
	if !reflect.DeepEqual(authors, []string{"alice"}) {
		t.Fatalf("unexpected authors: %v", authors)
	}
}

func TestContent_PersistSkipsAnonymous(t *testing.T) {
	ctx := context.Background()
	mem := NewMemory()
	c := NewContent(mem, nil)

	s := model.DefaultListState()
	if err := c.Persist(ctx, s, codec.Encode(s)); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	keys, _ := mem.Keys(ctx, "")
	if len(keys) != 0 {
		t.Fatalf("anonymous list must not persist, got keys %v", keys)
	}
}

func TestContent_SQLiteBackend(t *testing.T) {
	ctx := context.Background()
	s := Store{Dir: t.TempDir()}
	c := NewContent(s, nil)

	if _, ok := c.Get(ctx, "nobody"); ok {
		t.Fatalf("expected miss")
	}
	if err := c.Set(ctx, "bob", "tok-1"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := c.Set(ctx, "bob", "tok-2"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}
	got, ok := c.Get(ctx, "bob")
	if !ok || got != "tok-2" {
		t.Fatalf("unexpected slot: (%q,%v)", got, ok)
	}
	if err := c.Delete(ctx, "bob"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, ok := c.Get(ctx, "bob"); ok {
		t.Fatalf("expected slot deleted")
	}
	if err := c.Delete(ctx, "bob"); err != nil {
		t.Fatalf("Delete missing: %v", err)
	}
}

func TestContent_ReadFailureIsMiss(t *testing.T) {
	// A NUL byte in the dir makes every open fail.
	dir := t.TempDir()
	s := Store{Dir: dir + "/missing/\x00bad"}
	c := NewContent(s, nil)
	if _, ok := c.Get(context.Background(), "alice"); ok {
		t.Fatalf("expected miss on backend failure")
	}
}

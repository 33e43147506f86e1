package publish

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"musicalist/internal/catalog"
	"musicalist/internal/codec"
	"musicalist/internal/model"
	"musicalist/internal/store"
)

func TestRenderListMarkdown(t *testing.T) {
	t.Parallel()

	cat := catalog.Default(nil)
	s := model.DefaultListState()
	s.Author = "a|b"
	s.Items = []model.ListItem{{ID: 1, CatalogID: cat.FirstID(), Viewed: true, Rating: 4}, {ID: 2, CatalogID: 999999}}
	md := RenderListMarkdown(s, cat, "http://x/musicalist/?content=abc&edit=false")
	for _, want := range []string{`# a\|b's musicals`, "✓", "4/10", "_unknown_", "[Share this list]", cat.ReferenceURL(cat.FirstID())} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %q in:\n%s", want, md)
		}
	}

	empty := RenderListMarkdown(model.DefaultListState(), cat, "")
	if !strings.Contains(empty, "# Musicals") || strings.Contains(empty, "Share") {
		t.Fatalf("unexpected empty render:\n%s", empty)
	}
}

func TestWriteAll(t *testing.T) {
	t.Parallel()
	ctx := context.Background()

	cat := catalog.Default(nil)
	content := store.NewContent(store.NewMemory(), nil)
	users := store.NewUsers(content, nil)

	alice := model.DefaultListState()
	alice.Author = "alice"
	alice.Items = []model.ListItem{{ID: 1, CatalogID: cat.FirstID(), Rating: 7}}
	tok := codec.Encode(alice)
	if err := content.Persist(ctx, alice, tok); err != nil {
		t.Fatalf("Persist: %v", err)
	}
	if err := users.Add(ctx, "alice"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if err := users.Add(ctx, "ghost"); err != nil {
		t.Fatalf("Add: %v", err)
	}

	dir := t.TempDir()
	res, err := WriteAll(ctx, content, users, cat, dir, WriteOptions{ShareBase: "https://lists.test/"})
	if err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	if len(res.Written) != 3 {
		t.Fatalf("expected list.md, alice and index, got %v", res.Written)
	}
	if len(res.Missing) != 1 || res.Missing[0] != "ghost" {
		t.Fatalf("expected ghost to be missing, got %v", res.Missing)
	}

	page, err := os.ReadFile(filepath.Join(dir, "users", "alice.md"))
	if err != nil {
		t.Fatalf("read alice.md: %v", err)
	}
	if !strings.Contains(string(page), "7/10") || !strings.Contains(string(page), "https://lists.test/musicalist/?content="+string(tok)) {
		t.Fatalf("unexpected page:\n%s", page)
	}
	index, err := os.ReadFile(filepath.Join(dir, "index.md"))
	if err != nil {
		t.Fatalf("read index.md: %v", err)
	}
	if !strings.Contains(string(index), "(users/alice.md) (1)") {
		t.Fatalf("unexpected index:\n%s", index)
	}

	if _, err := WriteAll(ctx, content, users, cat, dir, WriteOptions{}); err == nil {
		t.Fatalf("expected refusal to overwrite")
	}
	if _, err := WriteAll(ctx, content, users, cat, dir, WriteOptions{Overwrite: true}); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
}

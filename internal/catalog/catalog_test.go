package catalog

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestLoad_SkipsMalformedRows(t *testing.T) {
	var logs bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&logs, nil))

	src := strings.Join([]string{
		"1\tCats\tCats_(musical)",
		"oops\tNot a number\tx",
		"2\tOnly two columns",
		"3\tRent\tRent_(musical)",
		"3\tRent again\tRent",
		"4\t \tblank_name",
		"5\tHair\t",
	}, "\n")

	c, err := Load(strings.NewReader(src), logger)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d: %+v", c.Len(), c.Entries())
	}
	if got := c.Name(3); got != "Rent" {
		t.Fatalf("expected first id 3 to win, got %q", got)
	}
	if got := c.ReferenceURL(1); got != ReferenceBase+"Cats_(musical)" {
		t.Fatalf("unexpected reference url: %q", got)
	}
	if got := c.ReferenceURL(5); got != "" {
		t.Fatalf("expected empty reference url for empty slug, got %q", got)
	}
	if n := strings.Count(logs.String(), "level=WARN"); n != 4 {
		t.Fatalf("expected 4 warnings, got %d:\n%s", n, logs.String())
	}
}

func TestLookup_DanglingReference(t *testing.T) {
	c := Default(discardLogger())
	if _, ok := c.Lookup(424242); ok {
		t.Fatalf("expected missing id")
	}
	if c.Name(424242) != "" || c.ReferenceURL(424242) != "" {
		t.Fatalf("expected empty name and link for dangling id")
	}
}

func TestDefault_EmbeddedCatalog(t *testing.T) {
	c := Default(discardLogger())
	if c.Len() < 10 {
		t.Fatalf("expected embedded catalog, got %d entries", c.Len())
	}
	if c.FirstID() != 1 {
		t.Fatalf("expected first id 1, got %d", c.FirstID())
	}
	entries := c.Entries()
	entries[0].Name = "mutated"
	if c.Name(1) == "mutated" {
		t.Fatalf("Entries must return a copy")
	}
}

func TestFirstID_Empty(t *testing.T) {
	c, err := Load(strings.NewReader(""), nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.FirstID() != 0 || c.Len() != 0 {
		t.Fatalf("expected empty catalog")
	}
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("disk on fire") }

func TestLoad_ReadErrorIsReturned(t *testing.T) {
	if _, err := Load(failingReader{}, discardLogger()); err == nil {
		t.Fatalf("expected read error")
	}
}

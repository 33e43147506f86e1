// Package catalog loads the static table of selectable musicals.
//
// The table is read once at startup and is immutable afterwards; callers
// share a *Catalog and only ever read from it.
package catalog

import (
	_ "embed"
	"encoding/csv"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"musicalist/internal/model"
)

// ReferenceBase prefixes the per-row slug to form the reference link.
const ReferenceBase = "https://en.wikipedia.org/wiki/"

//go:embed musicals.tsv
var embeddedTSV string

type Catalog struct {
	entries []model.CatalogEntry
	byID    map[uint64]int
}

// Default returns the catalog compiled into the binary.
func Default(logger *slog.Logger) *Catalog {
	c, err := Load(strings.NewReader(embeddedTSV), logger)
	if err != nil {
		// strings.Reader does not fail.
		return &Catalog{byID: map[uint64]int{}}
	}
	return c
}

// Load parses a headerless tab-separated table with columns id, name, slug.
// Malformed rows are logged and skipped; only read errors are returned.
func Load(r io.Reader, logger *slog.Logger) (*Catalog, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.Comment = '#'

	c := &Catalog{byID: map[uint64]int{}}
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				logger.Warn("catalog: skipping unparseable row", "line", pe.Line, "err", pe.Err)
				continue
			}
			return nil, err
		}
		line, _ := cr.FieldPos(0)
		entry, err := parseRow(rec)
		if err != nil {
			logger.Warn("catalog: skipping row", "line", line, "err", err)
			continue
		}
		if _, dup := c.byID[entry.ID]; dup {
			logger.Warn("catalog: skipping duplicate id", "line", line, "id", entry.ID)
			continue
		}
		c.byID[entry.ID] = len(c.entries)
		c.entries = append(c.entries, entry)
	}
	logger.Debug("catalog loaded", "entries", len(c.entries))
	return c, nil
}

func parseRow(rec []string) (model.CatalogEntry, error) {
	if len(rec) != 3 {
		return model.CatalogEntry{}, errors.New("expected 3 columns, got " + strconv.Itoa(len(rec)))
	}
	id, err := strconv.ParseUint(strings.TrimSpace(rec[0]), 10, 64)
	if err != nil {
		return model.CatalogEntry{}, err
	}
	name := strings.TrimSpace(rec[1])
	if name == "" {
		return model.CatalogEntry{}, errors.New("empty name")
	}
	slug := strings.TrimSpace(rec[2])
	ref := ""
	if slug != "" {
		ref = ReferenceBase + slug
	}
	return model.CatalogEntry{ID: id, Name: name, ReferenceURL: ref}, nil
}

func (c *Catalog) Len() int { return len(c.entries) }

// Entries returns a copy in file order.
func (c *Catalog) Entries() []model.CatalogEntry {
	out := make([]model.CatalogEntry, len(c.entries))
	copy(out, c.entries)
	return out
}

func (c *Catalog) Lookup(id uint64) (model.CatalogEntry, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.CatalogEntry{}, false
	}
	return c.entries[i], true
}

// Name is empty for ids not in the catalog.
func (c *Catalog) Name(id uint64) string {
	e, _ := c.Lookup(id)
	return e.Name
}

// ReferenceURL is empty for ids not in the catalog.
func (c *Catalog) ReferenceURL(id uint64) string {
	e, _ := c.Lookup(id)
	return e.ReferenceURL
}

// FirstID is the id new items default to; 0 when the catalog is empty.
func (c *Catalog) FirstID() uint64 {
	if len(c.entries) == 0 {
		return 0
	}
	return c.entries[0].ID
}

// Package urlstate keeps the address (query parameters) and the in-memory
// list in step. Reading an address yields a list; every edit yields a new
// address that is pushed onto the host history and written to local storage.
package urlstate

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"musicalist/internal/catalog"
	"musicalist/internal/codec"
	"musicalist/internal/history"
	"musicalist/internal/model"
	"musicalist/internal/mutate"
	"musicalist/internal/store"
)

// Where a loaded token came from.
const (
	SourceQuery   = "query"
	SourceStorage = "storage"
	SourceNone    = "none"
)

type Config struct {
	Content *store.Content
	Users   *store.Users
	Catalog *catalog.Catalog

	// Host receives pushed locations. Nil when the caller owns navigation
	// (the web UI redirects the browser instead).
	Host history.Host

	Logger *slog.Logger
	Path   string
}

type Bridge struct {
	content *store.Content
	users   *store.Users
	catalog *catalog.Catalog
	host    history.Host
	logger  *slog.Logger
	path    string
}

var _ history.Loader = (*Bridge)(nil)

func NewBridge(cfg Config) *Bridge {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}
	cat := cfg.Catalog
	if cat == nil {
		cat = catalog.Default(logger)
	}
	return &Bridge{
		content: cfg.Content,
		users:   cfg.Users,
		catalog: cat,
		host:    cfg.Host,
		logger:  logger,
		path:    path,
	}
}

// View is a decoded address: the list, its canonical token and the query
// that addresses it.
type View struct {
	State  model.ListState
	Token  model.Token
	Query  Query
	Source string
	// Fallback is set when the token could not be decoded.
	Fallback bool
}

func (b *Bridge) Catalog() *catalog.Catalog { return b.catalog }
func (b *Bridge) Users() *store.Users       { return b.users }
func (b *Bridge) Path() string              { return b.path }

func (b *Bridge) Location(q Query) string {
	return Location(b.path, q)
}

// Load is the read path. The author comes from user, else from the content
// token, else anonymous; the token comes from content, else from that
// author's stored slot. A named author is registered and cached locally.
func (b *Bridge) Load(ctx context.Context, q Query) View {
	author := ""
	switch {
	case q.HasUser:
		author = q.User
	case q.HasContent:
		author = codec.DecodeList(q.Content).Author
	}

	var tok model.Token
	source := SourceNone
	if q.HasContent {
		tok, source = q.Content, SourceQuery
	} else if t, ok := b.content.Get(ctx, author); ok {
		tok, source = t, SourceStorage
	}

	d := codec.Decode(tok)
	if d.Fallback && source != SourceNone {
		b.logger.Debug("urlstate: token fell back to default", "source", source, "reason", d.Reason)
	}
	canonical := codec.Encode(d.State)

	if d.State.Author != "" {
		if err := b.users.Register(ctx, d.State, canonical); err != nil {
			b.logger.Error("urlstate: register author", "author", d.State.Author, "err", err)
		}
	}
	return View{
		State:    d.State,
		Token:    canonical,
		Query:    q,
		Source:   source,
		Fallback: d.Fallback,
	}
}

// LoadLocation implements history.Loader.
func (b *Bridge) LoadLocation(ctx context.Context, loc string) model.ListState {
	return b.Load(ctx, ParseLocation(loc)).State
}

// Apply is the write path for one edit of prev. The returned error reports
// an invalid op or a storage failure; on storage failure the new location is
// still pushed.
func (b *Bridge) Apply(ctx context.Context, prev model.ListState, q Query, op mutate.Op) (View, error) {
	if op.Kind == mutate.OpToggleEdit {
		return b.ToggleEdit(prev, q), nil
	}
	next, err := op.Apply(prev, b.catalog)
	if err != nil {
		return View{State: prev, Token: codec.Encode(prev), Query: q}, err
	}
	return b.commit(ctx, next, q.Edit)
}

func (b *Bridge) commit(ctx context.Context, next model.ListState, edit bool) (View, error) {
	tok := codec.Encode(next)
	err := errors.Join(
		b.content.Persist(ctx, next, tok),
		b.users.Add(ctx, next.Author),
	)
	if err != nil {
		b.logger.Error("urlstate: persist", "author", next.Author, "err", err)
	}
	if dups := mutate.DuplicateIDs(next); len(dups) > 0 {
		b.logger.Warn("urlstate: list has duplicate item ids; edits by id touch every match", "ids", dups)
	}
	nq := Query{Content: tok, HasContent: true, Edit: edit}
	b.push(nq)
	return View{State: next, Token: tok, Query: nq, Source: SourceQuery}, err
}

// ToggleEdit re-pushes the current list with the edit flag flipped.
func (b *Bridge) ToggleEdit(s model.ListState, q Query) View {
	tok := codec.Encode(s)
	nq := Query{Content: tok, HasContent: true, Edit: !q.Edit}
	b.push(nq)
	return View{State: s.Clone(), Token: tok, Query: nq, Source: SourceQuery}
}

// Reset starts a new, empty list in edit mode. Nothing is persisted.
func (b *Bridge) Reset() View {
	s := model.DefaultListState()
	tok := codec.Encode(s)
	nq := Query{Content: tok, HasContent: true, Edit: true}
	b.push(nq)
	return View{State: s, Token: tok, Query: nq, Source: SourceQuery}
}

// DeleteUser removes author (and their stored list) and navigates to an
// empty list.
func (b *Bridge) DeleteUser(ctx context.Context, author string) (View, error) {
	err := b.users.Remove(ctx, author)
	if err != nil {
		b.logger.Error("urlstate: delete user", "author", author, "err", err)
	}
	s := model.DefaultListState()
	tok := codec.Encode(s)
	nq := Query{Content: tok, HasContent: true, HasUser: true, User: ""}
	b.push(nq)
	return View{State: s, Token: tok, Query: nq, Source: SourceQuery}, err
}

// ShareLocation addresses s in read-only mode.
func (b *Bridge) ShareLocation(s model.ListState) string {
	return b.Location(Query{Content: codec.Encode(s), HasContent: true, Edit: false})
}

// UserLocation addresses an author's stored list.
func (b *Bridge) UserLocation(author string) string {
	return b.Location(Query{HasUser: true, User: author})
}

// NewLocation addresses a fresh, editable empty list.
func (b *Bridge) NewLocation() string {
	return b.Location(Query{Content: codec.Encode(model.DefaultListState()), HasContent: true, Edit: true})
}

func (b *Bridge) push(q Query) {
	if b.host == nil {
		return
	}
	b.host.Push(b.Location(q))
}

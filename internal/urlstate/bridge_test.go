package urlstate

import (
	"bytes"
	"context"
	"log/slog"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"musicalist/internal/catalog"
	"musicalist/internal/codec"
	"musicalist/internal/history"
	"musicalist/internal/model"
	"musicalist/internal/mutate"
	"musicalist/internal/store"
)

type fixture struct {
	bridge  *Bridge
	mem     *store.Memory
	content *store.Content
	users   *store.Users
	host    *history.Stack
	logs    *bytes.Buffer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	logs := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(logs, &slog.HandlerOptions{Level: slog.LevelDebug}))
	mem := store.NewMemory()
	content := store.NewContent(mem, logger)
	users := store.NewUsers(content, logger)
	host := history.NewStack(0)
	b := NewBridge(Config{
		Content: content,
		Users:   users,
		Catalog: catalog.Default(logger),
		Host:    host,
		Logger:  logger,
	})
	return fixture{bridge: b, mem: mem, content: content, users: users, host: host, logs: logs}
}

func named(author string, items ...model.ListItem) model.ListState {
	s := model.DefaultListState()
	s.Author = author
	s.Items = append(s.Items, items...)
	return s
}

func TestParseQuery_Defaults(t *testing.T) {
	q := ParseQuery(url.Values{})
	assert.Equal(t, Query{}, q)

	q = ParseQuery(url.Values{"content": {""}, "edit": {"yes"}, "user": {""}})
	assert.True(t, q.HasContent)
	assert.Empty(t, q.Content)
	assert.False(t, q.Edit, "unparseable edit falls back to false")
	assert.True(t, q.HasUser)

	q = ParseLocation("/musicalist/?edit=true&user=alice")
	assert.True(t, q.Edit)
	assert.Equal(t, "alice", q.User)
	assert.False(t, q.HasContent)

	assert.Equal(t, Query{}, ParseLocation("%zz"))
}

func TestLocation_RoundTrip(t *testing.T) {
	q := Query{Content: "abc_-", HasContent: true, Edit: true, User: "bob", HasUser: true}
	loc := Location("", q)
	assert.Equal(t, "/musicalist/?content=abc_-&edit=true&user=bob", loc)
	assert.Equal(t, q, ParseLocation(loc))
}

func TestLoad_NoContentNoStorage(t *testing.T) {
	f := newFixture(t)
	v := f.bridge.Load(context.Background(), Query{})
	assert.True(t, v.State.Equal(model.DefaultListState()))
	assert.Equal(t, SourceNone, v.Source)
	assert.Empty(t, f.users.List(context.Background()))
}

func TestLoad_GarbageContentFallsBack(t *testing.T) {
	f := newFixture(t)
	v := f.bridge.Load(context.Background(), Query{Content: "!!not a token!!", HasContent: true})
	assert.True(t, v.Fallback)
	assert.True(t, v.State.Equal(model.DefaultListState()))
	assert.Contains(t, f.logs.String(), "fell back")
}

func TestLoad_ContentRegistersAuthor(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	s := named("alice", model.ListItem{ID: 1, CatalogID: 2, Rating: 7})
	tok := codec.Encode(s)

	v := f.bridge.Load(ctx, Query{Content: tok, HasContent: true})
	require.True(t, v.State.Equal(s))
	assert.Equal(t, []string{"alice"}, f.users.List(ctx))

	stored, ok := f.content.Get(ctx, "alice")
	require.True(t, ok)
	assert.Equal(t, tok, stored)

	_, ok = f.content.Get(ctx, "")
	assert.False(t, ok, "read path leaves the anonymous slot alone")
}

func TestLoad_UserSelectsStoredSlot(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	alice := named("alice", model.ListItem{ID: 1, CatalogID: 3})
	bob := named("bob", model.ListItem{ID: 1, CatalogID: 4, Viewed: true})
	require.NoError(t, f.content.Set(ctx, "alice", codec.Encode(alice)))
	require.NoError(t, f.content.Set(ctx, "bob", codec.Encode(bob)))
	require.NoError(t, f.content.Set(ctx, "", codec.Encode(alice)))

	v := f.bridge.Load(ctx, Query{User: "bob", HasUser: true})
	assert.Equal(t, SourceStorage, v.Source)
	assert.True(t, v.State.Equal(bob))

	v = f.bridge.Load(ctx, Query{})
	assert.True(t, v.State.Equal(alice), "no user reads the anonymous slot")

	v = f.bridge.Load(ctx, Query{User: "carol", HasUser: true})
	assert.True(t, v.State.Equal(model.DefaultListState()))
}

func TestApply_PersistsAndPushes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	prev := named("alice")

	v, err := f.bridge.Apply(ctx, prev, Query{Edit: true}, mutate.Op{Kind: mutate.OpAdd})
	require.NoError(t, err)
	require.Len(t, v.State.Items, 1)
	assert.Equal(t, f.bridge.Catalog().FirstID(), v.State.Items[0].CatalogID)

	assert.Equal(t, f.bridge.Location(v.Query), f.host.Current())
	assert.True(t, ParseLocation(f.host.Current()).Edit, "edit flag carried over")

	anon, ok := f.content.Get(ctx, "")
	require.True(t, ok)
	own, ok := f.content.Get(ctx, "alice")
	require.True(t, ok)
	assert.Equal(t, v.Token, anon)
	assert.Equal(t, v.Token, own)
	assert.Equal(t, []string{"alice"}, f.users.List(ctx))
}

func TestApply_AnonymousDoesNotPersist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	v, err := f.bridge.Apply(ctx, model.DefaultListState(), Query{}, mutate.Op{Kind: mutate.OpAdd})
	require.NoError(t, err)
	assert.Len(t, v.State.Items, 1)
	assert.Equal(t, 1, f.host.Len())

	keys, err := f.mem.Keys(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestApply_InvalidOp(t *testing.T) {
	f := newFixture(t)
	prev := named("alice")
	v, err := f.bridge.Apply(context.Background(), prev, Query{}, mutate.Op{Kind: "explode"})
	require.Error(t, err)
	assert.True(t, v.State.Equal(prev))
	assert.Equal(t, 0, f.host.Len())
}

func TestApply_WarnsOnDuplicateIDs(t *testing.T) {
	f := newFixture(t)
	prev := named("alice", model.ListItem{ID: 2}, model.ListItem{ID: 3})
	_, err := f.bridge.Apply(context.Background(), prev, Query{}, mutate.Op{Kind: mutate.OpAdd})
	require.NoError(t, err)
	assert.Contains(t, f.logs.String(), "duplicate item ids")
}

func TestToggleEditAndShare(t *testing.T) {
	f := newFixture(t)
	s := named("alice", model.ListItem{ID: 1, CatalogID: 5})

	v, err := f.bridge.Apply(context.Background(), s, Query{Edit: false}, mutate.Op{Kind: mutate.OpToggleEdit})
	require.NoError(t, err)
	assert.True(t, v.Query.Edit)
	assert.True(t, v.State.Equal(s))

	share := ParseLocation(f.bridge.ShareLocation(s))
	assert.False(t, share.Edit)
	assert.Equal(t, codec.Encode(s), share.Content)

	fresh := ParseLocation(f.bridge.NewLocation())
	assert.True(t, fresh.Edit)
	assert.True(t, codec.DecodeList(fresh.Content).Equal(model.DefaultListState()))
}

func TestDeleteUser_Cascades(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.bridge.Apply(ctx, named("alice"), Query{}, mutate.Op{Kind: mutate.OpAdd})
	require.NoError(t, err)

	v, err := f.bridge.DeleteUser(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, v.State.Equal(model.DefaultListState()))
	assert.Empty(t, f.users.List(ctx))

	keys, err := f.mem.Keys(ctx, store.AnonymousKey)
	require.NoError(t, err)
	assert.Empty(t, keys)

	q := ParseLocation(f.host.Current())
	assert.True(t, q.HasUser)
	assert.Empty(t, q.User)
}

func TestUndoRedo_ThroughNavigator(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	nav := history.NewNavigator(f.host, f.bridge)

	start := named("alice")
	f.host.Push(f.bridge.Location(Query{Content: codec.Encode(start), HasContent: true}))

	v1, err := f.bridge.Apply(ctx, start, Query{}, mutate.Op{Kind: mutate.OpAdd})
	require.NoError(t, err)
	v2, err := f.bridge.Apply(ctx, v1.State, v1.Query, mutate.Op{Kind: mutate.OpRate, ItemID: 1, Delta: 1})
	require.NoError(t, err)

	got, moved := nav.Undo(ctx)
	require.True(t, moved)
	assert.True(t, got.Equal(v1.State))

	got, moved = nav.Undo(ctx)
	require.True(t, moved)
	assert.True(t, got.Equal(start))

	_, moved = nav.Undo(ctx)
	assert.False(t, moved)

	got, moved = nav.Redo(ctx)
	require.True(t, moved)
	assert.True(t, got.Equal(v1.State))
	got, _ = nav.Redo(ctx)
	assert.True(t, got.Equal(v2.State))
}

func TestEndToEnd_AddRateRoundTripDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	cur := model.DefaultListState()
	q := Query{Edit: true}

	v, err := f.bridge.Apply(ctx, cur, q, mutate.Op{Kind: mutate.OpAdd})
	require.NoError(t, err)
	require.Len(t, v.State.Items, 1)
	item := v.State.Items[0]
	assert.Equal(t, f.bridge.Catalog().FirstID(), item.CatalogID)
	assert.Equal(t, 0, item.Rating)

	for range 3 {
		v, err = f.bridge.Apply(ctx, v.State, v.Query, mutate.Op{Kind: mutate.OpRate, ItemID: item.ID, Delta: 1})
		require.NoError(t, err)
	}
	assert.Equal(t, 3, v.State.Items[0].Rating)

	decoded := f.bridge.LoadLocation(ctx, f.host.Current())
	assert.True(t, decoded.Equal(v.State))

	v, err = f.bridge.Apply(ctx, decoded, v.Query, mutate.Op{Kind: mutate.OpDelete, ItemID: item.ID})
	require.NoError(t, err)
	assert.Empty(t, v.State.Items)
}

func TestApply_RenameWithInvalidUTF8KeepsListAndUsers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	q := Query{Edit: true}

	v, err := f.bridge.Apply(ctx, named("alice"), q, mutate.Op{Kind: mutate.OpAdd})
	require.NoError(t, err)
	v, err = f.bridge.Apply(ctx, v.State, v.Query, mutate.Op{Kind: mutate.OpRename, Author: "bo\xffb"})
	require.NoError(t, err)

	got := f.bridge.Load(ctx, ParseLocation(f.host.Current()))
	assert.False(t, got.Fallback)
	assert.Equal(t, "bo�b", got.State.Author)
	assert.Len(t, got.State.Items, 1)
	assert.Equal(t, []string{"alice", "bo�b"}, f.users.List(ctx))
}

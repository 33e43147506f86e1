package mutate

import (
	"errors"
	"net/url"
	"reflect"
	"testing"

	"musicalist/internal/model"
)

func threeItems() model.ListState {
	return model.ListState{
		FormatVersion: model.CurrentFormatVersion,
		Author:        "alice",
		Items: []model.ListItem{
			{ID: 1, CatalogID: 10, Rating: 0},
			{ID: 2, CatalogID: 20, Rating: 5},
			{ID: 3, CatalogID: 30, Rating: 10},
		},
	}
}

func ids(s model.ListState) []uint64 {
	out := []uint64{}
	for _, it := range s.Items {
		out = append(out, it.ID)
	}
	return out
}

type firstID uint64

func (f firstID) FirstID() uint64 { return uint64(f) }

func TestChangeRating_Wraps(t *testing.T) {
	cases := []struct {
		id    uint64
		delta int
		want  int
	}{
		{1, -1, 10},
		{3, +1, 0},
		{2, +1, 6},
		{2, -1, 4},
	}
	for _, c := range cases {
		got := ChangeRating(threeItems(), c.id, c.delta)
		idx := got.FindItem(c.id)
		if got.Items[idx].Rating != c.want {
			t.Fatalf("id %d delta %d: got %d, want %d", c.id, c.delta, got.Items[idx].Rating, c.want)
		}
	}
}

func TestMoveItem_Clamps(t *testing.T) {
	s := threeItems()

	if got := ids(MoveItem(s, 0, -1)); !reflect.DeepEqual(got, []uint64{1, 2, 3}) {
		t.Fatalf("move 0 up should be a no-op, got %v", got)
	}
	if got := ids(MoveItem(s, 2, +1)); !reflect.DeepEqual(got, []uint64{1, 2, 3}) {
		t.Fatalf("move last down should be a no-op, got %v", got)
	}
	if got := ids(MoveItem(s, 0, +1)); !reflect.DeepEqual(got, []uint64{2, 1, 3}) {
		t.Fatalf("move 0 down should swap, got %v", got)
	}
	if got := ids(MoveItem(s, 2, -5)); !reflect.DeepEqual(got, []uint64{3, 2, 1}) {
		t.Fatalf("large delta should clamp to 0 and swap, got %v", got)
	}
	if got := ids(MoveItem(s, 7, -1)); !reflect.DeepEqual(got, []uint64{1, 2, 3}) {
		t.Fatalf("out-of-range position should be a no-op, got %v", got)
	}
	if got := ids(MoveItem(model.DefaultListState(), 0, 1)); len(got) != 0 {
		t.Fatalf("empty list move: %v", got)
	}
}

func TestDeleteItem(t *testing.T) {
	s := threeItems()
	if got := DeleteItem(s, 99); !got.Equal(s) {
		t.Fatalf("deleting a missing id must not change the list: %+v", got)
	}
	if got := ids(DeleteItem(s, 2)); !reflect.DeepEqual(got, []uint64{1, 3}) {
		t.Fatalf("unexpected ids: %v", got)
	}
	if len(s.Items) != 3 || s.Items[1].ID != 2 {
		t.Fatalf("input was mutated: %+v", s.Items)
	}
}

func TestToggleViewedAndSelect(t *testing.T) {
	s := threeItems()
	got := ToggleViewed(s, 2)
	if !got.Items[1].Viewed || s.Items[1].Viewed {
		t.Fatalf("toggle must flip only the copy")
	}
	if again := ToggleViewed(got, 2); again.Items[1].Viewed {
		t.Fatalf("second toggle should flip back")
	}

	sel := SetCatalogID(s, 3, 424242)
	if sel.Items[2].CatalogID != 424242 {
		t.Fatalf("catalog id not set: %+v", sel.Items[2])
	}
}

func TestAddItem_IDPolicy(t *testing.T) {
	s := AddItem(model.DefaultListState(), 7)
	if len(s.Items) != 1 || s.Items[0] != (model.ListItem{ID: 1, CatalogID: 7}) {
		t.Fatalf("unexpected item: %+v", s.Items)
	}

	// len+1 may reuse an id after a delete.
	s = AddItem(DeleteItem(threeItems(), 1), 7)
	if got := ids(s); !reflect.DeepEqual(got, []uint64{2, 3, 3}) {
		t.Fatalf("unexpected ids: %v", got)
	}
	if dups := DuplicateIDs(s); !reflect.DeepEqual(dups, []uint64{3}) {
		t.Fatalf("expected duplicate 3, got %v", dups)
	}
}

func TestRenameAuthor(t *testing.T) {
	s := threeItems()
	got := RenameAuthor(s, "bob")
	if got.Author != "bob" || s.Author != "alice" {
		t.Fatalf("rename: got %q, input %q", got.Author, s.Author)
	}
	if !reflect.DeepEqual(got.Items, s.Items) {
		t.Fatalf("rename must keep items")
	}
}

func TestOp_ParseApplyRoundTrip(t *testing.T) {
	ops := []Op{
		{Kind: OpDelete, ItemID: 2},
		{Kind: OpToggleViewed, ItemID: 1},
		{Kind: OpRate, ItemID: 3, Delta: 1},
		{Kind: OpSelect, ItemID: 1, CatalogID: 4},
		{Kind: OpAdd},
		{Kind: OpMove, Position: 1, Delta: -1},
		{Kind: OpRename, Author: "carol"},
		{Kind: OpToggleEdit},
	}
	for _, o := range ops {
		parsed, err := ParseOp(o.Values())
		if err != nil {
			t.Fatalf("ParseOp(%v): %v", o.Kind, err)
		}
		if parsed != o {
			t.Fatalf("round trip: got %+v, want %+v", parsed, o)
		}
		if _, err := parsed.Apply(threeItems(), firstID(1)); err != nil {
			t.Fatalf("Apply(%v): %v", o.Kind, err)
		}
	}
}

func TestParseOp_Errors(t *testing.T) {
	var unknown UnknownOpError
	if _, err := ParseOp(url.Values{"op": {"explode"}}); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownOpError, got %v", err)
	}
	if _, err := ParseOp(url.Values{}); !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownOpError for missing op, got %v", err)
	}
	var invalid InvalidArgError
	if _, err := ParseOp(url.Values{"op": {"rate"}, "id": {"1"}, "delta": {"lots"}}); !errors.As(err, &invalid) || invalid.Field != "delta" {
		t.Fatalf("expected invalid delta, got %v", err)
	}
	if _, err := ParseOp(url.Values{"op": {"delete"}, "id": {"-3"}}); !errors.As(err, &invalid) || invalid.Field != "id" {
		t.Fatalf("expected invalid id, got %v", err)
	}
}

func TestOp_ApplyAddUsesCatalogFirst(t *testing.T) {
	got, err := Op{Kind: OpAdd}.Apply(model.DefaultListState(), firstID(42))
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.Items[0].CatalogID != 42 {
		t.Fatalf("expected catalog 42, got %d", got.Items[0].CatalogID)
	}
	if _, err := (Op{Kind: "nope"}).Apply(got, nil); err == nil {
		t.Fatalf("expected error for unknown op")
	}
}

func TestRenameAuthor_RepairsInvalidUTF8(t *testing.T) {
	got := RenameAuthor(threeItems(), "bo\xffb")
	if got.Author != "bo�b" {
		t.Fatalf("author %q", got.Author)
	}
	if err := got.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
}

func TestAddItem_StopsAtMaxItems(t *testing.T) {
	s := model.DefaultListState()
	s.Items = make([]model.ListItem, model.MaxItems)
	if got := AddItem(s, 1); len(got.Items) != model.MaxItems {
		t.Fatalf("expected %d items, got %d", model.MaxItems, len(got.Items))
	}
	got, err := Op{Kind: OpAdd}.Apply(s, firstID(1))
	if !errors.Is(err, ErrListFull) || len(got.Items) != model.MaxItems {
		t.Fatalf("Apply: err=%v len=%d", err, len(got.Items))
	}
}

package mutate

import (
	"net/url"
	"strconv"
	"strings"

	"musicalist/internal/model"
)

type OpKind string

const (
	OpDelete       OpKind = "delete"
	OpToggleViewed OpKind = "toggle-viewed"
	OpRate         OpKind = "rate"
	OpSelect       OpKind = "select"
	OpAdd          OpKind = "add"
	OpMove         OpKind = "move"
	OpRename       OpKind = "rename"
	// OpToggleEdit flips the edit flag only; the bridge handles it.
	OpToggleEdit OpKind = "toggle-edit"
)

// Catalog is the part of the catalog a transform needs.
type Catalog interface {
	FirstID() uint64
}

// Op is one user edit in a form that can cross a process boundary.
type Op struct {
	Kind      OpKind `json:"op"`
	ItemID    uint64 `json:"id,omitempty"`
	Position  int    `json:"position,omitempty"`
	Delta     int    `json:"delta,omitempty"`
	CatalogID uint64 `json:"catalogId,omitempty"`
	Author    string `json:"author,omitempty"`
}

// Apply runs the transform for o. OpToggleEdit returns s unchanged.
func (o Op) Apply(s model.ListState, cat Catalog) (model.ListState, error) {
	switch o.Kind {
	case OpDelete:
		return DeleteItem(s, o.ItemID), nil
	case OpToggleViewed:
		return ToggleViewed(s, o.ItemID), nil
	case OpRate:
		return ChangeRating(s, o.ItemID, o.Delta), nil
	case OpSelect:
		return SetCatalogID(s, o.ItemID, o.CatalogID), nil
	case OpAdd:
		if len(s.Items) >= model.MaxItems {
			return s, ErrListFull
		}
		var first uint64
		if cat != nil {
			first = cat.FirstID()
		}
		return AddItem(s, first), nil
	case OpMove:
		return MoveItem(s, o.Position, o.Delta), nil
	case OpRename:
		return RenameAuthor(s, o.Author), nil
	case OpToggleEdit:
		return s.Clone(), nil
	default:
		return s, UnknownOpError{Kind: string(o.Kind)}
	}
}

// ParseOp reads an Op from form or query values:
// op, id, position, delta, catalog, author.
func ParseOp(v url.Values) (Op, error) {
	o := Op{Kind: OpKind(strings.TrimSpace(v.Get("op")))}
	switch o.Kind {
	case OpDelete, OpToggleViewed, OpRate, OpSelect, OpAdd, OpMove, OpRename, OpToggleEdit:
	default:
		return Op{}, UnknownOpError{Kind: string(o.Kind)}
	}

	var err error
	if o.Kind == OpDelete || o.Kind == OpToggleViewed || o.Kind == OpRate || o.Kind == OpSelect {
		if o.ItemID, err = parseUint(v, "id"); err != nil {
			return Op{}, err
		}
	}
	if o.Kind == OpRate || o.Kind == OpMove {
		if o.Delta, err = parseInt(v, "delta"); err != nil {
			return Op{}, err
		}
	}
	if o.Kind == OpMove {
		if o.Position, err = parseInt(v, "position"); err != nil {
			return Op{}, err
		}
	}
	if o.Kind == OpSelect {
		if o.CatalogID, err = parseUint(v, "catalog"); err != nil {
			return Op{}, err
		}
	}
	if o.Kind == OpRename {
		o.Author = strings.TrimSpace(v.Get("author"))
	}
	return o, nil
}

func parseUint(v url.Values, field string) (uint64, error) {
	raw := strings.TrimSpace(v.Get(field))
	n, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, InvalidArgError{Field: field, Value: raw}
	}
	return n, nil
}

func parseInt(v url.Values, field string) (int, error) {
	raw := strings.TrimSpace(v.Get(field))
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, InvalidArgError{Field: field, Value: raw}
	}
	return n, nil
}

// Values is the inverse of ParseOp.
func (o Op) Values() url.Values {
	v := url.Values{}
	v.Set("op", string(o.Kind))
	switch o.Kind {
	case OpDelete, OpToggleViewed:
		v.Set("id", strconv.FormatUint(o.ItemID, 10))
	case OpRate:
		v.Set("id", strconv.FormatUint(o.ItemID, 10))
		v.Set("delta", strconv.Itoa(o.Delta))
	case OpSelect:
		v.Set("id", strconv.FormatUint(o.ItemID, 10))
		v.Set("catalog", strconv.FormatUint(o.CatalogID, 10))
	case OpMove:
		v.Set("position", strconv.Itoa(o.Position))
		v.Set("delta", strconv.Itoa(o.Delta))
	case OpRename:
		v.Set("author", o.Author)
	}
	return v
}

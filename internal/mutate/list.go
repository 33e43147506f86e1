// Package mutate holds the pure list transforms behind every edit. Each
// function returns a new ListState and leaves its input untouched.
package mutate

import "musicalist/internal/model"

func updateItem(s model.ListState, id uint64, f func(model.ListItem) model.ListItem) model.ListState {
	out := s.Clone()
	for i := range out.Items {
		if out.Items[i].ID == id {
			out.Items[i] = f(out.Items[i])
		}
	}
	return out
}

// DeleteItem removes every item with id; an unknown id leaves the list as is.
func DeleteItem(s model.ListState, id uint64) model.ListState {
	out := s.Clone()
	kept := out.Items[:0]
	for _, it := range out.Items {
		if it.ID != id {
			kept = append(kept, it)
		}
	}
	out.Items = kept
	return out
}

func ToggleViewed(s model.ListState, id uint64) model.ListState {
	return updateItem(s, id, func(it model.ListItem) model.ListItem {
		it.Viewed = !it.Viewed
		return it
	})
}

// ChangeRating adds delta and wraps: below MinRating becomes MaxRating and
// above MaxRating becomes MinRating.
func ChangeRating(s model.ListState, id uint64, delta int) model.ListState {
	return updateItem(s, id, func(it model.ListItem) model.ListItem {
		it.Rating = WrapRating(it.Rating + delta)
		return it
	})
}

func WrapRating(r int) int {
	switch {
	case r < model.MinRating:
		return model.MaxRating
	case r > model.MaxRating:
		return model.MinRating
	default:
		return r
	}
}

// SetCatalogID does not check that catalogID exists; unknown ids render
// with an empty name.
func SetCatalogID(s model.ListState, id, catalogID uint64) model.ListState {
	return updateItem(s, id, func(it model.ListItem) model.ListItem {
		it.CatalogID = catalogID
		return it
	})
}

// AddItem appends an unviewed, unrated item. Its id is len(items)+1, which
// can collide with an existing id after deletes; see NextItemID. A list
// already holding model.MaxItems items is returned unchanged.
func AddItem(s model.ListState, catalogID uint64) model.ListState {
	out := s.Clone()
	if len(out.Items) >= model.MaxItems {
		return out
	}
	out.Items = append(out.Items, model.ListItem{
		ID:        NextItemID(s),
		CatalogID: catalogID,
		Viewed:    false,
		Rating:    0,
	})
	return out
}

func NextItemID(s model.ListState) uint64 {
	return uint64(len(s.Items)) + 1
}

// DuplicateIDs lists ids that more than one item shares, in first-seen order.
func DuplicateIDs(s model.ListState) []uint64 {
	seen := map[uint64]int{}
	var out []uint64
	for _, it := range s.Items {
		seen[it.ID]++
		if seen[it.ID] == 2 {
			out = append(out, it.ID)
		}
	}
	return out
}

// MoveItem swaps the item at position with its neighbour position+delta,
// clamping the target into the list. Out-of-range positions are ignored.
func MoveItem(s model.ListState, position, delta int) model.ListState {
	out := s.Clone()
	n := len(out.Items)
	if position < 0 || position >= n {
		return out
	}
	target := position + delta
	if target < 0 {
		target = 0
	}
	if target > n-1 {
		target = n - 1
	}
	if target == position {
		return out
	}
	out.Items[position], out.Items[target] = out.Items[target], out.Items[position]
	return out
}

func RenameAuthor(s model.ListState, author string) model.ListState {
	out := s.Clone()
	out.Author = model.CleanAuthor(author)
	return out
}

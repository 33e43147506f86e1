// Package history models the address history that undo and redo walk.
//
// A Host is anything with browser-like history: a current location, a way
// to push a new one, and a way to step back or forward. Stack is the
// in-process implementation used by the TUI and the CLI; in the web UI the
// browser itself is the host.
package history

import "sync"

const (
	// DefaultLimit is the number of locations a Stack keeps when no limit is given.
	DefaultLimit = 1000
	// MaxLimit bounds configured limits.
	MaxLimit = 100000
)

type Host interface {
	// Current returns the current location ("" when the history is empty).
	Current() string
	// Push adds loc after the current entry, discarding any forward entries.
	Push(loc string)
	// Go moves delta entries (negative = back). Moving past either end is a
	// no-op that returns false.
	Go(delta int) bool
}

// Stack is a bounded in-memory Host. When full, the oldest entry is dropped.
type Stack struct {
	mu      sync.Mutex
	entries []string
	index   int // -1 when empty
	limit   int
}

var _ Host = (*Stack)(nil)

// NewStack returns an empty stack. limit <= 0 selects DefaultLimit and
// limits above MaxLimit are clamped.
func NewStack(limit int) *Stack {
	return &Stack{index: -1, limit: normalizeLimit(limit)}
}

// RestoreStack rebuilds a stack from a snapshot; an out-of-range index is
// clamped to the last entry.
func RestoreStack(entries []string, index, limit int) *Stack {
	s := NewStack(limit)
	if len(entries) > s.limit {
		drop := len(entries) - s.limit
		entries = entries[drop:]
		index -= drop
	}
	s.entries = append([]string(nil), entries...)
	switch {
	case len(s.entries) == 0:
		s.index = -1
	case index < 0:
		s.index = 0
	case index >= len(s.entries):
		s.index = len(s.entries) - 1
	default:
		s.index = index
	}
	return s
}

func normalizeLimit(limit int) int {
	if limit <= 0 {
		return DefaultLimit
	}
	if limit > MaxLimit {
		return MaxLimit
	}
	return limit
}

func (s *Stack) Current() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.index < 0 {
		return ""
	}
	return s.entries[s.index]
}

func (s *Stack) Push(loc string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = append(s.entries[:s.index+1], loc)
	if len(s.entries) > s.limit {
		copy(s.entries, s.entries[1:])
		s.entries = s.entries[:len(s.entries)-1]
	}
	s.index = len(s.entries) - 1
}

func (s *Stack) Go(delta int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if delta == 0 || s.index < 0 {
		return false
	}
	target := s.index + delta
	if target < 0 || target >= len(s.entries) {
		return false
	}
	s.index = target
	return true
}

func (s *Stack) CanGoBack() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index > 0
}

func (s *Stack) CanGoForward() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.index >= 0 && s.index < len(s.entries)-1
}

// Snapshot returns a copy of the entries (oldest first) and the current index.
func (s *Stack) Snapshot() ([]string, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.entries))
	copy(out, s.entries)
	return out, s.index
}

func (s *Stack) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Stack) Limit() int { return s.limit }

package tui

import (
	"os"
	"strings"
	"sync"
)

// Some terminals/fonts render box and check glyphs badly; MUSICALIST_TUI_GLYPHS=ascii
// switches to plain ASCII.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("MUSICALIST_TUI_GLYPHS"))) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphCursor() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▸"
}

func glyphViewed(v bool) string {
	switch {
	case glyphs() == glyphSetASCII && v:
		return "[x]"
	case glyphs() == glyphSetASCII:
		return "[ ]"
	case v:
		return "✓"
	default:
		return "·"
	}
}

// glyphRating draws a 0..top bar.
func glyphRating(r, top int) string {
	full, empty := "★", "☆"
	if glyphs() == glyphSetASCII {
		full, empty = "#", "."
	}
	if r < 0 {
		r = 0
	}
	if r > top {
		r = top
	}
	return strings.Repeat(full, r) + strings.Repeat(empty, top-r)
}

func glyphHRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}

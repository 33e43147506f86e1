// Package tui is the interactive terminal front end. Its navigation host is
// a history.Stack, so undo and redo behave like a browser's back and forward.
package tui

import (
	"context"
	"errors"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func Run(ctx context.Context, opts Options) error {
	if opts.Bridge == nil || opts.Host == nil {
		return errors.New("tui: bridge and host are required")
	}
	applyGlyphPreference()
	// Honors NO_COLOR and CLICOLOR_FORCE.
	lipgloss.SetColorProfile(termenv.NewOutput(os.Stdout).EnvColorProfile())

	_, err := tea.NewProgram(newModel(ctx, opts), tea.WithAltScreen(), tea.WithContext(ctx)).Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

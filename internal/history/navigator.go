package history

import (
	"context"

	"musicalist/internal/model"
)

// Loader re-derives list state from a location.
type Loader interface {
	LoadLocation(ctx context.Context, loc string) model.ListState
}

// Navigator implements undo/redo over a Host. Stepping only moves the host;
// the returned state always comes from decoding the new current location.
type Navigator struct {
	host   Host
	loader Loader
}

func NewNavigator(host Host, loader Loader) *Navigator {
	return &Navigator{host: host, loader: loader}
}

func (n *Navigator) Host() Host { return n.host }

// Step moves delta entries and reloads. moved is false at either end, in
// which case the state of the unchanged current location is returned.
func (n *Navigator) Step(ctx context.Context, delta int) (state model.ListState, moved bool) {
	moved = n.host.Go(delta)
	return n.loader.LoadLocation(ctx, n.host.Current()), moved
}

func (n *Navigator) Undo(ctx context.Context) (model.ListState, bool) {
	return n.Step(ctx, -1)
}

func (n *Navigator) Redo(ctx context.Context) (model.ListState, bool) {
	return n.Step(ctx, 1)
}

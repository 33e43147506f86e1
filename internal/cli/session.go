package cli

import (
	"context"

	"musicalist/internal/codec"
	"musicalist/internal/history"
	"musicalist/internal/mutate"
	"musicalist/internal/store"
	"musicalist/internal/urlstate"
)

// session is one invocation's view of the store: the persisted navigation
// history plus the list its current location resolves to.
type session struct {
	st     store.Store
	stack  *history.Stack
	bridge *urlstate.Bridge
	view   urlstate.View
}

func openSession(ctx context.Context, app *App) (*session, error) {
	st := store.Store{Dir: app.Dir}
	stack, err := st.LoadHistory(ctx, app.cfg.HistoryLimit)
	if err != nil {
		return nil, err
	}
	content := store.NewContent(st, app.logger)
	bridge := urlstate.NewBridge(urlstate.Config{
		Content: content,
		Users:   store.NewUsers(content, app.logger),
		Catalog: app.cat,
		Host:    stack,
		Logger:  app.logger,
	})
	if stack.Len() == 0 {
		stack.Push(bridge.Location(urlstate.Query{}))
	}
	s := &session{st: st, stack: stack, bridge: bridge}
	s.view = bridge.Load(ctx, urlstate.ParseLocation(stack.Current()))
	return s, nil
}

func (s *session) save(ctx context.Context) error {
	return s.st.SaveHistory(ctx, s.stack)
}

// apply runs op against the current list and saves the history, even when
// the op itself failed.
func (s *session) apply(ctx context.Context, op mutate.Op) error {
	v, err := s.bridge.Apply(ctx, s.view.State, s.view.Query, op)
	s.view = v
	if serr := s.save(ctx); serr != nil {
		return serr
	}
	return err
}

// open navigates to loc as if the user followed a link.
func (s *session) open(ctx context.Context, loc string) error {
	q := urlstate.ParseLocation(loc)
	s.view = s.bridge.Load(ctx, q)
	s.stack.Push(s.bridge.Location(q))
	return s.save(ctx)
}

func (s *session) step(ctx context.Context, delta int) (bool, error) {
	nav := history.NewNavigator(s.stack, s.bridge)
	st, moved := nav.Step(ctx, delta)
	if !moved {
		return false, nil
	}
	s.view = urlstate.View{
		State: st,
		Token: codec.Encode(st),
		Query: urlstate.ParseLocation(s.stack.Current()),
	}
	return true, s.save(ctx)
}

func (s *session) reset(ctx context.Context) error {
	s.view = s.bridge.Reset()
	return s.save(ctx)
}

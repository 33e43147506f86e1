package store

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"musicalist/internal/codec"
	"musicalist/internal/model"
)

// Users is the registry of authors seen on this machine, stored under
// UsersKey as a token. Removing an author also removes their slot.
type Users struct {
	backend Backend
	content *Content
	logger  *slog.Logger
}

func NewUsers(content *Content, logger *slog.Logger) *Users {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Users{backend: content.Backend(), content: content, logger: logger}
}

func (u *Users) load(ctx context.Context) model.UserRegistry {
	v, ok, err := u.backend.Get(ctx, UsersKey)
	if err != nil {
		u.logger.Error("users: read failed", "err", err)
		return model.DefaultUserRegistry()
	}
	if !ok {
		return model.DefaultUserRegistry()
	}
	return codec.DecodeUsers(model.Token(v))
}

func (u *Users) save(ctx context.Context, r model.UserRegistry) error {
	return u.backend.Set(ctx, UsersKey, string(codec.EncodeUsers(r)))
}

// List returns authors in insertion order.
func (u *Users) List(ctx context.Context) []string {
	return u.load(ctx).Authors
}

func (u *Users) Contains(ctx context.Context, author string) bool {
	return u.load(ctx).Contains(author)
}

// Add appends author unless it is empty or already present.
func (u *Users) Add(ctx context.Context, author string) error {
	author = model.CleanAuthor(author)
	if author == "" {
		return nil
	}
	r := u.load(ctx)
	if r.Contains(author) {
		return nil
	}
	r.Authors = append(r.Authors, author)
	if err := u.save(ctx, r); err != nil {
		return fmt.Errorf("users: add %q: %w", author, err)
	}
	return nil
}

// Remove deletes author and their slot. When the registry becomes empty the
// anonymous slot is cleared too.
func (u *Users) Remove(ctx context.Context, author string) error {
	r := u.load(ctx)
	if !r.Contains(author) {
		u.logger.Info("users: not registered", "author", author)
		return nil
	}
	kept := make([]string, 0, len(r.Authors))
	for _, a := range r.Authors {
		if a != author {
			kept = append(kept, a)
		}
	}
	r.Authors = kept
	if err := u.save(ctx, r); err != nil {
		return fmt.Errorf("users: remove %q: %w", author, err)
	}
	if err := u.content.Delete(ctx, author); err != nil {
		return fmt.Errorf("users: remove %q content: %w", author, err)
	}
	if len(r.Authors) == 0 {
		if err := u.content.ClearAnonymous(ctx); err != nil {
			return fmt.Errorf("users: clear anonymous content: %w", err)
		}
	}
	return nil
}

// Register records a list seen on the read path: the author is added and
// their slot receives the token. Anonymous lists are ignored.
func (u *Users) Register(ctx context.Context, s model.ListState, t model.Token) error {
	if s.Author == "" {
		return nil
	}
	if err := u.Add(ctx, s.Author); err != nil {
		return err
	}
	return u.content.Set(ctx, s.Author, t)
}

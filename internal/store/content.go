package store

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"

	"musicalist/internal/model"
)

// Storage keys. The anonymous slot is AnonymousKey; each author has
// AnonymousKey + "/" + author.
const (
	AnonymousKey = "content"
	UsersKey     = "users"
)

func ContentKey(author string) string {
	if author == "" {
		return AnonymousKey
	}
	return AnonymousKey + "/" + author
}

// Content stores list tokens in per-author slots plus the anonymous slot.
type Content struct {
	backend Backend
	logger  *slog.Logger
}

func NewContent(b Backend, logger *slog.Logger) *Content {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Content{backend: b, logger: logger}
}

func (c *Content) Backend() Backend { return c.backend }

// Get reads the slot for author ("" = anonymous). A read failure is logged
// and reported as a miss.
func (c *Content) Get(ctx context.Context, author string) (model.Token, bool) {
	key := ContentKey(author)
	v, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.Error("content: read failed", "key", key, "err", err)
		return "", false
	}
	if !ok || v == "" {
		return "", false
	}
	return model.Token(v), true
}

func (c *Content) Set(ctx context.Context, author string, t model.Token) error {
	key := ContentKey(author)
	c.logger.Debug("content: save", "key", key)
	return c.backend.Set(ctx, key, string(t))
}

func (c *Content) Delete(ctx context.Context, author string) error {
	key := ContentKey(author)
	c.logger.Debug("content: delete", "key", key)
	return c.backend.Delete(ctx, key)
}

func (c *Content) ClearAnonymous(ctx context.Context) error {
	return c.Delete(ctx, "")
}

// Persist applies the write policy for an edited list: nothing for an
// anonymous list, otherwise both the anonymous slot and the author's slot.
func (c *Content) Persist(ctx context.Context, s model.ListState, t model.Token) error {
	if s.Author == "" {
		return nil
	}
	return errors.Join(
		c.Set(ctx, "", t),
		c.Set(ctx, s.Author, t),
	)
}

// Authors lists every author that owns a slot, sorted.
func (c *Content) Authors(ctx context.Context) ([]string, error) {
	keys, err := c.backend.Keys(ctx, AnonymousKey+"/")
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		a := strings.TrimPrefix(k, AnonymousKey+"/")
		if a != "" {
			out = append(out, a)
		}
	}
	return out, nil
}

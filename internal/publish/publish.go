// Package publish writes the locally stored lists out as a small tree of
// markdown files: an index plus one page per author.
package publish

import (
	"context"
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"musicalist/internal/catalog"
	"musicalist/internal/codec"
	"musicalist/internal/store"
	"musicalist/internal/urlstate"
)

type WriteOptions struct {
	Overwrite bool

	// ShareBase prefixes each page's share link; no link when empty.
	ShareBase string
}

type WriteResult struct {
	Written []string `json:"written"`
	// Missing lists registered authors with no stored list.
	Missing []string `json:"missing,omitempty"`
}

// WriteAll renders the anonymous slot (as list.md) and every registered
// author's slot (as users/<author>.md) under toDir, then an index.md.
func WriteAll(ctx context.Context, content *store.Content, users *store.Users, cat *catalog.Catalog, toDir string, opt WriteOptions) (WriteResult, error) {
	if content == nil || users == nil {
		return WriteResult{}, errors.New("missing store")
	}
	if cat == nil {
		cat = catalog.Default(nil)
	}
	toDir = strings.TrimSpace(toDir)
	if toDir == "" {
		return WriteResult{}, errors.New("missing --to")
	}
	toDir = filepath.Clean(toDir)

	usersDir := filepath.Join(toDir, "users")
	if err := os.MkdirAll(usersDir, 0o755); err != nil {
		return WriteResult{}, err
	}

	var res WriteResult
	var index []indexEntry

	page := func(author, name string) error {
		tok, ok := content.Get(ctx, author)
		if !ok {
			if author != "" {
				res.Missing = append(res.Missing, author)
			}
			return nil
		}
		s := codec.DecodeList(tok)
		share := ""
		if opt.ShareBase != "" {
			share = strings.TrimRight(opt.ShareBase, "/") +
				urlstate.Location("", urlstate.Query{Content: codec.Encode(s), HasContent: true})
		}
		p := filepath.Join(toDir, filepath.FromSlash(name))
		if err := writeFile(p, []byte(RenderListMarkdown(s, cat, share)), opt.Overwrite); err != nil {
			return err
		}
		res.Written = append(res.Written, p)
		index = append(index, indexEntry{Author: author, Link: linkPath(name), Items: len(s.Items)})
		return nil
	}

	if err := page("", "list.md"); err != nil {
		return WriteResult{}, err
	}
	for _, a := range users.List(ctx) {
		if err := page(a, "users/"+url.PathEscape(a)+".md"); err != nil {
			return WriteResult{}, err
		}
	}

	indexPath := filepath.Join(toDir, "index.md")
	if err := writeFile(indexPath, []byte(renderIndexMarkdown(index)), opt.Overwrite); err != nil {
		return WriteResult{}, err
	}
	res.Written = append(res.Written, indexPath)
	return res, nil
}

// linkPath escapes each segment of a slash path for use as a markdown link.
func linkPath(name string) string {
	segs := strings.Split(name, "/")
	for i, s := range segs {
		segs[i] = url.PathEscape(s)
	}
	return strings.Join(segs, "/")
}

func writeFile(path string, b []byte, overwrite bool) error {
	if !overwrite {
		if _, err := os.Stat(path); err == nil {
			return errors.New("file exists (use --overwrite): " + path)
		}
	}
	return os.WriteFile(path, b, 0o644)
}

package urlstate

import (
	"net/url"
	"strconv"
	"strings"

	"musicalist/internal/model"
)

// DefaultPath is the route every location points at.
const DefaultPath = "/musicalist/"

// Query parameter names.
const (
	ParamContent = "content"
	ParamEdit    = "edit"
	ParamUser    = "user"
)

// Query is the parsed address state. The zero value is the documented
// default: content absent, edit false, user absent.
type Query struct {
	// Content is the list token; HasContent distinguishes "content=" from
	// no content parameter (absent means: read local storage).
	Content    model.Token
	HasContent bool

	// Edit selects edit mode over read-only view mode.
	Edit bool

	// User is a one-shot selector: load this author's stored list.
	User    string
	HasUser bool
}

func ParseQuery(v url.Values) Query {
	var q Query
	if v.Has(ParamContent) {
		q.HasContent = true
		q.Content = model.Token(v.Get(ParamContent))
	}
	if raw := strings.TrimSpace(v.Get(ParamEdit)); raw != "" {
		if b, err := strconv.ParseBool(raw); err == nil {
			q.Edit = b
		}
	}
	if v.Has(ParamUser) {
		q.HasUser = true
		q.User = v.Get(ParamUser)
	}
	return q
}

// ParseLocation accepts a full URL, a path with a query, or a bare "?query".
// Anything unparseable yields the default Query.
func ParseLocation(loc string) Query {
	loc = strings.TrimSpace(loc)
	if loc == "" {
		return Query{}
	}
	u, err := url.Parse(loc)
	if err != nil {
		return Query{}
	}
	v, err := url.ParseQuery(u.RawQuery)
	if err != nil {
		return Query{}
	}
	return ParseQuery(v)
}

func (q Query) Values() url.Values {
	v := url.Values{}
	if q.HasContent {
		v.Set(ParamContent, string(q.Content))
	}
	v.Set(ParamEdit, strconv.FormatBool(q.Edit))
	if q.HasUser {
		v.Set(ParamUser, q.User)
	}
	return v
}

// Location renders path plus the encoded query.
func Location(path string, q Query) string {
	if path == "" {
		path = DefaultPath
	}
	return path + "?" + q.Values().Encode()
}

package web

import (
	"context"
	"embed"
	"encoding/hex"
	"errors"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/zeebo/blake3"

	"musicalist/internal/catalog"
	"musicalist/internal/model"
	"musicalist/internal/mutate"
	"musicalist/internal/store"
	"musicalist/internal/urlstate"
)

//go:embed templates/*.html static/*.css about.md
var assetsFS embed.FS

type ServerConfig struct {
	Addr    string
	Backend store.Backend
	Catalog *catalog.Catalog
	Logger  *slog.Logger

	// ReadOnly rejects every POST; lists can still be viewed.
	ReadOnly bool
}

// Server renders one list page per address. The browser's own history is
// the navigation host: every edit is a POST answered with a redirect to the
// new address, and undo/redo is the browser's back/forward.
type Server struct {
	// mu serializes read-modify-write of local storage across requests.
	mu sync.Mutex

	cfg    ServerConfig
	tmpl   *template.Template
	bridge *urlstate.Bridge
	logger *slog.Logger
	forms  *formSigner
	md     goldmark.Markdown
}

func NewServer(cfg ServerConfig) (*Server, error) {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		return nil, errors.New("web: addr is empty")
	}
	if cfg.Backend == nil {
		return nil, errors.New("web: backend is nil")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if cfg.Catalog == nil {
		cfg.Catalog = catalog.Default(logger)
	}

	tmpl, err := template.New("base").Funcs(template.FuncMap{
		"trim": strings.TrimSpace,
	}).ParseFS(assetsFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	forms, err := newFormSigner()
	if err != nil {
		return nil, err
	}

	content := store.NewContent(cfg.Backend, logger)
	bridge := urlstate.NewBridge(urlstate.Config{
		Content: content,
		Users:   store.NewUsers(content, logger),
		Catalog: cfg.Catalog,
		Logger:  logger,
	})
	return &Server{
		cfg:    cfg,
		tmpl:   tmpl,
		bridge: bridge,
		logger: logger,
		forms:  forms,
		md:     newMarkdown(strings.TrimSuffix(bridge.Path(), "/")),
	}, nil
}

func (s *Server) Addr() string { return s.cfg.Addr }

func (s *Server) Handler() http.Handler {
	base := strings.TrimSuffix(s.bridge.Path(), "/")
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /static/app.css", s.handleAppCSS)
	mux.HandleFunc("GET "+base+"/{$}", s.handleList)
	mux.HandleFunc("GET "+base+"/about", s.handleAbout)
	mux.HandleFunc("POST "+base+"/apply", s.handleApply)
	mux.HandleFunc("POST "+base+"/users/{author}/delete", s.handleUserDelete)
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, s.bridge.Path(), http.StatusFound)
	})
	return mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) handleAppCSS(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("static/app.css")
	if err != nil || len(b) == 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/css; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(b)
}

type rowVM struct {
	Pos       int
	ID        uint64
	CatalogID uint64
	Name      string
	Ref       string
	Viewed    bool
	Rating    int
}

type userVM struct {
	Name   string
	Href   string
	Delete string
}

type listVM struct {
	Title    string
	Base     string
	Author   string
	Edit     bool
	ReadOnly bool

	// Hidden fields that carry the current address into every form.
	Content   string
	EditValue string
	FormToken string

	Rows    []rowVM
	Catalog []model.CatalogEntry
	Users   []userVM

	ShareURL string
	NewURL   string
	Fallback bool
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	q := urlstate.ParseQuery(r.URL.Query())

	s.mu.Lock()
	v := s.bridge.Load(r.Context(), q)
	vm := s.listVM(r.Context(), v)
	s.mu.Unlock()

	s.writeCachedHTML(w, r, "list.html", vm)
}

func (s *Server) listVM(ctx context.Context, v urlstate.View) listVM {
	cat := s.bridge.Catalog()
	base := strings.TrimSuffix(s.bridge.Path(), "/")

	rows := make([]rowVM, 0, len(v.State.Items))
	for i, it := range v.State.Items {
		rows = append(rows, rowVM{
			Pos:       i,
			ID:        it.ID,
			CatalogID: it.CatalogID,
			Name:      cat.Name(it.CatalogID),
			Ref:       cat.ReferenceURL(it.CatalogID),
			Viewed:    it.Viewed,
			Rating:    it.Rating,
		})
	}
	users := []userVM{}
	for _, a := range s.bridge.Users().List(ctx) {
		users = append(users, userVM{
			Name:   a,
			Href:   s.bridge.UserLocation(a),
			Delete: base + "/users/" + url.PathEscape(a) + "/delete",
		})
	}
	title := "Musicalist"
	if v.State.Author != "" {
		title = v.State.Author + "'s musicals"
	}
	return listVM{
		Title:     title,
		Base:      base,
		Author:    v.State.Author,
		Edit:      v.Query.Edit,
		ReadOnly:  s.cfg.ReadOnly,
		Content:   string(v.Token),
		EditValue: strconv.FormatBool(v.Query.Edit),
		FormToken: s.forms.issue(),
		Rows:      rows,
		Catalog:   cat.Entries(),
		Users:     users,
		ShareURL:  s.bridge.ShareLocation(v.State),
		NewURL:    s.bridge.NewLocation(),
		Fallback:  v.Fallback,
	}
}

// handleApply runs one edit against the list named by the form's content
// and edit fields, then redirects to the resulting address.
func (s *Server) handleApply(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ReadOnly {
		http.Error(w, "read-only", http.StatusForbidden)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !s.forms.verify(r.PostForm.Get("token")) {
		http.Error(w, "invalid form token", http.StatusForbidden)
		return
	}
	op, err := mutate.ParseOp(r.PostForm)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	q := urlstate.ParseQuery(url.Values{
		urlstate.ParamContent: {r.PostForm.Get(urlstate.ParamContent)},
		urlstate.ParamEdit:    {r.PostForm.Get(urlstate.ParamEdit)},
	})

	s.mu.Lock()
	prev := s.bridge.Load(r.Context(), q)
	next, err := s.bridge.Apply(r.Context(), prev.State, q, op)
	s.mu.Unlock()

	var unknown mutate.UnknownOpError
	if errors.As(err, &unknown) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if errors.Is(err, mutate.ErrListFull) {
		http.Error(w, err.Error(), http.StatusConflict)
		return
	}
	// Storage failures are logged by the bridge; the new address still
	// carries the whole list.
	http.Redirect(w, r, s.bridge.Location(next.Query), http.StatusSeeOther)
}

func (s *Server) handleUserDelete(w http.ResponseWriter, r *http.Request) {
	if s.cfg.ReadOnly {
		http.Error(w, "read-only", http.StatusForbidden)
		return
	}
	_ = r.ParseForm()
	if !s.forms.verify(r.PostForm.Get("token")) {
		http.Error(w, "invalid form token", http.StatusForbidden)
		return
	}
	author := strings.TrimSpace(r.PathValue("author"))
	if author == "" {
		http.Error(w, "missing author", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	v, err := s.bridge.DeleteUser(r.Context(), author)
	s.mu.Unlock()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	http.Redirect(w, r, s.bridge.Location(v.Query), http.StatusSeeOther)
}

type aboutVM struct {
	Title string
	Base  string
	Body  template.HTML
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	b, err := assetsFS.ReadFile("about.md")
	if err != nil {
		http.NotFound(w, r)
		return
	}
	base := strings.TrimSuffix(s.bridge.Path(), "/")
	s.mu.Lock()
	users := s.bridge.Users().List(r.Context())
	s.mu.Unlock()
	vars := newPageVars(base, s.bridge.Catalog(), users)
	s.writeCachedHTML(w, r, "about.html", aboutVM{
		Title: "About",
		Base:  base,
		Body:  renderPage(s.md, string(b), vars),
	})
}

func (s *Server) renderTemplate(name string, data any) (string, error) {
	var b strings.Builder
	if err := s.tmpl.ExecuteTemplate(&b, name, data); err != nil {
		return "", err
	}
	return b.String(), nil
}

// writeCachedHTML renders name and answers If-None-Match with 304 when the
// page has not changed. The ETag is a BLAKE3 digest of the rendered page.
func (s *Server) writeCachedHTML(w http.ResponseWriter, r *http.Request, name string, data any) {
	html, err := s.renderTemplate(name, data)
	if err != nil {
		s.logger.Error("web: render", "template", name, "err", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	etag := pageETag(html)
	w.Header().Set("ETag", etag)
	w.Header().Set("Cache-Control", "no-cache")
	if match := r.Header.Get("If-None-Match"); match != "" && match == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, html)
}

func pageETag(html string) string {
	sum := blake3.Sum256([]byte(html))
	return `"` + hex.EncodeToString(sum[:16]) + `"`
}

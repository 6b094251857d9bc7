package web

import (
	"context"
	"html/template"
	"net/http"
	"time"

	"github.com/example/projecthub/internal/auth"
	"github.com/example/projecthub/internal/domain/user"
	"github.com/example/projecthub/internal/logutil"
	"github.com/example/projecthub/internal/projects"
	"github.com/example/projecthub/internal/session"
	"github.com/julienschmidt/httprouter"
	"github.com/rs/zerolog"
)

type Server struct {
	Auth     auth.Service
	Sessions *session.Manager
	Projects *projects.Repo
	Log      zerolog.Logger

	tmpl *template.Template
}

func NewServer(a auth.Service, sessions *session.Manager, repo *projects.Repo, log zerolog.Logger) (*Server, error) {
	tmpl, err := ParseTemplates()
	if err != nil {
		return nil, err
	}
	return &Server{Auth: a, Sessions: sessions, Projects: repo, Log: log, tmpl: tmpl}, nil
}

func (s *Server) Routes() http.Handler {
	r := httprouter.New()

	r.Handler(http.MethodGet, "/", http.HandlerFunc(s.handleIndex))
	r.Handler(http.MethodGet, "/aboutus", http.HandlerFunc(s.handleAbout))
	r.Handler(http.MethodGet, "/impressum", http.HandlerFunc(s.handleImpressum))

	r.Handler(http.MethodGet, "/login", s.requireGuest(http.HandlerFunc(s.handleLoginForm)))
	r.Handler(http.MethodPost, "/login", http.HandlerFunc(s.handleLoginSubmit))
	r.Handler(http.MethodGet, "/register", s.requireGuest(http.HandlerFunc(s.handleRegisterForm)))
	r.Handler(http.MethodPost, "/register", http.HandlerFunc(s.handleRegisterSubmit))
	r.Handler(http.MethodDelete, "/logout", http.HandlerFunc(s.handleLogout))

	r.Handler(http.MethodGet, "/preferences", s.requireAuth(http.HandlerFunc(s.handlePreferences)))
	r.Handler(http.MethodGet, "/projects", s.requireAuth(http.HandlerFunc(s.handleProjects)))
	r.Handler(http.MethodGet, "/create", s.requireAuth(http.HandlerFunc(s.handleCreateForm)))
	r.Handler(http.MethodPost, "/create", s.requireAuth(http.HandlerFunc(s.handleCreateSubmit)))

	r.ServeFiles("/static/*filepath", staticFiles())
	r.NotFound = http.HandlerFunc(s.handleNotFound)

	return s.logging(methodOverride(r))
}

// methodOverride rewrites POST requests carrying a _method form field, so
// plain HTML forms can issue the DELETE /logout the router expects.
func methodOverride(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			switch m := r.PostFormValue("_method"); m {
			case http.MethodDelete, http.MethodPut, http.MethodPatch:
				r.Method = m
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		r = r.WithContext(logutil.WithLogger(r.Context(), s.Log))
		next.ServeHTTP(w, r)
		s.Log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("took", time.Since(start)).
			Msg("request")
	})
}

type ctxKeyUser struct{}

// CurrentUser returns the authenticated user a guard stored on the request
// context.
func CurrentUser(r *http.Request) (user.User, bool) {
	u, ok := r.Context().Value(ctxKeyUser{}).(user.User)
	return u, ok
}

// requireAuth lets the request through only when it carries a valid
// session, and makes the resolved user available via CurrentUser. It never
// mutates session state.
func (s *Server) requireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u, ok := s.Sessions.Current(r)
		if !ok {
			http.Redirect(w, r, "/login", http.StatusFound)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeyUser{}, u)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// requireGuest is the mirror guard: already-authenticated users are sent
// back home instead of seeing the login or registration forms.
func (s *Server) requireGuest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.Sessions.Current(r); ok {
			http.Redirect(w, r, "/", http.StatusFound)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// viewData is the contract with the templates: auth state, an optional form
// error, and page-specific extras.
type viewData struct {
	IsAuth       bool
	ErrorMessage string
	Username     string
	Projects     []projects.Project
}

func (s *Server) render(w http.ResponseWriter, name string, data viewData) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.Log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

func (s *Server) renderStatus(w http.ResponseWriter, code int, name string, data viewData) {
	w.Header().Set("content-type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if err := s.tmpl.ExecuteTemplate(w, name, data); err != nil {
		s.Log.Error().Err(err).Str("template", name).Msg("render failed")
	}
}

package web

import (
	"errors"
	"net/http"
	"strings"

	"github.com/example/projecthub/internal/auth"
	"github.com/example/projecthub/internal/logutil"
	"github.com/example/projecthub/internal/projects"
)

func (s *Server) isAuth(r *http.Request) bool {
	_, ok := s.Sessions.Current(r)
	return ok
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, "index.html", viewData{IsAuth: s.isAuth(r)})
}

func (s *Server) handleAbout(w http.ResponseWriter, r *http.Request) {
	s.render(w, "aboutus.html", viewData{IsAuth: s.isAuth(r)})
}

func (s *Server) handleImpressum(w http.ResponseWriter, r *http.Request) {
	s.render(w, "impressum.html", viewData{IsAuth: s.isAuth(r)})
}

func (s *Server) handleNotFound(w http.ResponseWriter, r *http.Request) {
	s.renderStatus(w, http.StatusNotFound, "404.html", viewData{IsAuth: s.isAuth(r)})
}

func (s *Server) handleLoginForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "login.html", viewData{ErrorMessage: s.Sessions.TakeFlash(w, r)})
}

func (s *Server) handleLoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	username := r.FormValue("username")
	password := r.FormValue("password")

	u, err := s.Auth.Authenticate(r.Context(), username, password)
	if err != nil {
		s.Sessions.SetFlash(w, loginMessage(err))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	if err := s.Sessions.Establish(w, u); err != nil {
		logger := logutil.GetOrDefault(r.Context())
		logger.Error().Err(err).Msg("establish session")
		s.Sessions.SetFlash(w, loginMessage(auth.ErrInternal))
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	http.Redirect(w, r, "/preferences", http.StatusFound)
}

func (s *Server) handleRegisterForm(w http.ResponseWriter, r *http.Request) {
	s.render(w, "register.html", viewData{})
}

func (s *Server) handleRegisterSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	reg := auth.Registration{
		Username:        r.FormValue("username"),
		Email:           r.FormValue("email"),
		Gender:          r.FormValue("gender"),
		Password:        r.FormValue("password"),
		PasswordConfirm: r.FormValue("password2"),
		TermsAccepted:   r.FormValue("termsofservice") != "",
	}
	if _, err := s.Auth.Register(r.Context(), reg); err != nil {
		logger := logutil.GetOrDefault(r.Context())
		logger.Warn().Err(err).Str("username", reg.Username).Msg("registration rejected")
		s.render(w, "register.html", viewData{ErrorMessage: registerMessage(err)})
		return
	}
	http.Redirect(w, r, "/login", http.StatusFound)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	s.Sessions.Destroy(w, r)
	http.Redirect(w, r, "/", http.StatusFound)
}

func (s *Server) handlePreferences(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r)
	s.render(w, "preferences.html", viewData{IsAuth: true, Username: u.Username})
}

func (s *Server) handleProjects(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r)
	s.render(w, "projects.html", viewData{
		IsAuth:   true,
		Username: u.Username,
		Projects: s.Projects.ListByOwner(r.Context(), u.ID),
	})
}

func (s *Server) handleCreateForm(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r)
	s.render(w, "create.html", viewData{IsAuth: true, Username: u.Username})
}

func (s *Server) handleCreateSubmit(w http.ResponseWriter, r *http.Request) {
	u, _ := CurrentUser(r)
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	p := projects.Project{
		OwnerID:     u.ID,
		Name:        strings.TrimSpace(r.FormValue("name")),
		Description: strings.TrimSpace(r.FormValue("description")),
	}
	if _, err := s.Projects.Create(r.Context(), p); err != nil {
		s.render(w, "create.html", viewData{
			IsAuth:       true,
			Username:     u.Username,
			ErrorMessage: "Please give your project a name",
		})
		return
	}
	http.Redirect(w, r, "/projects", http.StatusFound)
}

// loginMessage maps an authentication rejection to the flash text the login
// form shows after the redirect.
func loginMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrUnknownUser):
		return "This user does not exist"
	case errors.Is(err, auth.ErrWrongPassword):
		return "Wrong password. Please try again."
	default:
		return "An unexpected error occurred. Please try again later."
	}
}

func registerMessage(err error) string {
	switch {
	case errors.Is(err, auth.ErrTermsNotAccepted):
		return "You must accept the terms of service"
	case errors.Is(err, auth.ErrPasswordMismatch):
		return "Please make sure your passwords match"
	case errors.Is(err, auth.ErrUsernameTaken):
		return "A user with this username already exists"
	default:
		return "An unexpected error occurred. Please try again later."
	}
}

package web

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/example/projecthub/internal/auth"
	"github.com/example/projecthub/internal/projects"
	"github.com/example/projecthub/internal/session"
	"github.com/example/projecthub/internal/store"
	"github.com/gorilla/securecookie"
	"github.com/rs/zerolog"
	"github.com/steinfletcher/apitest"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*Server, auth.Service) {
	t.Helper()
	users, err := store.Open(context.Background(), store.NewMemoryPersister())
	require.NoError(t, err)
	sessions, err := session.NewManager(securecookie.GenerateRandomKey(32), securecookie.GenerateRandomKey(32), users, time.Hour)
	require.NoError(t, err)
	repo, err := projects.OpenRepo("")
	require.NoError(t, err)
	svc := auth.Service{Users: users}
	s, err := NewServer(svc, sessions, repo, zerolog.Nop())
	require.NoError(t, err)
	return s, svc
}

func register(t *testing.T, svc auth.Service, username, password string) {
	t.Helper()
	_, err := svc.Register(context.Background(), auth.Registration{
		Username:        username,
		Email:           username + "@example.com",
		Password:        password,
		PasswordConfirm: password,
		TermsAccepted:   true,
	})
	require.NoError(t, err)
}

func TestPublicPages(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()

	apitest.Handler(h).Get("/").Expect(t).Status(http.StatusOK).End()
	apitest.Handler(h).Get("/aboutus").Expect(t).Status(http.StatusOK).End()
	apitest.Handler(h).Get("/impressum").Expect(t).Status(http.StatusOK).End()
	apitest.Handler(h).Get("/login").Expect(t).Status(http.StatusOK).End()
	apitest.Handler(h).Get("/register").Expect(t).Status(http.StatusOK).End()
}

func TestNotFound(t *testing.T) {
	s, _ := newTestServer(t)
	apitest.Handler(s.Routes()).Get("/no-such-page").Expect(t).Status(http.StatusNotFound).End()
}

func TestProtectedPagesRedirectAnonymous(t *testing.T) {
	s, _ := newTestServer(t)
	h := s.Routes()

	for _, path := range []string{"/preferences", "/projects", "/create"} {
		apitest.Handler(h).Get(path).
			Expect(t).
			Status(http.StatusFound).
			Header("Location", "/login").
			End()
	}

	// the guard is a pure predicate: asking twice gives the same answer
	apitest.Handler(h).Get("/preferences").
		Expect(t).
		Status(http.StatusFound).
		Header("Location", "/login").
		End()
}

func TestRegisterSubmit(t *testing.T) {
	s, svc := newTestServer(t)
	h := s.Routes()

	apitest.Handler(h).Post("/register").
		FormData("username", "alice").
		FormData("email", "alice@example.com").
		FormData("password", "secret1").
		FormData("password2", "secret1").
		FormData("termsofservice", "on").
		Expect(t).
		Status(http.StatusFound).
		Header("Location", "/login").
		End()
	require.Equal(t, 1, svc.Users.Len())

	// missing terms: first failing check wins even though the passwords
	// also differ, and the form is re-rendered instead of redirecting
	form := url.Values{
		"username": {"bob"}, "email": {"bob@example.com"},
		"password": {"secret1"}, "password2": {"mismatch"},
	}
	req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
	req.Header.Set("content-type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Contains(t, rec.Body.String(), "terms of service")
	require.Equal(t, 1, svc.Users.Len())
}

func TestRegisterRejectionsRenderForm(t *testing.T) {
	s, svc := newTestServer(t)
	register(t, svc, "alice", "secret1")
	h := s.Routes()

	cases := []struct {
		name    string
		form    map[string]string
		message string
	}{
		{
			name: "password mismatch",
			form: map[string]string{
				"username": "bob", "email": "bob@example.com",
				"password": "secret1", "password2": "secret2", "termsofservice": "on",
			},
			message: "passwords match",
		},
		{
			name: "username taken",
			form: map[string]string{
				"username": "alice", "email": "other@example.com",
				"password": "secret1", "password2": "secret1", "termsofservice": "on",
			},
			message: "already exists",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			form := url.Values{}
			for k, v := range tc.form {
				form.Set(k, v)
			}
			req := httptest.NewRequest(http.MethodPost, "/register", strings.NewReader(form.Encode()))
			req.Header.Set("content-type", "application/x-www-form-urlencoded")
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			require.Equal(t, http.StatusOK, rec.Code)
			require.Contains(t, rec.Body.String(), tc.message)
		})
	}
	require.Equal(t, 1, svc.Users.Len())
}

func TestLoginLogoutScenario(t *testing.T) {
	s, svc := newTestServer(t)
	register(t, svc, "alice", "secret1")

	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	postForm := func(path string, form url.Values) *http.Response {
		t.Helper()
		resp, err := client.Post(ts.URL+path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()))
		require.NoError(t, err)
		return resp
	}
	get := func(path string) *http.Response {
		t.Helper()
		resp, err := client.Get(ts.URL + path)
		require.NoError(t, err)
		return resp
	}
	readBody := func(resp *http.Response) string {
		t.Helper()
		defer resp.Body.Close()
		b, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return string(b)
	}

	// wrong password: back to /login with a flash, still no session
	resp := postForm("/login", url.Values{"username": {"alice"}, "password": {"wrong"}})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	body := readBody(get("/login"))
	require.Contains(t, body, "Wrong password")

	resp = get("/preferences")
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))

	// correct password: session established, protected pages open up
	resp = postForm("/login", url.Values{"username": {"alice"}, "password": {"secret1"}})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/preferences", resp.Header.Get("Location"))

	for i := 0; i < 2; i++ {
		resp = get("/preferences")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// authenticated users are bounced away from the login form
	resp = get("/login")
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	// logout through the HTML form's method override
	resp = postForm("/logout", url.Values{"_method": {"DELETE"}})
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/", resp.Header.Get("Location"))

	resp = get("/preferences")
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/login", resp.Header.Get("Location"))
}

func TestCreateProjectFlow(t *testing.T) {
	s, svc := newTestServer(t)
	register(t, svc, "alice", "secret1")

	ts := httptest.NewServer(s.Routes())
	defer ts.Close()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)
	client := &http.Client{
		Jar: jar,
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	resp, err := client.Post(ts.URL+"/login", "application/x-www-form-urlencoded",
		strings.NewReader(url.Values{"username": {"alice"}, "password": {"secret1"}}.Encode()))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp, err = client.Post(ts.URL+"/create", "application/x-www-form-urlencoded",
		strings.NewReader(url.Values{"name": {"garden"}, "description": {"herbs"}}.Encode()))
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	require.Equal(t, "/projects", resp.Header.Get("Location"))

	resp, err = client.Get(ts.URL + "/projects")
	require.NoError(t, err)
	b, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Contains(t, string(b), "garden")
}

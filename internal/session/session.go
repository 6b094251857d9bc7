package session

import (
	"net/http"
	"time"

	"github.com/allegro/bigcache/v3"
	"github.com/example/projecthub/internal/domain/user"
	"github.com/example/projecthub/internal/store"
	"github.com/google/uuid"
	"github.com/gorilla/securecookie"
)

const cookieName = "projecthub_session"

// Manager maps opaque session tokens to user ids. The token travels in a
// securecookie-sealed session cookie; the token -> id association lives
// server-side in an expiring cache, so dropping the entry is enough to kill
// the session regardless of what the client still holds.
type Manager struct {
	sc     *securecookie.SecureCookie
	tokens *bigcache.BigCache
	users  *store.Store
}

func NewManager(hashKey, blockKey []byte, users *store.Store, ttl time.Duration) (*Manager, error) {
	cache, err := bigcache.NewBigCache(bigcache.DefaultConfig(ttl))
	if err != nil {
		return nil, err
	}
	return &Manager{
		sc:     securecookie.New(hashKey, blockKey),
		tokens: cache,
		users:  users,
	}, nil
}

// Establish issues a fresh token for u and sets the session cookie. What is
// stored against the token is only the user id; everything else is resolved
// from the store on each request.
func (m *Manager) Establish(w http.ResponseWriter, u user.User) error {
	token := uuid.NewString()
	if err := m.tokens.Set(token, []byte(u.ID)); err != nil {
		return err
	}
	encoded, err := m.sc.Encode(cookieName, map[string]string{"sid": token})
	if err != nil {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

// Current resolves the request's session back to a user record. Any failure
// along the way (no cookie, bad seal, expired token, id no longer in the
// store) means the requester is unauthenticated.
func (m *Manager) Current(r *http.Request) (user.User, bool) {
	token, ok := m.token(r)
	if !ok {
		return user.User{}, false
	}
	id, err := m.tokens.Get(token)
	if err != nil {
		// expired or evicted entries come back as ErrEntryNotFound
		return user.User{}, false
	}
	return m.users.FindByID(r.Context(), string(id))
}

// Destroy invalidates the session immediately and unconditionally: the
// server-side entry is dropped and the cookie expired.
func (m *Manager) Destroy(w http.ResponseWriter, r *http.Request) {
	if token, ok := m.token(r); ok {
		_ = m.tokens.Delete(token)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (m *Manager) token(r *http.Request) (string, bool) {
	c, err := r.Cookie(cookieName)
	if err != nil {
		return "", false
	}
	value := map[string]string{}
	if err := m.sc.Decode(cookieName, c.Value, &value); err != nil {
		return "", false
	}
	token := value["sid"]
	if token == "" {
		return "", false
	}
	return token, true
}

package session

import "net/http"

const flashCookie = "projecthub_flash"

// SetFlash stores a one-shot message that survives exactly one redirect.
func (m *Manager) SetFlash(w http.ResponseWriter, msg string) {
	encoded, err := m.sc.Encode(flashCookie, msg)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    encoded,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// TakeFlash returns the pending flash message, if any, and clears it.
func (m *Manager) TakeFlash(w http.ResponseWriter, r *http.Request) string {
	c, err := r.Cookie(flashCookie)
	if err != nil {
		return ""
	}
	var msg string
	if err := m.sc.Decode(flashCookie, c.Value, &msg); err != nil {
		msg = ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return msg
}

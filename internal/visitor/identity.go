// internal/visitor/identity.go
//
// Durable pseudo-anonymous visitor identity.
//
// Context
// -------
// The visitor id is generated once per browser and rides a two-year
// cookie.  The cookie is authoritative: the bootstrap snippet mirrors the
// id into localStorage as a convenience cache, but a cleared localStorage
// with an intact cookie must still yield the same id, because the server
// can only observe the cookie.
package visitor

import (
	"net/http"
	"time"

	"github.com/google/uuid"
)

// VisitorCookie persists the visitor id across sessions.
const VisitorCookie = "sf_visitor_id"

const visitorTTL = 2 * 365 * 24 * time.Hour

// EnsureID returns the visitor's id, minting and persisting a fresh UUID
// when the request carries none (or carries garbage).
func EnsureID(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(VisitorCookie); err == nil {
		if id, err := uuid.Parse(c.Value); err == nil {
			return id.String()
		}
	}

	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(visitorTTL),
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// IDFromRequest reads the visitor id without minting one.  ok == false
// for first-time visitors.
func IDFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(VisitorCookie)
	if err != nil {
		return "", false
	}
	id, err := uuid.Parse(c.Value)
	if err != nil {
		return "", false
	}
	return id.String(), true
}

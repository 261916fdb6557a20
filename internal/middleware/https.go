// Package middleware holds small, composable HTTP wrappers plus the
// store-resolution middleware in resolve.go.
package middleware

import (
	"net/http"

	"github.com/yanizio/storefront/internal/hostname"
)

// ForceHTTPS issues a 308 Permanent Redirect to the HTTPS version of the
// same URL for plain-HTTP requests on tenant-capable hosts.  Localhost
// and the bare apex are left alone so development and health checks keep
// working.
func ForceHTTPS(apex string, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.TLS != nil {
			h.ServeHTTP(w, r)
			return
		}
		if hostname.Resolve(r.Host, apex).IsZero() {
			h.ServeHTTP(w, r)
			return
		}
		target := "https://" + r.Host + r.URL.RequestURI()
		http.Redirect(w, r, target, http.StatusPermanentRedirect)
	})
}

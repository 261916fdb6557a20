// internal/visitor/fingerprint.go
//
// Stable browser fingerprint from request signals.
//
// Context
// -------
// The fingerprint supplements the visitor id on tracking calls: it
// survives cookie clearing and lets analytics stitch sessions together.
// It hashes only signals that are stable for a given browser—user agent,
// accept headers, client address, and the set of stable headers present—
// and truncates to 32 hex characters.  Cheap enough to recompute per
// request; identical input always yields identical output.
package visitor

import (
	"crypto/sha256"
	"encoding/hex"
	"net"
	"net/http"
	"sort"
	"strings"
)

// Fingerprint derives the device hash for r.
func Fingerprint(r *http.Request) string {
	parts := []string{
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
		r.Header.Get("Accept-Encoding"),
		r.Header.Get("Accept"),
		remoteHost(r),
		stableHeaderSet(r),
	}

	var filtered []string
	for _, p := range parts {
		if p != "" {
			filtered = append(filtered, p)
		}
	}

	sum := sha256.Sum256([]byte(strings.Join(filtered, "|")))
	return hex.EncodeToString(sum[:16])
}

// remoteHost returns the client address, preferring the left-most
// X-Forwarded-For entry over the socket peer.
func remoteHost(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

// stableHeaderSet fingerprints which of a fixed set of headers the client
// sends.  Browsers differ here; one browser is consistent with itself.
func stableHeaderSet(r *http.Request) string {
	var names []string
	for name := range r.Header {
		switch strings.ToLower(name) {
		case "user-agent", "accept", "accept-language", "accept-encoding",
			"upgrade-insecure-requests", "sec-fetch-dest", "sec-fetch-mode",
			"sec-fetch-site", "cache-control":
			names = append(names, strings.ToLower(name))
		}
	}
	sort.Strings(names)
	return strings.Join(names, ",")
}

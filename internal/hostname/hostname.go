// internal/hostname/hostname.go
//
// Hostname → tenant key derivation.
//
// Context
// -------
// Every inbound request carries a Host header that identifies exactly one
// store: either `<code>.<apex>` (platform subdomain) or a custom domain the
// merchant pointed at us.  Resolve turns that raw header into a Key with no
// I/O, so it is safe to call from both the metadata pass and the body pass
// without the two ever diverging.
//
// Notes
// -----
// • Reserved labels (www, the bare apex, operational subdomains) map to the
//   zero Key, never to an error.  "Not a storefront host" is a value.
// • Custom domains are not resolved here; the domainmap package owns that
//   lookup.  Resolve only classifies.
package hostname

import (
	"net"
	"strings"
)

// reserved subdomain labels that never name a store.
var reserved = map[string]struct{}{
	"":       {},
	"www":    {},
	"api":    {},
	"admin":  {},
	"assets": {},
	"status": {},
}

// Key is the normalized tenant identity derived from a Host header.  The
// zero value means the host is not tenant-scoped (bare apex, reserved
// label, empty header).
type Key struct {
	// Sub is the store code taken from `<code>.<apex>`.
	Sub string
	// CustomDomain is the full normalized host when it is not under the
	// platform apex.  Mutually exclusive with Sub.
	CustomDomain string
}

// IsZero reports whether the host named no store.
func (k Key) IsZero() bool { return k.Sub == "" && k.CustomDomain == "" }

// Resolve derives the tenant key for host relative to the platform apex
// (e.g. "example.com").  It is a pure string operation: strip the port,
// lower-case, trim a trailing dot, then classify.
func Resolve(host, apex string) Key {
	h := normalize(host)
	apex = normalize(apex)
	if h == "" || h == apex || h == "www."+apex || h == "localhost" {
		return Key{}
	}

	if suffix := "." + apex; apex != "" && strings.HasSuffix(h, suffix) {
		label := strings.TrimSuffix(h, suffix)
		// Nested labels ("a.b.apex") are not storefront hosts.
		if label == "" || strings.Contains(label, ".") {
			return Key{}
		}
		if _, ok := reserved[label]; ok {
			return Key{}
		}
		return Key{Sub: label}
	}

	// Anything else is a candidate custom domain; domainmap decides
	// whether it is actually mapped to a store.
	return Key{CustomDomain: h}
}

// normalize strips the :port suffix, lower-cases, and drops a trailing dot.
// SplitHostPort handles bracketed IPv6 literals ("[::1]:8080"); a cut at
// the first colon would mangle those.
func normalize(h string) string {
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	} else if strings.Count(h, ":") == 1 {
		// host:port without brackets; bare IPv6 has multiple colons.
		h = h[:strings.IndexByte(h, ':')]
	}
	h = strings.Trim(h, "[]")
	return strings.TrimSuffix(strings.ToLower(h), ".")
}

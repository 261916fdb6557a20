// internal/middleware/experience.go
//
// Minimal terminal pages for resolution failures.  Kept template-free on
// purpose: these render when no store, theme, or locale is known.
package middleware

import (
	"fmt"
	"html"
	"net/http"
)

func renderExperience(w http.ResponseWriter, status int, title, body string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	fmt.Fprintf(w,
		`<!doctype html><html><head><meta charset="utf-8"><title>%s</title></head>`+
			`<body><h1>%s</h1><p>%s</p></body></html>`,
		html.EscapeString(title), html.EscapeString(title), html.EscapeString(body))
}

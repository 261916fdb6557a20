// internal/head/builder.go
//
// Per-request collector for the page <head>.
//
// Context
// -------
// Handlers and the bootstrap synchronizer push tags here while the body is
// still being assembled; the shell template decides where each slice is
// emitted.  Scripts keep insertion order, which the synchronizer relies
// on: the bootstrap global must be parsed before the provider snippet,
// and both before any application script.
package head

import (
	"html/template"
	"strings"
	"sync"
)

// Builder is scoped to a single request.  One goroutine per request is
// the normal shape, but a mutex keeps concurrent section renders safe.
type Builder struct {
	mu sync.Mutex

	title   string
	metas   []string
	links   []string
	scripts []string

	seen map[string]struct{} // dedup keys
}

func New() *Builder {
	return &Builder{seen: make(map[string]struct{})}
}

// SetTitle overrides the page <title>.  Last caller wins.
func (b *Builder) SetTitle(t string) {
	b.mu.Lock()
	b.title = t
	b.mu.Unlock()
}

// Title returns a formed <title> tag, or "" when unset.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(b.title) + "</title>")
}

// Meta, Link, and Script append pre-formed tags, dropping exact duplicates.
func (b *Builder) Meta(tag string)   { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string)   { b.add("link:"+tag, &b.links, tag) }
func (b *Builder) Script(tag string) { b.add("script:"+tag, &b.scripts, tag) }

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// Rendering helpers called from the shell template.

func (b *Builder) Metas() template.HTML   { return b.concat(b.metas) }
func (b *Builder) Links() template.HTML   { return b.concat(b.links) }
func (b *Builder) Scripts() template.HTML { return b.concat(b.scripts) }

func (b *Builder) concat(sl []string) template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	return template.HTML(strings.Join(sl, "\n"))
}

// internal/bootstrap/bootstrap.go
//
// Server → client store-identity hand-off.
//
// Context
// -------
// The store is resolved once, server-side, while the response is being
// generated.  Client code needs that identity before its own first call,
// and again after client-side navigations that never touch the server
// resolution path.  Three redundant channels cover three failure windows:
//
//  1. Bootstrap global  — `window.__SF_BOOTSTRAP__`, inlined into <head>
//     before any application script, write-once per page load.  Covers the
//     race between the first client-originated call and framework startup.
//  2. Provider snippet  — `window.__SF_STORE__`, a tiny subscription
//     holder initialised *from* the bootstrap value.  Covers in-session
//     changes; every set rewrites the cookie in the same tick.
//  3. Store-id cookie   — host-only, path "/", one-year expiry.  Covers
//     full reloads and server paths that cannot see in-memory state.
//
// Read precedence for any client reader: provider → bootstrap → cookie.
// The provider never regresses to "no store" while one is active; Clear is
// the explicit escape hatch for navigation to a non-tenant route.
//
// Notes
// -----
// • Cookies deliberately carry no Domain attribute.  Different tenants
//   live on different hosts and must not share identity.
package bootstrap

import (
	"encoding/json"
	"html/template"
	"net/http"
	"time"

	"github.com/yanizio/storefront/internal/head"
)

// Cookie names.  The visitor-id cookie lives in internal/visitor.
const (
	StoreCookie  = "sf_store_id"
	LocaleCookie = "sf_locale"
)

const storeCookieTTL = 365 * 24 * time.Hour

// Payload is the write-once bootstrap value embedded in the response.
type Payload struct {
	StoreID   string `json:"storeId"`
	StoreCode string `json:"storeCode,omitempty"`
	Locale    string `json:"locale,omitempty"`
	Currency  string `json:"currency,omitempty"`
	VisitorID string `json:"visitorId,omitempty"`
}

//
// Cookie channel
//

// WriteStoreCookie persists the resolved store id.  Host-only on purpose.
func WriteStoreCookie(w http.ResponseWriter, id string) {
	http.SetCookie(w, &http.Cookie{
		Name:     StoreCookie,
		Value:    id,
		Path:     "/",
		Expires:  time.Now().Add(storeCookieTTL),
		SameSite: http.SameSiteLaxMode,
	})
}

// ClearStoreCookie removes the persisted id, used when a request lands on
// a non-tenant host.
func ClearStoreCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:   StoreCookie,
		Value:  "",
		Path:   "/",
		MaxAge: -1,
	})
}

// StoreIDFromRequest recovers the last-known store id from the cookie
// channel.  ok == false when the visitor has never been bound to a store.
func StoreIDFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(StoreCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// LocaleFromRequest reads the locale-preference cookie.
func LocaleFromRequest(r *http.Request) (string, bool) {
	c, err := r.Cookie(LocaleCookie)
	if err != nil || c.Value == "" {
		return "", false
	}
	return c.Value, true
}

// WriteLocaleCookie persists the visitor's locale preference, host-only
// since different tenants may prefer different locales.
func WriteLocaleCookie(w http.ResponseWriter, locale string) {
	http.SetCookie(w, &http.Cookie{
		Name:     LocaleCookie,
		Value:    locale,
		Path:     "/",
		Expires:  time.Now().Add(storeCookieTTL),
		SameSite: http.SameSiteLaxMode,
	})
}

//
// Inline channels
//

// ScriptTag renders the write-once bootstrap global.  json.Marshal escapes
// "<" and ">", so the payload cannot break out of the script element.
func (p Payload) ScriptTag() (template.HTML, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return template.HTML(`<script>window.__SF_BOOTSTRAP__=` + string(raw) + `;</script>`), nil
}

// providerJS installs window.__SF_STORE__.  It is the single writer of the
// store-id cookie on the client; nothing else touches that cookie.
const providerJS = `<script>(function(){
var b=window.__SF_BOOTSTRAP__||{};
function read(){var m=document.cookie.match(/(?:^|; )sf_store_id=([^;]*)/);return m?decodeURIComponent(m[1]):"";}
function write(id){document.cookie="sf_store_id="+encodeURIComponent(id)+"; path=/; max-age=31536000; samesite=lax";}
var cur=b.storeId||read()||"";
if(cur){write(cur);}
var subs=[];
window.__SF_STORE__={
get:function(){return cur||b.storeId||read()||null;},
set:function(id){
if(!id&&cur){return;}
if(id===cur){return;}
cur=id||"";write(cur);
for(var i=0;i<subs.length;i++){subs[i](cur);}
},
clear:function(){cur="";write("");for(var i=0;i<subs.length;i++){subs[i]("");}},
subscribe:function(fn){subs.push(fn);return function(){var i=subs.indexOf(fn);if(i>-1){subs.splice(i,1);}};}
};
if(b.visitorId){try{localStorage.setItem("sf_visitor_id",b.visitorId);}catch(e){}}
})();</script>`

// ProviderScript returns the reactive-provider snippet.
func ProviderScript() template.HTML { return template.HTML(providerJS) }

// Attach pushes the bootstrap global and the provider snippet into the
// page head, in that order; the provider initialises from the global and
// never the reverse.
func Attach(b *head.Builder, p Payload) error {
	tag, err := p.ScriptTag()
	if err != nil {
		return err
	}
	b.Script(string(tag))
	b.Script(string(ProviderScript()))
	return nil
}

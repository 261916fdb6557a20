// internal/bootstrap/bootstrap_test.go
//
// Unit-tests for the server half of the store-identity hand-off.
//
// Run: go test ./internal/bootstrap -v

package bootstrap

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/yanizio/storefront/internal/head"
)

func TestStoreCookie_RoundTrip(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteStoreCookie(rr, "abc123")

	res := rr.Result()
	var c *http.Cookie
	for _, ck := range res.Cookies() {
		if ck.Name == StoreCookie {
			c = ck
		}
	}
	if c == nil {
		t.Fatal("store cookie not written")
	}
	if c.Path != "/" {
		t.Fatalf("path = %q, want /", c.Path)
	}
	if c.Domain != "" {
		t.Fatalf("cookie must be host-only, got domain %q", c.Domain)
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: StoreCookie, Value: c.Value})

	id, ok := StoreIDFromRequest(req)
	if !ok || id != "abc123" {
		t.Fatalf("recovered %q/%v", id, ok)
	}
}

func TestStoreIDFromRequest_AbsentCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := StoreIDFromRequest(req); ok {
		t.Fatal("absent cookie reported a store id")
	}
}

func TestScriptTag_EmbedsValidJSON(t *testing.T) {
	p := Payload{StoreID: "abc123", Locale: "en", Currency: "EUR"}
	tag, err := p.ScriptTag()
	if err != nil {
		t.Fatalf("ScriptTag: %v", err)
	}

	s := string(tag)
	const pre, post = `<script>window.__SF_BOOTSTRAP__=`, `;</script>`
	if !strings.HasPrefix(s, pre) || !strings.HasSuffix(s, post) {
		t.Fatalf("malformed tag: %s", s)
	}

	var back Payload
	raw := strings.TrimSuffix(strings.TrimPrefix(s, pre), post)
	if err := json.Unmarshal([]byte(raw), &back); err != nil {
		t.Fatalf("payload is not valid JSON: %v", err)
	}
	if back.StoreID != "abc123" || back.Locale != "en" {
		t.Fatalf("payload round trip: %#v", back)
	}
}

// A store name containing "</script>" must not terminate the inline block.
func TestScriptTag_NoScriptBreakout(t *testing.T) {
	p := Payload{StoreID: "abc123", StoreCode: `</script><script>alert(1)`}
	tag, err := p.ScriptTag()
	if err != nil {
		t.Fatalf("ScriptTag: %v", err)
	}
	if strings.Count(string(tag), "</script>") != 1 {
		t.Fatalf("payload escaped the script element: %s", tag)
	}
}

func TestAttach_BootstrapPrecedesProvider(t *testing.T) {
	b := head.New()
	if err := Attach(b, Payload{StoreID: "abc123"}); err != nil {
		t.Fatalf("Attach: %v", err)
	}

	out := string(b.Scripts())
	boot := strings.Index(out, "__SF_BOOTSTRAP__")
	prov := strings.Index(out, "__SF_STORE__")
	if boot == -1 || prov == -1 {
		t.Fatalf("missing channel in head output:\n%s", out)
	}
	if boot > prov {
		t.Fatal("provider emitted before the bootstrap global")
	}
}

// The provider snippet is the only cookie writer on the client and must
// initialise from the bootstrap value, falling back to the cookie.
func TestProviderScript_ReadPrecedenceWiring(t *testing.T) {
	js := string(ProviderScript())
	for _, want := range []string{
		"window.__SF_BOOTSTRAP__||{}",
		"b.storeId||read()",
		"if(!id&&cur){return;}", // monotonic: no regression to "no store"
		"sf_store_id=",
	} {
		if !strings.Contains(js, want) {
			t.Fatalf("provider snippet lost %q", want)
		}
	}
}

// internal/commerce/client_test.go
//
// Unit-tests for the commerce client.
//
// Context
// -------
// The interesting behaviours are identity stamping and failure
// classification:
//
//   • Store id set in the request context      → X-Store-Id present.
//   • No store id set                          → header absent, not empty.
//   • 404                                      → ErrStoreNotFound.
//   • 2xx with a non-ACTIVE status             → ErrStoreInactive.
//   • 5xx and transport failures               → TransientError.
//
// Run: go test ./internal/commerce -v

package commerce

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/yanizio/storefront/internal/reqctx"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := New(srv.URL, "test-token")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c, srv
}

func TestDo_StampsStoreIDAndLocale(t *testing.T) {
	var gotStore, gotLang string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotStore = r.Header.Get(StoreHeader)
		gotLang = r.Header.Get("Accept-Language")
		w.Write([]byte(`[]`))
	})

	ctx := reqctx.Bind(context.Background())
	reqctx.SetStoreID(ctx, "abc123")
	reqctx.SetLocale(ctx, "de")

	if _, err := c.DeliveryZones(ctx); err != nil {
		t.Fatalf("DeliveryZones: %v", err)
	}
	if gotStore != "abc123" {
		t.Fatalf("X-Store-Id = %q, want abc123", gotStore)
	}
	if gotLang != "de" {
		t.Fatalf("Accept-Language = %q, want de", gotLang)
	}
}

func TestDo_OmitsHeaderBeforeResolution(t *testing.T) {
	var present bool
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, present = r.Header[http.CanonicalHeaderKey(StoreHeader)]
		w.Write([]byte(`{"id":"s1","code":"shop1","status":"ACTIVE"}`))
	})

	// Bound container, but nothing resolved yet.
	ctx := reqctx.Bind(context.Background())
	if _, err := c.StoreByCode(ctx, "shop1"); err != nil {
		t.Fatalf("StoreByCode: %v", err)
	}
	if present {
		t.Fatal("X-Store-Id sent before a store was resolved")
	}
}

func TestStoreByCode_NotFound(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.StoreByCode(context.Background(), "ghost")
	if !errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("err = %v, want ErrStoreNotFound", err)
	}
}

func TestDeliveryZones_NotFoundStaysClientError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})

	_, err := c.DeliveryZones(context.Background())
	if err == nil {
		t.Fatal("expected an error")
	}
	if errors.Is(err, ErrStoreNotFound) {
		t.Fatalf("non-store 404 mapped to ErrStoreNotFound: %v", err)
	}
	if IsTransient(err) {
		t.Fatalf("4xx classified transient: %v", err)
	}
}

func TestStoreByCode_SlashStaysOneSegment(t *testing.T) {
	var escaped string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		escaped = r.URL.EscapedPath()
		w.Write([]byte(`{"id":"s1","code":"a/b","status":"ACTIVE"}`))
	})

	if _, err := c.StoreByCode(context.Background(), "a/b"); err != nil {
		t.Fatalf("StoreByCode: %v", err)
	}
	if escaped != "/v1/stores/by-code/a%2Fb" {
		t.Fatalf("escaped path = %q, want single %%2F segment", escaped)
	}
}

func TestStoreByCode_Inactive(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"s2","code":"shop2","status":"INACTIVE"}`))
	})

	_, err := c.StoreByCode(context.Background(), "shop2")
	if !errors.Is(err, ErrStoreInactive) {
		t.Fatalf("err = %v, want ErrStoreInactive", err)
	}
}

func TestStoreByCode_UpstreamFailureIsTransient(t *testing.T) {
	c, srv := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	if _, err := c.StoreByCode(context.Background(), "shop1"); !IsTransient(err) {
		t.Fatalf("5xx: err = %v, want transient", err)
	}

	// Dead socket → transport error, also transient.
	srv.Close()
	if _, err := c.StoreByCode(context.Background(), "shop1"); !IsTransient(err) {
		t.Fatalf("closed server: err = %v, want transient", err)
	}
}

func TestStoreByID_SecondaryLookupPath(t *testing.T) {
	var path string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Write([]byte(`{"id":"s1","code":"shop1","status":"ACTIVE"}`))
	})

	s, err := c.StoreByID(context.Background(), "s1")
	if err != nil {
		t.Fatalf("StoreByID: %v", err)
	}
	if path != "/v1/stores/s1" {
		t.Fatalf("path = %q", path)
	}
	if s.Code != "shop1" {
		t.Fatalf("code = %q", s.Code)
	}
}

func TestPickLocale(t *testing.T) {
	s := &Store{DefaultLocale: "en", Locales: []string{"en", "de", "fr"}}
	if got := s.PickLocale("de"); got != "de" {
		t.Fatalf("supported locale: got %q", got)
	}
	if got := s.PickLocale("ja"); got != "en" {
		t.Fatalf("unsupported locale: got %q", got)
	}
	if got := s.PickLocale(""); got != "en" {
		t.Fatalf("empty preference: got %q", got)
	}
}

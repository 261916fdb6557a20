// internal/commerce/client.go
//
// Outbound commerce API client with request-context header injection.
//
// Context
// -------
// Every call consults the request's reqctx container immediately before the
// request goes out and stamps two headers:
//
//   • X-Store-Id      — tenant routing credential.  Omitted entirely when
//     no store is resolved yet; the upstream distinguishes platform-level
//     queries from tenant-scoped ones by the header's absence, so an empty
//     value would be wrong.
//   • Accept-Language — the visitor's locale.
//
// Failure classification happens here, once, so call sites only branch on
// the taxonomy in errors.go.
//
// Notes
// -----
// • No internal retries.  Store resolution failing fails that request's
//   render; the next request re-resolves independently.
// • Timeouts come from the caller's context, not the client.
package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/yanizio/storefront/internal/metrics"
	"github.com/yanizio/storefront/internal/reqctx"
)

// StoreHeader is the tenant-routing header name.
const StoreHeader = "X-Store-Id"

// Client talks to the commerce platform.  Safe for concurrent use.
type Client struct {
	base  *url.URL
	token string
	httpc *http.Client
}

// New validates the base URL and returns a ready Client.  token may come
// from Vault via the config loader; it is attached as a bearer credential.
func New(baseURL, token string) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("commerce: base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("commerce: base url %q lacks scheme or host", baseURL)
	}
	return &Client{
		base:  u,
		token: token,
		httpc: &http.Client{Timeout: 15 * time.Second},
	}, nil
}

//
// Store lookup
//

// StoreByCode resolves a tenant key (subdomain label or explicit code) to
// its Store record.  See errors.go for the failure classes.
func (c *Client) StoreByCode(ctx context.Context, code string) (*Store, error) {
	return c.fetchStore(ctx, "store by code", c.endpoint("v1", "stores", "by-code", code))
}

// StoreByID is the secondary lookup used once the id is already known
// (e.g. recovered from the store-id cookie), avoiding a second hostname
// round trip.
func (c *Client) StoreByID(ctx context.Context, id string) (*Store, error) {
	return c.fetchStore(ctx, "store by id", c.endpoint("v1", "stores", id))
}

func (c *Client) fetchStore(ctx context.Context, op, urlStr string) (*Store, error) {
	var s Store
	if err := c.do(ctx, op, http.MethodGet, urlStr, nil, &s); err != nil {
		// Only here does a 404 mean "no such tenant".
		var status statusError
		if errors.As(err, &status) && status == http.StatusNotFound {
			return nil, ErrStoreNotFound
		}
		return nil, err
	}
	if !s.Servable() {
		return nil, fmt.Errorf("%w: status %s", ErrStoreInactive, s.Status)
	}
	return &s, nil
}

//
// Tenant-scoped collaborators
//

// DeliveryZones lists the active store's delivery zones.  Requires a
// resolved store id in the request context.
func (c *Client) DeliveryZones(ctx context.Context) ([]Zone, error) {
	var zones []Zone
	if err := c.do(ctx, "delivery zones", http.MethodGet, c.endpoint("v1", "delivery-zones"), nil, &zones); err != nil {
		return nil, err
	}
	return zones, nil
}

// FeaturedProducts lists the active store's featured catalog entries.
func (c *Client) FeaturedProducts(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, "featured products", http.MethodGet, c.endpoint("v1", "products", "featured"), nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SubmitReview posts a visitor review for the active store.
func (c *Client) SubmitReview(ctx context.Context, rev Review) error {
	return c.do(ctx, "submit review", http.MethodPost, c.endpoint("v1", "reviews"), rev, nil)
}

// Track submits one telemetry event.  The fire-and-forget policy (detached
// context, swallowed errors) is owned by internal/visitor; this method is
// an ordinary call.
func (c *Client) Track(ctx context.Context, ev Event) error {
	return c.do(ctx, "track", http.MethodPost, c.endpoint("v1", "events"), ev, nil)
}

//
// Transport core
//

// endpoint joins path elements onto the base URL.  JoinPath escapes each
// element, so a store code containing "/" stays one segment on the wire.
func (c *Client) endpoint(elem ...string) string {
	return c.base.JoinPath(elem...).String()
}

// do issues one request, stamping identity headers from the request
// context, and decodes a JSON body into out when out != nil.
func (c *Client) do(ctx context.Context, op, method, urlStr string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("commerce: %s: encode: %w", op, err)
		}
		rdr = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, urlStr, rdr)
	if err != nil {
		return fmt.Errorf("commerce: %s: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	// Identity injection.  Absence of a store id means the header is
	// omitted, never sent empty.
	if id, ok := reqctx.StoreID(ctx); ok {
		req.Header.Set(StoreHeader, id)
	}
	if loc := reqctx.Locale(ctx); loc != "" {
		req.Header.Set("Accept-Language", loc)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		metrics.CommerceErrorsTotal.WithLabelValues(op, "transient").Inc()
		return &TransientError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode >= 500:
		metrics.CommerceErrorsTotal.WithLabelValues(op, "transient").Inc()
		return &TransientError{Op: op, Err: fmt.Errorf("upstream status %d", resp.StatusCode)}
	case resp.StatusCode >= 400:
		metrics.CommerceErrorsTotal.WithLabelValues(op, "client").Inc()
		return fmt.Errorf("commerce: %s: %w", op, statusError(resp.StatusCode))
	}

	if out == nil {
		// Drain so the connection can be reused.
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &TransientError{Op: op, Err: fmt.Errorf("decode: %w", err)}
	}
	return nil
}

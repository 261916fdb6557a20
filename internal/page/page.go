// internal/page/page.go
//
// Storefront page handlers.
//
// Context
// -------
// Handlers run after the resolve middleware, so the request container is
// already populated.  They still fetch the store through Resolver.Store:
// the metadata pass and the body pass are logically separate resolution
// passes, and both replay the one memoized snapshot instead of assuming
// some shared initializer ran first.
//
// Secondary data (delivery zones, featured products) is fetched with a
// bounded context; a transient upstream failure degrades that section
// and the page still renders.
package page

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/yanizio/storefront/internal/bootstrap"
	"github.com/yanizio/storefront/internal/commerce"
	"github.com/yanizio/storefront/internal/head"
	"github.com/yanizio/storefront/internal/hostname"
	"github.com/yanizio/storefront/internal/metrics"
	"github.com/yanizio/storefront/internal/middleware"
	"github.com/yanizio/storefront/internal/reqctx"
	"github.com/yanizio/storefront/internal/visitor"
)

// secondaryTimeout bounds the wait for degradable sections.
const secondaryTimeout = 2 * time.Second

// Handler serves the storefront pages for whichever store the request
// resolved to.
type Handler struct {
	Resolver *middleware.Resolver
	Commerce *commerce.Client
	Tracker  *visitor.Tracker
}

// Routes mounts the storefront surface.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.home)
	r.Post("/reviews", h.submitReview)
	r.Post("/locale", h.setLocale)
	return r
}

// homeData is what the shell template renders.
type homeData struct {
	Head     *head.Builder
	Store    *commerce.Store
	Locale   string
	Zones    []commerce.Zone
	Products []commerce.Product
	Degraded bool
}

func (h *Handler) home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Metadata pass: resolve (replayed from the memoizer) and build the
	// head before any body work.
	store, err := h.Resolver.Store(r)
	if err != nil {
		// Non-tenant hosts (bare apex) legitimately reach here unscoped
		// and get the platform landing page.  Anything else means the
		// route was mounted without the resolve middleware.
		if hostname.Resolve(r.Host, h.Resolver.Apex).IsZero() {
			h.landing(w)
			return
		}
		http.Error(w, "store unresolved", http.StatusInternalServerError)
		return
	}

	visitorID := visitor.EnsureID(w, r)

	hb := head.New()
	hb.SetTitle(store.Name)
	hb.Meta(`<meta charset="utf-8">`)
	hb.Meta(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
	if err := bootstrap.Attach(hb, bootstrap.Payload{
		StoreID:   store.ID,
		StoreCode: store.Code,
		Locale:    reqctx.Locale(ctx),
		Currency:  store.Currency,
		VisitorID: visitorID,
	}); err != nil {
		zap.S().Errorw("bootstrap attach failed", "err", err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}

	// Body pass: secondary sections under a bounded wait.  Transient
	// trouble degrades the section, never the page.
	data := homeData{Head: hb, Store: store, Locale: reqctx.Locale(ctx)}

	// Plain group, no shared cancellation: a broken zones endpoint must
	// not abort a healthy products fetch.  The deadline bounds both.
	sctx, cancel := context.WithTimeout(ctx, secondaryTimeout)
	defer cancel()
	var g errgroup.Group
	g.Go(func() error {
		zones, err := h.Commerce.DeliveryZones(sctx)
		if err == nil {
			data.Zones = zones
		}
		return err
	})
	g.Go(func() error {
		products, err := h.Commerce.FeaturedProducts(sctx)
		if err == nil {
			data.Products = products
		}
		return err
	})
	if err := g.Wait(); err != nil {
		if !commerce.IsTransient(err) && !isDeadline(err) {
			zap.S().Errorw("secondary fetch failed", "store", store.ID, "err", err)
		}
		data.Degraded = true
		metrics.DegradedRendersTotal.Inc()
	}

	h.Tracker.PageView(r, visitorID)

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := shellTmpl.Execute(w, data); err != nil {
		zap.S().Errorw("render error", "store", store.ID, "err", err)
	}
}

// submitReview forwards a client-originated review.  The outbound call
// picks up the store id and locale from the request container.
func (h *Handler) submitReview(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "bad form", http.StatusBadRequest)
		return
	}
	visitorID, ok := visitor.IDFromRequest(r)
	if !ok {
		http.Error(w, "unknown visitor", http.StatusBadRequest)
		return
	}

	rev := commerce.Review{
		ProductID: r.PostFormValue("product_id"),
		VisitorID: visitorID,
		Rating:    atoiClamp(r.PostFormValue("rating"), 1, 5),
		Body:      r.PostFormValue("body"),
	}
	if rev.ProductID == "" {
		http.Error(w, "missing product", http.StatusBadRequest)
		return
	}

	if err := h.Commerce.SubmitReview(r.Context(), rev); err != nil {
		if commerce.IsTransient(err) {
			http.Error(w, "try again shortly", http.StatusServiceUnavailable)
			return
		}
		http.Error(w, "review rejected", http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// landing is the platform page for unscoped hosts.  No store identity is
// involved, so no bootstrap payload is emitted.
func (h *Handler) landing(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(`<!doctype html><html><head><meta charset="utf-8">` +
		`<title>Storefront</title></head><body><h1>Storefront</h1>` +
		`<p>Multi-store commerce platform.</p></body></html>`))
}

// setLocale persists the visitor's locale preference and bounces back.
func (h *Handler) setLocale(w http.ResponseWriter, r *http.Request) {
	store, err := h.Resolver.Store(r)
	if err != nil {
		http.Error(w, "store unresolved", http.StatusInternalServerError)
		return
	}
	loc := store.PickLocale(r.PostFormValue("locale"))
	bootstrap.WriteLocaleCookie(w, loc)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func isDeadline(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

func atoiClamp(s string, lo, hi int) int {
	n := 0
	for _, r := range s {
		if r < '0' || r > '9' {
			return lo
		}
		n = n*10 + int(r-'0')
		if n > hi {
			return hi
		}
	}
	if n < lo {
		return lo
	}
	return n
}

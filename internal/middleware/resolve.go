// internal/middleware/resolve.go
//
// Store resolution middleware.
//
// Context
// -------
// This is where a raw Host header becomes a bound store identity for the
// rest of the request:
//
//  1. Bind a fresh reqctx container and the tracking guard.
//  2. Derive the tenant key (pure; see internal/hostname).
//  3. Resolve the Store through the request memoizer, so the metadata
//     pass, the body pass, and any layout code share one upstream fetch.
//  4. Populate the container; every outbound commerce call from here on
//     carries the store id and locale.
//  5. Refresh the store-id cookie so the client's cookie channel agrees
//     with the server's resolution.
//
// Failure policy (see internal/commerce/errors.go): not-found and
// inactive render distinct terminal experiences; a transient failure with
// the identity still unresolved fails the page, because no store id means
// no safe rendering.
//
// Notes
// -----
// • Non-tenant hosts (bare apex, www) pass through unscoped with the
//   store cookie cleared: that is the one legitimate regression to
//   "no store".
package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/bootstrap"
	"github.com/yanizio/storefront/internal/commerce"
	"github.com/yanizio/storefront/internal/domainmap"
	"github.com/yanizio/storefront/internal/hostname"
	"github.com/yanizio/storefront/internal/metrics"
	"github.com/yanizio/storefront/internal/reqctx"
	"github.com/yanizio/storefront/internal/requestinfo"
	"github.com/yanizio/storefront/internal/visitor"
)

// Resolver binds requests to stores.  One instance serves the process.
type Resolver struct {
	Apex     string
	Commerce *commerce.Client
	Domains  *domainmap.Map
}

// Store returns the request's store, resolving it on first call and
// replaying the settled snapshot on every later one.  Call sites that run
// before the middleware body (metadata generation) use this directly
// instead of assuming a shared initializer already ran.
func (rs *Resolver) Store(r *http.Request) (*commerce.Store, error) {
	return reqctx.Memoize(r.Context(), func(ctx context.Context) (*commerce.Store, error) {
		return rs.resolve(ctx, r)
	})
}

// resolve is the single-flight body behind Store: tenant key → store
// code → upstream fetch, with a cookie-based secondary lookup when the
// primary path cannot name a code.
func (rs *Resolver) resolve(ctx context.Context, r *http.Request) (*commerce.Store, error) {
	key := hostname.Resolve(r.Host, rs.Apex)

	var code string
	switch {
	case key.Sub != "":
		code = key.Sub
	case key.CustomDomain != "":
		var ok bool
		if code, ok = rs.Domains.Lookup(ctx, key.CustomDomain); !ok {
			return nil, commerce.ErrStoreNotFound
		}
	default:
		return nil, commerce.ErrStoreNotFound
	}

	store, err := rs.Commerce.StoreByCode(ctx, code)
	if err == nil {
		return store, nil
	}

	// Transient upstream trouble: the persisted cookie may still name the
	// store by id, and the id endpoint can be healthy when the by-code
	// path is not.  One attempt, no retries.
	if commerce.IsTransient(err) {
		if id, ok := bootstrap.StoreIDFromRequest(r); ok {
			if st, idErr := rs.Commerce.StoreByID(ctx, id); idErr == nil {
				zap.S().Infow("store recovered from cookie", "host", r.Host, "store", id)
				return st, nil
			}
		}
	}
	return nil, err
}

// Middleware resolves the store for tenant hosts and renders the
// terminal experiences for the failure classes.
func (rs *Resolver) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := visitor.WithGuard(reqctx.Bind(r.Context()))
		r = r.WithContext(ctx)

		if hostname.Resolve(r.Host, rs.Apex).IsZero() {
			// Marketing pages and operational hosts are unscoped.  This
			// is the explicit navigation away from any store.
			bootstrap.ClearStoreCookie(w)
			next.ServeHTTP(w, r)
			return
		}

		store, err := rs.Store(r)
		if err != nil {
			rs.fail(w, r, err)
			return
		}

		reqctx.SetStoreID(ctx, store.ID)
		reqctx.SetLocale(ctx, pickLocale(store, r))

		// Keep the cookie channel in step with this resolution.
		bootstrap.WriteStoreCookie(w, store.ID)

		metrics.StoreResolveTotal.Inc()
		next.ServeHTTP(w, r)
	})
}

// pickLocale applies the preference order: explicit cookie, then the
// Accept-Language primary tag, then the store default.
func pickLocale(store *commerce.Store, r *http.Request) string {
	if loc, ok := bootstrap.LocaleFromRequest(r); ok {
		return store.PickLocale(loc)
	}
	if info := requestinfo.FromContext(r.Context()); info != nil {
		return store.PickLocale(info.UA.PrimaryLang)
	}
	return store.DefaultLocale
}

// fail maps the error taxonomy onto the terminal experiences.
func (rs *Resolver) fail(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, commerce.ErrStoreNotFound):
		metrics.StoreResolveErrorsTotal.WithLabelValues("not_found").Inc()
		renderExperience(w, http.StatusNotFound, "Store not found",
			"There is no store at this address.")
	case errors.Is(err, commerce.ErrStoreInactive):
		metrics.StoreResolveErrorsTotal.WithLabelValues("inactive").Inc()
		renderExperience(w, http.StatusServiceUnavailable, "Store unavailable",
			"This store is temporarily unavailable. Please check back soon.")
	default:
		metrics.StoreResolveErrorsTotal.WithLabelValues("transient").Inc()
		zap.S().Warnw("store resolution failed", "host", r.Host, "err", err)
		renderExperience(w, http.StatusBadGateway, "Temporary problem",
			"We could not load this store right now. Please try again shortly.")
	}
}

// internal/reqctx/reqctx.go
//
// Request-scoped store identity and memoized resolution.
//
// Context
// -------
// The rendering pipeline asks for the active store from several unrelated
// call sites: the metadata pass, the body pass, and nested layout code.  A
// naive implementation would hit the commerce API once per call site and
// could even observe two different store snapshots within one request.  The
// Container settles the resolution exactly once per request and hands every
// caller the identical (store, err) pair.
//
// The Container also carries the `{storeID, locale}` pair the outbound API
// client stamps onto every call.  It lives in the request's context.Context
// under an unexported key, so each request owns an independent instance and
// nothing is ever shared across concurrent requests.
//
// Notes
// -----
// • Bind installs a fresh Container; handlers and middleware further down
//   only mutate the one belonging to their own request.
// • Memoize is deliberately not keyed by tenant: two concurrent requests
//   for the same host must not share or block on each other's resolution.
package reqctx

import (
	"context"
	"sync"
)

type ctxKey struct{} // unexported, collision-proof

// Container is the per-request slot for store identity.  Zero value is
// usable; Bind allocates one per inbound request.
type Container struct {
	mu      sync.RWMutex
	storeID string
	hasID   bool
	locale  string

	once sync.Once
	val  any
	err  error
}

// Bind returns a child context carrying a fresh Container.  Called once,
// at the top of request handling.
func Bind(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, &Container{})
}

// from returns the request's Container, or nil when Bind never ran
// (background jobs, tests that exercise lower layers directly).
func from(ctx context.Context) *Container {
	c, _ := ctx.Value(ctxKey{}).(*Container)
	return c
}

//
// Identity slot
//

// SetStoreID records the resolved store id.  Passing "" clears the slot, so
// later outbound calls omit the tenant header instead of sending a stale id.
func SetStoreID(ctx context.Context, id string) {
	c := from(ctx)
	if c == nil {
		return
	}
	c.mu.Lock()
	c.storeID = id
	c.hasID = id != ""
	c.mu.Unlock()
}

// StoreID returns the store id and whether one has been set.  ok == false
// means "unscoped": the caller must not fabricate an empty header.
func StoreID(ctx context.Context) (string, bool) {
	c := from(ctx)
	if c == nil {
		return "", false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.storeID, c.hasID
}

// SetLocale records the visitor's locale for the request.
func SetLocale(ctx context.Context, locale string) {
	c := from(ctx)
	if c == nil {
		return
	}
	c.mu.Lock()
	c.locale = locale
	c.mu.Unlock()
}

// Locale returns the request locale, or "" when none was set.
func Locale(ctx context.Context) string {
	c := from(ctx)
	if c == nil {
		return ""
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.locale
}

//
// Memoized resolution
//

// Memoize runs fn at most once for the request bound to ctx; every caller,
// regardless of order or concurrency, observes the same settled value or
// the same settled error.  When ctx carries no Container the function runs
// directly—there is no request scope to memoize into.
func Memoize[T any](ctx context.Context, fn func(context.Context) (T, error)) (T, error) {
	c := from(ctx)
	if c == nil {
		return fn(ctx)
	}
	c.once.Do(func() {
		c.val, c.err = fn(ctx)
	})
	if c.err != nil {
		var zero T
		return zero, c.err
	}
	v, ok := c.val.(T)
	if !ok {
		// Two call sites memoized different types into one request.  A
		// programming error, not a runtime condition; fail loudly.
		panic("reqctx: memoized value type mismatch")
	}
	return v, nil
}

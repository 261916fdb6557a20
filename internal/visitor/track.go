// internal/visitor/track.go
//
// Fire-and-forget visitor tracking.
//
// Context
// -------
// Tracking is best-effort telemetry, not a correctness path.  The rules:
//
//   • Dispatch is detached from the request lifecycle—the render never
//     waits on it, and writing the response does not cancel it.
//   • Failures are logged in development and swallowed in production,
//     never surfaced, never retried.
//   • Known crawlers are not tracked.
//   • At most one page-view fires per rendered page, even when identity
//     becomes available late; the per-request guard enforces it.
package visitor

import (
	"context"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/commerce"
	"github.com/yanizio/storefront/internal/metrics"
	"github.com/yanizio/storefront/internal/requestinfo"
)

const dispatchTimeout = 5 * time.Second

// Tracker owns the fire-and-forget policy around commerce.Client.Track.
type Tracker struct {
	client *commerce.Client
	dev    bool // development mode: log swallowed failures
}

// NewTracker returns a Tracker.  dev controls failure logging only.
func NewTracker(c *commerce.Client, dev bool) *Tracker {
	return &Tracker{client: c, dev: dev}
}

//
// Per-request dispatch guard
//

type guardKey struct{}

// WithGuard installs the one-shot page-view guard.  The resolve
// middleware binds it alongside the request container.
func WithGuard(ctx context.Context) context.Context {
	return context.WithValue(ctx, guardKey{}, new(int32))
}

// tryAcquire flips the guard; the second caller within one request loses.
func tryAcquire(ctx context.Context) bool {
	g, ok := ctx.Value(guardKey{}).(*int32)
	if !ok {
		return true // no guard installed (tests, background use)
	}
	return atomic.CompareAndSwapInt32(g, 0, 1)
}

// PageView dispatches one page-view event for r and returns immediately.
// The request context's identity headers (store id, locale) are carried
// into the detached call; cancellation is not.
func (t *Tracker) PageView(r *http.Request, visitorID string) {
	ctx := r.Context()
	if !tryAcquire(ctx) {
		return
	}

	ev := commerce.Event{
		Name:        "page_view",
		Path:        r.URL.Path,
		VisitorID:   visitorID,
		Fingerprint: Fingerprint(r),
		Referrer:    r.Referer(),
	}
	if info := requestinfo.FromContext(ctx); info != nil {
		if info.UA.IsBot {
			return
		}
		ev.CountryISO = info.Geo.CountryISO
	}

	// Detach from the request's cancellation but keep its values, so the
	// outbound call still carries the resolved store id and locale.
	detached := context.WithoutCancel(ctx)

	metrics.TrackingDispatchTotal.Inc()
	go func() {
		ctx, cancel := context.WithTimeout(detached, dispatchTimeout)
		defer cancel()

		if err := t.client.Track(ctx, ev); err != nil {
			metrics.TrackingFailuresTotal.Inc()
			if t.dev {
				zap.S().Debugw("tracking dispatch failed",
					"event", ev.Name, "path", ev.Path, "err", err)
			}
		}
	}()
}

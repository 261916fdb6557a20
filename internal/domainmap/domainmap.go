// internal/domainmap/domainmap.go
//
// Custom-domain → store-code mapping.
//
// Context
// -------
// Stores under the platform apex resolve by pure string work (see
// internal/hostname).  Merchants may also point their own domain at us;
// those hosts need a lookup against the `custom_domain` table.  The Map
// keeps the whole table in memory behind a TTL so the hot path is one
// RLock, and refreshes lazily when the snapshot ages out.
//
// Workflow
// --------
//  1. cmd/web constructs Map via New() and calls Load() once at boot.
//  2. The resolve middleware calls Lookup(host) for non-apex hosts.
//  3. Lookup reloads the snapshot at most once per TTL window; a failed
//     refresh keeps serving the stale snapshot rather than dropping
//     every custom domain at once.
//
// Notes
// -----
// • Rows with a non-NULL removed_at or a NULL verified_at never load.
package domainmap

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/metrics"
)

// DefaultTTL bounds how stale the in-memory snapshot may get.
const DefaultTTL = 5 * time.Minute

// Map caches verified custom-domain rows.  Zero value is unusable;
// construct with New.
type Map struct {
	db  *sqlx.DB
	ttl time.Duration

	mu       sync.RWMutex
	data     map[string]string // host → store code
	loadedAt time.Time
}

// New returns a Map with the given refresh TTL (DefaultTTL when ttl <= 0).
func New(db *sqlx.DB, ttl time.Duration) *Map {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Map{db: db, ttl: ttl, data: map[string]string{}}
}

// Load replaces the snapshot with the current table contents.
func (m *Map) Load(ctx context.Context) error {
	const q = `
	    SELECT domain, store_code
	    FROM   custom_domain
	    WHERE  verified_at IS NOT NULL
	      AND  removed_at  IS NULL`

	var rows []struct {
		Domain    string `db:"domain"`
		StoreCode string `db:"store_code"`
	}
	if err := m.db.SelectContext(ctx, &rows, q); err != nil {
		return err
	}

	fresh := make(map[string]string, len(rows))
	for _, r := range rows {
		fresh[r.Domain] = r.StoreCode
	}

	m.mu.Lock()
	m.data = fresh
	m.loadedAt = time.Now()
	m.mu.Unlock()

	metrics.DomainMapEntries.Set(float64(len(fresh)))
	zap.S().Debugw("domain map loaded", "entries", len(fresh))
	return nil
}

// Lookup returns the store code mapped to host.  The snapshot is
// refreshed first when it has aged past the TTL; refresh failure is
// logged and the stale snapshot keeps serving.
func (m *Map) Lookup(ctx context.Context, host string) (string, bool) {
	m.mu.RLock()
	expired := time.Since(m.loadedAt) > m.ttl
	m.mu.RUnlock()

	if expired {
		if err := m.Load(ctx); err != nil {
			zap.S().Warnw("domain map refresh failed", "err", err)
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	code, ok := m.data[host]
	return code, ok
}

// store inserts one mapping directly into the snapshot.  Test seam only.
func (m *Map) store(host, code string) {
	m.mu.Lock()
	m.data[host] = code
	m.loadedAt = time.Now()
	m.mu.Unlock()
}

// internal/commerce/errors.go
//
// Failure taxonomy for upstream commerce calls.
//
// Callers branch on three classes:
//
//   • ErrStoreNotFound — the tenant does not exist.  Terminal; render the
//     not-found experience.
//   • ErrStoreInactive — the tenant exists but its storefront is not
//     publicly servable.  Terminal; render the distinct unavailable page.
//   • TransientError   — network or upstream trouble.  Recoverable; the
//     caller degrades the dependent feature instead of failing the page,
//     unless the store identity itself is still unresolved.
package commerce

import (
	"errors"
	"fmt"
)

var (
	// ErrStoreNotFound is returned when the upstream reports no such tenant.
	ErrStoreNotFound = errors.New("commerce: store not found")

	// ErrStoreInactive is returned when the store exists but its status
	// forbids serving the storefront.
	ErrStoreInactive = errors.New("commerce: store inactive")
)

// TransientError wraps a network or upstream failure that the next request
// may not hit.  It is never produced for 4xx responses.
type TransientError struct {
	Op  string // "store by code", "delivery zones", ...
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("commerce: %s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error { return e.Err }

// IsTransient reports whether err is classified as recoverable.
func IsTransient(err error) bool {
	var te *TransientError
	return errors.As(err, &te)
}

// statusError carries the upstream HTTP status through the generic 4xx
// path.  Only the store-lookup callers map a 404 to ErrStoreNotFound; a
// missing delivery-zones or reviews route stays a plain client error.
type statusError int

func (e statusError) Error() string {
	return fmt.Sprintf("upstream status %d", int(e))
}

// internal/commerce/types.go
//
// Wire types for the slice of the commerce API this service consumes.  The
// Store snapshot is immutable for the duration of a request; it is fetched
// once (see internal/reqctx) and discarded when the response is written.
package commerce

// Store statuses as reported by the upstream platform.
const (
	StatusActive   = "ACTIVE"
	StatusInactive = "INACTIVE"
	StatusPending  = "PENDING"
)

// Store mirrors one tenant record owned by the commerce platform.
type Store struct {
	ID            string            `json:"id"`
	Code          string            `json:"code"`
	Name          string            `json:"name"`
	Currency      string            `json:"currency"`
	DefaultLocale string            `json:"default_locale"`
	Locales       []string          `json:"locales"`
	Status        string            `json:"status"`
	Config        map[string]string `json:"storefront_config"`
}

// Servable reports whether the storefront may be shown publicly.
func (s *Store) Servable() bool { return s.Status == StatusActive }

// PickLocale returns preferred when the store supports it, otherwise the
// store default.  An empty preference always yields the default.
func (s *Store) PickLocale(preferred string) string {
	if preferred == "" {
		return s.DefaultLocale
	}
	for _, l := range s.Locales {
		if l == preferred {
			return l
		}
	}
	return s.DefaultLocale
}

// Zone is a delivery zone row.  Zones are secondary data: a transient
// failure fetching them degrades the delivery section only.
type Zone struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Countries []string `json:"countries"`
}

// Product is the slim catalog row the home page renders.  Catalog
// business rules live upstream; this is presentation data only.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    string `json:"price"`
	Currency string `json:"currency"`
}

// Review is a visitor-submitted product review.
type Review struct {
	ProductID string `json:"product_id"`
	VisitorID string `json:"visitor_id"`
	Rating    int    `json:"rating"`
	Body      string `json:"body,omitempty"`
}

// Event is a best-effort telemetry record.  It carries visitor identity
// alongside the store id; neither depends on the other.
type Event struct {
	Name        string `json:"name"`
	Path        string `json:"path,omitempty"`
	VisitorID   string `json:"visitor_id"`
	Fingerprint string `json:"fingerprint,omitempty"`
	CountryISO  string `json:"country_iso,omitempty"`
	Referrer    string `json:"referrer,omitempty"`
}

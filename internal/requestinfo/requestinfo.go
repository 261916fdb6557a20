//
//  internal/requestinfo/requestinfo.go
//
//  Per-request metadata: parsed user agent, best-effort geolocation, and
//  the visitor's preferred language.  The structs are inert—no database
//  handles, no large buffers—so they are safe to log or JSON-encode.
//
//  Consumers
//  • internal/middleware  – locale preference for store resolution.
//  • internal/visitor     – bot suppression and geo hints on tracking.
//  • internal/page        – delivery-zone country pre-selection.
//

package requestinfo

import (
	"context"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/avct/uasurfer"
	"github.com/oschwald/geoip2-golang"
)

// UA holds the parsed user-agent properties the storefront cares about.
type UA struct {
	Raw         string // entire User-Agent header
	Browser     string // "Chrome", "Firefox", ...
	Version     string // "124.0.6367"
	OS          string // "macOS", "Windows", "Android", ...
	Device      string // "Desktop", "Phone", "Tablet", ...
	IsBot       bool   // true for known crawler signatures
	PrimaryLang string // first tag from Accept-Language ("en", "de-at", ...)
}

// Geo holds IP-based hints.  Best-effort; fields may be empty.
type Geo struct {
	IP         net.IP
	CountryISO string // "US", "DE", ...
	City       string
}

// RequestInfo is stored in the request context by Enrich.
type RequestInfo struct {
	UA        UA
	Geo       Geo
	Timestamp time.Time
}

// geoReader is a singleton MaxMind handle; concurrent reads are safe.
// nil when no database is configured—lookups then return IP only.
var geoReader *geoip2.Reader

// InitGeo opens the GeoLite2 database.  Optional; call from cmd/web when
// a database path is configured.
func InitGeo(dbPath string) error {
	r, err := geoip2.Open(dbPath)
	if err != nil {
		return err
	}
	geoReader = r
	return nil
}

type ctxKey struct{} // unexported, collision-proof

// FromContext returns the pointer stored by Enrich, or nil when the
// middleware has not run.
func FromContext(ctx context.Context) *RequestInfo {
	v, _ := ctx.Value(ctxKey{}).(*RequestInfo)
	return v
}

//
//  Internal helpers
//

// parseUA converts the raw header into our UA struct using uasurfer.
func parseUA(uaHeader, acceptLang string) UA {
	u := uasurfer.Parse(uaHeader)

	osName := strings.TrimPrefix(u.OS.Name.String(), "OS")
	if osName == "MacOSX" {
		osName = "macOS"
	}

	bot := u.IsBot()
	device := deviceString(u.DeviceType)
	if bot {
		device = "Bot"
	}

	return UA{
		Raw:         uaHeader,
		Browser:     strings.TrimPrefix(u.Browser.Name.String(), "Browser"),
		Version:     versionString(u.Browser.Version),
		OS:          osName,
		Device:      device,
		IsBot:       bot,
		PrimaryLang: primaryLang(acceptLang),
	}
}

// versionString builds "major.minor.patch" and trims trailing ".0" parts.
func versionString(v uasurfer.Version) string {
	out := strconv.Itoa(v.Major) + "." + strconv.Itoa(v.Minor) + "." + strconv.Itoa(v.Patch)
	for strings.HasSuffix(out, ".0") {
		out = strings.TrimSuffix(out, ".0")
	}
	if out == "" {
		return "0"
	}
	return out
}

func deviceString(dt uasurfer.DeviceType) string {
	switch dt {
	case uasurfer.DeviceComputer:
		return "Desktop"
	case uasurfer.DevicePhone:
		return "Phone"
	case uasurfer.DeviceTablet:
		return "Tablet"
	case uasurfer.DeviceTV:
		return "TV"
	default:
		return "Unknown"
	}
}

// primaryLang extracts the first language subtag before any ";q=" rule.
func primaryLang(al string) string {
	if al == "" {
		return ""
	}
	tag := strings.TrimSpace(strings.Split(al, ",")[0])
	if i := strings.Index(tag, ";"); i != -1 {
		tag = strings.TrimSpace(tag[:i])
	}
	return strings.ToLower(tag)
}

// lookupGeo returns best-effort Geo data using the global reader.
func lookupGeo(ip net.IP) Geo {
	if geoReader == nil || ip == nil {
		return Geo{IP: ip}
	}
	rec, err := geoReader.City(ip)
	if err != nil {
		return Geo{IP: ip}
	}
	return Geo{
		IP:         ip,
		CountryISO: rec.Country.IsoCode,
		City:       rec.City.Names["en"],
	}
}

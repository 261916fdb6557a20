// internal/config/model.go
//
// Typed configuration model for the storefront.
//
// Context
// -------
// These structs define the tree that internal/config/loader.go builds
// from three overlay layers:
//
//   • optional `conf/.env`                     – dotenv values,
//   • `conf/storefront.yaml`                   – primary static file,
//   • `SFRONT_`-prefixed environment overrides – highest precedence.
//
// Any string value beginning with `vault:` is resolved through the Vault
// client after unmarshalling, so the rest of the app only ever sees plain
// strings.  Validation happens right after; the binary fails fast when a
// required field is missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`; Koanf ignores `yaml` tags.
//   • Paths is filled at runtime; YAML must not set it.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS bool   `koanf:"force_https"`
}

//
// Platform section
//

// Platform describes the shared deployment: the apex domain that store
// subdomains hang off, and the environment flavour.
type Platform struct {
	Apex string `koanf:"apex" validate:"required,fqdn"`
	Env  string `koanf:"env" validate:"oneof=development production"`
}

// Dev reports whether the deployment runs in development mode.
func (p Platform) Dev() bool { return p.Env == "development" }

//
// Commerce section
//

// Commerce configures the upstream commerce API.  Token is normally a
// `vault:` URI in YAML and a plain bearer token after loading.
type Commerce struct {
	BaseURL string `koanf:"base_url" validate:"required,url"`
	Token   string `koanf:"token"`
}

//
// Database section
//

// Database holds the DSN for the control-plane MySQL schema that stores
// custom-domain mappings.
type Database struct {
	DomainMapDSN string `koanf:"domain_map_dsn" validate:"required"`
}

//
// Geo section
//

// Geo points at an optional GeoLite2 database; tracking and delivery-zone
// hints degrade gracefully when it is absent.
type Geo struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.
type Paths struct {
	Root string // SFRONT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Platform Platform `koanf:"platform"`
	Commerce Commerce `koanf:"commerce"`
	Database Database `koanf:"database"`
	Geo      Geo      `koanf:"geo"`
	Paths    Paths    `koanf:"-"`
}

// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` from three layers (highest
precedence last):

  1. Optional `<root>/conf/.env` dotenv file.
  2. `conf/storefront.yaml`.
  3. Environment variables prefixed `SFRONT_`, where `__` maps to “.”
     (e.g., `SFRONT_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into typed structs, `vault:`
URIs are resolved through the Vault client, the result is validated,
enriched with the runtime root path, and cached in an `atomic.Pointer`
for lock-free reads.

Notes
-----
  • `rootDir()` climbs the cwd tree until it finds `conf/storefront.yaml`,
    so `go run ./cmd/web` works from any sub-directory.
  • Vault resolution is skipped entirely when no value needs it, keeping
    dev setups free of a Vault dependency.
*/
package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"

	"github.com/yanizio/storefront/internal/vault"
)

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves SFRONT_ROOT or climbs directories until the YAML file
// is found.  Falls back to an executable heuristic for production layout.
func rootDir() string {
	if r := os.Getenv("SFRONT_ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "storefront.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir { // reached filesystem root
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load reads .env, YAML, env overrides, resolves secrets, validates, and
// caches the Config.
func Load(ctx context.Context) (*Config, error) {
	root := rootDir()
	zap.S().Debugw("config root resolved", "root", root)

	// .env (optional, no error if missing)
	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "storefront.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}

	// Env overrides: SFRONT_HTTP__LISTEN_ADDR → http.listen_addr
	if err := k.Load(env.Provider("SFRONT_", ".", func(s string) string {
		s = strings.TrimPrefix(s, "SFRONT_")
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	if err := resolveSecrets(ctx, &cfg); err != nil {
		zap.S().Errorw("config secret resolution failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"apex", cfg.Platform.Apex,
		"env", cfg.Platform.Env,
		"commerce", cfg.Commerce.BaseURL,
	)
	return &cfg, nil
}

/*──────────────────────────── secret resolution ────────────────────────────*/

// resolveSecrets replaces `vault:` URIs with their Vault values.  The
// client is constructed lazily so deployments without such URIs never
// need VAULT_ADDR set.
func resolveSecrets(ctx context.Context, cfg *Config) error {
	fields := []*string{&cfg.Commerce.Token, &cfg.Database.DomainMapDSN}

	var cli *vault.Client
	for _, f := range fields {
		if !vault.IsURI(*f) {
			continue
		}
		if cli == nil {
			var err error
			if cli, err = vault.New(ctx, zap.S().Infof); err != nil {
				return err
			}
		}
		val, err := cli.Resolve(ctx, *f)
		if err != nil {
			return err
		}
		*f = val
	}
	return nil
}

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config { return current.Load() }

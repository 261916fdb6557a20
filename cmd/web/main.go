// cmd/web/main.go
//
// Storefront – HTTP entry point.
//
// Request life-cycle
// ------------------
//
//  1. Load env vars (host-wide file → .env fallback).
//
//  2. Start daily rotating logger (tees to console when running in a TTY).
//
//  3. Load config (yaml + SFRONT_ env overlay, vault: URIs resolved).
//
//  4. Open the control-plane DB and warm the custom-domain map.
//
//  5. Build the commerce client and optional GeoIP reader.
//
//  6. Assemble the chain: security headers → request-info enrichment →
//     store resolution → storefront routes; /metrics and /healthz ride
//     outside the tenant chain.
//
//  7. Wrap with ForceHTTPS when configured and serve with hardened
//     timeouts; SIGINT/SIGTERM drain gracefully.
package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yanizio/storefront/internal/commerce"
	"github.com/yanizio/storefront/internal/config"
	"github.com/yanizio/storefront/internal/database"
	"github.com/yanizio/storefront/internal/domainmap"
	"github.com/yanizio/storefront/internal/logger"
	"github.com/yanizio/storefront/internal/middleware"
	"github.com/yanizio/storefront/internal/page"
	"github.com/yanizio/storefront/internal/requestinfo"
	"github.com/yanizio/storefront/internal/server"
	"github.com/yanizio/storefront/internal/visitor"
)

const serverEnvPath = "/usr/local/etc/storefront/global.env"

// loadEnv prefers the host-wide env file; on dev it falls back to .env.
func loadEnv() {
	if _, err := os.Stat(serverEnvPath); err == nil {
		_ = godotenv.Load(serverEnvPath)
		return
	}
	_ = godotenv.Load()
}

// runningInTTY returns true when stdout is a character device.
func runningInTTY() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

func init() { loadEnv() }

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	rootDir, _ := os.Getwd()
	logOut, err := logger.New(rootDir, runningInTTY())
	if err != nil {
		log.Fatalf("start logger: %v", err)
	}

	cfg, err := config.Load(ctx)
	if err != nil {
		logOut.Fatalf("load config: %v", err)
	}

	//
	// ── 1.  Control-plane DB + custom-domain map ───────────────────────
	//
	db, err := database.Open(ctx, cfg.Database.DomainMapDSN)
	if err != nil {
		logOut.Fatalf("connect control-plane DB: %v", err)
	}
	defer db.Close()

	domains := domainmap.New(db, domainmap.DefaultTTL)
	if err := domains.Load(ctx); err != nil {
		// Subdomain tenants still work; log and carry on.
		logOut.Warnw("domain map warm-up failed", "err", err)
	}

	//
	// ── 2.  Commerce client + GeoIP ────────────────────────────────────
	//
	client, err := commerce.New(cfg.Commerce.BaseURL, cfg.Commerce.Token)
	if err != nil {
		logOut.Fatalf("commerce client: %v", err)
	}

	if cfg.Geo.DBPath != "" {
		if err := requestinfo.InitGeo(cfg.Geo.DBPath); err != nil {
			logOut.Warnw("geoip disabled", "path", cfg.Geo.DBPath, "err", err)
		}
	}

	//
	// ── 3.  Handler chain ──────────────────────────────────────────────
	//
	resolver := &middleware.Resolver{
		Apex:     cfg.Platform.Apex,
		Commerce: client,
		Domains:  domains,
	}
	handler := &page.Handler{
		Resolver: resolver,
		Commerce: client,
		Tracker:  visitor.NewTracker(client, cfg.Platform.Dev()),
	}

	r := chi.NewRouter()
	r.Handle("/metrics", promhttp.Handler())
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Group(func(r chi.Router) {
		r.Use(middleware.Security)
		r.Use(requestinfo.Enrich)
		r.Use(resolver.Middleware)
		r.Mount("/", handler.Routes())
	})

	var root http.Handler = r
	if cfg.HTTP.ForceHTTPS {
		root = middleware.ForceHTTPS(cfg.Platform.Apex, root)
	}

	//
	// ── 4.  Serve ──────────────────────────────────────────────────────
	//
	srv := server.New(cfg.HTTP.ListenAddr, root)

	go func() {
		logOut.Infow("listening", "addr", cfg.HTTP.ListenAddr, "apex", cfg.Platform.Apex)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logOut.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logOut.Infow("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logOut.Warnw("shutdown incomplete", "err", err)
	}
}

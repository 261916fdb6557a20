// Package database centralises sqlx connection helpers for the
// control-plane MySQL schema (custom-domain mappings).  The default
// driver is go-sql-driver/mysql.
//
// Open pings the database before returning so boot fails fast on a bad
// DSN.  Callers Close() the returned *sqlx.DB when done.
package database

import (
	"context"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
)

// Open returns a *sqlx.DB with conservative pool sizes: the domain map
// refreshes on a TTL, so a handful of connections is plenty.
func Open(ctx context.Context, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(3)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

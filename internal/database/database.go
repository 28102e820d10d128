// Package database centralises sqlx connection helpers.  The driver is
// go-sql-driver/mysql, which also serves MariaDB.
//
// Public entry points:
//
//	Open(ctx, dsn, opts)  – pool sizing plus a bounded ping retry.
//
// Open pings the database before returning so bootstrap fails fast when
// the content store is unreachable after every retry.  Callers should
// Close() the returned *sqlx.DB when no longer needed.
package database

import (
	"context"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// Options tunes the pool and the startup ping.
type Options struct {
	MaxOpen  int
	MaxIdle  int
	Attempts int           // ping attempts, default 5
	Backoff  time.Duration // first wait between attempts, doubled each time
	Log      *zap.Logger
}

func (o *Options) defaults() {
	if o.MaxOpen <= 0 {
		o.MaxOpen = 15
	}
	if o.MaxIdle <= 0 {
		o.MaxIdle = 5
	}
	if o.Attempts <= 0 {
		o.Attempts = 5
	}
	if o.Backoff <= 0 {
		o.Backoff = 500 * time.Millisecond
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
}

// Open returns a *sqlx.DB on the mysql driver with a 30-minute connection
// lifetime.
func Open(ctx context.Context, dsn string, opts Options) (*sqlx.DB, error) {
	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := Configure(ctx, db, opts); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// Configure applies pool sizing to db and pings it until it answers, the
// attempts run out, or ctx ends.
func Configure(ctx context.Context, db *sqlx.DB, opts Options) error {
	opts.defaults()
	db.SetMaxOpenConns(opts.MaxOpen)
	db.SetMaxIdleConns(opts.MaxIdle)
	db.SetConnMaxLifetime(30 * time.Minute)

	wait := opts.Backoff
	var err error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		if err = db.PingContext(ctx); err == nil {
			return nil
		}
		opts.Log.Warn("database ping failed", zap.Int("attempt", attempt), zap.Error(err))
		if attempt == opts.Attempts {
			break
		}
		t := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		wait *= 2
	}
	return fmt.Errorf("database unreachable after %d attempts: %w", opts.Attempts, err)
}

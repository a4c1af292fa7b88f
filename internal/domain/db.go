package domain

import "context"

// Database is the lifecycle of the local settings store.
type Database interface {
	Migrate(ctx context.Context) error
	// Ping reports whether the store still answers; used by the health check.
	Ping(ctx context.Context) error
	Close() error
}

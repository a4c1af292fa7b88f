// Package migrations holds the SQLite schema and applies it in file order.
package migrations

import "embed"

// FS holds the *.sql migration files.
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the SQL schema for the PostgreSQL document store.
package migrations

import "embed"

// FS holds goose migration files.
//
//go:embed *.sql
var FS embed.FS

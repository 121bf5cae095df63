package migrations

import "embed"

// FS contains embedded SQLite migrations for congress storage.
//
//go:embed *.sql
var FS embed.FS

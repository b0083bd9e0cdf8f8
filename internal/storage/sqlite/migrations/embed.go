package migrations

import "embed"

// FS contains embedded SQLite migrations for split-timer storage.
//
//go:embed *.sql
var FS embed.FS

package migrations

import "embed"

// MigrationFiles holds the tern migrations for the user directory schema.
//
//go:embed *.sql
var MigrationFiles embed.FS

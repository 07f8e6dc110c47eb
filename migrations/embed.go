// Package migrations embeds the SQL schema applied by platform/db.Migrate.
package migrations

import "embed"

// FS holds the versioned up and down migrations.
//
//go:embed *.sql
var FS embed.FS

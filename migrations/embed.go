// Package migrations embeds the goose SQL files that create the bookkeeping
// schema: the migration registry table, the transaction log and the changelog.
package migrations

import "embed"

// FS holds the goose migration files.
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the SQL schema for the registry's relational
// backend. The statements are idempotent and applied at startup.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

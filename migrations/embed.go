// Package migrations embeds the SQL schema migrations applied by the migrate command.
package migrations

import "embed"

// FS holds every *.up.sql and *.down.sql file of this directory
//
//go:embed *.sql
var FS embed.FS

// Package migrations embeds the goose SQL migrations shared by the SQLite
// and PostgreSQL backends.
package migrations

import "embed"

//go:embed *.sql
var Migrations embed.FS

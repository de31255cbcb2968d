// Package migrations embeds the ordered SQL schema migrations applied at startup.
// Files are named NNNNN_description.sql and use goose annotations; the SQL must
// stay portable across SQLite, PostgreSQL and MySQL.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

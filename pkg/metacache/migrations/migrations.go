// Package migrations embeds the SQL migration files for the local
// metacache SQLite database so golang-migrate can apply them via its iofs
// source driver without shipping loose .sql files alongside the binary.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Package migrations embeds the SQL schema migrations for the point-of-sale
// database. Files are applied in filename order by database.RunMigrations.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

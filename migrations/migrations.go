// Package migrations embeds the SQL schema migrations so a binary can
// bring its database up to date without shipping loose files.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

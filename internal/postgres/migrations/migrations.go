// Package migrations embeds the SQL schema files applied by the
// migrate command, in lexical order.
package migrations

import "embed"

//go:embed *.sql
var FS embed.FS

// Files lists the migrations in the order they must be applied.
var Files = []string{
	"001_create_establishments.sql",
	"002_create_users.sql",
	"003_create_contacts.sql",
	"004_create_fiches.sql",
	"005_create_confirmation_tokens.sql",
	"006_create_history.sql",
	"007_create_meetings.sql",
}

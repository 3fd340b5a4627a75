// Package migrations contains embedded SQL migrations for the SQLite store.
package migrations

import "embed"

//go:embed escrow/*.sql
var EscrowFS embed.FS

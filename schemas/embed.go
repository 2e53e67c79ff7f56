// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// Migrations contains the SQL migration files of every supported driver,
// under migrations/<driver>/.
//
//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var Migrations embed.FS

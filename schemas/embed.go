// Package schemas provides embedded SQL migration files.
package schemas

import "embed"

// Migrations contains all SQL migration files, one directory per driver.
//
//go:embed migrations/sqlite/*.sql migrations/mysql/*.sql
var Migrations embed.FS

// Package db embeds the postgres migration files applied by goose.
package db

import "embed"

//go:embed migrations/*.sql
var Migrations embed.FS

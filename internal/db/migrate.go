package db

import (
	"database/sql"
	"embed"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Migrate применяет goose-миграции из встроенной директории.
func Migrate(database *sql.DB) error {
	goose.SetBaseFS(migrationsFS)
	if err := goose.SetDialect("postgres"); err != nil {
		return wrapErr("migrate", err)
	}
	if err := goose.Up(database, "migrations"); err != nil {
		return wrapErr("migrate", err)
	}
	return nil
}

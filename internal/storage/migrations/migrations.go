// Package migrations embeds the PostgreSQL schema and applies it with
// golang-migrate.
package migrations

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/sirupsen/logrus"
)

//go:embed sql/*.sql
var files embed.FS

// Result reports the schema version before and after Up.
type Result struct {
	PreMigrationVersion  uint
	PostMigrationVersion uint
}

// Up applies every pending migration to db. It is a no-op when the schema is
// current.
func Up(db *sql.DB) (*Result, error) {
	m, err := newMigrate(db)
	if err != nil {
		return nil, err
	}

	pre, _, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		pre = 0
	} else if err != nil {
		return nil, fmt.Errorf("m.Version.preMigrationVersion: %w", err)
	}

	if err = m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return nil, fmt.Errorf("m.Up: %w", err)
	}

	post, _, err := m.Version()
	if err != nil {
		return nil, fmt.Errorf("m.Version.postMigrationVersion: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"preMigrationVersion":  pre,
		"postMigrationVersion": post,
	}).Info("Migration status")

	return &Result{PreMigrationVersion: pre, PostMigrationVersion: post}, nil
}

func newMigrate(db *sql.DB) (*migrate.Migrate, error) {
	src, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("iofs.New: %w", err)
	}
	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("postgres.WithInstance: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("migrate.NewWithInstance: %w", err)
	}
	return m, nil
}

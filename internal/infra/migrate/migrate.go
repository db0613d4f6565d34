// Package migrate applies the embedded SQL schema migrations.
package migrate

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq" // registers the "postgres" database/sql driver
	"go.uber.org/zap"
)

//go:embed sql/*.sql
var files embed.FS

// Migrator runs schema migrations against a database handle.
type Migrator struct {
	m      *migrate.Migrate
	logger *zap.Logger
}

// New creates a migrator over db using the embedded migrations.
func New(db *sql.DB, logger *zap.Logger) (*Migrator, error) {
	source, err := iofs.New(files, "sql")
	if err != nil {
		return nil, fmt.Errorf("open migration source: %w", err)
	}

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return nil, fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "postgres", driver)
	if err != nil {
		return nil, fmt.Errorf("create migration instance: %w", err)
	}
	return &Migrator{m: m, logger: logger}, nil
}

// Open connects to dsn with a dedicated connection pool and creates a
// migrator over it. Close releases the pool.
func Open(dsn string, logger *zap.Logger) (*Migrator, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	g, err := New(db, logger)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return g, nil
}

// Up applies every pending migration.
func (g *Migrator) Up() error {
	return g.run("up", g.m.Up)
}

// Down reverts every applied migration.
func (g *Migrator) Down() error {
	return g.run("down", g.m.Down)
}

// Version reports the current schema version.
func (g *Migrator) Version() (version uint, dirty bool, err error) {
	version, dirty, err = g.m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, false, nil
	}
	return version, dirty, err
}

func (g *Migrator) run(direction string, step func() error) error {
	err := step()
	if errors.Is(err, migrate.ErrNoChange) {
		g.logger.Info("no migrations to run", zap.String("direction", direction))
		return nil
	}
	if err != nil {
		return fmt.Errorf("migrate %s: %w", direction, err)
	}
	g.logger.Info("migration completed", zap.String("direction", direction))
	return nil
}

// Close releases the source and database driver. The caller's *sql.DB is
// closed along with it.
func (g *Migrator) Close() error {
	srcErr, dbErr := g.m.Close()
	return errors.Join(srcErr, dbErr)
}

package db

import (
	"context"
	"embed"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

//go:embed triggers/*.sql
var triggersFS embed.FS

// EnsureDatabase connects to the "postgres" maintenance DB and creates the
// target database if it doesn't already exist.
func EnsureDatabase(ctx context.Context, connStr string) error {
	u, err := url.Parse(connStr)
	if err != nil {
		return fmt.Errorf("parse connection string: %w", err)
	}
	targetDB := strings.TrimPrefix(u.Path, "/")
	if targetDB == "" {
		return fmt.Errorf("no database name in connection string")
	}

	adminURL := *u
	adminURL.Path = "/postgres"
	adminConn, err := pgx.Connect(ctx, adminURL.String())
	if err != nil {
		return fmt.Errorf("connect to postgres DB: %w", err)
	}
	defer adminConn.Close(ctx)

	var exists bool
	err = adminConn.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM pg_database WHERE datname = $1)", targetDB).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check database existence: %w", err)
	}
	if exists {
		return nil
	}

	// CREATE DATABASE cannot use parameter substitution.
	if _, err := adminConn.Exec(ctx, "CREATE DATABASE "+pgx.Identifier{targetDB}.Sanitize()); err != nil {
		return fmt.Errorf("create database %s: %w", targetDB, err)
	}
	log.Info("created database", "name", targetDB)
	return nil
}

// RunMigrations applies pending schema migrations in file-name order, then
// re-applies every trigger file.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			filename VARCHAR(256) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	names, err := sqlFiles(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	for _, name := range names {
		var applied bool
		err := pool.QueryRow(ctx,
			"SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE filename = $1)", name).Scan(&applied)
		if err != nil {
			return fmt.Errorf("check migration %s: %w", name, err)
		}
		if applied {
			continue
		}
		if err := applyMigration(ctx, pool, name); err != nil {
			return err
		}
		log.Info("applied migration", "file", name)
	}

	// Triggers are idempotent (CREATE OR REPLACE + DROP TRIGGER IF EXISTS).
	triggers, err := sqlFiles(triggersFS, "triggers")
	if err != nil {
		return err
	}
	for _, name := range triggers {
		sql, err := triggersFS.ReadFile("triggers/" + name)
		if err != nil {
			return fmt.Errorf("read trigger %s: %w", name, err)
		}
		if _, err := pool.Exec(ctx, string(sql)); err != nil {
			return fmt.Errorf("apply trigger %s: %w", name, err)
		}
		log.Debug("applied trigger", "file", name)
	}
	return nil
}

func applyMigration(ctx context.Context, pool *pgxpool.Pool, name string) error {
	sql, err := migrationsFS.ReadFile("migrations/" + name)
	if err != nil {
		return fmt.Errorf("read migration %s: %w", name, err)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx for %s: %w", name, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(sql)); err != nil {
		return fmt.Errorf("execute migration %s: %w", name, err)
	}
	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (filename) VALUES ($1)", name); err != nil {
		return fmt.Errorf("record migration %s: %w", name, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit migration %s: %w", name, err)
	}
	return nil
}

func sqlFiles(fsys embed.FS, dir string) ([]string, error) {
	entries, err := fsys.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s dir: %w", dir, err)
	}
	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && strings.HasSuffix(entry.Name(), ".sql") {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

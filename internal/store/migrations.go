package store

import (
	"context"
	"database/sql"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// Migration is a schema change versioned by timestamp (YYYYMMDDHHmmss).
type Migration struct {
	Version     int64
	Description string
	Up          func(*sql.Tx) error
}

// MigrationRunner applies pending migrations in version order.
type MigrationRunner struct {
	db *sqlx.DB
}

// NewMigrationRunner creates a runner for db.
func NewMigrationRunner(db *sqlx.DB) *MigrationRunner {
	return &MigrationRunner{db: db}
}

// Run applies every migration not yet recorded in schema_migrations.
func (r *MigrationRunner) Run(ctx context.Context, migrations []Migration) error {
	if _, err := r.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME NOT NULL,
			description TEXT
		)
	`); err != nil {
		return errors.Wrap(err, "failed to create schema_migrations table")
	}

	var versions []int64
	if err := r.db.SelectContext(ctx, &versions, "SELECT version FROM schema_migrations"); err != nil {
		return errors.Wrap(err, "failed to get applied migrations")
	}
	applied := make(map[int64]bool, len(versions))
	for _, v := range versions {
		applied[v] = true
	}

	sorted := make([]Migration, len(migrations))
	copy(sorted, migrations)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	for _, m := range sorted {
		if applied[m.Version] {
			continue
		}
		if err := r.apply(ctx, m); err != nil {
			return errors.Wrapf(err, "failed to apply migration %d: %s", m.Version, m.Description)
		}
	}
	return nil
}

func (r *MigrationRunner) apply(ctx context.Context, m Migration) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if err := m.Up(tx.Tx); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, applied_at, description) VALUES (?, ?, ?)",
		m.Version, time.Now(), m.Description); err != nil {
		return errors.Wrap(err, "failed to record migration")
	}
	return tx.Commit()
}

// Migrations returns the schema history of the skill store.
func Migrations() []Migration {
	return []Migration{
		{
			Version:     20260110120000,
			Description: "Create settings and skills tables",
			Up: func(tx *sql.Tx) error {
				if _, err := tx.Exec(`
					CREATE TABLE IF NOT EXISTS settings (
						key TEXT PRIMARY KEY,
						value TEXT NOT NULL
					)
				`); err != nil {
					return errors.Wrap(err, "failed to create settings table")
				}
				if _, err := tx.Exec(`
					CREATE TABLE IF NOT EXISTS skills (
						id TEXT PRIMARY KEY,
						name TEXT NOT NULL UNIQUE,
						description TEXT NOT NULL DEFAULT '',
						central_path TEXT NOT NULL,
						source_type TEXT NOT NULL,
						source_ref TEXT NOT NULL,
						source_branch TEXT NOT NULL DEFAULT '',
						source_subpath TEXT NOT NULL DEFAULT '',
						created_at DATETIME NOT NULL,
						updated_at DATETIME NOT NULL
					)
				`); err != nil {
					return errors.Wrap(err, "failed to create skills table")
				}
				return nil
			},
		},
		{
			Version:     20260110120001,
			Description: "Create skill_targets table",
			Up: func(tx *sql.Tx) error {
				if _, err := tx.Exec(`
					CREATE TABLE IF NOT EXISTS skill_targets (
						id TEXT PRIMARY KEY,
						skill_id TEXT NOT NULL REFERENCES skills(id) ON DELETE CASCADE,
						tool TEXT NOT NULL,
						target_path TEXT NOT NULL,
						mode TEXT NOT NULL,
						status TEXT NOT NULL,
						last_error TEXT,
						synced_at DATETIME,
						UNIQUE (skill_id, tool)
					)
				`); err != nil {
					return errors.Wrap(err, "failed to create skill_targets table")
				}
				if _, err := tx.Exec(`
					CREATE INDEX IF NOT EXISTS idx_skill_targets_skill_id
					ON skill_targets(skill_id)
				`); err != nil {
					return errors.Wrap(err, "failed to create skill_id index")
				}
				return nil
			},
		},
	}
}

package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// SQLiteStore implements Store on a single SQLite database file.
//
// The connection pool is capped at one connection, so writes are serialized
// and the UNIQUE constraints on skills(id) and skills(name) cannot be raced.
type SQLiteStore struct {
	db *sqlx.DB
}

var _ Store = (*SQLiteStore)(nil)

// Open opens (creating if needed) the database at dbPath and runs migrations.
func Open(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create database directory")
	}

	db, err := sqlx.Open("sqlite", dbPath)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	if err := configure(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to configure database")
	}
	if err := NewMigrationRunner(db).Run(ctx, Migrations()); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func configure(ctx context.Context, db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA foreign_keys=ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return errors.Wrapf(err, "failed to execute pragma: %s", pragma)
		}
	}
	db.SetMaxIdleConns(1)
	db.SetMaxOpenConns(1)
	return nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetSetting(ctx context.Context, key string) (string, bool, error) {
	var value string
	err := s.db.GetContext(ctx, &value, "SELECT value FROM settings WHERE key = ?", key)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, errors.Wrapf(err, "failed to read setting %s", key)
	}
	return value, true, nil
}

func (s *SQLiteStore) SetSetting(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return errors.Wrapf(err, "failed to write setting %s", key)
}

const skillColumns = `id, name, description, central_path, source_type, source_ref,
	source_branch, source_subpath, created_at, updated_at`

func (s *SQLiteStore) getSkill(ctx context.Context, where string, arg any) (*Skill, error) {
	var sk Skill
	err := s.db.GetContext(ctx, &sk, "SELECT "+skillColumns+" FROM skills WHERE "+where, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read skill")
	}
	return &sk, nil
}

func (s *SQLiteStore) GetSkillByID(ctx context.Context, id string) (*Skill, error) {
	return s.getSkill(ctx, "id = ?", id)
}

func (s *SQLiteStore) GetSkillByName(ctx context.Context, name string) (*Skill, error) {
	return s.getSkill(ctx, "name = ?", name)
}

func (s *SQLiteStore) ListSkills(ctx context.Context) ([]Skill, error) {
	var skills []Skill
	if err := s.db.SelectContext(ctx, &skills, "SELECT "+skillColumns+" FROM skills ORDER BY name"); err != nil {
		return nil, errors.Wrap(err, "failed to list skills")
	}
	return skills, nil
}

func (s *SQLiteStore) InsertSkill(ctx context.Context, sk Skill) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO skills (`+skillColumns+`)
		VALUES (:id, :name, :description, :central_path, :source_type, :source_ref,
			:source_branch, :source_subpath, :created_at, :updated_at)
	`, sk)
	if isConstraintViolation(err) {
		return ErrConflict
	}
	return errors.Wrapf(err, "failed to insert skill %s", sk.ID)
}

func (s *SQLiteStore) UpsertSkill(ctx context.Context, sk Skill) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO skills (`+skillColumns+`)
		VALUES (:id, :name, :description, :central_path, :source_type, :source_ref,
			:source_branch, :source_subpath, :created_at, :updated_at)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			central_path = excluded.central_path,
			source_type = excluded.source_type,
			source_ref = excluded.source_ref,
			source_branch = excluded.source_branch,
			source_subpath = excluded.source_subpath,
			updated_at = excluded.updated_at
	`, sk)
	if isConstraintViolation(err) {
		return ErrConflict
	}
	return errors.Wrapf(err, "failed to upsert skill %s", sk.ID)
}

func (s *SQLiteStore) DeleteSkill(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM skills WHERE id = ?", id)
	return errors.Wrapf(err, "failed to delete skill %s", id)
}

const targetColumns = `id, skill_id, tool, target_path, mode, status, last_error, synced_at`

func (s *SQLiteStore) ListSkillTargets(ctx context.Context, skillID string) ([]SkillTargetRecord, error) {
	var targets []SkillTargetRecord
	err := s.db.SelectContext(ctx, &targets,
		"SELECT "+targetColumns+" FROM skill_targets WHERE skill_id = ? ORDER BY tool", skillID)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to list targets of skill %s", skillID)
	}
	return targets, nil
}

func (s *SQLiteStore) UpsertSkillTarget(ctx context.Context, t SkillTargetRecord) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO skill_targets (`+targetColumns+`)
		VALUES (:id, :skill_id, :tool, :target_path, :mode, :status, :last_error, :synced_at)
		ON CONFLICT(id) DO UPDATE SET
			target_path = excluded.target_path,
			mode = excluded.mode,
			status = excluded.status,
			last_error = excluded.last_error,
			synced_at = excluded.synced_at
		ON CONFLICT(skill_id, tool) DO UPDATE SET
			target_path = excluded.target_path,
			mode = excluded.mode,
			status = excluded.status,
			last_error = excluded.last_error,
			synced_at = excluded.synced_at
	`, t)
	if isConstraintViolation(err) {
		return ErrConflict
	}
	return errors.Wrapf(err, "failed to upsert target %s of skill %s", t.Tool, t.SkillID)
}

func (s *SQLiteStore) DeleteSkillTarget(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM skill_targets WHERE id = ?", id)
	return errors.Wrapf(err, "failed to delete target %s", id)
}

func isConstraintViolation(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT, sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}

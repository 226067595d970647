// Package store persists settings, installed skills and their sync targets.
//
// The Store interface is the narrow contract the core depends on; SQLiteStore
// is the production implementation.
package store

import (
	"context"
	"errors"
	"time"
)

// SettingCentralRepoPath holds the absolute path of the canonical skill
// repository root.
const SettingCentralRepoPath = "central_repo_path"

// ErrConflict is returned when a write would violate a uniqueness constraint.
var ErrConflict = errors.New("record already exists")

// Source types recorded on a Skill.
const (
	SourceTypeLocal = "local"
	SourceTypeGit   = "git"
)

// Target modes.
const (
	ModeCopy    = "copy"
	ModeSymlink = "symlink"
)

// Target statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Skill is an installed skill with a single canonical copy on disk.
type Skill struct {
	ID            string    `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Description   string    `db:"description" json:"description,omitempty"`
	CentralPath   string    `db:"central_path" json:"centralPath"`
	SourceType    string    `db:"source_type" json:"sourceType"`
	SourceRef     string    `db:"source_ref" json:"sourceRef"`
	SourceBranch  string    `db:"source_branch" json:"sourceBranch,omitempty"`
	SourceSubpath string    `db:"source_subpath" json:"sourceSubpath,omitempty"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time `db:"updated_at" json:"updatedAt"`
}

// SkillTargetRecord tracks one materialization of a skill for a tool.
type SkillTargetRecord struct {
	ID         string     `db:"id" json:"id"`
	SkillID    string     `db:"skill_id" json:"skillId"`
	Tool       string     `db:"tool" json:"tool"`
	TargetPath string     `db:"target_path" json:"targetPath"`
	Mode       string     `db:"mode" json:"mode"`
	Status     string     `db:"status" json:"status"`
	LastError  *string    `db:"last_error" json:"lastError,omitempty"`
	SyncedAt   *time.Time `db:"synced_at" json:"syncedAt,omitempty"`
}

// Store is the persistence contract used by the core.
//
// Lookups return (nil, nil) when the record does not exist.
type Store interface {
	GetSetting(ctx context.Context, key string) (string, bool, error)
	SetSetting(ctx context.Context, key, value string) error

	GetSkillByID(ctx context.Context, id string) (*Skill, error)
	GetSkillByName(ctx context.Context, name string) (*Skill, error)
	ListSkills(ctx context.Context) ([]Skill, error)
	// InsertSkill creates a new record and returns ErrConflict when the id
	// or name is already taken.
	InsertSkill(ctx context.Context, s Skill) error
	UpsertSkill(ctx context.Context, s Skill) error
	DeleteSkill(ctx context.Context, id string) error

	ListSkillTargets(ctx context.Context, skillID string) ([]SkillTargetRecord, error)
	UpsertSkillTarget(ctx context.Context, t SkillTargetRecord) error
	DeleteSkillTarget(ctx context.Context, id string) error
}

package core

import (
	"errors"
	"strings"
)

var (
	// ErrSkillExists is returned when an install would reuse an id or name.
	ErrSkillExists = errors.New("skill already exists")
	// ErrSkillNotFound is returned for operations on an unknown skill id.
	ErrSkillNotFound = errors.New("skill not found")
	// ErrCentralRepoNotConfigured is returned when the central repository
	// root setting is missing.
	ErrCentralRepoNotConfigured = errors.New("central repository path is not configured")
	// ErrTargetConflict is returned when a sync target is occupied by an
	// entry skillhub does not own. Retry with Force to replace it.
	ErrTargetConflict = errors.New("target already exists")
)

// InvalidSkillError reports why a directory is not a valid skill.
// It renders as SKILL_INVALID|<reason>.
type InvalidSkillError struct {
	Reason string
	Path   string
	Err    error
}

func (e *InvalidSkillError) Error() string {
	return "SKILL_INVALID|" + e.Reason
}

func (e *InvalidSkillError) Unwrap() error { return e.Err }

// MultipleSkillsError is returned by auto-pick installs when more than one
// valid skill was found. It renders as MULTI_SKILLS|<subpath>,<subpath>...
type MultipleSkillsError struct {
	Subpaths []string
}

func (e *MultipleSkillsError) Error() string {
	return "MULTI_SKILLS|" + strings.Join(e.Subpaths, ",")
}

// IsInvalidSkill reports whether err carries an *InvalidSkillError.
func IsInvalidSkill(err error) (*InvalidSkillError, bool) {
	var ie *InvalidSkillError
	if errors.As(err, &ie) {
		return ie, true
	}
	return nil, false
}

// IsMultipleSkills reports whether err carries a *MultipleSkillsError.
func IsMultipleSkills(err error) (*MultipleSkillsError, bool) {
	var me *MultipleSkillsError
	if errors.As(err, &me) {
		return me, true
	}
	return nil, false
}

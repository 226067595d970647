// Package core provides the business logic for skillhub: resolving skill
// sources, discovering and validating skills, managing the central skill
// repository and fanning installed skills out to tool directories.
// It has zero UI dependencies and is independently testable.
package core

import "time"

// Config represents the skillhub configuration stored at ~/.skillhub/config.json.
type Config struct {
	DatabasePath      string            `json:"databasePath,omitempty"`
	LogLevel          string            `json:"logLevel,omitempty"`
	LogFormat         string            `json:"logFormat,omitempty"`
	CloneTimeout      string            `json:"cloneTimeout,omitempty"` // Go duration, e.g. "60s"
	DefaultMode       string            `json:"defaultMode,omitempty"`  // "copy" or "symlink"
	DiscoveryIgnore   []string          `json:"discoveryIgnore,omitempty"`
	CloneURLOverrides map[string]string `json:"cloneURLOverrides,omitempty"`
}

// SourceDescriptor is the normalized form of a user-supplied skill source.
type SourceDescriptor struct {
	CloneURL string // Clone URL, or the local path verbatim when Remote is false
	Branch   string // Branch from a /tree/<branch>/... suffix
	Subpath  string // Path within the repository from a /tree/<branch>/... suffix
	Remote   bool   // True when a remote host was given or implied
	Host     string
	Owner    string
	Repo     string
}

// SkillMetadata is the YAML frontmatter parsed from a SKILL.md file.
type SkillMetadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Body        string `yaml:"-"` // text after the closing delimiter
}

// Candidate invalidity reasons.
const (
	ReasonMissingSkillMd     = "missing_skill_md"
	ReasonReadFailed         = "read_failed"
	ReasonInvalidFrontmatter = "invalid_frontmatter"
	ReasonMissingName        = "missing_name"
)

// SkillCandidate is one directory considered during discovery.
type SkillCandidate struct {
	Subpath     string `json:"subpath"` // Relative to the scanned root, "." for the root
	Valid       bool   `json:"valid"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Reason      string `json:"reason,omitempty"`
}

// InstallResult describes a freshly installed skill.
type InstallResult struct {
	SkillID     string `json:"skillId"`
	Name        string `json:"name"`
	CentralPath string `json:"centralPath"`
}

// UpdateResult describes an update-from-source run.
type UpdateResult struct {
	SkillID        string   `json:"skillId"`
	CentralPath    string   `json:"centralPath"`
	UpdatedTargets []string `json:"updatedTargets"` // tool keys resynchronized successfully
	FailedTargets  []string `json:"failedTargets,omitempty"`
	Err            error    `json:"-"` // aggregated per-target failures; the update itself succeeded
}

// SyncOptions configures a single target synchronization.
type SyncOptions struct {
	Mode       string // store.ModeCopy or store.ModeSymlink
	TargetPath string // Defaults to <tool skills dir>/<skill id>
	Force      bool   // Replace an existing entry that is not ours
}

// SyncResult describes a target synchronization.
type SyncResult struct {
	Tool       string    `json:"tool"`
	Group      []string  `json:"group"` // every tool key satisfied by this target path
	TargetPath string    `json:"targetPath"`
	Mode       string    `json:"mode"`
	Status     string    `json:"status"`
	SyncedAt   time.Time `json:"syncedAt"`
}

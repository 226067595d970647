package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/barysiuk/skillhub/internal/store"
)

// ManagerOptions configures a Manager.
type ManagerOptions struct {
	CloneTimeout      time.Duration
	CloneURLOverrides map[string]string // keyed by SourceDescriptor.RepoKey()
	DiscoveryIgnore   []string
	Synchronizer      *Synchronizer // defaults to NewSynchronizer(st, SynchronizerOptions{})
	Now               func() time.Time
}

// Manager owns the central repository: it installs skills into it, updates
// them from their recorded source, removes them, and serializes all of that
// per skill id.
type Manager struct {
	store        store.Store
	sync         *Synchronizer
	locks        *skillLocker
	cloneTimeout time.Duration
	overrides    map[string]string
	ignore       []string
	now          func() time.Time
}

// NewManager creates a Manager backed by st.
func NewManager(st store.Store, opts ManagerOptions) *Manager {
	m := &Manager{
		store:        st,
		sync:         opts.Synchronizer,
		locks:        newSkillLocker(),
		cloneTimeout: opts.CloneTimeout,
		overrides:    opts.CloneURLOverrides,
		ignore:       opts.DiscoveryIgnore,
		now:          opts.Now,
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.sync == nil {
		m.sync = NewSynchronizer(st, SynchronizerOptions{Now: m.now})
	}
	if m.cloneTimeout <= 0 {
		m.cloneTimeout = DefaultCloneTimeout
	}
	return m
}

// Synchronizer returns the synchronizer used for targets.
func (m *Manager) Synchronizer() *Synchronizer {
	return m.sync
}

// CentralRoot returns the configured central repository root.
func (m *Manager) CentralRoot(ctx context.Context) (string, error) {
	root, ok, err := m.store.GetSetting(ctx, store.SettingCentralRepoPath)
	if err != nil {
		return "", fmt.Errorf("reading central repository setting: %w", err)
	}
	if !ok || root == "" {
		return "", ErrCentralRepoNotConfigured
	}
	root = expandPath(root)
	if !filepath.IsAbs(root) {
		return "", fmt.Errorf("%w: %q is not absolute", ErrCentralRepoNotConfigured, root)
	}
	return filepath.Clean(root), nil
}

// SetCentralRoot validates dir and stores it as the central repository root.
func (m *Manager) SetCentralRoot(ctx context.Context, dir string) (string, error) {
	abs, err := filepath.Abs(expandPath(dir))
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", abs, err)
	}
	if err := m.store.SetSetting(ctx, store.SettingCentralRepoPath, abs); err != nil {
		return "", fmt.Errorf("saving central repository setting: %w", err)
	}
	return abs, nil
}

// SkillWithTargets pairs a skill with its recorded targets.
type SkillWithTargets struct {
	store.Skill
	Targets []store.SkillTargetRecord `json:"targets"`
}

// List returns every installed skill with its targets, ordered by name.
func (m *Manager) List(ctx context.Context) ([]SkillWithTargets, error) {
	skills, err := m.store.ListSkills(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing skills: %w", err)
	}
	out := make([]SkillWithTargets, 0, len(skills))
	for _, sk := range skills {
		targets, err := m.store.ListSkillTargets(ctx, sk.ID)
		if err != nil {
			return nil, fmt.Errorf("listing targets of %s: %w", sk.ID, err)
		}
		out = append(out, SkillWithTargets{Skill: sk, Targets: targets})
	}
	return out, nil
}

// Get returns one skill with its targets, or ErrSkillNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*SkillWithTargets, error) {
	sk, err := m.getSkill(ctx, id)
	if err != nil {
		return nil, err
	}
	targets, err := m.store.ListSkillTargets(ctx, sk.ID)
	if err != nil {
		return nil, fmt.Errorf("listing targets of %s: %w", sk.ID, err)
	}
	return &SkillWithTargets{Skill: *sk, Targets: targets}, nil
}

// SyncTarget materializes skill id for tool under the per-skill lock.
func (m *Manager) SyncTarget(ctx context.Context, id, tool string, opts SyncOptions) (*SyncResult, error) {
	root, err := m.CentralRoot(ctx)
	if err != nil {
		return nil, err
	}
	unlock, err := m.locks.lock(root, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	sk, err := m.getSkill(ctx, id)
	if err != nil {
		return nil, err
	}
	return m.sync.Sync(ctx, sk, tool, opts)
}

func (m *Manager) getSkill(ctx context.Context, id string) (*store.Skill, error) {
	sk, err := m.store.GetSkillByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("reading skill %s: %w", id, err)
	}
	if sk == nil {
		return nil, fmt.Errorf("%w: %s", ErrSkillNotFound, id)
	}
	return sk, nil
}

// resolve parses source and applies clone URL overrides. Local paths are
// made absolute so the recorded source survives a change of directory.
func (m *Manager) resolve(source string) SourceDescriptor {
	d := ParseSource(source).ApplyCloneURLOverride(m.overrides)
	if !d.Remote && d.CloneURL != "" && !strings.Contains(d.CloneURL, "://") {
		if abs, err := filepath.Abs(expandPath(d.CloneURL)); err == nil {
			d.CloneURL = abs
		}
	}
	return d
}

package core

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/barysiuk/skillhub/internal/logger"
	"github.com/barysiuk/skillhub/internal/store"
)

// UpdateFromSource re-copies a skill from the source recorded at install
// time and refreshes its copy-mode targets. The skill id and record are
// kept. A failure before the central copy is swapped leaves everything as
// it was; per-target failures afterwards are reported in UpdateResult.Err
// and on the target records, not as the returned error.
func (m *Manager) UpdateFromSource(ctx context.Context, id string) (*UpdateResult, error) {
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
	log := logger.G(ctx).WithField("skill", sk.ID)

	src, cleanup, err := m.sourceDir(ctx, sk)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	metadata, err := ParseSkillMd(filepath.Join(src, skillFileName))
	if err != nil {
		return nil, err
	}

	if err := copyReplace(src, sk.CentralPath); err != nil {
		return nil, fmt.Errorf("refreshing %s: %w", sk.CentralPath, err)
	}

	// The name fixes the id and may be a display override; keep it.
	sk.Description = metadata.Description
	sk.UpdatedAt = m.now().UTC()
	if err := m.store.UpsertSkill(ctx, *sk); err != nil {
		return nil, fmt.Errorf("recording skill %s: %w", sk.ID, err)
	}
	log.Info("updated central copy")

	records, err := m.store.ListSkillTargets(ctx, sk.ID)
	if err != nil {
		return nil, fmt.Errorf("listing targets of %s: %w", sk.ID, err)
	}
	updated, failed, syncErr := m.sync.Resync(ctx, sk, records)

	return &UpdateResult{
		SkillID:        sk.ID,
		CentralPath:    sk.CentralPath,
		UpdatedTargets: updated,
		FailedTargets:  failed,
		Err:            syncErr,
	}, nil
}

// sourceDir returns the directory holding the skill's current source, and
// a cleanup for any temporary clone.
func (m *Manager) sourceDir(ctx context.Context, sk *store.Skill) (string, func(), error) {
	sub, err := cleanSubpath(sk.SourceSubpath)
	if err != nil {
		return "", nil, err
	}

	switch sk.SourceType {
	case store.SourceTypeLocal:
		dir := filepath.Join(sk.SourceRef, filepath.FromSlash(sub))
		if !dirExists(dir) {
			return "", nil, fmt.Errorf("source folder %s no longer exists", dir)
		}
		return dir, func() {}, nil

	case store.SourceTypeGit:
		d := m.resolve(sk.SourceRef)
		d.Branch = sk.SourceBranch
		d.Subpath = ""
		repoDir, cleanup, err := m.fetch(ctx, d)
		if err != nil {
			return "", nil, err
		}
		return filepath.Join(repoDir, filepath.FromSlash(sub)), cleanup, nil

	default:
		return "", nil, fmt.Errorf("skill %s has unknown source type %q", sk.ID, sk.SourceType)
	}
}

package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/barysiuk/skillhub/internal/logger"
)

// RemoveResult describes an uninstall.
type RemoveResult struct {
	SkillID        string   `json:"skillId"`
	CentralPath    string   `json:"centralPath"`
	RemovedTargets []string `json:"removedTargets"` // target paths deleted from disk
	SkippedTargets []string `json:"skippedTargets,omitempty"`
}

// Uninstall removes a skill's targets, its central copy and its records.
//
// Only entries skillhub owns are deleted: copy-mode targets, and symlinks
// that still point at the central copy. Anything else at a recorded target
// path is left in place and reported as skipped.
func (m *Manager) Uninstall(ctx context.Context, id string) (*RemoveResult, error) {
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
	records, err := m.store.ListSkillTargets(ctx, sk.ID)
	if err != nil {
		return nil, fmt.Errorf("listing targets of %s: %w", sk.ID, err)
	}

	log := logger.G(ctx).WithField("skill", sk.ID)
	result := &RemoveResult{SkillID: sk.ID, CentralPath: sk.CentralPath}
	seen := make(map[string]bool)

	for _, r := range records {
		target := filepath.Clean(r.TargetPath)
		if seen[target] {
			continue
		}
		seen[target] = true

		exists, owned, err := ownedEntry(target, r.Mode, sk.CentralPath)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		if !owned {
			log.WithField("target", target).Warn("leaving target not owned by skillhub")
			result.SkippedTargets = append(result.SkippedTargets, target)
			continue
		}

		if err := os.RemoveAll(target); err != nil {
			return nil, fmt.Errorf("removing target %s: %w", target, err)
		}
		result.RemovedTargets = append(result.RemovedTargets, target)
	}

	if isWithin(root, sk.CentralPath) && filepath.Clean(sk.CentralPath) != root {
		if err := os.RemoveAll(sk.CentralPath); err != nil {
			return nil, fmt.Errorf("removing %s: %w", sk.CentralPath, err)
		}
	} else {
		log.WithField("path", sk.CentralPath).Warn("central copy is outside the repository root; leaving it")
	}

	for _, r := range records {
		if err := m.store.DeleteSkillTarget(ctx, r.ID); err != nil {
			return nil, fmt.Errorf("deleting target record %s: %w", r.Tool, err)
		}
	}
	if err := m.store.DeleteSkill(ctx, sk.ID); err != nil {
		return nil, fmt.Errorf("deleting skill %s: %w", sk.ID, err)
	}
	log.Info("uninstalled skill")

	return result, nil
}

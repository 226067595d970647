package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"

	"github.com/barysiuk/skillhub/internal/core/system"
	"github.com/barysiuk/skillhub/internal/logger"
	"github.com/barysiuk/skillhub/internal/store"
)

// SynchronizerOptions configures a Synchronizer.
type SynchronizerOptions struct {
	Home string           // base for tool skills directories; defaults to the user's home
	Now  func() time.Time // defaults to time.Now
}

// Synchronizer materializes a skill's central copy in tool directories,
// either as a copy or as a symlink, and records every attempt.
//
// It does not take the per-skill lock; Manager does that around it.
type Synchronizer struct {
	store store.Store
	home  string
	now   func() time.Time
}

// NewSynchronizer creates a Synchronizer backed by st.
func NewSynchronizer(st store.Store, opts SynchronizerOptions) *Synchronizer {
	home := opts.Home
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Synchronizer{store: st, home: home, now: now}
}

// DefaultTargetPath returns where tool expects skill to live.
func (s *Synchronizer) DefaultTargetPath(skill *store.Skill, tool string) (string, error) {
	a, ok := system.ByKey(tool)
	if !ok {
		return "", fmt.Errorf("unknown tool %q: a target path is required", tool)
	}
	return filepath.Join(system.SkillsPath(a, s.home), skill.ID), nil
}

// Group returns every tool key whose default target for skill is
// targetPath. Tools sharing a skills directory are satisfied by one write.
func (s *Synchronizer) Group(skill *store.Skill, tool, targetPath string) []string {
	a, ok := system.ByKey(tool)
	if !ok {
		return []string{tool}
	}
	group := []string{tool}
	for _, member := range system.SharingSkillsDir(a) {
		if member.Key == tool {
			continue
		}
		if filepath.Join(system.SkillsPath(member, s.home), skill.ID) == targetPath {
			group = append(group, member.Key)
		}
	}
	return group
}

// Sync creates or refreshes the target for tool and upserts a record for
// every tool in its directory-sharing group. The records are written even
// when the filesystem work fails; the failure is then returned alongside
// the result.
func (s *Synchronizer) Sync(ctx context.Context, skill *store.Skill, tool string, opts SyncOptions) (*SyncResult, error) {
	mode := opts.Mode
	if mode == "" {
		mode = store.ModeSymlink
	}
	if mode != store.ModeCopy && mode != store.ModeSymlink {
		return nil, fmt.Errorf("invalid sync mode %q: want %q or %q", mode, store.ModeCopy, store.ModeSymlink)
	}

	target := opts.TargetPath
	if target == "" {
		var err error
		if target, err = s.DefaultTargetPath(skill, tool); err != nil {
			return nil, err
		}
	} else {
		abs, err := filepath.Abs(expandPath(target))
		if err != nil {
			return nil, fmt.Errorf("resolving target path: %w", err)
		}
		target = abs
	}

	records, err := s.store.ListSkillTargets(ctx, skill.ID)
	if err != nil {
		return nil, fmt.Errorf("listing targets of %s: %w", skill.ID, err)
	}
	owned := false
	for _, r := range records {
		if filepath.Clean(r.TargetPath) == target {
			owned = true
			break
		}
	}

	group := s.Group(skill, tool, target)
	log := logger.G(ctx).WithField("skill", skill.ID).WithField("target", target).WithField("mode", mode)

	byTool := make(map[string]store.SkillTargetRecord, len(records))
	for _, r := range records {
		byTool[r.Tool] = r
	}
	stale, err := staleTargets(skill, group, target, records, byTool, opts.Force)
	if err != nil {
		return nil, err
	}

	var syncErr error
	if mode == store.ModeCopy {
		syncErr = syncCopy(skill.CentralPath, target, owned || opts.Force)
	} else {
		syncErr = syncSymlink(skill.CentralPath, target, owned || opts.Force)
	}
	if syncErr != nil {
		log.WithError(syncErr).Warn("sync failed")
	} else {
		log.WithField("group", group).Info("synced skill")
		for _, old := range stale {
			if err := os.RemoveAll(old); err != nil {
				log.WithField("previous", old).WithError(err).Warn("removing previous target failed")
				continue
			}
			log.WithField("previous", old).Debug("removed previous target")
		}
	}

	now := s.now().UTC()
	for _, key := range group {
		rec := newTargetRecord(byTool[key], skill.ID, key, target, mode, now, syncErr)
		if err := s.store.UpsertSkillTarget(ctx, rec); err != nil {
			return nil, multierror.Append(syncErr, fmt.Errorf("recording target %s: %w", key, err)).ErrorOrNil()
		}
	}

	result := &SyncResult{
		Tool:       tool,
		Group:      group,
		TargetPath: target,
		Mode:       mode,
		Status:     store.StatusOK,
		SyncedAt:   now,
	}
	if syncErr != nil {
		result.Status = store.StatusError
		return result, fmt.Errorf("syncing %s to %s: %w", skill.ID, target, syncErr)
	}
	return result, nil
}

// Resync refreshes every copy-mode record after the central copy changed.
// Symlink records already show the new content and are skipped. Records
// sharing a target path are written once. Per-target failures are recorded
// and aggregated without stopping the remaining targets.
func (s *Synchronizer) Resync(ctx context.Context, skill *store.Skill, records []store.SkillTargetRecord) (updated, failed []string, err error) {
	var order []string
	byPath := make(map[string][]store.SkillTargetRecord)
	for _, r := range records {
		if r.Mode != store.ModeCopy {
			continue
		}
		p := filepath.Clean(r.TargetPath)
		if _, ok := byPath[p]; !ok {
			order = append(order, p)
		}
		byPath[p] = append(byPath[p], r)
	}

	var errs *multierror.Error
	for _, p := range order {
		syncErr := syncCopy(skill.CentralPath, p, true)
		now := s.now().UTC()
		for _, r := range byPath[p] {
			rec := newTargetRecord(r, skill.ID, r.Tool, p, store.ModeCopy, now, syncErr)
			if uerr := s.store.UpsertSkillTarget(ctx, rec); uerr != nil {
				errs = multierror.Append(errs, fmt.Errorf("recording target %s: %w", r.Tool, uerr))
			}
			if syncErr != nil {
				failed = append(failed, r.Tool)
			} else {
				updated = append(updated, r.Tool)
			}
		}
		if syncErr != nil {
			logger.G(ctx).WithField("skill", skill.ID).WithField("target", p).WithError(syncErr).Warn("resync failed")
			errs = multierror.Append(errs, fmt.Errorf("resyncing %s: %w", p, syncErr))
		}
	}
	return updated, failed, errs.ErrorOrNil()
}

func newTargetRecord(prev store.SkillTargetRecord, skillID, tool, target, mode string, now time.Time, syncErr error) store.SkillTargetRecord {
	id := prev.ID
	if id == "" {
		id = uuid.NewString()
	}
	rec := store.SkillTargetRecord{
		ID:         id,
		SkillID:    skillID,
		Tool:       tool,
		TargetPath: target,
		Mode:       mode,
		Status:     store.StatusOK,
		SyncedAt:   &now,
	}
	if syncErr != nil {
		msg := syncErr.Error()
		rec.Status = store.StatusError
		rec.LastError = &msg
	}
	return rec
}

// staleTargets returns the previous target paths of group members that move
// to target and whose entries skillhub created, so they can be removed once
// the new target is in place. Paths still recorded for tools outside the
// group are kept. A previous entry skillhub did not create is a conflict
// unless force is set, in which case it is left alone.
func staleTargets(skill *store.Skill, group []string, target string, records []store.SkillTargetRecord, byTool map[string]store.SkillTargetRecord, force bool) ([]string, error) {
	inGroup := make(map[string]bool, len(group))
	for _, key := range group {
		inGroup[key] = true
	}

	var stale []string
	seen := make(map[string]bool)
	for _, key := range group {
		prev, ok := byTool[key]
		if !ok {
			continue
		}
		old := filepath.Clean(prev.TargetPath)
		if old == target || seen[old] {
			continue
		}
		seen[old] = true

		shared := false
		for _, r := range records {
			if !inGroup[r.Tool] && filepath.Clean(r.TargetPath) == old {
				shared = true
				break
			}
		}
		if shared {
			continue
		}

		exists, owned, err := ownedEntry(old, prev.Mode, skill.CentralPath)
		if err != nil {
			return nil, err
		}
		if !exists {
			continue
		}
		if !owned {
			if force {
				continue
			}
			return nil, fmt.Errorf("%w: previous target %s of %s was not created by skillhub", ErrTargetConflict, old, key)
		}
		stale = append(stale, old)
	}
	return stale, nil
}

// ownedEntry reports whether something exists at target and whether
// skillhub created it for a record in mode: a real directory for copy, a
// link to central for symlink.
func ownedEntry(target, mode, central string) (exists, owned bool, err error) {
	info, err := os.Lstat(target)
	if os.IsNotExist(err) {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("checking %s: %w", target, err)
	}
	isLink := info.Mode()&os.ModeSymlink != 0
	owned = (mode == store.ModeCopy && !isLink) ||
		(mode == store.ModeSymlink && isLink && sameLinkTarget(target, central))
	return true, owned, nil
}

func checkSyncPaths(central, target string) error {
	if !dirExists(central) {
		return fmt.Errorf("central copy %s is missing", central)
	}
	if isWithin(central, target) || isWithin(target, central) {
		return fmt.Errorf("target %s overlaps the central copy %s", target, central)
	}
	return nil
}

// syncCopy replaces target with a fresh copy of central. An existing entry
// is only replaced when replace is set.
func syncCopy(central, target string, replace bool) error {
	if err := checkSyncPaths(central, target); err != nil {
		return err
	}
	if _, err := os.Lstat(target); err == nil && !replace {
		return fmt.Errorf("%w: %s", ErrTargetConflict, target)
	}
	return copyReplace(central, target)
}

// syncSymlink points target at central. A link already pointing there is
// left alone; anything else is only replaced when replace is set.
func syncSymlink(central, target string, replace bool) error {
	if err := checkSyncPaths(central, target); err != nil {
		return err
	}

	info, err := os.Lstat(target)
	switch {
	case os.IsNotExist(err):
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return fmt.Errorf("creating %s: %w", filepath.Dir(target), err)
		}
		return os.Symlink(central, target)
	case err != nil:
		return fmt.Errorf("checking %s: %w", target, err)
	}

	if info.Mode()&os.ModeSymlink != 0 && sameLinkTarget(target, central) {
		return nil
	}
	if !replace {
		return fmt.Errorf("%w: %s", ErrTargetConflict, target)
	}

	tmp := filepath.Join(filepath.Dir(target), "."+filepath.Base(target)+".link-"+randomSuffix())
	if err := os.Symlink(central, tmp); err != nil {
		return fmt.Errorf("creating link: %w", err)
	}
	if err := replaceDir(tmp, target); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func sameLinkTarget(link, central string) bool {
	dest, err := os.Readlink(link)
	if err != nil {
		return false
	}
	if !filepath.IsAbs(dest) {
		dest = filepath.Join(filepath.Dir(link), dest)
	}
	return filepath.Clean(dest) == filepath.Clean(central)
}

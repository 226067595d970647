package core

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/barysiuk/skillhub/internal/logger"
	"github.com/barysiuk/skillhub/internal/store"
)

// sourceSnapshot is what a skill record remembers about where it came from.
type sourceSnapshot struct {
	Type   string
	Ref    string // absolute folder or clone URL
	Branch string
}

// ListLocalCandidates discovers skills in a local folder without writing.
func (m *Manager) ListLocalCandidates(ctx context.Context, dir string) ([]SkillCandidate, error) {
	abs, err := filepath.Abs(expandPath(dir))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	return DiscoverCandidates(abs, m.discoverOptions())
}

// ListGitCandidates fetches source and discovers skills under its resolved
// subpath without writing to the central repository.
func (m *Manager) ListGitCandidates(ctx context.Context, source string) ([]SkillCandidate, error) {
	d := m.resolve(source)
	base, err := cleanSubpath(d.Subpath)
	if err != nil {
		return nil, err
	}

	repoDir, cleanup, err := m.fetch(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	return DiscoverCandidates(filepath.Join(repoDir, filepath.FromSlash(base)), m.discoverOptions())
}

// InstallLocal installs the single skill found in dir. A valid root wins;
// otherwise exactly one valid candidate must exist.
func (m *Manager) InstallLocal(ctx context.Context, dir, name string) (*InstallResult, error) {
	abs, err := filepath.Abs(expandPath(dir))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	candidates, err := DiscoverCandidates(abs, m.discoverOptions())
	if err != nil {
		return nil, err
	}
	sub, err := pickCandidate(candidates)
	if err != nil {
		return nil, err
	}
	return m.installFromDir(ctx, abs, sub, name, sourceSnapshot{Type: store.SourceTypeLocal, Ref: abs})
}

// InstallLocalFromSelection installs the skill at subpath of dir without
// running discovery.
func (m *Manager) InstallLocalFromSelection(ctx context.Context, dir, subpath, name string) (*InstallResult, error) {
	abs, err := filepath.Abs(expandPath(dir))
	if err != nil {
		return nil, fmt.Errorf("resolving %s: %w", dir, err)
	}
	sub, err := cleanSubpath(subpath)
	if err != nil {
		return nil, err
	}
	return m.installFromDir(ctx, abs, sub, name, sourceSnapshot{Type: store.SourceTypeLocal, Ref: abs})
}

// InstallGit fetches source and installs its single skill. A subpath in the
// source (".../tree/<branch>/<subpath>") selects the skill directly.
func (m *Manager) InstallGit(ctx context.Context, source, name string) (*InstallResult, error) {
	d := m.resolve(source)
	base, err := cleanSubpath(d.Subpath)
	if err != nil {
		return nil, err
	}

	repoDir, cleanup, err := m.fetch(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	sub := base
	if d.Subpath == "" {
		candidates, err := DiscoverCandidates(repoDir, m.discoverOptions())
		if err != nil {
			return nil, err
		}
		if sub, err = pickCandidate(candidates); err != nil {
			return nil, err
		}
	}

	snap := sourceSnapshot{Type: store.SourceTypeGit, Ref: d.CloneURL, Branch: d.Branch}
	return m.installFromDir(ctx, repoDir, sub, name, snap)
}

// InstallGitFromSelection fetches source and installs the skill at subpath,
// relative to the source's own subpath, without running discovery.
func (m *Manager) InstallGitFromSelection(ctx context.Context, source, subpath, name string) (*InstallResult, error) {
	if _, err := cleanSubpath(subpath); err != nil {
		return nil, err
	}
	d := m.resolve(source)
	sub, err := cleanSubpath(path.Join(d.Subpath, filepath.ToSlash(subpath)))
	if err != nil {
		return nil, err
	}

	repoDir, cleanup, err := m.fetch(ctx, d)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	snap := sourceSnapshot{Type: store.SourceTypeGit, Ref: d.CloneURL, Branch: d.Branch}
	return m.installFromDir(ctx, repoDir, sub, name, snap)
}

// installFromDir validates base/sub, copies it into the central repository
// and records it. Nothing is left behind on failure.
func (m *Manager) installFromDir(ctx context.Context, base, sub, name string, snap sourceSnapshot) (*InstallResult, error) {
	root, err := m.CentralRoot(ctx)
	if err != nil {
		return nil, err
	}

	src := filepath.Join(base, filepath.FromSlash(sub))
	metadata, err := ParseSkillMd(filepath.Join(src, skillFileName))
	if err != nil {
		return nil, err
	}

	displayName := strings.TrimSpace(name)
	if displayName == "" {
		displayName = metadata.Name
	}
	id := sanitizeName(displayName)

	unlock, err := m.locks.lock(root, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := m.checkUnique(ctx, id, displayName); err != nil {
		return nil, err
	}

	dst := filepath.Join(root, id)
	if pathExists(dst) {
		return nil, fmt.Errorf("%w: %s is already occupied", ErrSkillExists, dst)
	}

	staged, err := stageCopy(src, dst)
	if err != nil {
		return nil, err
	}
	if err := os.Rename(staged, dst); err != nil {
		_ = os.RemoveAll(staged)
		return nil, fmt.Errorf("moving skill into %s: %w", dst, err)
	}

	if sub == "." {
		sub = ""
	}
	now := m.now().UTC()
	sk := store.Skill{
		ID:            id,
		Name:          displayName,
		Description:   metadata.Description,
		CentralPath:   dst,
		SourceType:    snap.Type,
		SourceRef:     snap.Ref,
		SourceBranch:  snap.Branch,
		SourceSubpath: sub,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := m.store.InsertSkill(ctx, sk); err != nil {
		_ = os.RemoveAll(dst)
		if errors.Is(err, store.ErrConflict) {
			return nil, fmt.Errorf("%w: %s", ErrSkillExists, id)
		}
		return nil, fmt.Errorf("recording skill %s: %w", id, err)
	}

	logger.G(ctx).WithField("skill", id).WithField("source", snap.Ref).Info("installed skill")

	return &InstallResult{SkillID: id, Name: displayName, CentralPath: dst}, nil
}

func (m *Manager) checkUnique(ctx context.Context, id, name string) error {
	byID, err := m.store.GetSkillByID(ctx, id)
	if err != nil {
		return fmt.Errorf("reading skill %s: %w", id, err)
	}
	if byID != nil {
		return fmt.Errorf("%w: id %s", ErrSkillExists, id)
	}
	byName, err := m.store.GetSkillByName(ctx, name)
	if err != nil {
		return fmt.Errorf("reading skill %q: %w", name, err)
	}
	if byName != nil {
		return fmt.Errorf("%w: name %q", ErrSkillExists, name)
	}
	return nil
}

// fetch clones d into a temp dir. For a local descriptor the path is handed
// to git as-is. The returned cleanup removes the clone.
func (m *Manager) fetch(ctx context.Context, d SourceDescriptor) (string, func(), error) {
	if d.CloneURL == "" {
		return "", nil, errors.New("empty source")
	}
	logger.G(ctx).WithField("url", d.CloneURL).WithField("branch", d.Branch).Debug("cloning repository")

	dir, err := cloneRepo(ctx, d.CloneURL, d.Branch, m.cloneTimeout)
	if err != nil {
		return "", nil, fmt.Errorf("fetching %s: %w", d.CloneURL, err)
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

func (m *Manager) discoverOptions() DiscoverOptions {
	return DiscoverOptions{Ignore: m.ignore}
}

// pickCandidate applies the auto-pick rule to a discovery result.
func pickCandidate(candidates []SkillCandidate) (string, error) {
	if len(candidates) == 0 {
		return "", &InvalidSkillError{Reason: ReasonMissingSkillMd}
	}
	root := candidates[0]
	if root.Subpath == "." && root.Valid {
		return ".", nil
	}

	var valid []string
	for _, c := range candidates {
		if c.Valid && c.Subpath != "." {
			valid = append(valid, c.Subpath)
		}
	}
	switch len(valid) {
	case 0:
		reason := root.Reason
		if reason == "" {
			reason = ReasonMissingSkillMd
		}
		return "", &InvalidSkillError{Reason: reason}
	case 1:
		return valid[0], nil
	default:
		return "", &MultipleSkillsError{Subpaths: valid}
	}
}

// cleanSubpath normalizes a slash-separated subpath and rejects ones that
// escape their base. The root is ".".
func cleanSubpath(sub string) (string, error) {
	sub = strings.TrimSpace(filepath.ToSlash(sub))
	if sub == "" {
		return ".", nil
	}
	if path.IsAbs(sub) || filepath.IsAbs(sub) {
		return "", fmt.Errorf("subpath %q must be relative", sub)
	}
	cleaned := path.Clean(sub)
	if cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", fmt.Errorf("subpath %q escapes the source", sub)
	}
	return cleaned, nil
}

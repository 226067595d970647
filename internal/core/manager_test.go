package core

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/barysiuk/skillhub/internal/store"
)

func TestCentralRoot(t *testing.T) {
	ctx := context.Background()
	st, err := store.Open(ctx, filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer st.Close()
	m := NewManager(st, ManagerOptions{})

	if _, err := m.CentralRoot(ctx); !errors.Is(err, ErrCentralRepoNotConfigured) {
		t.Errorf("err = %v, want ErrCentralRepoNotConfigured", err)
	}

	dir := filepath.Join(t.TempDir(), "a", "b")
	got, err := m.SetCentralRoot(ctx, dir)
	if err != nil {
		t.Fatalf("SetCentralRoot() error: %v", err)
	}
	if got != dir || !dirExists(dir) {
		t.Errorf("SetCentralRoot() = %q; dir created: %v", got, dirExists(dir))
	}
	if root, err := m.CentralRoot(ctx); err != nil || root != dir {
		t.Errorf("CentralRoot() = %q, %v", root, err)
	}

	if err := st.SetSetting(ctx, store.SettingCentralRepoPath, "relative/path"); err != nil {
		t.Fatal(err)
	}
	if _, err := m.CentralRoot(ctx); !errors.Is(err, ErrCentralRepoNotConfigured) {
		t.Errorf("relative root err = %v, want ErrCentralRepoNotConfigured", err)
	}
}

func TestUpdateFromSource_Local(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	env := newTestEnv(t)
	src := t.TempDir()
	writeFile(t, src, "SKILL.md", "---\nname: x\ndescription: first\n---\n")
	writeFile(t, src, "a.txt", "v1")

	res, err := env.manager.InstallLocal(env.ctx, src, "local1")
	if err != nil {
		t.Fatal(err)
	}
	copyDst := filepath.Join(t.TempDir(), "copy", "local1")
	if _, err := env.manager.SyncTarget(env.ctx, res.SkillID, "unknown_tool", SyncOptions{Mode: store.ModeCopy, TargetPath: copyDst}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.manager.SyncTarget(env.ctx, res.SkillID, "cursor", SyncOptions{}); err != nil {
		t.Fatal(err)
	}
	before := targetsByTool(t, env, res.SkillID)
	linkPath := before["cursor"].TargetPath

	time.Sleep(10 * time.Millisecond)
	writeFile(t, src, "SKILL.md", "---\nname: x\ndescription: second\n---\n")
	writeFile(t, src, "a.txt", "v2")
	if err := os.Remove(filepath.Join(res.CentralPath, "a.txt")); err != nil {
		t.Fatal(err)
	}
	writeFile(t, res.CentralPath, "stale.txt", "local edit")

	up, err := env.manager.UpdateFromSource(env.ctx, res.SkillID)
	if err != nil {
		t.Fatalf("UpdateFromSource() error: %v", err)
	}
	if up.Err != nil {
		t.Fatalf("UpdateResult.Err = %v", up.Err)
	}
	if len(up.UpdatedTargets) != 1 || up.UpdatedTargets[0] != "unknown_tool" {
		t.Errorf("UpdatedTargets = %v", up.UpdatedTargets)
	}

	if readString(t, filepath.Join(res.CentralPath, "a.txt")) != "v2" || pathExists(filepath.Join(res.CentralPath, "stale.txt")) {
		t.Error("central copy not mirrored from source")
	}
	if readString(t, filepath.Join(copyDst, "a.txt")) != "v2" {
		t.Error("copy target not refreshed")
	}
	if readString(t, filepath.Join(linkPath, "a.txt")) != "v2" {
		t.Error("symlink target does not show new content")
	}

	sk, _ := env.store.GetSkillByID(env.ctx, res.SkillID)
	// The manifest now says "x"; the recorded name stays.
	if sk.Name != "local1" || sk.Description != "second" {
		t.Errorf("skill after update = %+v", sk)
	}
	if !sk.UpdatedAt.After(sk.CreatedAt) {
		t.Errorf("UpdatedAt %v not after CreatedAt %v", sk.UpdatedAt, sk.CreatedAt)
	}

	after := targetsByTool(t, env, res.SkillID)
	copyRec := after["unknown_tool"]
	if copyRec.Status != store.StatusOK || !copyRec.SyncedAt.After(*before["unknown_tool"].SyncedAt) {
		t.Errorf("copy record not refreshed: %+v", copyRec)
	}
	if !after["cursor"].SyncedAt.Equal(*before["cursor"].SyncedAt) {
		t.Error("symlink record should not be touched")
	}
}

func TestUpdateFromSource_InvalidSourceKeepsCentral(t *testing.T) {
	env := newTestEnv(t)
	src := t.TempDir()
	writeFile(t, src, "SKILL.md", skillMd("demo"))
	writeFile(t, src, "a.txt", "v1")
	res, err := env.manager.InstallLocal(env.ctx, src, "")
	if err != nil {
		t.Fatal(err)
	}

	writeFile(t, src, "SKILL.md", "---\ndescription: lost its name\n---\n")
	writeFile(t, src, "a.txt", "v2")

	_, err = env.manager.UpdateFromSource(env.ctx, res.SkillID)
	if err == nil || err.Error() != "SKILL_INVALID|missing_name" {
		t.Fatalf("err = %v, want SKILL_INVALID|missing_name", err)
	}
	if readString(t, filepath.Join(res.CentralPath, "a.txt")) != "v1" {
		t.Error("central copy changed by a failed update")
	}

	if err := os.RemoveAll(src); err != nil {
		t.Fatal(err)
	}
	if _, err := env.manager.UpdateFromSource(env.ctx, res.SkillID); err == nil {
		t.Error("expected error for a missing source folder")
	}
	if _, err := env.manager.UpdateFromSource(env.ctx, "nope"); !errors.Is(err, ErrSkillNotFound) {
		t.Errorf("err = %v, want ErrSkillNotFound", err)
	}
}

func TestUpdateFromSource_Git(t *testing.T) {
	env := newTestEnv(t)
	repo := t.TempDir()
	writeFile(t, repo, "skills/a/SKILL.md", skillMd("A"))
	writeFile(t, repo, "skills/a/a.txt", "v1")
	writeFile(t, repo, "README.md", "readme")
	initGitRepo(t, repo)

	res, err := env.manager.InstallGit(env.ctx, repo, "")
	if err != nil {
		t.Fatalf("InstallGit() error: %v", err)
	}

	writeFile(t, repo, "skills/a/a.txt", "v2")
	commitAll(t, repo, "bump")

	if _, err := env.manager.UpdateFromSource(env.ctx, res.SkillID); err != nil {
		t.Fatalf("UpdateFromSource() error: %v", err)
	}
	if readString(t, filepath.Join(res.CentralPath, "a.txt")) != "v2" {
		t.Error("central copy not updated from the repository")
	}
	if pathExists(filepath.Join(res.CentralPath, "README.md")) {
		t.Error("only the skill subpath should be copied")
	}
}

func TestUninstall(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks require privileges on windows")
	}
	env := newTestEnv(t)
	sk := installFixture(t, env, "demo")

	copyDst := filepath.Join(t.TempDir(), "demo")
	if _, err := env.manager.SyncTarget(env.ctx, sk.ID, "unknown_tool", SyncOptions{Mode: store.ModeCopy, TargetPath: copyDst}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.manager.SyncTarget(env.ctx, sk.ID, "amp", SyncOptions{}); err != nil {
		t.Fatal(err)
	}
	linkPath := targetsByTool(t, env, sk.ID)["amp"].TargetPath

	// A target the user replaced with their own folder is left alone.
	userDst := filepath.Join(env.home, ".cursor", "skills", "demo")
	if _, err := env.manager.SyncTarget(env.ctx, sk.ID, "cursor", SyncOptions{}); err != nil {
		t.Fatal(err)
	}
	if err := os.Remove(userDst); err != nil {
		t.Fatal(err)
	}
	writeFile(t, userDst, "mine.txt", "keep")

	res, err := env.manager.Uninstall(env.ctx, sk.ID)
	if err != nil {
		t.Fatalf("Uninstall() error: %v", err)
	}
	if len(res.RemovedTargets) != 2 {
		t.Errorf("RemovedTargets = %v", res.RemovedTargets)
	}
	if len(res.SkippedTargets) != 1 || res.SkippedTargets[0] != userDst {
		t.Errorf("SkippedTargets = %v", res.SkippedTargets)
	}

	for _, p := range []string{copyDst, linkPath, sk.CentralPath} {
		if _, err := os.Lstat(p); !os.IsNotExist(err) {
			t.Errorf("%s should be removed", p)
		}
	}
	if readString(t, filepath.Join(userDst, "mine.txt")) != "keep" {
		t.Error("user folder was touched")
	}

	if got, _ := env.store.GetSkillByID(env.ctx, sk.ID); got != nil {
		t.Error("skill record should be deleted")
	}
	if n := len(targetsByTool(t, env, sk.ID)); n != 0 {
		t.Errorf("%d target records left", n)
	}

	if _, err := env.manager.Uninstall(env.ctx, sk.ID); !errors.Is(err, ErrSkillNotFound) {
		t.Errorf("second Uninstall() err = %v, want ErrSkillNotFound", err)
	}
	// The id is free again.
	installFixture(t, env, "demo")
}

func TestListAndGet(t *testing.T) {
	env := newTestEnv(t)
	installFixture(t, env, "beta")
	sk := installFixture(t, env, "alpha")
	if _, err := env.manager.SyncTarget(env.ctx, sk.ID, "x", SyncOptions{Mode: store.ModeCopy, TargetPath: filepath.Join(t.TempDir(), "alpha")}); err != nil {
		t.Fatal(err)
	}

	list, err := env.manager.List(env.ctx)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("List() returned %d skills", len(list))
	}

	got, err := env.manager.Get(env.ctx, "alpha")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Name != "alpha" || len(got.Targets) != 1 || got.Targets[0].Tool != "x" {
		t.Errorf("Get() = %+v", got)
	}
	if _, err := env.manager.Get(env.ctx, "gamma"); !errors.Is(err, ErrSkillNotFound) {
		t.Errorf("err = %v, want ErrSkillNotFound", err)
	}
}

package core

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestClassifyCloneOutput(t *testing.T) {
	tests := []struct {
		name     string
		output   string
		wantKind CloneErrorKind
	}{
		// HTTPS auth errors.
		{
			name:     "https could not read username",
			output:   "fatal: could not read Username for 'https://github.com': terminal prompts disabled",
			wantKind: CloneErrAuth,
		},
		{
			name:     "https authentication failed",
			output:   "fatal: Authentication failed for 'https://github.com/owner/repo.git/'",
			wantKind: CloneErrAuth,
		},
		{
			name:     "https 401",
			output:   "fatal: unable to access 'https://github.com/owner/repo.git/': The requested URL returned error: 401",
			wantKind: CloneErrAuth,
		},
		{
			name:     "https 403",
			output:   "fatal: unable to access 'https://github.com/owner/repo.git/': The requested URL returned error: 403",
			wantKind: CloneErrAuth,
		},
		{
			name:     "windows logon failed",
			output:   "Logon failed, use ctrl+c to cancel basic credential prompt.",
			wantKind: CloneErrAuth,
		},

		// SSH key errors.
		{
			name:     "ssh permission denied publickey",
			output:   "git@github.com: Permission denied (publickey).\nfatal: Could not read from remote repository.",
			wantKind: CloneErrSSHKey,
		},
		{
			name:     "ssh no such identity",
			output:   "no such identity: /home/user/.ssh/id_ed25519: No such file or directory",
			wantKind: CloneErrSSHKey,
		},

		// SSH host key errors.
		{
			name:     "ssh host key verification failed",
			output:   "Host key verification failed.\nfatal: Could not read from remote repository.",
			wantKind: CloneErrHostKey,
		},
		{
			name:     "ssh known_hosts offending key",
			output:   "Offending ECDSA key in /home/user/.ssh/known_hosts:5",
			wantKind: CloneErrHostKey,
		},

		// Missing repository or branch.
		{
			name:     "github repo not found",
			output:   "remote: Repository not found.\nfatal: repository 'https://github.com/owner/repo.git/' not found",
			wantKind: CloneErrRepoNotFound,
		},
		{
			name:     "not a git repository",
			output:   "fatal: 'https://example.com/foo' does not appear to be a git repository",
			wantKind: CloneErrRepoNotFound,
		},
		{
			name:     "local path missing",
			output:   "fatal: repository '/tmp/nope' does not exist",
			wantKind: CloneErrRepoNotFound,
		},
		{
			name:     "branch missing",
			output:   "warning: Could not find remote branch dev to clone.\nfatal: Remote branch dev not found in upstream origin",
			wantKind: CloneErrBranchNotFound,
		},

		// Network errors.
		{
			name:     "could not resolve host",
			output:   "fatal: unable to access 'https://github.com/owner/repo.git/': Could not resolve host: github.com",
			wantKind: CloneErrNetwork,
		},
		{
			name:     "connection refused",
			output:   "fatal: unable to access 'https://github.com/owner/repo.git/': Failed to connect to github.com port 443: Connection refused",
			wantKind: CloneErrNetwork,
		},

		{
			name:     "timeout",
			output:   "clone timed out after 1m0s",
			wantKind: CloneErrTimeout,
		},
		{
			name:     "unknown error",
			output:   "fatal: something unexpected happened",
			wantKind: CloneErrUnknown,
		},
		{
			name:     "empty output",
			output:   "",
			wantKind: CloneErrUnknown,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := classifyCloneOutput(tt.output); got != tt.wantKind {
				t.Errorf("classifyCloneOutput(%q) = %v, want %v", tt.output, got, tt.wantKind)
			}
		})
	}
}

func TestClassifyCloneError(t *testing.T) {
	ce := classifyCloneError(
		"https://github.com/owner/repo.git",
		"",
		"Cloning into '/tmp/x'...\nfatal: could not read Username for 'https://github.com': terminal prompts disabled\n",
	)

	if ce.Kind != CloneErrAuth {
		t.Errorf("Kind = %v, want CloneErrAuth", ce.Kind)
	}
	if !strings.Contains(ce.Error(), "could not read Username") {
		t.Errorf("Error() = %q, want the first meaningful git line", ce.Error())
	}
	found := false
	for _, h := range ce.Hints {
		if strings.Contains(h, "cloneURLOverrides.github.com/owner/repo git@github.com:owner/repo.git") {
			found = true
		}
	}
	if !found {
		t.Errorf("auth hints should suggest an SSH override, got %v", ce.Hints)
	}
}

func TestCloneErrorKindString(t *testing.T) {
	if CloneErrAuth.String() != "authentication required" {
		t.Errorf("String() = %q", CloneErrAuth.String())
	}
	if CloneErrorKind(99).String() != "unknown error" {
		t.Errorf("String() = %q", CloneErrorKind(99).String())
	}
}

func TestHTTPSToSSH(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://github.com/owner/repo.git", "git@github.com:owner/repo.git"},
		{"https://github.com/owner/repo", "git@github.com:owner/repo.git"},
		{"https://gitlab.example.com/owner/repo.git", "git@gitlab.example.com:owner/repo.git"},
		{"https://github.com/owner", ""},
		{"git@github.com:owner/repo.git", ""}, // already SSH
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			if got := httpsToSSH(tt.url); got != tt.want {
				t.Errorf("httpsToSSH(%q) = %q, want %q", tt.url, got, tt.want)
			}
		})
	}
}

func TestIsCloneError(t *testing.T) {
	ce := &CloneError{Kind: CloneErrAuth, URL: "https://github.com/owner/repo.git"}

	got, ok := IsCloneError(ce)
	if !ok || got != ce {
		t.Error("IsCloneError should find direct CloneError")
	}

	got, ok = IsCloneError(nil)
	if ok || got != nil {
		t.Error("IsCloneError(nil) should return false")
	}
}

func TestCloneRepo_Local(t *testing.T) {
	repo := t.TempDir()
	writeFile(t, repo, "SKILL.md", skillMd("x"))
	initGitRepo(t, repo)

	dir, err := cloneRepo(context.Background(), repo, "", time.Minute)
	if err != nil {
		t.Fatalf("cloneRepo() error: %v", err)
	}
	defer os.RemoveAll(dir)
	if !fileExists(filepath.Join(dir, "SKILL.md")) {
		t.Error("SKILL.md missing from clone")
	}

	_, err = cloneRepo(context.Background(), repo, "no-such-branch", time.Minute)
	ce, ok := IsCloneError(err)
	if !ok || ce.Kind != CloneErrBranchNotFound {
		t.Errorf("err = %v, want branch not found", err)
	}
}

func TestCloneRepo_Cancelled(t *testing.T) {
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := cloneRepo(ctx, t.TempDir(), "", time.Minute); err == nil {
		t.Error("expected error for a cancelled context")
	}
}

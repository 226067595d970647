package core

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// locksDirName holds per-skill lock files under the central repository root.
const locksDirName = ".locks"

// excludedFiles are never copied out of a source tree.
var excludedFiles = map[string]bool{
	".git": true,
}

var (
	sanitizeRegexp = regexp.MustCompile(`[^a-z0-9._-]+`)
	dashRunRegexp  = regexp.MustCompile(`-{2,}`)
)

// sanitizeName derives a directory-safe skill id from a display name.
func sanitizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = sanitizeRegexp.ReplaceAllString(name, "-")
	name = dashRunRegexp.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-.")
	if len(name) > 128 {
		name = strings.TrimRight(name[:128], "-.")
	}
	if name == "" {
		name = "unnamed-skill"
	}
	return name
}

// copyDirectory copies src into dst, which must not exist yet. Symlinks are
// recreated rather than followed.
func copyDirectory(src, dst string) error {
	// A linked root would otherwise be copied as the link itself.
	if resolved, err := filepath.EvalSymlinks(src); err == nil {
		src = resolved
	}
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		if rel != "." && excludedFiles[d.Name()] {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		dstPath := filepath.Join(dst, rel)

		switch {
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			return os.Symlink(target, dstPath)
		case d.IsDir():
			info, err := d.Info()
			if err != nil {
				return err
			}
			return os.MkdirAll(dstPath, info.Mode().Perm()|0o700)
		case d.Type().IsRegular():
			return copyFile(path, dstPath)
		default:
			// Sockets, devices and pipes are not part of a skill.
			return nil
		}
	})
}

// copyFile copies a single file from src to dst, keeping its permissions.
func copyFile(src, dst string) error {
	srcFile, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() { _ = srcFile.Close() }()

	info, err := srcFile.Stat()
	if err != nil {
		return err
	}

	dstFile, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		return err
	}
	return dstFile.Close()
}

// stageCopy copies src into a fresh sibling of dst named .<base>.tmp-*,
// so the later rename stays on one filesystem.
func stageCopy(src, dst string) (string, error) {
	parent := filepath.Dir(dst)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", fmt.Errorf("creating %s: %w", parent, err)
	}
	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(dst)+".tmp-")
	if err != nil {
		return "", fmt.Errorf("creating temp dir: %w", err)
	}
	// copyDirectory expects dst to be absent.
	if err := os.Remove(tmp); err != nil {
		return "", err
	}
	if err := copyDirectory(src, tmp); err != nil {
		_ = os.RemoveAll(tmp)
		return "", fmt.Errorf("copying %s: %w", src, err)
	}
	return tmp, nil
}

// replaceDir atomically swaps staged into place at dst. An existing dst is
// moved aside first and restored if the swap fails, so readers see either
// the old tree or the new one.
func replaceDir(staged, dst string) error {
	backup := ""
	if _, err := os.Lstat(dst); err == nil {
		backup = filepath.Join(filepath.Dir(dst), "."+filepath.Base(dst)+".old-"+randomSuffix())
		if err := os.Rename(dst, backup); err != nil {
			return fmt.Errorf("moving aside %s: %w", dst, err)
		}
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("checking %s: %w", dst, err)
	}

	if err := os.Rename(staged, dst); err != nil {
		if backup != "" {
			_ = os.Rename(backup, dst)
		}
		return fmt.Errorf("swapping in %s: %w", dst, err)
	}

	if backup != "" {
		_ = os.RemoveAll(backup)
	}
	return nil
}

// copyReplace refreshes dst with a copy of src using stageCopy and replaceDir.
func copyReplace(src, dst string) error {
	staged, err := stageCopy(src, dst)
	if err != nil {
		return err
	}
	if err := replaceDir(staged, dst); err != nil {
		_ = os.RemoveAll(staged)
		return err
	}
	return nil
}

func randomSuffix() string {
	return uuid.NewString()[:8]
}

// expandPath expands a leading ~ and environment variables.
func expandPath(p string) string {
	p = os.ExpandEnv(p)
	if p == "~" || strings.HasPrefix(p, "~/") || strings.HasPrefix(p, `~\`) {
		home, err := os.UserHomeDir()
		if err == nil {
			p = filepath.Join(home, p[1:])
		}
	}
	return p
}

// isWithin reports whether path is root or lies under it.
func isWithin(root, path string) bool {
	rel, err := filepath.Rel(filepath.Clean(root), filepath.Clean(path))
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

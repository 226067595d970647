package core

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rogpeppe/go-internal/lockedfile"
)

// skillLocker serializes operations on one skill id, both within this
// process and across skillhub processes sharing a central repository.
type skillLocker struct {
	mu    sync.Mutex
	local map[string]*sync.Mutex
}

func newSkillLocker() *skillLocker {
	return &skillLocker{local: make(map[string]*sync.Mutex)}
}

// lock blocks until the skill id is free and returns the release func.
func (l *skillLocker) lock(root, id string) (func(), error) {
	if id == "" || id == "." || id == ".." || strings.ContainsAny(id, `/\`) {
		return nil, fmt.Errorf("invalid skill id %q", id)
	}

	l.mu.Lock()
	m, ok := l.local[id]
	if !ok {
		m = &sync.Mutex{}
		l.local[id] = m
	}
	l.mu.Unlock()

	m.Lock()

	dir := filepath.Join(root, locksDirName)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.Unlock()
		return nil, fmt.Errorf("creating lock dir: %w", err)
	}
	unlock, err := lockedfile.MutexAt(filepath.Join(dir, id+".lock")).Lock()
	if err != nil {
		m.Unlock()
		return nil, fmt.Errorf("locking skill %s: %w", id, err)
	}

	return func() {
		unlock()
		m.Unlock()
	}, nil
}

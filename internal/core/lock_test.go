package core

import (
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestSkillLocker_RejectsBadIDs(t *testing.T) {
	l := newSkillLocker()
	root := t.TempDir()
	for _, id := range []string{"", ".", "..", "a/b", `a\b`} {
		if _, err := l.lock(root, id); err == nil {
			t.Errorf("lock(%q) should fail", id)
		}
	}
}

func TestSkillLocker_Serializes(t *testing.T) {
	l := newSkillLocker()
	root := t.TempDir()

	var inside, maxInside int32
	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock, err := l.lock(root, "demo")
			if err != nil {
				t.Error(err)
				return
			}
			n := atomic.AddInt32(&inside, 1)
			for {
				m := atomic.LoadInt32(&maxInside)
				if n <= m || atomic.CompareAndSwapInt32(&maxInside, m, n) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			atomic.AddInt32(&inside, -1)
			unlock()
		}()
	}
	wg.Wait()

	if maxInside != 1 {
		t.Errorf("%d holders at once, want 1", maxInside)
	}
	if !fileExists(filepath.Join(root, locksDirName, "demo.lock")) {
		t.Error("lock file not created")
	}
}

func TestSkillLocker_DifferentIDsDoNotBlock(t *testing.T) {
	l := newSkillLocker()
	root := t.TempDir()

	unlockA, err := l.lock(root, "a")
	if err != nil {
		t.Fatal(err)
	}
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB, err := l.lock(root, "b")
		if err == nil {
			unlockB()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("lock on b blocked behind a")
	}
}

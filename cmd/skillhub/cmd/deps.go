package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/barysiuk/skillhub/internal/core"
	"github.com/barysiuk/skillhub/internal/store"
)

// deps holds shared dependencies for CLI commands.
type deps struct {
	config  *core.ConfigManager
	cfg     *core.Config
	store   *store.SQLiteStore
	manager *core.Manager
}

func newConfigManager() (*core.ConfigManager, error) {
	cm, err := core.NewConfigManager()
	if err != nil {
		return nil, fmt.Errorf("initializing config: %w", err)
	}
	return cm, nil
}

// newDeps loads the config, opens the record store and builds the manager.
// Callers must call close.
func newDeps(ctx context.Context) (*deps, error) {
	cm, err := newConfigManager()
	if err != nil {
		return nil, err
	}
	cfg, err := cm.Load()
	if err != nil {
		return nil, err
	}

	dbPath := cm.DatabasePath(cfg)
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}
	st, err := store.Open(ctx, dbPath)
	if err != nil {
		return nil, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("getting home directory: %w", err)
	}

	d := &deps{config: cm, cfg: cfg, store: st}
	d.manager = core.NewManager(st, core.ManagerOptions{
		CloneTimeout:      cfg.CloneTimeoutDuration(),
		CloneURLOverrides: cfg.CloneURLOverrides,
		DiscoveryIgnore:   cfg.DiscoveryIgnore,
		Synchronizer:      core.NewSynchronizer(st, core.SynchronizerOptions{Home: home}),
	})
	return d, nil
}

func (d *deps) close() {
	_ = d.store.Close()
}

// reload rebuilds the manager after the config file changed.
func (d *deps) reload(ctx context.Context) error {
	d.close()
	fresh, err := newDeps(ctx)
	if err != nil {
		return err
	}
	*d = *fresh
	return nil
}

package cli

import (
	"context"
	"fmt"

	"github.com/hupe1980/memquery/core"
	"github.com/hupe1980/memquery/logging"
	"github.com/hupe1980/memquery/memory"
	"github.com/hupe1980/memquery/memory/sqlite"
)

// openStore opens the configured store and applies the snapshot, if any. The
// returned close function is never nil.
func openStore(ctx context.Context, cfg *Config, logger logging.Logger) (core.MemoryView, func() error, error) {
	var snap *memory.Snapshot

	if cfg.StoreSnapshot != "" {
		s, err := memory.LoadSnapshotFile(cfg.StoreSnapshot)
		if err != nil {
			return nil, nil, err
		}

		snap = s
	}

	switch cfg.StoreDriver {
	case driverSQLite:
		db, err := sqlite.New(cfg.StorePath, func(o *sqlite.Options) { o.Logger = logger })
		if err != nil {
			return nil, nil, err
		}

		if snap != nil {
			if err := db.Import(ctx, snap); err != nil {
				_ = db.Close()
				return nil, nil, err
			}
		}

		return db, db.Close, nil
	default:
		store := memory.NewInMemoryStore()

		if snap != nil {
			if err := snap.Apply(ctx, store); err != nil {
				return nil, nil, fmt.Errorf("apply snapshot: %w", err)
			}
		}

		return store, func() error { return nil }, nil
	}
}

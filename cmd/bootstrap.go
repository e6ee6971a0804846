package cmd

import (
	"context"
	"fmt"

	"github.com/carboneio/sclone/core/config"
	"github.com/carboneio/sclone/core/database"
	"github.com/carboneio/sclone/core/logger"
	"github.com/carboneio/sclone/core/reconcile"
	"github.com/carboneio/sclone/core/snapshot"
	"github.com/carboneio/sclone/core/storage"
	"github.com/carboneio/sclone/feature/history"
	"github.com/carboneio/sclone/feature/pairsync"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// deps holds what every command needs once configuration is loaded.
type deps struct {
	cfg *config.Config
	log *zap.Logger
	db  *gorm.DB
}

// bootstrap loads and validates the configuration, then builds the logger
// and the optional database connection.
func bootstrap() (*deps, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	zap.ReplaceGlobals(logg)

	rt := &deps{cfg: cfg, log: logg}
	if !cfg.Database.Enabled {
		return rt, nil
	}

	db, err := database.Connect(cfg.Database)
	switch {
	case err != nil && cfg.Sync.CacheDriver == pairsync.CacheDriverDatabase:
		return nil, fmt.Errorf("database required by the cache driver: %w", err)
	case err != nil:
		logg.Warn("Optional database connection failed, run history disabled", zap.Error(err))
	default:
		rt.db = db
		logg.Info("Connected to database", zap.String("host", cfg.Database.Host), zap.String("name", cfg.Database.Name))
	}
	return rt, nil
}

// adapters connects both sides of the pair.
func (rt *deps) adapters(ctx context.Context) (storage.Adapter, storage.Adapter, error) {
	src, err := storage.NewAdapter(ctx, rt.cfg.Source, rt.cfg.Sync.IntegrityCheck)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create source storage: %w", err)
	}
	tgt, err := storage.NewAdapter(ctx, rt.cfg.Target, rt.cfg.Sync.IntegrityCheck)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create target storage: %w", err)
	}
	return src, tgt, nil
}

// service builds the sync service with its cache store and run history.
func (rt *deps) service(ctx context.Context) (*pairsync.Service, error) {
	policy, err := rt.cfg.Sync.Policy()
	if err != nil {
		return nil, err
	}
	src, tgt, err := rt.adapters(ctx)
	if err != nil {
		return nil, err
	}
	pair := pairsync.Pair{Name: rt.cfg.Sync.Name, Source: src, Target: tgt, Policy: policy}

	var store snapshot.Store = snapshot.NewFileStore(rt.cfg.Sync.CacheFile)
	if rt.cfg.Sync.CacheDriver == pairsync.CacheDriverDatabase {
		dbStore := snapshot.NewDBStore(rt.db, pair.Name)
		if err := dbStore.Migrate(); err != nil {
			return nil, fmt.Errorf("failed to migrate cache table: %w", err)
		}
		store = dbStore
	}

	var opts []pairsync.Option
	if rt.db != nil {
		rec := history.NewRecorder(rt.db)
		if err := rec.Migrate(); err != nil {
			rt.log.Warn("Failed to migrate run history, history disabled", zap.Error(err))
		} else {
			opts = append(opts, pairsync.WithHistory(rec))
		}
	}

	arrow := "=>"
	if policy.Mode == reconcile.Bidirectional {
		arrow = "<=>"
	}
	rt.log.Info("Synchronization configured",
		zap.String("pair", pair.Name),
		zap.String("mode", string(policy.Mode)),
		zap.String("direction", fmt.Sprintf("%s:%s %s %s:%s", src.Kind(), src.Bucket(), arrow, tgt.Kind(), tgt.Bucket())),
		zap.Bool("delete", policy.Deletion),
		zap.Int("max_deletions", rt.cfg.Sync.MaxDeletions),
	)
	return pairsync.NewService(pair, rt.cfg.Sync, store, rt.log, opts...), nil
}

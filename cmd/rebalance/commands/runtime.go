package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/stockbalance/backend/internal/contracts"
	"github.com/wonny/stockbalance/backend/internal/engine"
	"github.com/wonny/stockbalance/backend/internal/engineconfig"
	"github.com/wonny/stockbalance/backend/internal/s0_snapshot"
	"github.com/wonny/stockbalance/backend/pkg/config"
	"github.com/wonny/stockbalance/backend/pkg/database"
	"github.com/wonny/stockbalance/backend/pkg/logger"
)

// runtime bundles what every engine command needs
type runtime struct {
	cfg        *config.Config
	log        *logger.Logger
	engine     *engine.Orchestrator
	source     contracts.SnapshotSource
	sourceName string
	db         *database.DB
}

// newRuntime loads config, builds the engine and opens the snapshot source
// --input가 없으면 Postgres (DATABASE_URL + SNAPSHOT_QUERY) 사용
func newRuntime(ctx context.Context) (*runtime, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if env != "" {
		cfg.Env = env
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Load engine policy
	path := cfg.Engine.PolicyFile
	if policyFile != "" {
		path = policyFile
	}
	engineCfg, err := engineconfig.LoadOrDefault(path)
	if err != nil {
		return nil, fmt.Errorf("load engine config: %w", err)
	}

	// 4. Create orchestrator
	orch, err := engine.NewOrchestrator(engineCfg, time.Now, log)
	if err != nil {
		return nil, fmt.Errorf("create engine: %w", err)
	}

	rt := &runtime{cfg: cfg, log: log, engine: orch}

	// 5. Open snapshot source
	if inputFile != "" {
		rt.source = s0_snapshot.NewFileSource(inputFile, sheetName)
		rt.sourceName = "file:" + inputFile
	} else {
		if err := cfg.RequireDatabase(); err != nil {
			return nil, fmt.Errorf("no --input given: %w", err)
		}
		db, err := database.New(ctx, cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		rt.db = db
		rt.source = s0_snapshot.NewRepository(db.Pool, cfg.Database.SnapshotQuery, log)
		rt.sourceName = "postgres"
	}

	log.WithFields(map[string]interface{}{
		"source":      rt.sourceName,
		"config_hash": orch.ConfigHash(),
		"env":         cfg.Env,
	}).Debug("Runtime initialized")

	return rt, nil
}

// Close releases the database pool, if any
func (rt *runtime) Close() {
	if rt.db != nil {
		rt.db.Close()
	}
}

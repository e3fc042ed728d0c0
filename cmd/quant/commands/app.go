package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/dataset"
	"github.com/wonny/quantengine/internal/draft"
	"github.com/wonny/quantengine/internal/engineconfig"
	"github.com/wonny/quantengine/internal/metrics"
	"github.com/wonny/quantengine/internal/pipeline"
	"github.com/wonny/quantengine/internal/quotes"
	"github.com/wonny/quantengine/internal/scoring"
	"github.com/wonny/quantengine/internal/signals"
	"github.com/wonny/quantengine/internal/store"
	"github.com/wonny/quantengine/internal/tracker"
	"github.com/wonny/quantengine/internal/valuation"
	"github.com/wonny/quantengine/pkg/config"
	"github.com/wonny/quantengine/pkg/database"
	"github.com/wonny/quantengine/pkg/httputil"
	"github.com/wonny/quantengine/pkg/logger"
	"github.com/wonny/quantengine/pkg/redis"
)

// app holds the wired dependencies shared by every command.
type app struct {
	cfg        *config.Config
	engine     *engineconfig.Config
	engineHash string
	log        *logger.Logger

	registry *prometheus.Registry
	metrics  *metrics.Recorder

	db    *database.DB  // nil without DATABASE_URL
	redis *redis.Client // disabled unless REDIS_ENABLED

	signals   contracts.SignalStore
	rankings  contracts.RankingStore
	snapshots contracts.SnapshotStore
}

// bootstrap loads config, connects the optional backends and picks the stores.
// Without a database every store is in-memory and lives only for this process.
func bootstrap(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Engine thresholds
	engineCfg, err := loadEngineConfig(cfg)
	if err != nil {
		return nil, err
	}
	engineCfg.Scoring.Workers = cfg.Workers
	hash, err := engineconfig.Hash(engineCfg)
	if err != nil {
		return nil, fmt.Errorf("hash engine config: %w", err)
	}
	for _, w := range engineconfig.Warn(engineCfg) {
		log.WithField("code", w.Code).Warn(w.Message)
	}

	a := &app{
		cfg:        cfg,
		engine:     engineCfg,
		engineHash: hash,
		log:        log,
		registry:   prometheus.NewRegistry(),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	a.metrics = metrics.NewRecorder(a.registry)

	// 4. Redis (claims and ranking cache)
	a.redis, err = redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	// 5. Database
	if cfg.Database.Enabled() {
		a.db, err = database.New(ctx, cfg)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := store.EnsureSchema(ctx, a.db.Pool); err != nil {
			a.Close()
			return nil, err
		}
		a.signals = store.NewSignalRepository(a.db.Pool)
		a.rankings = store.NewRankingRepository(a.db.Pool)
		a.snapshots = store.NewSnapshotRepository(a.db.Pool)
		log.Info("Connected to database")
	} else {
		a.signals = store.NewMemorySignalStore()
		a.rankings = store.NewMemoryRankingStore()
		a.snapshots = store.NewMemorySnapshotStore()
		log.Warn("DATABASE_URL not set, results are kept in memory only")
	}

	if a.redis.Enabled() {
		a.signals = store.NewClaimingSignalStore(a.signals, redis.NewClaimer(a.redis))
	}

	log.WithFields(map[string]interface{}{
		"env":         cfg.Env,
		"config_hash": hash[:12],
		"database":    a.db != nil,
		"redis":       a.redis.Enabled(),
	}).Debug("Bootstrap complete")

	return a, nil
}

func loadEngineConfig(cfg *config.Config) (*engineconfig.Config, error) {
	path := engineConfigFile
	if path == "" {
		path = cfg.EngineConfigPath
	}
	if path == "" {
		return engineconfig.Default(), nil
	}

	engineCfg, _, err := engineconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load engine config %s: %w", path, err)
	}
	return engineCfg, nil
}

// Close releases the backends.
func (a *app) Close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.redis != nil {
		a.redis.Close()
	}
}

func (a *app) valuer() *valuation.Engine {
	return valuation.NewEngine(a.engine.ValuationConfig(), a.log)
}

func (a *app) orchestrator() *pipeline.Orchestrator {
	scorer := scoring.NewEngine(a.engine.ScoringConfig(), a.valuer(), a.log)
	drafter := draft.NewEngine(a.engine.DraftConfig(), a.log)
	return pipeline.NewOrchestrator(scorer, drafter, a.rankings, redis.NewCache(a.redis), a.metrics, a.log)
}

func (a *app) scanner() *signals.Scanner {
	return signals.NewScanner(a.engine.ScannerConfig(), a.signals, a.metrics, a.log)
}

func (a *app) auditor(quotes contracts.QuoteSource) *signals.Auditor {
	return signals.NewAuditor(a.engine.AuditorConfig(), a.signals, quotes, a.metrics, a.log.Zerolog())
}

// quoteSource picks the auditor's prices: the CSV at pricesPath when given,
// else the quote service from QUOTE_API_URL.
func (a *app) quoteSource(pricesPath string) (contracts.QuoteSource, error) {
	if pricesPath != "" {
		return dataset.NewFileQuotes(pricesPath), nil
	}
	if a.cfg.QuoteAPI.Enabled() {
		source := quotes.NewHTTPSource(a.cfg.QuoteAPI.URL, httputil.New(a.cfg, a.log))
		return quotes.NewCachedSource(source, redis.NewCache(a.redis), a.log), nil
	}
	return nil, errors.New("no quote source: pass --prices or set QUOTE_API_URL")
}

func (a *app) tracker() *tracker.Tracker {
	return tracker.NewTracker(a.engine.Tracker.PortfolioID, a.snapshots, a.metrics, a.log)
}

// Package pipeline runs one ranking: score the universe, draft the per-profile
// rankings, then persist and publish the result.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/draft"
	"github.com/wonny/quantengine/internal/metrics"
	"github.com/wonny/quantengine/internal/scoring"
	"github.com/wonny/quantengine/pkg/logger"
	"github.com/wonny/quantengine/pkg/redis"
)

// Stage names recorded in RunResult.CompletedStages
const (
	StageScore   = "Score"
	StageDraft   = "Draft"
	StagePersist = "Persist"
	StageCache   = "Cache"
)

// Orchestrator coordinates the ranking stages.
type Orchestrator struct {
	scorer   *scoring.Engine
	drafter  *draft.Engine
	rankings contracts.RankingStore // optional
	cache    *redis.Cache           // optional
	metrics  *metrics.Recorder
	logger   *logger.Logger
	now      func() time.Time
}

// RunConfig holds the parameters of one run.
type RunConfig struct {
	Date       time.Time // defaults to today (UTC)
	RunID      string    // defaults to a random UUID
	ConfigHash string
	DryRun     bool // skip persistence and cache
}

// RunResult holds everything one run produced.
type RunResult struct {
	RunID           string
	Date            time.Time
	ConfigHash      string
	Success         bool
	Error           error
	CompletedStages []string
	Scored          []contracts.ScoredInstrument
	Excluded        []scoring.Exclusion
	Ranking         *contracts.Ranking
	Duration        time.Duration
}

// NewOrchestrator creates a new orchestrator. rankings, cache and rec may be nil.
func NewOrchestrator(
	scorer *scoring.Engine,
	drafter *draft.Engine,
	rankings contracts.RankingStore,
	cache *redis.Cache,
	rec *metrics.Recorder,
	log *logger.Logger,
) *Orchestrator {
	return &Orchestrator{
		scorer:   scorer,
		drafter:  drafter,
		rankings: rankings,
		cache:    cache,
		metrics:  rec,
		logger:   log.WithComponent("pipeline"),
		now:      time.Now,
	}
}

// Run scores universe, drafts the rankings and, unless DryRun, saves and caches them.
// A failed save fails the run; a failed cache write only logs.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig, universe []contracts.Asset, macro contracts.MacroContext) (*RunResult, error) {
	startTime := o.now()

	if config.RunID == "" {
		config.RunID = uuid.NewString()
	}
	if config.Date.IsZero() {
		config.Date = startTime.UTC().Truncate(24 * time.Hour)
	}

	result := &RunResult{
		RunID:           config.RunID,
		Date:            config.Date,
		ConfigHash:      config.ConfigHash,
		CompletedStages: make([]string, 0, 4),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"date":     config.Date.Format("2006-01-02"),
		"universe": len(universe),
		"dry_run":  config.DryRun,
	}).Info("Starting ranking run")

	fail := func(stage string, err error) (*RunResult, error) {
		result.Error = fmt.Errorf("%s failed: %w", stage, err)
		result.Duration = o.now().Sub(startTime)
		o.metrics.RecordFailure("pipeline")
		o.logger.WithError(result.Error).WithField("run_id", config.RunID).Error("Ranking run failed")
		return result, result.Error
	}

	// Score
	scored, err := o.scorer.ScoreAll(ctx, universe, macro)
	if err != nil {
		return fail(StageScore, err)
	}
	result.Scored = scored.Scored
	result.Excluded = scored.Excluded
	result.CompletedStages = append(result.CompletedStages, StageScore)

	// Draft
	if err := ctx.Err(); err != nil {
		return fail(StageDraft, err)
	}
	result.Ranking = &contracts.Ranking{
		RunID:     config.RunID,
		Date:      config.Date,
		Items:     o.drafter.Draft(scored.Scored),
		CreatedAt: o.now().UTC(),
	}
	result.CompletedStages = append(result.CompletedStages, StageDraft)
	o.metrics.RecordRanking(len(scored.Scored), len(scored.Excluded), result.Ranking)

	if config.DryRun {
		o.logger.Info("Skipping persistence (dry run mode)")
	} else {
		if o.rankings != nil {
			if err := o.rankings.SaveRanking(ctx, result.Ranking); err != nil {
				return fail(StagePersist, err)
			}
			result.CompletedStages = append(result.CompletedStages, StagePersist)
		}
		if o.cache != nil {
			if err := o.publish(ctx, result.Ranking); err != nil {
				o.logger.WithError(err).Warn("Failed to cache ranking")
			} else {
				result.CompletedStages = append(result.CompletedStages, StageCache)
			}
		}
	}

	result.Success = true
	result.Duration = o.now().Sub(startTime)
	o.metrics.ObserveRun("pipeline", result.Duration.Seconds())

	o.logger.WithFields(map[string]interface{}{
		"run_id":   config.RunID,
		"duration": result.Duration.Seconds(),
		"scored":   len(result.Scored),
		"excluded": len(result.Excluded),
		"items":    len(result.Ranking.Items),
		"stages":   len(result.CompletedStages),
	}).Info("Ranking run completed")

	return result, nil
}

func (o *Orchestrator) publish(ctx context.Context, ranking *contracts.Ranking) error {
	if err := o.cache.Set(ctx, redis.RankingKey(ranking.Date), ranking, redis.TTLRanking); err != nil {
		return err
	}
	return o.cache.Set(ctx, redis.LatestRankingKey, ranking, redis.TTLRanking)
}

// LatestRanking returns the newest published ranking, trying the cache before the store.
func (o *Orchestrator) LatestRanking(ctx context.Context) (*contracts.Ranking, error) {
	if o.cache != nil {
		var cached contracts.Ranking
		found, err := o.cache.Get(ctx, redis.LatestRankingKey, &cached)
		if err != nil {
			o.logger.WithError(err).Warn("Ranking cache read failed")
		} else if found {
			return &cached, nil
		}
	}

	if o.rankings == nil {
		return nil, contracts.ErrNotFound
	}

	ranking, err := o.rankings.LatestRanking(ctx)
	if err != nil {
		if errors.Is(err, contracts.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to load latest ranking: %w", err)
	}
	return ranking, nil
}

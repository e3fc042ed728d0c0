package jobs

import (
	"context"
	"fmt"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/pipeline"
	"github.com/wonny/quantengine/internal/scheduler"
	"github.com/wonny/quantengine/pkg/logger"
)

// RankJob runs the ranking pipeline after the close.
type RankJob struct {
	orchestrator *pipeline.Orchestrator
	source       Source
	macro        contracts.MacroContext
	configHash   string
	schedule     string
	logger       *logger.Logger
}

// NewRankJob creates a new rank job
func NewRankJob(o *pipeline.Orchestrator, source Source, macro contracts.MacroContext, configHash, schedule string, log *logger.Logger) *RankJob {
	return &RankJob{
		orchestrator: o,
		source:       source,
		macro:        macro,
		configHash:   configHash,
		schedule:     schedule,
		logger:       log,
	}
}

// Name returns the job name
func (j *RankJob) Name() string {
	return "rank"
}

// Schedule returns the cron schedule
func (j *RankJob) Schedule() string {
	return j.schedule
}

// Run loads the universe and runs one ranking.
func (j *RankJob) Run(ctx context.Context) (scheduler.Outcome, error) {
	assets, err := j.source.Assets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}

	result, err := j.orchestrator.Run(ctx, pipeline.RunConfig{ConfigHash: j.configHash}, assets, j.macro)
	if err != nil {
		return nil, err
	}

	items := 0
	if result.Ranking != nil {
		items = len(result.Ranking.Items)
	}

	j.logger.WithFields(map[string]interface{}{
		"run_id": result.RunID,
		"items":  items,
	}).Info("Scheduled ranking published")

	return scheduler.Outcome{
		"universe": len(assets),
		"scored":   len(result.Scored),
		"excluded": len(result.Excluded),
		"items":    items,
	}, nil
}

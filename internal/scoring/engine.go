// Package scoring turns valued instruments into per-profile suitability scores,
// structural scores and thesis bullets.
package scoring

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/perfmath"
	"github.com/wonny/quantengine/internal/valuation"
	"github.com/wonny/quantengine/pkg/logger"
)

// Engine scores a universe of assets.
type Engine struct {
	config    Config
	valuer    *valuation.Engine
	perennial map[string]bool
	logger    *logger.Logger
}

// Result is the output of one ScoreAll pass.
type Result struct {
	Scored   []contracts.ScoredInstrument `json:"scored"`
	Excluded []Exclusion                  `json:"excluded"`
	Duration time.Duration                `json:"duration"`
}

// NewEngine creates a scoring engine
func NewEngine(config Config, valuer *valuation.Engine, log *logger.Logger) *Engine {
	perennial := make(map[string]bool, len(config.Equity.Sectors))
	for _, s := range config.Equity.Sectors {
		perennial[s] = true
	}
	if config.Workers < 1 {
		config.Workers = 1
	}

	return &Engine{
		config:    config,
		valuer:    valuer,
		perennial: perennial,
		logger:    log.WithComponent("scoring"),
	}
}

// Score values and scores one asset. ok is false when the pre-filter excluded
// it, in which case reason names the failed filter.
func (e *Engine) Score(asset contracts.Asset, macro contracts.MacroContext) (scored contracts.ScoredInstrument, reason string, ok bool) {
	asset.Price = perfmath.Finite(asset.Price)
	asset.Metrics = asset.Metrics.Normalize()
	macro = macro.Normalize()

	if reason := e.checkConditions(asset); reason != "" {
		return contracts.ScoredInstrument{}, reason, false
	}

	in := input{
		asset: asset,
		m:     asset.Metrics,
		val:   e.valuer.Value(asset, macro),
		macro: macro,
	}

	scores := contracts.ScoreSet{
		Moderate:  scoreModerate(in),
		Bold:      scoreBold(in),
		Quality:   scoreQuality(in),
		Valuation: scoreValuation(in),
		Risk:      scoreRisk(in),
	}

	if gate := e.defensiveGate(asset); gate == "" {
		scores.DefensiveEligible = true
		scores.Defensive = scoreDefensive(in)
	} else {
		scores.Defensive = contracts.ProfileDefensive.Floor()
	}

	bullish, bearish := buildThesis(in)

	return contracts.ScoredInstrument{
		Asset:     asset,
		Valuation: in.val,
		Scores:    scores,
		Bullish:   bullish,
		Bearish:   bearish,
	}, "", true
}

// ScoreAll scores every asset in parallel. Scored instruments keep the input
// order. Only context cancellation returns an error.
func (e *Engine) ScoreAll(ctx context.Context, assets []contracts.Asset, macro contracts.MacroContext) (*Result, error) {
	start := time.Now()

	type slot struct {
		scored contracts.ScoredInstrument
		reason string
		ok     bool
	}
	slots := make([]slot, len(assets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.config.Workers)

	for i := range assets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s, reason, ok := e.Score(assets[i], macro)
			slots[i] = slot{scored: s, reason: reason, ok: ok}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("score universe: %w", err)
	}

	result := &Result{
		Scored:   make([]contracts.ScoredInstrument, 0, len(assets)),
		Excluded: make([]Exclusion, 0),
	}
	filtered := make(map[string]int)
	eligible := 0

	for i, s := range slots {
		if !s.ok {
			result.Excluded = append(result.Excluded, Exclusion{Ticker: assets[i].Ticker, Reason: s.reason})
			filtered[s.reason]++
			continue
		}
		if s.scored.Scores.DefensiveEligible {
			eligible++
		}
		result.Scored = append(result.Scored, s.scored)
	}
	result.Duration = time.Since(start)

	e.logger.WithFields(map[string]interface{}{
		"total_input":        len(assets),
		"scored":             len(result.Scored),
		"excluded":           len(result.Excluded),
		"defensive_eligible": eligible,
		"filters":            filtered,
		"duration_ms":        result.Duration.Milliseconds(),
	}).Info("Scoring completed")

	return result, nil
}

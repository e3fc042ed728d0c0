// Package engineconfig loads the engine thresholds from YAML.
package engineconfig

import (
	"time"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/draft"
	"github.com/wonny/quantengine/internal/scoring"
	"github.com/wonny/quantengine/internal/signals"
	"github.com/wonny/quantengine/internal/valuation"
)

// Config is the full engine configuration.
type Config struct {
	Meta      Meta                   `yaml:"meta" json:"meta"`
	Macro     contracts.MacroContext `yaml:"macro" json:"macro"`
	Valuation valuation.Config       `yaml:"valuation" json:"valuation"`
	Scoring   scoring.Config         `yaml:"scoring" json:"scoring"`
	Draft     draft.Config           `yaml:"draft" json:"draft"`
	Scanner   signals.ScannerConfig  `yaml:"scanner" json:"scanner"`
	Auditor   signals.AuditorConfig  `yaml:"auditor" json:"auditor"`
	Tracker   Tracker                `yaml:"tracker" json:"tracker"`
	Schedule  Schedule               `yaml:"schedule" json:"schedule"`
}

// Meta identifies the configuration.
type Meta struct {
	Name    string `yaml:"name" json:"name" default:"quant-engine" validate:"required"`
	Version string `yaml:"version" json:"version" default:"1"`
}

// Tracker configures the quota tracker.
type Tracker struct {
	PortfolioID string `yaml:"portfolio_id" json:"portfolio_id" default:"main" validate:"required"`
}

// Schedule holds six-field cron expressions (seconds first).
type Schedule struct {
	Timezone string `yaml:"timezone" json:"timezone" default:"America/Sao_Paulo"`
	Rank     string `yaml:"rank" json:"rank" default:"0 30 18 * * 1-5"`
	Scan     string `yaml:"scan" json:"scan" default:"0 0 19 * * 1-5"`
	Audit    string `yaml:"audit" json:"audit" default:"0 0 8 * * *"`
}

// ValuationConfig returns the valuation engine config.
func (c *Config) ValuationConfig() valuation.Config {
	return c.Valuation
}

// ScoringConfig returns the scoring engine config.
func (c *Config) ScoringConfig() scoring.Config {
	return c.Scoring
}

// DraftConfig returns the draft engine config.
func (c *Config) DraftConfig() draft.Config {
	return c.Draft
}

// ScannerConfig returns the scanner config with the wall clock attached.
func (c *Config) ScannerConfig() signals.ScannerConfig {
	sc := c.Scanner
	if sc.Clock == nil {
		sc.Clock = time.Now
	}
	return sc
}

// AuditorConfig returns the auditor config with the wall clock attached.
func (c *Config) AuditorConfig() signals.AuditorConfig {
	ac := c.Auditor
	if ac.Clock == nil {
		ac.Clock = time.Now
	}
	return ac
}

// Location resolves the schedule timezone.
func (s Schedule) Location() (*time.Location, error) {
	return time.LoadLocation(s.Timezone)
}

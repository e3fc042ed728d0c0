package jobs

import (
	"context"
	"errors"
	"fmt"

	"github.com/wonny/quantengine/internal/scheduler"
	"github.com/wonny/quantengine/internal/signals"
	"github.com/wonny/quantengine/pkg/logger"
)

// ScanJob runs the signal scanner over the current universe.
type ScanJob struct {
	scanner  *signals.Scanner
	source   Source
	schedule string
	logger   *logger.Logger
}

// NewScanJob creates a new scan job
func NewScanJob(scanner *signals.Scanner, source Source, schedule string, log *logger.Logger) *ScanJob {
	return &ScanJob{scanner: scanner, source: source, schedule: schedule, logger: log}
}

// Name returns the job name
func (j *ScanJob) Name() string {
	return "scan"
}

// Schedule returns the cron schedule
func (j *ScanJob) Schedule() string {
	return j.schedule
}

// Run loads assets and prices and scans them.
func (j *ScanJob) Run(ctx context.Context) (scheduler.Outcome, error) {
	assets, err := j.source.Assets(ctx)
	if err != nil {
		return nil, fmt.Errorf("load universe: %w", err)
	}
	history, err := j.source.Prices(ctx)
	if err != nil {
		return nil, fmt.Errorf("load prices: %w", err)
	}

	result := j.scanner.Scan(ctx, history.ScanInputs(assets))
	outcome := scheduler.Outcome{
		"analyzed":    result.Analyzed,
		"created":     result.Created,
		"duplicates":  result.Duplicates,
		"failed":      result.Failed,
		"bad_history": result.BadHistory,
	}
	if !result.Success {
		return outcome, errors.New(result.Error)
	}

	j.logger.WithFields(map[string]interface{}{
		"created":     result.Created,
		"duplicates":  result.Duplicates,
		"bad_history": result.BadHistory,
	}).Info("Scheduled scan finished")

	return outcome, nil
}

// AuditJob resolves signals that reached their horizon.
type AuditJob struct {
	auditor  *signals.Auditor
	schedule string
	logger   *logger.Logger
}

// NewAuditJob creates a new audit job
func NewAuditJob(auditor *signals.Auditor, schedule string, log *logger.Logger) *AuditJob {
	return &AuditJob{auditor: auditor, schedule: schedule, logger: log}
}

// Name returns the job name
func (j *AuditJob) Name() string {
	return "audit"
}

// Schedule returns the cron schedule
func (j *AuditJob) Schedule() string {
	return j.schedule
}

// Run audits the signals in the current window. Quote failures leave signals
// for the next run and do not fail the job.
func (j *AuditJob) Run(ctx context.Context) (scheduler.Outcome, error) {
	result := j.auditor.Audit(ctx)
	outcome := scheduler.Outcome{
		"checked":  result.Checked,
		"hits":     result.Hits,
		"misses":   result.Misses,
		"neutrals": result.Neutrals,
		"failed":   result.Failed,
	}
	if !result.Success {
		return outcome, errors.New(result.Error)
	}

	j.logger.WithFields(map[string]interface{}{
		"checked":  result.Checked,
		"hit_rate": result.HitRate(),
		"failed":   result.Failed,
	}).Info("Scheduled audit finished")

	return outcome, nil
}

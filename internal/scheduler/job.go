package scheduler

import (
	"context"
	"maps"
	"time"
)

// Outcome holds the counters a job reports for one run, such as
// {"analyzed": 120, "created": 3} for a scan.
type Outcome map[string]int

// Job is one scheduled unit of work.
type Job interface {
	Name() string

	// Schedule returns the cron expression, seconds first.
	// Examples: "0 30 18 * * 1-5" (weekdays 18:30), "@daily"
	Schedule() string

	// Run executes the job once. The outcome is kept even when err is set,
	// so a tripped scan still shows what it saw.
	Run(ctx context.Context) (Outcome, error)
}

// JobResult is the outcome of one job execution, retries included.
type JobResult struct {
	JobName   string        `json:"job_name"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
	Attempts  int           `json:"attempts"`
	Success   bool          `json:"success"`
	Error     string        `json:"error,omitempty"`
	Outcome   Outcome       `json:"outcome,omitempty"` // from the last attempt
}

const historySize = 100

// JobHistory keeps the latest results of one job, oldest first.
type JobHistory struct {
	Results []JobResult
}

// Add appends result, dropping the oldest beyond historySize.
func (h *JobHistory) Add(result JobResult) {
	h.Results = append(h.Results, result)
	if over := len(h.Results) - historySize; over > 0 {
		h.Results = h.Results[over:]
	}
}

// Last returns the newest result.
func (h *JobHistory) Last() (JobResult, bool) {
	if len(h.Results) == 0 {
		return JobResult{}, false
	}
	return h.Results[len(h.Results)-1], true
}

// Latest returns up to n newest results.
func (h *JobHistory) Latest(n int) []JobResult {
	n = min(max(n, 0), len(h.Results))
	return h.Results[len(h.Results)-n:]
}

// Failures counts the failed runs.
func (h *JobHistory) Failures() int {
	n := 0
	for _, r := range h.Results {
		if !r.Success {
			n++
		}
	}
	return n
}

// SuccessRate is successful runs over all runs, 0 when empty.
func (h *JobHistory) SuccessRate() float64 {
	if len(h.Results) == 0 {
		return 0
	}
	return float64(len(h.Results)-h.Failures()) / float64(len(h.Results))
}

// Totals sums the outcome counters of the successful runs.
func (h *JobHistory) Totals() Outcome {
	totals := make(Outcome)
	for _, r := range h.Results {
		if !r.Success {
			continue
		}
		for k, v := range r.Outcome {
			totals[k] += v
		}
	}
	return totals
}

func (o Outcome) clone() Outcome {
	if o == nil {
		return nil
	}
	return maps.Clone(o)
}

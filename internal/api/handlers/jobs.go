package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wonny/quantengine/internal/scheduler"
	"github.com/wonny/quantengine/pkg/logger"
)

// JobRunner is the scheduler surface exposed over HTTP.
type JobRunner interface {
	GetJobStats() map[string]scheduler.JobStats
	RunJob(ctx context.Context, jobName string) (scheduler.JobResult, error)
}

// JobHandler lists and triggers scheduled jobs.
type JobHandler struct {
	runner JobRunner
	logger *logger.Logger
}

// NewJobHandler creates a new job handler
func NewJobHandler(runner JobRunner, log *logger.Logger) *JobHandler {
	return &JobHandler{runner: runner, logger: log}
}

// List returns per-job statistics
// GET /api/jobs
func (h *JobHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.runner.GetJobStats())
}

// Run triggers a job and waits for its result
// POST /api/jobs/{name}/run
func (h *JobHandler) Run(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	if _, ok := h.runner.GetJobStats()[name]; !ok {
		respondError(w, http.StatusNotFound, "job not found")
		return
	}

	result, err := h.runner.RunJob(r.Context(), name)
	if err != nil {
		h.logger.WithError(err).WithField("job", name).Error("Failed to run job")
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	status := http.StatusOK
	if !result.Success {
		status = http.StatusBadGateway
	}
	respondJSON(w, status, result)
}

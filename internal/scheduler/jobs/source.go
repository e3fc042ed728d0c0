// Package jobs adapts the engines to scheduler.Job.
package jobs

import (
	"context"

	"github.com/wonny/quantengine/internal/contracts"
	"github.com/wonny/quantengine/internal/dataset"
)

// Source supplies fresh inputs on every run.
type Source interface {
	Assets(ctx context.Context) ([]contracts.Asset, error)
	Prices(ctx context.Context) (dataset.History, error)
}

package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/quantengine/internal/contracts"
)

// SnapshotRepository is the Postgres SnapshotStore.
type SnapshotRepository struct {
	pool *pgxpool.Pool
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(pool *pgxpool.Pool) *SnapshotRepository {
	return &SnapshotRepository{pool: pool}
}

// Append upserts the point for its date.
func (r *SnapshotRepository) Append(ctx context.Context, s contracts.PerformanceSnapshot) error {
	query := `
		INSERT INTO quant.performance_snapshots (
			portfolio_id, snapshot_date, equity, invested, net_flow, daily_return, quota_price
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (portfolio_id, snapshot_date) DO UPDATE SET
			equity = EXCLUDED.equity,
			invested = EXCLUDED.invested,
			net_flow = EXCLUDED.net_flow,
			daily_return = EXCLUDED.daily_return,
			quota_price = EXCLUDED.quota_price
	`

	_, err := r.pool.Exec(ctx, query,
		s.PortfolioID, s.Date, s.Equity, s.Invested, s.NetFlow, s.DailyReturn, s.QuotaPrice,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}

	return nil
}

// Last returns the latest point of a portfolio.
func (r *SnapshotRepository) Last(ctx context.Context, portfolioID string) (*contracts.PerformanceSnapshot, error) {
	query := `
		SELECT portfolio_id, snapshot_date, equity, invested, net_flow, daily_return, quota_price
		FROM quant.performance_snapshots
		WHERE portfolio_id = $1
		ORDER BY snapshot_date DESC
		LIMIT 1
	`

	var s contracts.PerformanceSnapshot
	err := r.pool.QueryRow(ctx, query, portfolioID).Scan(
		&s.PortfolioID, &s.Date, &s.Equity, &s.Invested, &s.NetFlow, &s.DailyReturn, &s.QuotaPrice,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last snapshot: %w", err)
	}

	return &s, nil
}

// History returns the points with from <= date <= to, oldest first.
func (r *SnapshotRepository) History(ctx context.Context, portfolioID string, from, to time.Time) ([]contracts.PerformanceSnapshot, error) {
	query := `
		SELECT portfolio_id, snapshot_date, equity, invested, net_flow, daily_return, quota_price
		FROM quant.performance_snapshots
		WHERE portfolio_id = $1 AND snapshot_date BETWEEN $2 AND $3
		ORDER BY snapshot_date ASC
	`

	rows, err := r.pool.Query(ctx, query, portfolioID, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	points, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (contracts.PerformanceSnapshot, error) {
		var s contracts.PerformanceSnapshot
		err := row.Scan(&s.PortfolioID, &s.Date, &s.Equity, &s.Invested, &s.NetFlow, &s.DailyReturn, &s.QuotaPrice)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect snapshots: %w", err)
	}

	return points, nil
}

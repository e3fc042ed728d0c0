package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wonny/quantengine/internal/contracts"
)

// RankingRepository is the Postgres RankingStore.
type RankingRepository struct {
	pool *pgxpool.Pool
}

// NewRankingRepository creates a new ranking repository
func NewRankingRepository(pool *pgxpool.Pool) *RankingRepository {
	return &RankingRepository{pool: pool}
}

// SaveRanking stores a ranking and its items in one transaction.
func (r *RankingRepository) SaveRanking(ctx context.Context, ranking *contracts.Ranking) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx,
		`INSERT INTO quant.rankings (run_id, ranking_date, created_at) VALUES ($1, $2, $3)`,
		ranking.RunID, ranking.Date, ranking.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert ranking: %w", err)
	}

	rows := make([][]any, 0, len(ranking.Items))
	for _, it := range ranking.Items {
		rows = append(rows, []any{
			ranking.RunID, it.Position, it.Ticker, it.Sector, string(it.AssetClass), string(it.Profile),
			it.Score, it.Penalty, string(it.Action), it.Price, it.TargetPrice, it.Thesis,
		})
	}

	_, err = tx.CopyFrom(ctx,
		pgx.Identifier{"quant", "ranking_items"},
		[]string{"run_id", "position", "ticker", "sector", "asset_class", "profile",
			"score", "penalty", "action", "price", "target_price", "thesis"},
		pgx.CopyFromRows(rows),
	)
	if err != nil {
		return fmt.Errorf("failed to copy ranking items: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// LatestRanking loads the most recently created ranking.
func (r *RankingRepository) LatestRanking(ctx context.Context) (*contracts.Ranking, error) {
	var ranking contracts.Ranking
	err := r.pool.QueryRow(ctx, `
		SELECT run_id::text, ranking_date, created_at
		FROM quant.rankings
		ORDER BY created_at DESC
		LIMIT 1
	`).Scan(&ranking.RunID, &ranking.Date, &ranking.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, contracts.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest ranking: %w", err)
	}

	rows, err := r.pool.Query(ctx, `
		SELECT position, ticker, sector, asset_class, profile, score, penalty,
		       action, price, target_price, thesis
		FROM quant.ranking_items
		WHERE run_id = $1
		ORDER BY position ASC
	`, ranking.RunID)
	if err != nil {
		return nil, fmt.Errorf("failed to query ranking items: %w", err)
	}
	defer rows.Close()

	ranking.Items = make([]contracts.RankingItem, 0)
	for rows.Next() {
		var (
			it                          contracts.RankingItem
			assetClass, profile, action string
		)
		if err := rows.Scan(
			&it.Position, &it.Ticker, &it.Sector, &assetClass, &profile, &it.Score, &it.Penalty,
			&action, &it.Price, &it.TargetPrice, &it.Thesis,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ranking item: %w", err)
		}
		it.AssetClass = contracts.AssetClass(assetClass)
		it.Profile = contracts.RiskProfile(profile)
		it.Action = contracts.Action(action)
		ranking.Items = append(ranking.Items, it)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating ranking items: %w", err)
	}

	return &ranking, nil
}

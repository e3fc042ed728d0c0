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

// SignalRepository is the Postgres SignalStore.
type SignalRepository struct {
	pool *pgxpool.Pool
}

// NewSignalRepository creates a new signal repository
func NewSignalRepository(pool *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{pool: pool}
}

// windowBucket maps a timestamp onto its fixed dedup bucket.
func windowBucket(at time.Time, window time.Duration) int64 {
	secs := int64(window / time.Second)
	if secs <= 0 {
		secs = 1
	}
	return at.Unix() / secs
}

// Create inserts the signal unless another of the same ticker and type exists
// within window. The NOT EXISTS clause gives the sliding window; the unique
// (ticker, signal_type, window_bucket) key catches concurrent inserts.
func (r *SignalRepository) Create(ctx context.Context, signal contracts.QuantSignal, window time.Duration) error {
	query := `
		INSERT INTO quant.signals (
			id, ticker, signal_type, profile, sector, value, message,
			price_at_signal, status, created_at, window_bucket
		)
		SELECT $1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		WHERE NOT EXISTS (
			SELECT 1 FROM quant.signals
			WHERE ticker = $2 AND signal_type = $3
			  AND created_at > $10 - make_interval(secs => $12)
			  AND created_at < $10 + make_interval(secs => $12)
		)
		ON CONFLICT (ticker, signal_type, window_bucket) DO NOTHING
		RETURNING id
	`

	var id string
	err := r.pool.QueryRow(ctx, query,
		signal.ID, signal.Ticker, string(signal.Type), string(signal.Profile), signal.Sector,
		signal.Value, signal.Message, signal.PriceAtSignal, string(signal.Status),
		signal.CreatedAt, windowBucket(signal.CreatedAt, window), window.Seconds(),
	).Scan(&id)

	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.ErrDuplicateSignal
	}
	if err != nil {
		return fmt.Errorf("failed to insert signal: %w", err)
	}

	return nil
}

// ListActive returns ACTIVE signals with createdAfter < created_at <= createdBefore.
func (r *SignalRepository) ListActive(ctx context.Context, createdAfter, createdBefore time.Time) ([]contracts.QuantSignal, error) {
	query := `
		SELECT id, ticker, signal_type, profile, sector, value, message,
		       price_at_signal, status, created_at
		FROM quant.signals
		WHERE status = 'ACTIVE'
		  AND created_at > $1
		  AND created_at <= $2
		ORDER BY created_at ASC
	`

	rows, err := r.pool.Query(ctx, query, createdAfter, createdBefore)
	if err != nil {
		return nil, fmt.Errorf("failed to query active signals: %w", err)
	}
	defer rows.Close()

	signals := make([]contracts.QuantSignal, 0)
	for rows.Next() {
		var (
			s                           contracts.QuantSignal
			signalType, profile, status string
		)
		if err := rows.Scan(
			&s.ID, &s.Ticker, &signalType, &profile, &s.Sector, &s.Value, &s.Message,
			&s.PriceAtSignal, &status, &s.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan signal: %w", err)
		}
		s.Type = contracts.SignalType(signalType)
		s.Profile = contracts.RiskProfile(profile)
		s.Status = contracts.SignalStatus(status)
		signals = append(signals, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating signals: %w", err)
	}

	return signals, nil
}

// Resolve writes the audit outcome. The status guard makes it write-once.
func (r *SignalRepository) Resolve(ctx context.Context, signal contracts.QuantSignal) error {
	query := `
		UPDATE quant.signals
		SET status = $2, final_price = $3, change_pct = $4, audited_at = $5
		WHERE id = $1 AND status = 'ACTIVE'
	`

	tag, err := r.pool.Exec(ctx, query,
		signal.ID, string(signal.Status), signal.FinalPrice, signal.ChangePct, signal.AuditedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to resolve signal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM quant.signals WHERE id = $1)`, signal.ID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check signal: %w", err)
		}
		if !exists {
			return contracts.ErrNotFound
		}
		return contracts.ErrAlreadyResolved
	}

	return nil
}

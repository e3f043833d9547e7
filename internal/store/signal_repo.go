package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhaveri/fie/internal/contracts"
)

// SignalRepository persists per-instrument technical analyses. The
// indicator snapshot is stored as JSONB; the composite sub-scores get
// their own columns so dashboards can query them directly.
type SignalRepository struct {
	pool *pgxpool.Pool
}

func NewSignalRepository(pool *pgxpool.Pool) *SignalRepository {
	return &SignalRepository{pool: pool}
}

func (r *SignalRepository) SaveAnalysis(ctx context.Context, a *contracts.InstrumentAnalysis) error {
	snapshot, err := json.Marshal(a.Snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	query := `
		INSERT INTO signals.technical (
			symbol, as_of, close, snapshot,
			trend_score, momentum_score, volume_score, volatility_score,
			relative_strength_score, composite_score, signal
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (symbol, as_of) DO UPDATE SET
			close = EXCLUDED.close,
			snapshot = EXCLUDED.snapshot,
			trend_score = EXCLUDED.trend_score,
			momentum_score = EXCLUDED.momentum_score,
			volume_score = EXCLUDED.volume_score,
			volatility_score = EXCLUDED.volatility_score,
			relative_strength_score = EXCLUDED.relative_strength_score,
			composite_score = EXCLUDED.composite_score,
			signal = EXCLUDED.signal
	`

	_, err = r.pool.Exec(ctx, query,
		a.Symbol, a.AsOf, a.Close, snapshot,
		a.Score.Trend, a.Score.Momentum, a.Score.Volume, a.Score.Volatility,
		a.Score.RelativeStrength, a.Score.Composite, a.Score.Signal,
	)
	if err != nil {
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

func (r *SignalRepository) GetLatestAnalysis(ctx context.Context, symbol string) (*contracts.InstrumentAnalysis, error) {
	query := `
		SELECT symbol, as_of, close, snapshot,
		       trend_score, momentum_score, volume_score, volatility_score,
		       relative_strength_score, composite_score, signal
		FROM signals.technical
		WHERE symbol = $1
		ORDER BY as_of DESC
		LIMIT 1
	`

	var a contracts.InstrumentAnalysis
	var snapshot []byte
	err := r.pool.QueryRow(ctx, query, symbol).Scan(
		&a.Symbol, &a.AsOf, &a.Close, &snapshot,
		&a.Score.Trend, &a.Score.Momentum, &a.Score.Volume, &a.Score.Volatility,
		&a.Score.RelativeStrength, &a.Score.Composite, &a.Score.Signal,
	)
	if err == pgx.ErrNoRows {
		return nil, fmt.Errorf("no analysis for %s", symbol)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	if err := json.Unmarshal(snapshot, &a.Snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &a, nil
}

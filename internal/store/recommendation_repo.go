package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhaveri/fie/internal/contracts"
)

// RecommendationRepository persists per-client recommendation sets, one
// batch per pipeline run.
type RecommendationRepository struct {
	pool *pgxpool.Pool
}

func NewRecommendationRepository(pool *pgxpool.Pool) *RecommendationRepository {
	return &RecommendationRepository{pool: pool}
}

func (r *RecommendationRepository) SaveRecommendations(ctx context.Context, runID string, clientID string, recs []contracts.Recommendation) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO advisory.recommendations (
			run_id, client_id, rec_id, priority, action,
			instrument, instrument_code, sector, amount, target_instrument,
			reasoning, directive_ref, technical_score, technical_signal,
			confidence, allocation_before_pct, allocation_after_pct, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (run_id, client_id, rec_id) DO NOTHING
	`

	now := time.Now()
	for _, rec := range recs {
		if _, err := tx.Exec(ctx, query,
			runID, clientID, rec.RecID, rec.Priority, rec.Action,
			rec.Instrument, rec.InstrumentCode, rec.Sector, rec.Amount, rec.TargetInstrument,
			rec.Reasoning, rec.DirectiveRef, rec.TechnicalScore, rec.TechnicalSignal,
			rec.Confidence, rec.AllocationBefore, rec.AllocationAfter, now,
		); err != nil {
			return fmt.Errorf("failed to save recommendation %s: %w", rec.RecID, err)
		}
	}

	return tx.Commit(ctx)
}

// GetByClient returns a client's recommendations from the most recent
// run, ranked as generated.
func (r *RecommendationRepository) GetByClient(ctx context.Context, clientID string) ([]contracts.Recommendation, error) {
	query := `
		SELECT rec_id, priority, action,
		       instrument, instrument_code, sector, amount, COALESCE(target_instrument, ''),
		       reasoning, COALESCE(directive_ref, ''), technical_score, technical_signal,
		       confidence, allocation_before_pct, allocation_after_pct
		FROM advisory.recommendations
		WHERE client_id = $1
		  AND run_id = (
			SELECT run_id FROM advisory.recommendations
			WHERE client_id = $1
			ORDER BY created_at DESC
			LIMIT 1
		  )
		ORDER BY confidence DESC, rec_id ASC
	`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query recommendations: %w", err)
	}
	defer rows.Close()

	recs := make([]contracts.Recommendation, 0)
	for rows.Next() {
		var rec contracts.Recommendation
		if err := rows.Scan(
			&rec.RecID, &rec.Priority, &rec.Action,
			&rec.Instrument, &rec.InstrumentCode, &rec.Sector, &rec.Amount, &rec.TargetInstrument,
			&rec.Reasoning, &rec.DirectiveRef, &rec.TechnicalScore, &rec.TechnicalSignal,
			&rec.Confidence, &rec.AllocationBefore, &rec.AllocationAfter,
		); err != nil {
			return nil, fmt.Errorf("failed to scan recommendation: %w", err)
		}
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

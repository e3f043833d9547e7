package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhaveri/fie/internal/contracts"
)

// SectorRepository persists daily sector relative-strength rankings.
type SectorRepository struct {
	pool *pgxpool.Pool
}

func NewSectorRepository(pool *pgxpool.Pool) *SectorRepository {
	return &SectorRepository{pool: pool}
}

// SaveStrengths replaces the ranking for a date in one transaction.
func (r *SectorRepository) SaveStrengths(ctx context.Context, date time.Time, strengths []contracts.SectorStrength) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM signals.sector_strength WHERE as_of = $1`, date); err != nil {
		return fmt.Errorf("failed to clear sector strengths: %w", err)
	}

	query := `
		INSERT INTO signals.sector_strength (
			as_of, sector, symbol, rs_1w, rs_1m, rs_3m,
			rsi, trend, composite_score, signal, rank
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	for _, s := range strengths {
		if _, err := tx.Exec(ctx, query,
			date, s.Sector, s.Symbol, s.RS1W, s.RS1M, s.RS3M,
			s.RSI, s.Trend, s.Score.Composite, s.Score.Signal, s.Rank,
		); err != nil {
			return fmt.Errorf("failed to save sector strength for %s: %w", s.Sector, err)
		}
	}

	return tx.Commit(ctx)
}

func (r *SectorRepository) GetStrengths(ctx context.Context, date time.Time) ([]contracts.SectorStrength, error) {
	query := `
		SELECT sector, symbol, rs_1w, rs_1m, rs_3m,
		       rsi, trend, composite_score, signal, rank
		FROM signals.sector_strength
		WHERE as_of = $1
		ORDER BY rank ASC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query sector strengths: %w", err)
	}
	defer rows.Close()

	strengths := make([]contracts.SectorStrength, 0)
	for rows.Next() {
		var s contracts.SectorStrength
		if err := rows.Scan(
			&s.Sector, &s.Symbol, &s.RS1W, &s.RS1M, &s.RS3M,
			&s.RSI, &s.Trend, &s.Score.Composite, &s.Score.Signal, &s.Rank,
		); err != nil {
			return nil, fmt.Errorf("failed to scan sector strength: %w", err)
		}
		strengths = append(strengths, s)
	}
	return strengths, rows.Err()
}

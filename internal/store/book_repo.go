package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jhaveri/fie/internal/contracts"
)

// BookRepository reads the advisory book: clients, holdings and active
// fund manager directives.
type BookRepository struct {
	pool *pgxpool.Pool
}

func NewBookRepository(pool *pgxpool.Pool) *BookRepository {
	return &BookRepository{pool: pool}
}

func (r *BookRepository) GetClients(ctx context.Context) ([]contracts.Client, error) {
	query := `
		SELECT client_id, name, risk_profile, strategy_type, total_aum
		FROM advisory.clients
		ORDER BY client_id ASC
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer rows.Close()

	clients := make([]contracts.Client, 0)
	for rows.Next() {
		var c contracts.Client
		if err := rows.Scan(&c.ClientID, &c.Name, &c.RiskProfile, &c.StrategyType, &c.TotalAUM); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

func (r *BookRepository) GetHoldingsByClient(ctx context.Context, clientID string) ([]contracts.Holding, error) {
	query := `
		SELECT client_id, instrument_code, instrument_name, instrument_type,
		       sector_tag, current_value, cost_basis, allocation_pct,
		       sip_active, sip_amount
		FROM advisory.holdings
		WHERE client_id = $1
		ORDER BY instrument_code ASC
	`

	rows, err := r.pool.Query(ctx, query, clientID)
	if err != nil {
		return nil, fmt.Errorf("failed to query holdings: %w", err)
	}
	defer rows.Close()

	holdings := make([]contracts.Holding, 0)
	for rows.Next() {
		var h contracts.Holding
		if err := rows.Scan(
			&h.ClientID, &h.InstrumentCode, &h.InstrumentName, &h.InstrumentType,
			&h.SectorTag, &h.CurrentValue, &h.CostBasis, &h.AllocationPct,
			&h.SIPActive, &h.SIPAmount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan holding: %w", err)
		}
		holdings = append(holdings, h)
	}
	return holdings, rows.Err()
}

// GetActiveDirectives returns directives in force on the given date.
func (r *BookRepository) GetActiveDirectives(ctx context.Context, date time.Time) ([]contracts.Directive, error) {
	query := `
		SELECT directive_id, action, target_type, target,
		       COALESCE(magnitude, ''), conviction, COALESCE(timeframe, ''),
		       applies_to, COALESCE(rationale, '')
		FROM advisory.directives
		WHERE issued_at <= $1 AND (expires_at IS NULL OR expires_at >= $1)
		ORDER BY directive_id ASC
	`

	rows, err := r.pool.Query(ctx, query, date)
	if err != nil {
		return nil, fmt.Errorf("failed to query directives: %w", err)
	}
	defer rows.Close()

	directives := make([]contracts.Directive, 0)
	for rows.Next() {
		var d contracts.Directive
		if err := rows.Scan(
			&d.ID, &d.Action, &d.TargetType, &d.Target,
			&d.Magnitude, &d.Conviction, &d.Timeframe,
			&d.AppliesTo, &d.Rationale,
		); err != nil {
			return nil, fmt.Errorf("failed to scan directive: %w", err)
		}
		directives = append(directives, d)
	}
	return directives, rows.Err()
}

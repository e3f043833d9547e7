package contracts

import (
	"context"
	"time"
)

// PriceProvider supplies daily OHLCV history for one symbol, oldest
// bar first. Fetching is the only blocking operation in the pipeline;
// callers bound it with a context deadline and treat timeout as
// fetch failure.
type PriceProvider interface {
	History(ctx context.Context, symbol string) ([]PricePoint, error)
}

// BookRepository loads the advisory book: clients, their holdings and
// the active fund manager directives. All records are pre-validated by
// the ingestion layer; the engine treats them as given.
type BookRepository interface {
	GetClients(ctx context.Context) ([]Client, error)
	GetHoldingsByClient(ctx context.Context, clientID string) ([]Holding, error)
	GetActiveDirectives(ctx context.Context, date time.Time) ([]Directive, error)
}

// SignalRepository persists per-instrument technical analyses.
type SignalRepository interface {
	SaveAnalysis(ctx context.Context, a *InstrumentAnalysis) error
	GetLatestAnalysis(ctx context.Context, symbol string) (*InstrumentAnalysis, error)
}

// SectorRepository persists sector relative-strength rankings.
type SectorRepository interface {
	SaveStrengths(ctx context.Context, date time.Time, strengths []SectorStrength) error
	GetStrengths(ctx context.Context, date time.Time) ([]SectorStrength, error)
}

// RecommendationRepository persists per-client recommendation sets.
type RecommendationRepository interface {
	SaveRecommendations(ctx context.Context, runID string, clientID string, recs []Recommendation) error
	GetByClient(ctx context.Context, clientID string) ([]Recommendation, error)
}

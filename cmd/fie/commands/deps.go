package commands

import (
	"github.com/jhaveri/fie/internal/advisor"
	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/internal/indicators"
	"github.com/jhaveri/fie/internal/marketdata"
	"github.com/jhaveri/fie/internal/pipeline"
	"github.com/jhaveri/fie/internal/scoring"
	"github.com/jhaveri/fie/internal/sectors"
	"github.com/jhaveri/fie/internal/store"
	"github.com/jhaveri/fie/pkg/config"
	"github.com/jhaveri/fie/pkg/database"
	"github.com/jhaveri/fie/pkg/httputil"
	"github.com/jhaveri/fie/pkg/logger"
	"github.com/jhaveri/fie/pkg/redis"
)

// newPriceProvider wires the chart client with its archive fallback,
// wrapped in the Redis read-through cache when Redis is enabled.
func newPriceProvider(cfg *config.Config, log *logger.Logger, redisClient *redis.Client) contracts.PriceProvider {
	httpClient := httputil.New(log, cfg.MarketData.Timeout)
	archive := marketdata.NewArchiveClient(httpClient, cfg.MarketData.ArchiveURL, log)

	var provider contracts.PriceProvider = marketdata.NewProvider(httpClient, archive, cfg.MarketData, log)

	if redisClient != nil && redisClient.Enabled() {
		cache := redis.NewCache(redisClient, "fie")
		provider = marketdata.NewCachedProvider(provider, cache, cfg.MarketData.CacheTTL, log)
	}

	return provider
}

// newOrchestrator assembles the full pipeline from config, database
// and price provider.
func newOrchestrator(
	cfg *config.Config,
	log *logger.Logger,
	db *database.DB,
	provider contracts.PriceProvider,
) (*pipeline.Orchestrator, error) {
	engine := indicators.NewEngine(indicators.DefaultConfig(), log)

	scorer, err := scoring.NewScorer(scoring.DefaultWeights(), log)
	if err != nil {
		return nil, err
	}

	sectorAnalyzer := sectors.NewAnalyzer(provider, engine, scorer, cfg.Pipeline.Benchmark, nil, log)
	matcher := advisor.NewMatcher(log)

	return pipeline.NewOrchestrator(
		provider,
		engine,
		scorer,
		sectorAnalyzer,
		matcher,
		store.NewBookRepository(db.Pool),
		store.NewSignalRepository(db.Pool),
		store.NewSectorRepository(db.Pool),
		store.NewRecommendationRepository(db.Pool),
		cfg.Pipeline.FetchTimeout,
		cfg.Pipeline.MaxConcurrency,
		log,
	), nil
}

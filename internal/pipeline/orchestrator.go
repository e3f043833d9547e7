package pipeline

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jhaveri/fie/internal/advisor"
	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/internal/indicators"
	"github.com/jhaveri/fie/internal/scoring"
	"github.com/jhaveri/fie/internal/sectors"
	"github.com/jhaveri/fie/pkg/logger"
)

// Orchestrator coordinates the full advisory pipeline:
// book load → instrument signals → sector strength → recommendations → persist.
type Orchestrator struct {
	provider contracts.PriceProvider
	engine   *indicators.Engine
	scorer   *scoring.Scorer
	sectors  *sectors.Analyzer
	matcher  *advisor.Matcher

	bookRepo   contracts.BookRepository
	signalRepo contracts.SignalRepository
	sectorRepo contracts.SectorRepository
	recRepo    contracts.RecommendationRepository

	fetchTimeout   time.Duration
	maxConcurrency int
	logger         *logger.Logger
}

// RunConfig holds configuration for one pipeline run.
type RunConfig struct {
	Date        time.Time
	RunID       string
	Instruments []string // instrument codes to analyze; resolved from holdings when empty
	Clients     []string // client IDs to advise; all clients when empty
	DryRun      bool     // if true, skip persistence
}

// ClientAdvice is the recommendation set produced for one client.
type ClientAdvice struct {
	Client          contracts.Client
	Recommendations []contracts.Recommendation
}

// RunResult holds the results of a complete pipeline run.
type RunResult struct {
	RunID           string
	Date            time.Time
	Success         bool
	Error           error
	CompletedStages []string
	Signals         contracts.SignalMap
	Failed          []string // instrument codes with no usable price data
	Sectors         []contracts.SectorStrength
	Advice          []ClientAdvice
	Duration        time.Duration
}

func NewOrchestrator(
	provider contracts.PriceProvider,
	engine *indicators.Engine,
	scorer *scoring.Scorer,
	sectorAnalyzer *sectors.Analyzer,
	matcher *advisor.Matcher,
	bookRepo contracts.BookRepository,
	signalRepo contracts.SignalRepository,
	sectorRepo contracts.SectorRepository,
	recRepo contracts.RecommendationRepository,
	fetchTimeout time.Duration,
	maxConcurrency int,
	log *logger.Logger,
) *Orchestrator {
	if maxConcurrency < 1 {
		maxConcurrency = 1
	}
	return &Orchestrator{
		provider:       provider,
		engine:         engine,
		scorer:         scorer,
		sectors:        sectorAnalyzer,
		matcher:        matcher,
		bookRepo:       bookRepo,
		signalRepo:     signalRepo,
		sectorRepo:     sectorRepo,
		recRepo:        recRepo,
		fetchTimeout:   fetchTimeout,
		maxConcurrency: maxConcurrency,
		logger:         log,
	}
}

// GenerateRunID builds a timestamped run identifier.
func GenerateRunID(date time.Time) string {
	return fmt.Sprintf("RUN-%s", date.Format("20060102-150405"))
}

// Run executes the complete pipeline. Individual instrument failures
// are isolated into result.Failed; only book-level failures abort the
// run.
func (o *Orchestrator) Run(ctx context.Context, config RunConfig) (*RunResult, error) {
	startTime := time.Now()

	result := &RunResult{
		RunID:           config.RunID,
		Date:            config.Date,
		Success:         false,
		CompletedStages: make([]string, 0),
	}

	o.logger.WithFields(map[string]interface{}{
		"run_id":  config.RunID,
		"date":    config.Date.Format("2006-01-02"),
		"dry_run": config.DryRun,
	}).Info("Starting pipeline run")

	// S1: Load the advisory book.
	clients, directives, holdingsByClient, err := o.loadBook(ctx, config)
	if err != nil {
		result.Error = fmt.Errorf("book load failed: %w", err)
		return result, result.Error
	}
	result.CompletedStages = append(result.CompletedStages, "S1:Book")

	// S2: Per-instrument technical signals.
	instruments := config.Instruments
	if len(instruments) == 0 {
		instruments = collectInstruments(holdingsByClient)
	}
	result.Signals, result.Failed = o.analyzeInstruments(ctx, config.Date, instruments)
	result.CompletedStages = append(result.CompletedStages, "S2:Signals")

	// S3: Sector relative strength.
	sectorStrengths, err := o.sectors.Analyze(ctx)
	if err != nil {
		result.Error = fmt.Errorf("sector analysis failed: %w", err)
		return result, result.Error
	}
	result.Sectors = sectorStrengths
	result.CompletedStages = append(result.CompletedStages, "S3:Sectors")

	// S4: Per-client recommendations. Each client only reads the shared
	// inputs, so clients fan out freely; results land in a fixed slot
	// per client to keep the output order stable.
	result.Advice = o.adviseClients(ctx, directives, result.Signals, sectorStrengths, clients, holdingsByClient)
	result.CompletedStages = append(result.CompletedStages, "S4:Advice")

	// S5: Persist.
	if !config.DryRun {
		if err := o.persist(ctx, config, result); err != nil {
			result.Error = fmt.Errorf("persist failed: %w", err)
			return result, result.Error
		}
		result.CompletedStages = append(result.CompletedStages, "S5:Persist")
	} else {
		o.logger.Info("Skipping S5:Persist (dry run mode)")
	}

	result.Success = true
	result.Duration = time.Since(startTime)

	o.logger.WithFields(map[string]interface{}{
		"run_id":      config.RunID,
		"duration":    result.Duration.Seconds(),
		"instruments": len(result.Signals),
		"failed":      len(result.Failed),
		"clients":     len(result.Advice),
	}).Info("Pipeline run completed")

	return result, nil
}

func (o *Orchestrator) loadBook(ctx context.Context, config RunConfig) ([]contracts.Client, []contracts.Directive, map[string][]contracts.Holding, error) {
	o.logger.Info("Running S1: Book load")

	clients, err := o.bookRepo.GetClients(ctx)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load clients: %w", err)
	}
	clients = filterClients(clients, config.Clients)

	directives, err := o.bookRepo.GetActiveDirectives(ctx, config.Date)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("load directives: %w", err)
	}

	holdingsByClient := make(map[string][]contracts.Holding, len(clients))
	for _, c := range clients {
		holdings, err := o.bookRepo.GetHoldingsByClient(ctx, c.ClientID)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("load holdings for %s: %w", c.ClientID, err)
		}
		holdingsByClient[c.ClientID] = holdings
	}

	o.logger.WithFields(map[string]interface{}{
		"clients":    len(clients),
		"directives": len(directives),
	}).Info("S1 completed")

	return clients, directives, holdingsByClient, nil
}

// analyzeInstruments fans out across instruments. A fetch failure or
// timeout on one symbol never aborts its siblings.
func (o *Orchestrator) analyzeInstruments(ctx context.Context, date time.Time, instruments []string) (contracts.SignalMap, []string) {
	o.logger.WithField("instruments", len(instruments)).Info("Running S2: Instrument signals")

	var mu sync.Mutex
	signals := make(contracts.SignalMap, len(instruments))
	var failed []string

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrency)

	for _, symbol := range instruments {
		symbol := symbol
		g.Go(func() error {
			analysis, err := o.analyzeOne(gctx, date, symbol)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				o.logger.WithError(err).WithField("symbol", symbol).
					Warn("Instrument analysis failed, marking no data")
				failed = append(failed, symbol)
				return nil
			}
			signals[symbol] = analysis
			return nil
		})
	}
	_ = g.Wait() // workers report failures via the shared slices

	sort.Strings(failed)

	o.logger.WithFields(map[string]interface{}{
		"analyzed": len(signals),
		"failed":   len(failed),
	}).Info("S2 completed")

	return signals, failed
}

func (o *Orchestrator) analyzeOne(ctx context.Context, date time.Time, symbol string) (*contracts.InstrumentAnalysis, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, o.fetchTimeout)
	defer cancel()

	bars, err := o.provider.History(fetchCtx, symbol)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", symbol, err)
	}

	snap, err := o.engine.Compute(bars)
	if err != nil {
		return nil, fmt.Errorf("compute indicators for %s: %w", symbol, err)
	}

	return &contracts.InstrumentAnalysis{
		Symbol:   symbol,
		AsOf:     date,
		Close:    bars[len(bars)-1].Close,
		Snapshot: *snap,
		Score:    o.scorer.Score(snap),
	}, nil
}

func (o *Orchestrator) adviseClients(
	ctx context.Context,
	directives []contracts.Directive,
	signals contracts.SignalMap,
	sectorStrengths []contracts.SectorStrength,
	clients []contracts.Client,
	holdingsByClient map[string][]contracts.Holding,
) []ClientAdvice {
	o.logger.WithField("clients", len(clients)).Info("Running S4: Recommendations")

	advice := make([]ClientAdvice, len(clients))

	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(o.maxConcurrency)

	for i, client := range clients {
		i, client := i, client
		g.Go(func() error {
			recs := o.matcher.Generate(directives, signals, sectorStrengths, client, holdingsByClient[client.ClientID])
			advice[i] = ClientAdvice{Client: client, Recommendations: recs}
			return nil
		})
	}
	_ = g.Wait() // matching is pure, workers cannot fail

	return advice
}

func (o *Orchestrator) persist(ctx context.Context, config RunConfig, result *RunResult) error {
	o.logger.Info("Running S5: Persist")

	for _, analysis := range result.Signals {
		if err := o.signalRepo.SaveAnalysis(ctx, analysis); err != nil {
			return fmt.Errorf("save analysis for %s: %w", analysis.Symbol, err)
		}
	}

	if err := o.sectorRepo.SaveStrengths(ctx, config.Date, result.Sectors); err != nil {
		return fmt.Errorf("save sector strengths: %w", err)
	}

	for _, a := range result.Advice {
		if err := o.recRepo.SaveRecommendations(ctx, config.RunID, a.Client.ClientID, a.Recommendations); err != nil {
			return fmt.Errorf("save recommendations for %s: %w", a.Client.ClientID, err)
		}
	}

	return nil
}

// filterClients restricts the book to the requested client IDs. An empty
// filter keeps every client.
func filterClients(clients []contracts.Client, ids []string) []contracts.Client {
	if len(ids) == 0 {
		return clients
	}
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	kept := make([]contracts.Client, 0, len(ids))
	for _, c := range clients {
		if wanted[c.ClientID] {
			kept = append(kept, c)
		}
	}
	return kept
}

// collectInstruments gathers the distinct instrument codes held across
// all clients, sorted for a stable analysis order.
func collectInstruments(holdingsByClient map[string][]contracts.Holding) []string {
	seen := make(map[string]bool)
	var instruments []string
	for _, holdings := range holdingsByClient {
		for _, h := range holdings {
			if h.InstrumentCode == "" || seen[h.InstrumentCode] {
				continue
			}
			seen[h.InstrumentCode] = true
			instruments = append(instruments, h.InstrumentCode)
		}
	}
	sort.Strings(instruments)
	return instruments
}

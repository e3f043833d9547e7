package advisor

import (
	"fmt"
	"sort"
	"strings"

	"github.com/jhaveri/fie/internal/contracts"
	"github.com/jhaveri/fie/pkg/logger"
)

// Exposure thresholds and sizing used by the action rules.
const (
	defaultReducePct    = 50
	defaultGoldTarget   = 20
	maxSectorExposure   = 15.0 // above this, increase directives do not fire
	increaseAUMFraction = 0.05
)

// Matcher turns active fund manager directives plus technical signals
// into a ranked recommendation list for one client. Pure computation
// over read-only inputs, so one Matcher is safe to share across
// concurrent per-client runs.
type Matcher struct {
	logger *logger.Logger
}

func NewMatcher(log *logger.Logger) *Matcher {
	return &Matcher{logger: log}
}

// Generate evaluates every directive against the client's book, adds
// technical alerts for uncovered extreme signals, and returns the
// recommendations ordered by confidence. Identical inputs always
// produce identical IDs and ordering.
func (m *Matcher) Generate(
	directives []contracts.Directive,
	signals contracts.SignalMap,
	sectorSignals []contracts.SectorStrength,
	client contracts.Client,
	holdings []contracts.Holding,
) []contracts.Recommendation {
	alloc := sectorAllocation(holdings)
	recs := make([]contracts.Recommendation, 0, len(directives)+len(holdings))

	for _, d := range directives {
		if !m.applies(d, client, alloc) {
			continue
		}
		matched := m.matchHoldings(d, holdings)

		switch d.Action {
		case contracts.ActionReduceExposure:
			for _, h := range matched {
				recs = append(recs, m.reduceExposure(d, h, signals, nextID(len(recs))))
			}
		case contracts.ActionIncreaseExposure:
			if d.TargetType != contracts.TargetSector {
				continue
			}
			if rec, ok := m.increaseExposure(d, client, alloc, sectorSignals, nextID(len(recs))); ok {
				recs = append(recs, rec)
			}
		case contracts.ActionIncreaseAllocation:
			if strings.ToUpper(d.Target) != goldSector {
				continue
			}
			if rec, ok := m.increaseGold(d, client, alloc, nextID(len(recs))); ok {
				recs = append(recs, rec)
			}
		case contracts.ActionHold:
			for _, h := range matched {
				recs = append(recs, m.holdPosition(d, h, signals, nextID(len(recs))))
			}
		default:
			m.logger.WithFields(map[string]interface{}{
				"directive": d.ID,
				"action":    string(d.Action),
			}).Warn("Unknown directive action, skipping")
		}
	}

	recs = append(recs, m.coveragePass(recs, signals, holdings)...)

	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].Confidence > recs[j].Confidence
	})
	return recs
}

// applies evaluates a directive's applicability tag against the client.
func (m *Matcher) applies(d contracts.Directive, client contracts.Client, alloc map[string]float64) bool {
	_, hasGold := alloc[goldSector]

	switch d.AppliesTo {
	case contracts.AppliesMomentum:
		return client.StrategyType == "MOMENTUM"
	case contracts.AppliesConservative:
		return client.RiskProfile == contracts.RiskConservative
	case contracts.AppliesAggressive:
		return client.RiskProfile == contracts.RiskAggressive
	case contracts.AppliesClientsWithGold:
		return hasGold
	case contracts.AppliesClientsWithoutGold:
		return !hasGold
	default:
		return true
	}
}

// matchHoldings resolves the directive target to concrete positions.
// Sector and asset-class targets compare sector tags case-insensitively;
// stock targets match as a substring of the instrument code.
func (m *Matcher) matchHoldings(d contracts.Directive, holdings []contracts.Holding) []contracts.Holding {
	target := strings.ToUpper(d.Target)
	var matched []contracts.Holding

	switch d.TargetType {
	case contracts.TargetSector, contracts.TargetAssetClass:
		for _, h := range holdings {
			if strings.ToUpper(h.SectorTag) == target {
				matched = append(matched, h)
			}
		}
	case contracts.TargetStock:
		for _, h := range holdings {
			if strings.Contains(strings.ToUpper(h.InstrumentCode), target) {
				matched = append(matched, h)
			}
		}
	case contracts.TargetPortfolio:
		// Portfolio-wide directives carry no per-holding action.
	default:
		m.logger.WithFields(map[string]interface{}{
			"directive":   d.ID,
			"target_type": string(d.TargetType),
		}).Warn("Unknown directive target type, no holdings matched")
	}
	return matched
}

func (m *Matcher) reduceExposure(d contracts.Directive, h contracts.Holding, signals contracts.SignalMap, id string) contracts.Recommendation {
	pct := parsePct(d.Magnitude, defaultReducePct)
	score, signal := signals.ScoreFor(h.InstrumentCode)

	confidence := 50
	switch {
	case score < -20:
		confidence = 85
	case score < 0:
		confidence = 70
	}

	after := projectReduction(h.AllocationPct, pct)

	return contracts.Recommendation{
		RecID:          id,
		Priority:       priorityFor(confidence),
		Action:         contracts.RecActionRedeem,
		Instrument:     h.InstrumentName,
		InstrumentCode: h.InstrumentCode,
		Sector:         h.SectorTag,
		Amount:         roundAmount(h.CurrentValue * float64(pct) / 100),
		Reasoning: fmt.Sprintf("FM directive to reduce %s by %d%%. %s",
			d.Target, pct, d.Rationale),
		DirectiveRef:     d.ID,
		TechnicalScore:   score,
		TechnicalSignal:  signal,
		Confidence:       confidence,
		AllocationBefore: h.AllocationPct,
		AllocationAfter:  after,
	}
}

func (m *Matcher) increaseExposure(d contracts.Directive, client contracts.Client, alloc map[string]float64, sectorSignals []contracts.SectorStrength, id string) (contracts.Recommendation, bool) {
	target := strings.ToUpper(d.Target)
	current := alloc[target]
	if current >= maxSectorExposure {
		return contracts.Recommendation{}, false
	}

	score := 0.0
	signal := contracts.SignalNone
	for _, s := range sectorSignals {
		if strings.ToUpper(s.Sector) == target {
			score = s.Score.Composite
			signal = s.Score.Signal
			break
		}
	}

	confidence := 55
	if score > 20 {
		confidence = 75
	}

	return contracts.Recommendation{
		RecID:          id,
		Priority:       priorityFor(confidence),
		Action:         contracts.RecActionInvest,
		Instrument:     fmt.Sprintf("Recommended %s sector fund", d.Target),
		InstrumentCode: "",
		Sector:         target,
		Amount:         roundAmount(client.TotalAUM * increaseAUMFraction),
		Reasoning: fmt.Sprintf("FM bullish on %s. Current exposure only %.1f%%. %s",
			d.Target, current, d.Rationale),
		DirectiveRef:     d.ID,
		TechnicalScore:   score,
		TechnicalSignal:  signal,
		Confidence:       confidence,
		AllocationBefore: current,
		AllocationAfter:  round1(current + 5),
	}, true
}

func (m *Matcher) increaseGold(d contracts.Directive, client contracts.Client, alloc map[string]float64, id string) (contracts.Recommendation, bool) {
	current := alloc[goldSector]
	if current >= maxSectorExposure {
		return contracts.Recommendation{}, false
	}

	targetPct := parsePct(d.Magnitude, defaultGoldTarget)

	return contracts.Recommendation{
		RecID:            id,
		Priority:         contracts.PriorityHigh,
		Action:           contracts.RecActionInvest,
		Instrument:       "Gold ETF / Gold Fund",
		InstrumentCode:   "NSE:GOLDBEES",
		Sector:           goldSector,
		Amount:           roundAmount(client.TotalAUM * (float64(targetPct) - current) / 100),
		TargetInstrument: "Nippon India Gold BeES / SBI Gold Fund",
		Reasoning: fmt.Sprintf("FM directive: gold allocation target %d%%. Client has %.1f%% gold. %s",
			targetPct, current, d.Rationale),
		DirectiveRef:     d.ID,
		TechnicalScore:   0,
		TechnicalSignal:  contracts.SignalNone,
		Confidence:       70,
		AllocationBefore: current,
		AllocationAfter:  float64(targetPct),
	}, true
}

func (m *Matcher) holdPosition(d contracts.Directive, h contracts.Holding, signals contracts.SignalMap, id string) contracts.Recommendation {
	score, signal := signals.ScoreFor(h.InstrumentCode)

	return contracts.Recommendation{
		RecID:            id,
		Priority:         contracts.PriorityLow,
		Action:           contracts.RecActionHold,
		Instrument:       h.InstrumentName,
		InstrumentCode:   h.InstrumentCode,
		Sector:           h.SectorTag,
		Amount:           0,
		Reasoning:        fmt.Sprintf("FM directive: hold position. %s", d.Rationale),
		DirectiveRef:     d.ID,
		TechnicalScore:   score,
		TechnicalSignal:  signal,
		Confidence:       60,
		AllocationBefore: h.AllocationPct,
		AllocationAfter:  h.AllocationPct,
	}
}

// coveragePass surfaces extreme technical signals on holdings no
// directive touched, so nothing with a STRONG_BUY or STRONG_SELL
// reading slips through unreviewed.
func (m *Matcher) coveragePass(existing []contracts.Recommendation, signals contracts.SignalMap, holdings []contracts.Holding) []contracts.Recommendation {
	covered := make(map[string]bool, len(existing))
	for _, r := range existing {
		if r.InstrumentCode != "" {
			covered[r.InstrumentCode] = true
		}
	}

	var alerts []contracts.Recommendation
	for _, h := range holdings {
		score, signal := signals.ScoreFor(h.InstrumentCode)
		if signal != contracts.SignalStrongBuy && signal != contracts.SignalStrongSell {
			continue
		}
		if covered[h.InstrumentCode] {
			continue
		}

		action := contracts.RecActionAccumulate
		if signal == contracts.SignalStrongSell {
			action = contracts.RecActionReview
		}

		alerts = append(alerts, contracts.Recommendation{
			RecID:          nextID(len(existing) + len(alerts)),
			Priority:       contracts.PriorityMedium,
			Action:         action,
			Instrument:     h.InstrumentName,
			InstrumentCode: h.InstrumentCode,
			Sector:         h.SectorTag,
			Amount:         0,
			Reasoning: fmt.Sprintf("TECHNICAL ALERT: %s signal (score: %.1f). No FM directive, flagging for review.",
				signal, score),
			TechnicalScore:   score,
			TechnicalSignal:  signal,
			Confidence:       45,
			AllocationBefore: h.AllocationPct,
			AllocationAfter:  h.AllocationPct,
		})
	}
	return alerts
}

func priorityFor(confidence int) contracts.Priority {
	if confidence > 70 {
		return contracts.PriorityHigh
	}
	return contracts.PriorityMedium
}

// nextID numbers recommendations in generation order, before the final
// confidence sort.
func nextID(generated int) string {
	return fmt.Sprintf("REC-%03d", generated+1)
}

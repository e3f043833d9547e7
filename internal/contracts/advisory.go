package contracts

// DirectiveAction is the action a fund manager directive calls for.
type DirectiveAction string

const (
	ActionIncreaseExposure   DirectiveAction = "INCREASE_EXPOSURE"
	ActionReduceExposure     DirectiveAction = "REDUCE_EXPOSURE"
	ActionIncreaseAllocation DirectiveAction = "INCREASE_ALLOCATION"
	ActionHold               DirectiveAction = "HOLD"
)

// TargetType says what a directive's target names.
type TargetType string

const (
	TargetSector     TargetType = "SECTOR"
	TargetStock      TargetType = "STOCK"
	TargetAssetClass TargetType = "ASSET_CLASS"
	TargetPortfolio  TargetType = "PORTFOLIO"
)

// Applicability selects which clients a directive applies to.
type Applicability string

const (
	AppliesAll                Applicability = "ALL_CLIENTS"
	AppliesMomentum           Applicability = "MOMENTUM_STRATEGY"
	AppliesConservative       Applicability = "CONSERVATIVE_CLIENTS"
	AppliesAggressive         Applicability = "AGGRESSIVE_CLIENTS"
	AppliesClientsWithGold    Applicability = "CLIENTS_WITH_GOLD"
	AppliesClientsWithoutGold Applicability = "CLIENTS_WITHOUT_GOLD"
)

// Conviction is the directive originator's stated confidence.
type Conviction string

const (
	ConvictionHigh   Conviction = "HIGH"
	ConvictionMedium Conviction = "MEDIUM"
	ConvictionLow    Conviction = "LOW"
)

// Directive is a structured fund manager instruction, parsed upstream.
// Immutable once issued; the engine only reads it.
type Directive struct {
	ID         string          `json:"id"`
	Action     DirectiveAction `json:"action"`
	TargetType TargetType      `json:"target_type"`
	Target     string          `json:"target"`
	Magnitude  string          `json:"magnitude,omitempty"` // e.g. "50%", "TO_20%"
	Conviction Conviction      `json:"conviction"`
	Timeframe  string          `json:"timeframe,omitempty"`
	AppliesTo  Applicability   `json:"applies_to"`
	Rationale  string          `json:"rationale,omitempty"`
}

// RiskProfile is a client's declared risk tolerance.
type RiskProfile string

const (
	RiskConservative RiskProfile = "CONSERVATIVE"
	RiskModerate     RiskProfile = "MODERATE"
	RiskAggressive   RiskProfile = "AGGRESSIVE"
)

// Client is a wealth-management client. Read-only input.
type Client struct {
	ClientID     string      `json:"client_id"`
	Name         string      `json:"name"`
	RiskProfile  RiskProfile `json:"risk_profile"`
	StrategyType string      `json:"strategy_type"` // e.g. MF_ONLY, MOMENTUM, PMS
	TotalAUM     float64     `json:"total_aum"`
}

// Holding is one position in a client's portfolio. Read-only input,
// pre-validated by the ingestion layer.
type Holding struct {
	ClientID       string  `json:"client_id"`
	InstrumentCode string  `json:"instrument_code"`
	InstrumentName string  `json:"instrument_name"`
	InstrumentType string  `json:"instrument_type"` // MF, STOCK, ETF
	SectorTag      string  `json:"sector_tag"`
	CurrentValue   float64 `json:"current_value"`
	CostBasis      float64 `json:"cost_basis"`
	AllocationPct  float64 `json:"allocation_pct"`
	SIPActive      bool    `json:"sip_active"`
	SIPAmount      float64 `json:"sip_amount"`
}

// Priority tiers a recommendation for the advisor's attention.
type Priority string

const (
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// RecommendationAction is the concrete portfolio action recommended.
type RecommendationAction string

const (
	RecActionRedeem     RecommendationAction = "REDEEM"
	RecActionInvest     RecommendationAction = "INVEST"
	RecActionHold       RecommendationAction = "HOLD"
	RecActionAccumulate RecommendationAction = "ACCUMULATE"
	RecActionReview     RecommendationAction = "REVIEW"
)

// Recommendation is one ranked, explainable portfolio action for one
// client. Created once per pipeline run, never mutated afterwards.
type Recommendation struct {
	RecID            string               `json:"rec_id"`
	Priority         Priority             `json:"priority"`
	Action           RecommendationAction `json:"action"`
	Instrument       string               `json:"instrument"`
	InstrumentCode   string               `json:"instrument_code"`
	Sector           string               `json:"sector"`
	Amount           float64              `json:"amount"`
	TargetInstrument string               `json:"target_instrument,omitempty"`
	Reasoning        string               `json:"reasoning"`
	DirectiveRef     string               `json:"directive_ref,omitempty"`
	TechnicalScore   float64              `json:"technical_score"`
	TechnicalSignal  Signal               `json:"technical_signal"`
	Confidence       int                  `json:"confidence"`
	AllocationBefore float64              `json:"allocation_before_pct"`
	AllocationAfter  float64              `json:"allocation_after_pct"`
}

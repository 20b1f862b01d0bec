package config

// LumpsumWeights holds the bucket-weighting knobs from spec.md §4.4 step 2d.
type LumpsumWeights struct {
	COBInPct      float64
	COBOutPct     float64
	SwitchInPct   float64
	SwitchOutPct  float64
	DebtBonus     DebtBonus
}

type DebtBonus struct {
	Enable          bool
	BonusPct        float64
	MaxDebtRatioPct float64
}

// LumpsumPenaltyConfig configures the strategy of spec.md §4.4 step 8.
type PenaltyStrategy string

const (
	PenaltyStrategyMin PenaltyStrategy = "min"
	PenaltyStrategyMax PenaltyStrategy = "max"
)

type LumpsumPenaltyConfig struct {
	Enable         bool
	Strategy       PenaltyStrategy
	Band1TrailPct  float64
	Band1CapRupees float64
	Band2Rupees    float64
}

// CategoryRules implements the blacklist gate of spec.md §4.4 step 2b.
type CategoryRules struct {
	BlacklistedTerms     []string
	ZeroWeightPurchase   bool
	ZeroWeightSwitchIn   bool
	ExcludeFromDebtBonus bool
}

// LumpsumOptions is the metric-specific slice of the shared options block
// (spec.md §6.4).
type LumpsumOptions struct {
	RangeMode              RangeModeOpt
	FYMode                 FYModeOpt
	AuditMode              AuditMode
	ApplyStreakBonus       bool
	CobInCorrectionFactor  float64
	HattrickThresholdPct   float64
	HattrickBonus          float64
	FiveStreakBonus        float64
}

type RangeModeOpt string

const (
	RMMonth RangeModeOpt = "month"
	RMLast5 RangeModeOpt = "last5"
	RMFY    RangeModeOpt = "fy"
	RMSince RangeModeOpt = "since"
)

type FYModeOpt string

const (
	FYOptApr FYModeOpt = "FY_APR"
	FYOptCal FYModeOpt = "CAL"
)

type AuditMode string

const (
	AuditCompact AuditMode = "compact"
	AuditFull    AuditMode = "full"
)

// LumpsumConfig is the full typed Lumpsum payload (spec.md §3.7, §4.4,
// §4.1 validation rules).
type LumpsumConfig struct {
	Weights             LumpsumWeights
	RateSlabs           []RateSlab
	MeetingSlabs        []MeetingSlab
	Penalty             LumpsumPenaltyConfig
	QtrBonusMinPositive int
	QtrBonusSlabs       []BonusProjectionSlab
	AnnualBonusMinPositive int
	AnnualBonusSlabs    []BonusProjectionSlab
	Options             LumpsumOptions
	CategoryRules       CategoryRules
	SchemeRules         []SchemeRule
	IgnoredRMs          []string
}

// DefaultLumpsumConfig reproduces the distilled source's built-in default
// document (original_source/Settings_API/__init__.py DEFAULT_LUMPSUM_CONFIG)
// verbatim as a Go literal.
func DefaultLumpsumConfig() LumpsumConfig {
	pct := func(f float64) *float64 { return &f }
	return LumpsumConfig{
		Weights: LumpsumWeights{
			COBInPct:     50,
			COBOutPct:    120,
			SwitchInPct:  120,
			SwitchOutPct: 120,
			DebtBonus: DebtBonus{
				Enable:          false,
				BonusPct:        20,
				MaxDebtRatioPct: 75,
			},
		},
		RateSlabs: []RateSlab{
			{MinPct: 0.0, MaxPct: pct(0.25), Rate: 0.0006, Label: "0–<0.25%"},
			{MinPct: 0.25, MaxPct: pct(0.5), Rate: 0.0009, Label: "0.25–<0.5%"},
			{MinPct: 0.5, MaxPct: pct(0.75), Rate: 0.00115, Label: "0.5–<0.75%"},
			{MinPct: 0.75, MaxPct: pct(1.25), Rate: 0.00135, Label: "0.75–<1.25%"},
			{MinPct: 1.25, MaxPct: pct(1.5), Rate: 0.00145, Label: "1.25–<1.5%"},
			{MinPct: 1.5, MaxPct: pct(2.0), Rate: 0.00148, Label: "1.5–<2%"},
			{MinPct: 2.0, MaxPct: nil, Rate: 0.0015, Label: "≥2%"},
		},
		MeetingSlabs: []MeetingSlab{
			{MaxCount: intp(5), Multiplier: 1.0, Label: "0–5"},
			{MaxCount: intp(11), Multiplier: 1.05, Label: "6–11"},
			{MaxCount: intp(17), Multiplier: 1.075, Label: "12–17"},
			{MaxCount: nil, Multiplier: 1.10, Label: "18+"},
		},
		Penalty: LumpsumPenaltyConfig{
			Enable:         true,
			Strategy:       PenaltyStrategyMin,
			Band1TrailPct:  0.5,
			Band1CapRupees: 5000.0,
			Band2Rupees:    2500.0,
		},
		QtrBonusMinPositive: 2,
		QtrBonusSlabs: []BonusProjectionSlab{
			{MinNP: 0, BonusRupees: 0},
			{MinNP: 1000000, BonusRupees: 0},
			{MinNP: 2500000, BonusRupees: 0},
			{MinNP: 5000000, BonusRupees: 0},
		},
		AnnualBonusMinPositive: 6,
		AnnualBonusSlabs: []BonusProjectionSlab{
			{MinNP: 0, BonusRupees: 0},
			{MinNP: 3000000, BonusRupees: 0},
			{MinNP: 7500000, BonusRupees: 0},
			{MinNP: 12000000, BonusRupees: 0},
		},
		Options: LumpsumOptions{
			RangeMode:             RMLast5,
			FYMode:                FYOptApr,
			AuditMode:              AuditCompact,
			ApplyStreakBonus:       false,
			CobInCorrectionFactor:  0.5,
			HattrickThresholdPct:   0.0,
			HattrickBonus:          0.0,
			FiveStreakBonus:        0.0,
		},
		CategoryRules: CategoryRules{
			BlacklistedTerms:     []string{"liquid", "overnight", "low duration", "money market", "ultra short"},
			ZeroWeightPurchase:   true,
			ZeroWeightSwitchIn:   true,
			ExcludeFromDebtBonus: true,
		},
		SchemeRules: nil,
		IgnoredRMs:  nil,
	}
}

func intp(i int) *int { return &i }

// MergeOver walks field-by-field, preferring stored over base, instead of
// a dictionary union (spec.md §9 design note). Slices/structs present in
// stored (non-nil/non-zero) replace the base wholesale — matching the
// distilled source's per-key dict merge semantics.
func (stored LumpsumConfig) MergeOver(base LumpsumConfig) LumpsumConfig {
	out := base
	if stored.Weights != (LumpsumWeights{}) {
		out.Weights = stored.Weights
	}
	if len(stored.RateSlabs) > 0 {
		out.RateSlabs = stored.RateSlabs
	}
	if len(stored.MeetingSlabs) > 0 {
		out.MeetingSlabs = stored.MeetingSlabs
	}
	if stored.Penalty != (LumpsumPenaltyConfig{}) {
		out.Penalty = stored.Penalty
	}
	if len(stored.QtrBonusSlabs) > 0 {
		out.QtrBonusSlabs = stored.QtrBonusSlabs
		out.QtrBonusMinPositive = stored.QtrBonusMinPositive
	}
	if len(stored.AnnualBonusSlabs) > 0 {
		out.AnnualBonusSlabs = stored.AnnualBonusSlabs
		out.AnnualBonusMinPositive = stored.AnnualBonusMinPositive
	}
	if stored.Options != (LumpsumOptions{}) {
		out.Options = stored.Options
	}
	if len(stored.CategoryRules.BlacklistedTerms) > 0 {
		out.CategoryRules = stored.CategoryRules
	}
	if len(stored.SchemeRules) > 0 {
		out.SchemeRules = stored.SchemeRules
	}
	if len(stored.IgnoredRMs) > 0 {
		out.IgnoredRMs = stored.IgnoredRMs
	}
	return out
}

// Validate enforces spec.md §4.1's Lumpsum-relevant rules, returning every
// violation rather than failing fast, and never mutating the receiver.
func (c LumpsumConfig) Validate() ValidationErrors {
	var errs ValidationErrors
	for i, s := range c.RateSlabs {
		if s.MaxPct != nil && !(s.MinPct < *s.MaxPct) {
			errs = append(errs, ValidationError{Field: fieldf("rate_slabs", i), Message: "min_pct must be < max_pct"})
		}
		if s.Rate < 0 {
			errs = append(errs, ValidationError{Field: fieldf("rate_slabs", i), Message: "rate must be >= 0"})
		}
	}
	prevMax := -1 << 31
	for i, s := range c.MeetingSlabs {
		if s.Multiplier < 1.0 {
			errs = append(errs, ValidationError{Field: fieldf("meeting_slabs", i), Message: "multiplier must be >= 1.0"})
		}
		if s.MaxCount != nil {
			if *s.MaxCount <= prevMax {
				errs = append(errs, ValidationError{Field: fieldf("meeting_slabs", i), Message: "max_count must be strictly increasing"})
			}
			prevMax = *s.MaxCount
		}
	}
	switch c.Options.RangeMode {
	case RMMonth, RMLast5, RMFY, RMSince, "":
	default:
		errs = append(errs, ValidationError{Field: "options.range_mode", Message: "invalid range_mode"})
	}
	switch c.Options.FYMode {
	case FYOptApr, FYOptCal, "":
	default:
		errs = append(errs, ValidationError{Field: "options.fy_mode", Message: "invalid fy_mode"})
	}
	for i, r := range c.SchemeRules {
		switch r.Match {
		case MatchExact, MatchContains, MatchStartsWith:
		default:
			errs = append(errs, ValidationError{Field: fieldf("scheme_rules", i), Message: "invalid match_type"})
		}
	}
	return errs
}

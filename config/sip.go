package config

// SipNetMode controls whether SWP nets against SIP (spec.md §3.3, §6.4).
type SipNetMode string

const (
	SipNetOnly     SipNetMode = "sip_only"
	SipNetPlusSwp  SipNetMode = "sip_plus_swp"
)

type SwpWeights struct {
	Registration float64 // typically negative: an SWP registration reduces net SIP
	Cancellation float64 // typically positive: cancelling an SWP restores net SIP
}

type SipOptions struct {
	SipNetMode       SipNetMode
	IncludeSWP       bool
	HorizonMonths    int
	LsGatePct        float64
	LsGateMinRupees  float64
	SwpWeights       SwpWeights
	RangeMode        RangeModeOpt
	FYMode           FYModeOpt
	AuditMode        AuditMode
}

type SipCoefficients struct {
	SipPointsPerRupee float64
	SipBaseBps        float64 // if > 0, used directly instead of deriving from SipPointsPerRupee
}

type SipBonusSlabs struct {
	SipToAUM   []ValBpsSlab // ratio bonus, val = net_sip/aum ratio
	Absolute   []ValBpsSlab // absolute net_sip bonus
	AvgTicket  []ValBpsSlab // average SIP ticket size bonus
	Consistency []ValBpsSlab // consecutive positive-months streak bonus
}

type SipPenaltyConfig struct {
	Enable bool
	Slabs  []SipPenaltySlab
}

// SipConfig is the full typed SIP payload (spec.md §3.7, §4.5).
type SipConfig struct {
	TierThresholds []TierThreshold
	TierFactors    map[string]float64 // monthly trail factor per tier
	Coefficients   SipCoefficients
	BonusSlabs     SipBonusSlabs
	Penalty        SipPenaltyConfig
	IgnoredRMs     []string
	Options        SipOptions
}

// DefaultSipConfig reproduces original_source/Settings_API's
// DEFAULT_SIP_CONFIG.
func DefaultSipConfig() SipConfig {
	return SipConfig{
		TierThresholds: []TierThreshold{
			{Tier: "T6", MinValue: 60000, Label: "≥60k"},
			{Tier: "T5", MinValue: 40000, Label: "40k–60k"},
			{Tier: "T4", MinValue: 25000, Label: "25k–40k"},
			{Tier: "T3", MinValue: 15000, Label: "15k–25k"},
			{Tier: "T2", MinValue: 8000, Label: "8k–15k"},
			{Tier: "T1", MinValue: 2000, Label: "2k–8k"},
			{Tier: "T0", MinValue: -1e15, Label: "<2k"},
		},
		TierFactors: map[string]float64{
			"T6": 0.0000375,
			"T5": 0.000033333,
			"T4": 0.000029167,
			"T3": 0.000025,
			"T2": 0.000020833,
			"T1": 0.000016667,
			"T0": 0.0,
		},
		Coefficients: SipCoefficients{SipPointsPerRupee: 0.03},
		BonusSlabs: SipBonusSlabs{
			SipToAUM: []ValBpsSlab{
				{Val: 0.0005, Bps: 4.0},
				{Val: 0.0004, Bps: 3.0},
				{Val: 0.0003, Bps: 2.0},
				{Val: 0.0002, Bps: 1.0},
			},
			Absolute: []ValBpsSlab{
				{Val: 300000.0, Bps: 3.0},
				{Val: 200000.0, Bps: 2.0},
				{Val: 100000.0, Bps: 1.0},
				{Val: 50000.0, Bps: 0.5},
			},
			AvgTicket: []ValBpsSlab{
				{Val: 8000.0, Bps: 2.0},
				{Val: 5000.0, Bps: 1.0},
				{Val: 3000.0, Bps: 0.5},
			},
			Consistency: []ValBpsSlab{
				{Val: 6, Bps: 2.0},
				{Val: 3, Bps: 1.0},
			},
		},
		Penalty: SipPenaltyConfig{
			Enable: true,
			Slabs: []SipPenaltySlab{
				{MaxLoss: 50000.0, RateBps: 1.0},
				{MaxLoss: 100000.0, RateBps: 2.0},
				{MaxLoss: 999999999.0, RateBps: 3.0},
			},
		},
		Options: SipOptions{
			SipNetMode:      SipNetOnly,
			IncludeSWP:      false,
			HorizonMonths:   24,
			LsGatePct:       -3.0,
			LsGateMinRupees: 50000.0,
			SwpWeights:      SwpWeights{Registration: -1.0, Cancellation: 1.0},
			RangeMode:       RMMonth,
			FYMode:          FYOptApr,
			AuditMode:       AuditCompact,
		},
	}
}

func (stored SipConfig) MergeOver(base SipConfig) SipConfig {
	out := base
	if len(stored.TierThresholds) > 0 {
		out.TierThresholds = stored.TierThresholds
	}
	if len(stored.TierFactors) > 0 {
		out.TierFactors = stored.TierFactors
	}
	if stored.Coefficients != (SipCoefficients{}) {
		out.Coefficients = stored.Coefficients
	}
	if len(stored.BonusSlabs.SipToAUM) > 0 {
		out.BonusSlabs.SipToAUM = stored.BonusSlabs.SipToAUM
	}
	if len(stored.BonusSlabs.Absolute) > 0 {
		out.BonusSlabs.Absolute = stored.BonusSlabs.Absolute
	}
	if len(stored.BonusSlabs.AvgTicket) > 0 {
		out.BonusSlabs.AvgTicket = stored.BonusSlabs.AvgTicket
	}
	if len(stored.BonusSlabs.Consistency) > 0 {
		out.BonusSlabs.Consistency = stored.BonusSlabs.Consistency
	}
	if len(stored.Penalty.Slabs) > 0 {
		out.Penalty = stored.Penalty
	}
	if len(stored.IgnoredRMs) > 0 {
		out.IgnoredRMs = stored.IgnoredRMs
	}
	if stored.Options != (SipOptions{}) {
		out.Options = stored.Options
	}
	return out
}

func (c SipConfig) Validate() ValidationErrors {
	var errs ValidationErrors
	prev := 1e18
	for i, t := range c.TierThresholds {
		if t.MinValue > prev {
			errs = append(errs, ValidationError{Field: fieldf("tier_thresholds", i), Message: "must be sorted descending by min_val on read; stored order looks inverted"})
		}
		prev = t.MinValue
	}
	switch c.Options.SipNetMode {
	case SipNetOnly, SipNetPlusSwp, "":
	default:
		errs = append(errs, ValidationError{Field: "options.sip_net_mode", Message: "invalid sip_net_mode"})
	}
	if c.Options.HorizonMonths < 0 {
		errs = append(errs, ValidationError{Field: "options.horizon_months", Message: "must be >= 0"})
	}
	for i, s := range c.Penalty.Slabs {
		if s.RateBps < 0 {
			errs = append(errs, ValidationError{Field: fieldf("sip_penalty.slabs", i), Message: "rate_bps must be >= 0"})
		}
	}
	return errs
}

// SortTierThresholdsDesc returns a copy sorted descending by MinValue,
// the read-time order spec.md §3.7 requires.
func SortTierThresholdsDesc(in []TierThreshold) []TierThreshold {
	out := append([]TierThreshold(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].MinValue > out[j-1].MinValue; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// SortValBpsDesc returns a copy sorted descending by Val.
func SortValBpsDesc(in []ValBpsSlab) []ValBpsSlab {
	out := append([]ValBpsSlab(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Val > out[j-1].Val; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

// SortSipPenaltyDesc returns a copy sorted descending by RateBps, per
// spec.md §4.5 step 7 ("walk sip_penalty.slabs sorted descending by
// rate_bps").
func SortSipPenaltyDesc(in []SipPenaltySlab) []SipPenaltySlab {
	out := append([]SipPenaltySlab(nil), in...)
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].RateBps > out[j-1].RateBps; j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out
}

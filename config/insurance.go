package config

// InsuranceOptions carries the shared options block plus insurance-specific
// toggles (spec.md §4.6).
type InsuranceOptions struct {
	RangeMode        RangeModeOpt
	FYMode           FYModeOpt
	AuditMode        AuditMode
	UpsellDivisor    float64
	ApplyStreakBonus bool
	// StreakPremiumThreshold is the fresh/portability-fresh premium a month
	// must clear to count toward the streak (spec.md §4.6 step 10: "≥ ₹3L").
	StreakPremiumThreshold float64
	StreakMonthlyBonus     float64 // points credited every qualifying month
	HattrickBonus          float64 // one-time points on reaching 3 consecutive qualifying months
	PostHattrickBonus      float64 // extra points per qualifying month beyond the hat-trick
	LeaderCreditPct        float64 // fraction of the RM's insurance points_total credited to the INS leader-credit bucket (spec.md §4.8)
}

// TenureWeightSlab maps years-of-service bands to a weight multiplier
// (spec.md §4.6 step 9).
type TenureWeightSlab struct {
	MinYears float64
	MaxYears *float64
	Weight   float64
}

// CashbackTier maps a cashback-as-percent-of-premium band to a weight
// multiplier, split by whether the policy is a term product (spec.md §4.6
// step 9: "tiered by cashback% of premium; different tiers for term vs
// non-term"). original_source carried no concrete tier table for this.
type CashbackTier struct {
	MinPct float64
	MaxPct *float64
	Weight float64
}

type CategoryWeights struct {
	// keyed by PolicyType string as stored on the policy (e.g. "GMC",
	// "GPA", "Term", "Health")
	ByCategory map[string]float64
}

type InsuranceConfig struct {
	PremiumSlabs    []InsurancePremiumSlab
	RenewSlabs      []InsuranceRenewSlab
	PayoutSlabs     []PayoutSlab
	TenureWeights   []TenureWeightSlab
	CategoryWeights CategoryWeights
	DeductibleWeight float64
	AssociateWeight  float64
	TermCashbackTiers    []CashbackTier
	NonTermCashbackTiers []CashbackTier
	QtrBonusMinPositivePolicies    int
	QtrBonusSlabs                  []BonusProjectionSlab
	AnnualBonusMinPositivePolicies int
	AnnualBonusSlabs                []BonusProjectionSlab
	IgnoredRMs      []string
	Options         InsuranceOptions
}

// DefaultInsuranceConfig reproduces original_source/Settings_API's
// DEFAULT_INSURANCE_CONFIG, except for category weights where spec.md §4.6
// step 7 states an explicit GMC=0.20 that conflicts with the Python
// default (0.40) — spec.md is the authoritative source here (see
// DESIGN.md Open Questions).
func DefaultInsuranceConfig() InsuranceConfig {
	maxf := func(f float64) *float64 { return &f }
	maxi := func(i int) *int { return &i }
	return InsuranceConfig{
		PremiumSlabs: []InsurancePremiumSlab{
			{MinVal: 0, MaxVal: maxf(10000), Points: 1.0},
			{MinVal: 10000, MaxVal: maxf(25000), Points: 2.5},
			{MinVal: 25000, MaxVal: maxf(50000), Points: 5.0},
			{MinVal: 50000, MaxVal: maxf(100000), Points: 10.0},
			{MinVal: 100000, MaxVal: nil, Points: 20.0},
		},
		RenewSlabs: []InsuranceRenewSlab{
			{MinDTR: nil, MaxDTR: maxi(0), Points: 0.0},
			{MinDTR: maxi(0), MaxDTR: maxi(15), Points: 5.0},
			{MinDTR: maxi(15), MaxDTR: maxi(30), Points: 3.0},
			{MinDTR: maxi(30), MaxDTR: nil, Points: 1.0},
		},
		PayoutSlabs: []PayoutSlab{
			{MinPoints: 0, MaxPoints: maxf(50), Label: "bronze", FreshPct: 0.5, RenewPct: 0.25, BonusRupees: 0},
			{MinPoints: 50, MaxPoints: maxf(150), Label: "silver", FreshPct: 0.75, RenewPct: 0.35, BonusRupees: 0},
			{MinPoints: 150, MaxPoints: maxf(300), Label: "gold", FreshPct: 1.0, RenewPct: 0.5, BonusRupees: 0},
			{MinPoints: 300, MaxPoints: nil, Label: "platinum", FreshPct: 1.25, RenewPct: 0.6, BonusRupees: 0},
		},
		TenureWeights: []TenureWeightSlab{
			{MinYears: 0, MaxYears: maxf(1), Weight: 0.9},
			{MinYears: 1, MaxYears: maxf(3), Weight: 1.0},
			{MinYears: 3, MaxYears: maxf(5), Weight: 1.05},
			{MinYears: 5, MaxYears: nil, Weight: 1.1},
		},
		CategoryWeights: CategoryWeights{
			ByCategory: map[string]float64{
				"GMC":    0.20,
				"GPA":    0.15,
				"Term":   0.30,
				"Health": 0.25,
				"Motor":  0.10,
			},
		},
		DeductibleWeight: 1.15,
		AssociateWeight:  0.9,
		TermCashbackTiers: []CashbackTier{
			{MinPct: 0, MaxPct: maxf(5), Weight: 1.0},
			{MinPct: 5, MaxPct: maxf(10), Weight: 0.95},
			{MinPct: 10, MaxPct: nil, Weight: 0.9},
		},
		NonTermCashbackTiers: []CashbackTier{
			{MinPct: 0, MaxPct: maxf(10), Weight: 1.0},
			{MinPct: 10, MaxPct: maxf(20), Weight: 0.92},
			{MinPct: 20, MaxPct: nil, Weight: 0.85},
		},
		QtrBonusMinPositivePolicies: 2,
		QtrBonusSlabs: []BonusProjectionSlab{
			{MinNP: 0, BonusRupees: 0},
			{MinNP: 200000, BonusRupees: 0},
			{MinNP: 500000, BonusRupees: 0},
		},
		AnnualBonusMinPositivePolicies: 6,
		AnnualBonusSlabs: []BonusProjectionSlab{
			{MinNP: 0, BonusRupees: 0},
			{MinNP: 800000, BonusRupees: 0},
			{MinNP: 2000000, BonusRupees: 0},
		},
		IgnoredRMs: nil,
		Options: InsuranceOptions{
			RangeMode:                 RMMonth,
			FYMode:                    FYOptApr,
			AuditMode:                 AuditCompact,
			UpsellDivisor:          2.0,
			ApplyStreakBonus:       true,
			StreakPremiumThreshold: 300000,
			StreakMonthlyBonus:     2000,
			HattrickBonus:          5000,
			PostHattrickBonus:      2000,
			LeaderCreditPct:        0.20,
		},
	}
}

func (stored InsuranceConfig) MergeOver(base InsuranceConfig) InsuranceConfig {
	out := base
	if len(stored.PremiumSlabs) > 0 {
		out.PremiumSlabs = stored.PremiumSlabs
	}
	if len(stored.RenewSlabs) > 0 {
		out.RenewSlabs = stored.RenewSlabs
	}
	if len(stored.PayoutSlabs) > 0 {
		out.PayoutSlabs = stored.PayoutSlabs
	}
	if len(stored.TenureWeights) > 0 {
		out.TenureWeights = stored.TenureWeights
	}
	if len(stored.CategoryWeights.ByCategory) > 0 {
		out.CategoryWeights = stored.CategoryWeights
	}
	if stored.DeductibleWeight != 0 {
		out.DeductibleWeight = stored.DeductibleWeight
	}
	if stored.AssociateWeight != 0 {
		out.AssociateWeight = stored.AssociateWeight
	}
	if len(stored.TermCashbackTiers) > 0 {
		out.TermCashbackTiers = stored.TermCashbackTiers
	}
	if len(stored.NonTermCashbackTiers) > 0 {
		out.NonTermCashbackTiers = stored.NonTermCashbackTiers
	}
	if len(stored.QtrBonusSlabs) > 0 {
		out.QtrBonusSlabs = stored.QtrBonusSlabs
		out.QtrBonusMinPositivePolicies = stored.QtrBonusMinPositivePolicies
	}
	if len(stored.AnnualBonusSlabs) > 0 {
		out.AnnualBonusSlabs = stored.AnnualBonusSlabs
		out.AnnualBonusMinPositivePolicies = stored.AnnualBonusMinPositivePolicies
	}
	if len(stored.IgnoredRMs) > 0 {
		out.IgnoredRMs = stored.IgnoredRMs
	}
	if stored.Options != (InsuranceOptions{}) {
		out.Options = stored.Options
	}
	return out
}

func (c InsuranceConfig) Validate() ValidationErrors {
	var errs ValidationErrors
	for i, s := range c.PremiumSlabs {
		if s.MaxVal != nil && !(s.MinVal < *s.MaxVal) {
			errs = append(errs, ValidationError{Field: fieldf("premium_slabs", i), Message: "min_val must be < max_val"})
		}
		if s.Points < 0 {
			errs = append(errs, ValidationError{Field: fieldf("premium_slabs", i), Message: "points must be >= 0"})
		}
	}
	for i, s := range c.PayoutSlabs {
		if s.FreshPct < 0 || s.RenewPct < 0 {
			errs = append(errs, ValidationError{Field: fieldf("payout_slabs", i), Message: "pct fields must be >= 0"})
		}
	}
	if c.Options.UpsellDivisor == 0 {
		errs = append(errs, ValidationError{Field: "options.upsell_divisor", Message: "must be non-zero"})
	}
	if c.Options.LeaderCreditPct < 0 || c.Options.LeaderCreditPct > 1 {
		errs = append(errs, ValidationError{Field: "options.leader_credit_pct", Message: "must be in [0,1]"})
	}
	return errs
}

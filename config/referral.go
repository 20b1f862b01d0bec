package config

// ReferralTypePoints holds the fixed point values for one referral type
// (Insurance or Investment); spec.md §4.7's scenario table differs by type
// (e.g. self-sourced Insurance=100 vs Investment=200).
type ReferralTypePoints struct {
	SelfSourced    float64
	ConverterOnly  float64
	ReferrerCredit float64
}

// ReferralPoints holds the fixed point values per referral scenario
// (spec.md §4.7), split by referral type.
type ReferralPoints struct {
	Insurance            ReferralTypePoints
	Investment           ReferralTypePoints
	FamilyHeadPenaltyPct float64 // fraction deducted when lead shares a family head with an existing customer
}

type ReferralOptions struct {
	RangeMode RangeModeOpt
	FYMode    FYModeOpt
	AuditMode AuditMode
	GateConverterIndependently bool
	GateReferrerIndependently  bool
}

type ReferralConfig struct {
	Points     ReferralPoints
	IgnoredRMs []string
	Options    ReferralOptions
}

// DefaultReferralConfig reproduces original_source/Settings_API's
// DEFAULT_REFERRAL_CONFIG.
func DefaultReferralConfig() ReferralConfig {
	return ReferralConfig{
		Points: ReferralPoints{
			Insurance:            ReferralTypePoints{SelfSourced: 100.0, ConverterOnly: 50.0, ReferrerCredit: 30.0},
			Investment:           ReferralTypePoints{SelfSourced: 200.0, ConverterOnly: 0.0, ReferrerCredit: 50.0},
			FamilyHeadPenaltyPct: 0.70,
		},
		IgnoredRMs: nil,
		Options: ReferralOptions{
			RangeMode:                   RMMonth,
			FYMode:                      FYOptApr,
			AuditMode:                   AuditCompact,
			GateConverterIndependently:  true,
			GateReferrerIndependently:   true,
		},
	}
}

func (stored ReferralConfig) MergeOver(base ReferralConfig) ReferralConfig {
	out := base
	if stored.Points != (ReferralPoints{}) {
		out.Points = stored.Points
	}
	if len(stored.IgnoredRMs) > 0 {
		out.IgnoredRMs = stored.IgnoredRMs
	}
	if stored.Options != (ReferralOptions{}) {
		out.Options = stored.Options
	}
	return out
}

func (c ReferralConfig) Validate() ValidationErrors {
	var errs ValidationErrors
	for _, t := range []ReferralTypePoints{c.Points.Insurance, c.Points.Investment} {
		if t.SelfSourced < 0 || t.ConverterOnly < 0 || t.ReferrerCredit < 0 {
			errs = append(errs, ValidationError{Field: "points", Message: "point values must be >= 0"})
			break
		}
	}
	if c.Points.FamilyHeadPenaltyPct < 0 || c.Points.FamilyHeadPenaltyPct > 1 {
		errs = append(errs, ValidationError{Field: "points.family_head_penalty_pct", Message: "must be in [0,1]"})
	}
	return errs
}

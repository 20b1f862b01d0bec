/*
Package referral implements the Referral Scorer (C7): a fixed-point
scoring table keyed on whether a lead was self-sourced, converted by one
RM with a separate referrer entitled to credit, with a family-head
penalty when the lead shares a household with an existing customer.
*/
package referral

import (
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/identity"
	"github.com/vilakshan/pli-leaderboard/model"
)

// Input is one converted lead to score (spec.md §4.7).
type Input struct {
	LeadID       string
	ReferralType string // "insurance" | "investment"
	Converter    model.RM
	Referrer     *model.RM // nil when the converter sourced the lead themself
	SameFamilyHeadAsExisting bool
	Month        model.Month
	Cfg          config.ReferralConfig
	ConfigHash   string
}

func applyFamilyPenalty(points float64, penalized bool, pct float64) float64 {
	if !penalized {
		return points
	}
	return points * (1 - pct)
}

// pointsFor selects the Insurance or Investment point table (spec.md §4.7:
// "Insurance=100, Investment=200" etc — the scenario table is type-scoped).
func pointsFor(cfg config.ReferralConfig, referralType string) config.ReferralTypePoints {
	if referralType == "investment" {
		return cfg.Points.Investment
	}
	return cfg.Points.Insurance
}

// Score returns one row per party entitled to credit on this lead. A
// self-sourced lead (no separate referrer) yields one row; a referred lead
// yields up to two, each independently gated on that party's own
// inactivity-gate eligibility when the corresponding
// Options.Gate*Independently flag is set — otherwise both rows are
// suppressed if either party is ineligible (spec.md §4.7 step 4).
func Score(in Input) []model.ReferralRow {
	pts := pointsFor(in.Cfg, in.ReferralType)
	converterEligible, _ := identity.EligibleForMonth(in.Converter, in.Month)
	referrerEligible := true
	if in.Referrer != nil {
		referrerEligible, _ = identity.EligibleForMonth(*in.Referrer, in.Month)
	}

	if in.Referrer == nil {
		if !converterEligible {
			return nil
		}
		p := applyFamilyPenalty(pts.SelfSourced, in.SameFamilyHeadAsExisting, in.Cfg.Points.FamilyHeadPenaltyPct)
		return []model.ReferralRow{{
			LeadID: in.LeadID, EmployeeID: in.Converter.EmployeeID, ReferralType: in.ReferralType,
			Scenario: model.ScenarioSelfSourced, Points: model.NewPoints(p),
			Month: in.Month, ConfigHash: in.ConfigHash,
		}}
	}

	if !in.Cfg.Options.GateConverterIndependently || !in.Cfg.Options.GateReferrerIndependently {
		if !converterEligible || !referrerEligible {
			return nil
		}
	}

	var rows []model.ReferralRow
	if converterEligible || !in.Cfg.Options.GateConverterIndependently {
		if converterEligible {
			p := applyFamilyPenalty(pts.ConverterOnly, in.SameFamilyHeadAsExisting, in.Cfg.Points.FamilyHeadPenaltyPct)
			rows = append(rows, model.ReferralRow{
				LeadID: in.LeadID, EmployeeID: in.Converter.EmployeeID, ReferralType: in.ReferralType,
				Scenario: model.ScenarioConverterOnly, Points: model.NewPoints(p),
				Month: in.Month, ConfigHash: in.ConfigHash,
			})
		}
	}
	if referrerEligible || !in.Cfg.Options.GateReferrerIndependently {
		if referrerEligible {
			p := applyFamilyPenalty(pts.ReferrerCredit, in.SameFamilyHeadAsExisting, in.Cfg.Points.FamilyHeadPenaltyPct)
			rows = append(rows, model.ReferralRow{
				LeadID: in.LeadID, EmployeeID: in.Referrer.EmployeeID, ReferralType: in.ReferralType,
				Scenario: model.ScenarioReferrerCredit, Points: model.NewPoints(p),
				Month: in.Month, ConfigHash: in.ConfigHash,
			})
		}
	}
	return rows
}

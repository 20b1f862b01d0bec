/*
Package insurance implements the Insurance Scorer (C6): classifies each
policy as fresh or a renewal (with or without premium upsell), scores it
against the premium/renewal-proximity slabs weighted by tenure/category/
deductible/associate/cashback factors, then rolls the per-policy scores up
into a monthly per-RM row with payout-slab lookup and bonus projections.
*/
package insurance

import (
	"strings"

	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/model"
)

// isPortabilityPolicy reports whether policy_type or conversion_status
// flags this as a ported-in policy (spec.md §4.6 step 3).
func isPortabilityPolicy(p model.InsurancePolicy) bool {
	return strings.Contains(strings.ToLower(p.PolicyType), "portability") ||
		strings.Contains(strings.ToLower(p.ConversionStatus), "portability")
}

// isHealthOrPersonalAccident matches the Health and Group Personal
// Accident policy types called out in spec.md §4.6 step 3's data-quality
// branch.
func isHealthOrPersonalAccident(policyType string) bool {
	t := strings.ToLower(policyType)
	return strings.Contains(t, "health") || strings.Contains(t, "personal accident") || strings.Contains(t, "gpa")
}

// isRenewalBySubstring is the fallback leg of spec.md §4.6 step 3:
// ordinary (non-portability, non-health/PA) policies with no decisive
// signal are classified by keyword match on conversion_status/policy_type,
// falling back to renewal_date presence only when neither keyword appears.
func isRenewalBySubstring(p model.InsurancePolicy) bool {
	cs := strings.ToLower(p.ConversionStatus)
	pt := strings.ToLower(p.PolicyType)
	switch {
	case strings.Contains(cs, "renewal") || strings.Contains(pt, "renewal"):
		return true
	case strings.Contains(cs, "fresh") || strings.Contains(cs, "new") || strings.Contains(pt, "fresh") || strings.Contains(pt, "new"):
		return false
	default:
		return p.RenewalDate != nil
	}
}

// isRenewalPolicy decides the fresh/renewal split (spec.md §4.6 step 3): a
// portability policy with no renewal_date is reclassified to fresh
// regardless of what conversion_status says, a non-portability Health/GPA
// policy with no renewal_date still counts as a renewal (a data-quality
// gap these policy types are known to have), and everything else falls
// back to the conversion_status/policy_type keyword match.
func isRenewalPolicy(p model.InsurancePolicy) bool {
	switch {
	case isPortabilityPolicy(p):
		return p.RenewalDate != nil
	case isHealthOrPersonalAccident(p.PolicyType) && p.RenewalDate == nil:
		return true
	default:
		return isRenewalBySubstring(p)
	}
}

// classify applies the premium-upsell split on top of isRenewalPolicy's
// fresh/renewal decision (spec.md §4.6 step 3): a renewal with this year's
// premium exceeding last year's is upsell-eligible, everything else renews
// flat.
func classify(p model.InsurancePolicy) model.PolicyClassification {
	if !isRenewalPolicy(p) {
		return model.ClassFresh
	}
	if p.LastYearPremium.Ok && p.ThisYearPremium.Ok && p.ThisYearPremium.Value > p.LastYearPremium.Value {
		return model.ClassRenewalWithUpsell
	}
	return model.ClassRenewalWithoutUpsell
}

// ClassifyPolicy derives the classification, term length, days-to-renewal,
// and fresh-premium eligibility of a raw policy (spec.md §4.6 steps 1-4).
func ClassifyPolicy(p model.InsurancePolicy, month model.Month) model.DerivedPolicy {
	class := classify(p)

	termYears := 0
	if !p.PolicyStart.IsZero() && !p.PolicyEnd.IsZero() {
		days := p.PolicyEnd.Sub(p.PolicyStart).Hours() / 24
		termYears = int(days/365 + 0.5)
		if termYears < 1 {
			termYears = 1
		}
	}

	var daysToRenewal model.OptInt
	if p.RenewalDate != nil {
		d := int(p.RenewalDate.Sub(month.Start()).Hours() / 24)
		daysToRenewal = model.Int(d)
	}

	freshEligible := 0.0
	if class == model.ClassFresh && p.ThisYearPremium.Ok {
		freshEligible = p.ThisYearPremium.Value
	}

	return model.DerivedPolicy{
		Policy:               p,
		Classification:       class,
		DaysToRenewal:        daysToRenewal,
		TermYears:            termYears,
		FreshPremiumEligible: freshEligible,
		PeriodMonth:          month,
	}
}

func premiumPoints(premium float64, slabs []config.InsurancePremiumSlab) float64 {
	for _, s := range slabs {
		if premium < s.MinVal {
			continue
		}
		if s.MaxVal == nil || premium < *s.MaxVal {
			return s.Points
		}
	}
	if len(slabs) > 0 {
		return slabs[len(slabs)-1].Points
	}
	return 0
}

func renewalPoints(daysToRenewal model.OptInt, slabs []config.InsuranceRenewSlab) float64 {
	if !daysToRenewal.Ok {
		return 0
	}
	d := daysToRenewal.Value
	for _, s := range slabs {
		if s.MinDTR != nil && d < *s.MinDTR {
			continue
		}
		if s.MaxDTR == nil || d < *s.MaxDTR {
			return s.Points
		}
	}
	if len(slabs) > 0 {
		return slabs[len(slabs)-1].Points
	}
	return 0
}

func tenureWeight(years float64, slabs []config.TenureWeightSlab) float64 {
	for _, s := range slabs {
		if years < s.MinYears {
			continue
		}
		if s.MaxYears == nil || years < *s.MaxYears {
			return s.Weight
		}
	}
	return 1.0
}

func categoryWeight(policyType string, weights config.CategoryWeights) float64 {
	if w, ok := weights.ByCategory[policyType]; ok {
		return w
	}
	return 1.0
}

func isTermPolicy(policyType string) bool {
	return strings.Contains(strings.ToLower(policyType), "term")
}

func cashbackWeight(cashbackPct float64, term bool, cfg config.InsuranceConfig) float64 {
	tiers := cfg.NonTermCashbackTiers
	if term {
		tiers = cfg.TermCashbackTiers
	}
	for _, t := range tiers {
		if cashbackPct < t.MinPct {
			continue
		}
		if t.MaxPct == nil || cashbackPct < *t.MaxPct {
			return t.Weight
		}
	}
	return 1.0
}

// ScorePolicy computes one policy's base/upsell points and applies the
// composite weight factor (spec.md §4.6 steps 5-9). rmTenureYears and
// cashbackPct are supplied by the caller since neither lives on the raw
// InsurancePolicy record.
func ScorePolicy(d model.DerivedPolicy, rmTenureYears, cashbackPct float64, rm model.RM, cfg config.InsuranceConfig) model.PolicyScoreRow {
	base := 0.0
	upsell := 0.0

	switch d.Classification {
	case model.ClassFresh:
		base = premiumPoints(d.FreshPremiumEligible, cfg.PremiumSlabs)
	case model.ClassRenewalWithUpsell:
		base = renewalPoints(d.DaysToRenewal, cfg.RenewSlabs)
		if d.Policy.ThisYearPremium.Ok && d.Policy.LastYearPremium.Ok {
			delta := d.Policy.ThisYearPremium.Value - d.Policy.LastYearPremium.Value
			if delta > 0 {
				upsell = premiumPoints(delta, cfg.PremiumSlabs) / cfg.Options.UpsellDivisor
			}
		}
	case model.ClassRenewalWithoutUpsell:
		base = renewalPoints(d.DaysToRenewal, cfg.RenewSlabs)
	}

	weight := tenureWeight(rmTenureYears, cfg.TenureWeights)
	weight *= categoryWeight(d.Policy.PolicyType, cfg.CategoryWeights)
	if d.Policy.HasDeductible {
		weight *= cfg.DeductibleWeight
	}
	if d.Policy.DirectAssociate != "" {
		weight *= cfg.AssociateWeight
	}
	weight *= cashbackWeight(cashbackPct, isTermPolicy(d.Policy.PolicyType), cfg)

	total := (base + upsell) * weight

	return model.PolicyScoreRow{
		Derived:      d,
		BasePoints:   base,
		UpsellPoints: upsell,
		WeightFactor: weight,
		TotalPoints:  total,
		EmployeeID:   rm.EmployeeID,
		EmployeeName: rm.DisplayName,
	}
}

func payoutSlabFor(points float64, slabs []config.PayoutSlab) config.PayoutSlab {
	for _, s := range slabs {
		if points < s.MinPoints {
			continue
		}
		if s.MaxPoints == nil || points < *s.MaxPoints {
			return s
		}
	}
	if len(slabs) > 0 {
		return slabs[len(slabs)-1]
	}
	return config.PayoutSlab{}
}

// AggregateInput is everything the monthly Insurance aggregation needs
// for one RM/month (spec.md §4.6 steps 10-14).
type AggregateInput struct {
	RM            model.RM
	Month         model.Month
	Policies      []model.PolicyScoreRow
	PrevStreak    model.StreakState
	Quarter       QuarterAggregates
	Cfg           config.InsuranceConfig
	ConfigHash    string
	SchemaVersion int
}

// QuarterAggregates mirrors lumpsum.QuarterAggregates: cumulative premium
// figures the orchestrator supplies only on quarter/FY-end runs.
type QuarterAggregates struct {
	QuarterFreshPremium model.OptFloat
	QuarterPositivePolicies model.OptInt
	AnnualFreshPremium  model.OptFloat
	AnnualPositivePolicies model.OptInt
}

func bonusProjection(premium float64, positiveCount int, minPositive int, slabs []config.BonusProjectionSlab) (float64, bool) {
	if positiveCount < minPositive || len(slabs) == 0 {
		return 0, false
	}
	best, hit := 0.0, false
	for _, s := range slabs {
		if premium >= s.MinNP {
			best = s.BonusRupees
			hit = true
		}
	}
	return best, hit
}

// Aggregate rolls up the month's policy scores into one InsuranceRow
// (spec.md §4.6 steps 10-14) plus the RM's INS-bucket leader credit
// (LeaderCreditPct of points_total); a credit is returned for every RM.
func Aggregate(in AggregateInput) (model.InsuranceRow, model.LeaderCredit) {
	pointsPolicy, freshPremium, renewalPremium := 0.0, 0.0, 0.0
	for _, p := range in.Policies {
		pointsPolicy += p.TotalPoints
		if p.Derived.Classification == model.ClassFresh {
			freshPremium += p.Derived.FreshPremiumEligible
		}
		if p.Derived.Classification.IsRenewal() && p.Derived.Policy.ThisYearPremium.Ok {
			renewalPremium += p.Derived.Policy.ThisYearPremium.Value
		}
	}

	// Monthly streak-bonuses (spec.md §4.6 step 10): a flat bonus every
	// month fresh/port premium clears the threshold, a one-time hat-trick
	// bonus on the 3rd consecutive qualifying month, and an extra bonus per
	// qualifying month beyond that.
	streak := in.PrevStreak
	pointsBonus := 0.0
	if in.Cfg.Options.ApplyStreakBonus {
		if freshPremium >= in.Cfg.Options.StreakPremiumThreshold {
			streak.PositiveMonths++
			pointsBonus += in.Cfg.Options.StreakMonthlyBonus
			if streak.PositiveMonths >= 3 && !streak.HattrickPaid {
				pointsBonus += in.Cfg.Options.HattrickBonus
				streak.HattrickPaid = true
			} else if streak.PositiveMonths > 3 {
				pointsBonus += in.Cfg.Options.PostHattrickBonus
			}
		} else {
			streak = model.StreakState{}
		}
	}
	totalPoints := pointsPolicy + pointsBonus

	slab := payoutSlabFor(totalPoints, in.Cfg.PayoutSlabs)
	payout := model.NewRupees(freshPremium).MulFloat(slab.FreshPct / 100.0).
		Add(model.NewRupees(renewalPremium).MulFloat(slab.RenewPct / 100.0)).
		Add(model.NewRupees(slab.BonusRupees))

	row := model.InsuranceRow{
		OutputHeader: model.OutputHeader{
			EmployeeID:    in.RM.EmployeeID,
			EmployeeName:  in.RM.DisplayName,
			Month:         in.Month,
			IsActive:      in.RM.IsActive,
			UpdatedAt:     in.Month.Start(),
			ConfigHash:    in.ConfigHash,
			SchemaVersion: in.SchemaVersion,
			PointsTotal:   model.NewPoints(totalPoints),
		},
		PointsPolicy:         pointsPolicy,
		PointsBonus:          pointsBonus,
		FreshPremiumEligible: freshPremium,
		RenewalPremium:       renewalPremium,
		PayoutSlabLabel:      slab.Label,
		FreshPct:             slab.FreshPct,
		RenewPct:             slab.RenewPct,
		QtrBonusRupees:       model.NoFloat(),
		AnnualBonusRupees:    model.NoFloat(),
		PayoutAmount:         payout,
		Policies:             in.Policies,
	}

	if in.Month.IsQuarterEnd(model.FYApril) {
		if p, ok := in.Quarter.QuarterFreshPremium.Value, in.Quarter.QuarterFreshPremium.Ok; ok {
			if bonus, hit := bonusProjection(p, in.Quarter.QuarterPositivePolicies.OrZero(), in.Cfg.QtrBonusMinPositivePolicies, in.Cfg.QtrBonusSlabs); hit {
				row.QtrBonusRupees = model.Float(bonus)
			}
		}
	}
	if in.Month.IsFYEnd(model.FYApril) {
		if p, ok := in.Quarter.AnnualFreshPremium.Value, in.Quarter.AnnualFreshPremium.Ok; ok {
			if bonus, hit := bonusProjection(p, in.Quarter.AnnualPositivePolicies.OrZero(), in.Cfg.AnnualBonusMinPositivePolicies, in.Cfg.AnnualBonusSlabs); hit {
				row.AnnualBonusRupees = model.Float(bonus)
			}
		}
	}

	credit := model.LeaderCredit{
		Source:         in.RM.EmployeeID,
		PeriodMonth:    in.Month,
		Bucket:         model.BucketInsurance,
		ExpectedCredit: model.NewPoints(totalPoints * in.Cfg.Options.LeaderCreditPct),
	}

	return row, credit
}

/*
Package leaderboard implements the Leaderboard Aggregator (C8): it joins
the four scorers' monthly output for one RM into the canonical public
row, applies the inactivity gate to payout eligibility, folds in approved
manual adjustments, and reconciles leader-credit roll-ups.
*/
package leaderboard

import (
	"github.com/vilakshan/pli-leaderboard/identity"
	"github.com/vilakshan/pli-leaderboard/model"
)

// MFLeaderCreditPct is the flat 20% roll-up rate for the MF profile bucket
// (spec.md §4.8 step 5, GLOSSARY "Leader credit"). Unlike the Insurance
// bucket, the MF bucket has no scorer of its own to own this knob, so it
// lives here next to the aggregator that owns the public row the roll-up
// is computed from.
const MFLeaderCreditPct = 0.20

// RowInputs is everything the aggregator has for one (employee_id, month)
// across the four scorers. Any of the scorer rows may be absent (nil
// pointer) when that RM had no activity in that metric this month.
type RowInputs struct {
	RM          model.RM
	Month       model.Month
	Lumpsum     *model.LumpsumRow
	Sip         *model.SipRow
	Insurance   *model.InsuranceRow
	Referrals   []model.ReferralRow
	Adjustments []model.Adjustment // only APPROVED rows are folded in
}

// Aggregate builds the canonical PublicRow for one RM/month (spec.md
// §4.9).
func Aggregate(in RowInputs) model.PublicRow {
	growthPct, rate := 0.0, 0.0
	if in.Lumpsum != nil {
		growthPct = in.Lumpsum.GrowthPct
		rate = in.Lumpsum.Rate
	}

	// mf_lumpsum_points is the SIP scorer's lumpsum_points reflection, not
	// the raw Lumpsum row's own PointsTotal: the SIP scorer is authoritative
	// for this field (spec.md §4.8 step 2) — the raw Lumpsum output stays
	// in its own collection for audit purposes only.
	lumpsumPoints := model.ZeroPoints()
	sipPoints := model.ZeroPoints()
	netSip := model.ZeroRupees()
	aumStart := model.ZeroRupees()
	tier := ""
	gateApplied := false
	if in.Sip != nil {
		sipPoints = in.Sip.SipPoints
		lumpsumPoints = in.Sip.LumpsumPoints
		netSip = in.Sip.NetSip
		aumStart = in.Sip.AumStart
		tier = in.Sip.Tier
		gateApplied = in.Sip.GateApplied
	}

	insPoints := model.ZeroPoints()
	freshPremium := 0.0
	payoutSlab := ""
	if in.Insurance != nil {
		insPoints = in.Insurance.PointsTotal
		freshPremium = in.Insurance.FreshPremiumEligible
		payoutSlab = in.Insurance.PayoutSlabLabel
	}

	refPoints := model.ZeroPoints()
	for _, r := range in.Referrals {
		refPoints = refPoints.Add(r.Points)
	}

	mfPoints := lumpsumPoints.Add(sipPoints)
	totalPublic := mfPoints.Add(insPoints).Add(refPoints)

	adjTotal := model.ZeroPoints()
	var approved []model.Adjustment
	for _, a := range in.Adjustments {
		if a.Status != model.AdjustmentApproved {
			continue
		}
		approved = append(approved, a)
		adjTotal = adjTotal.Add(model.NewPoints(a.Value))
	}

	eligible, gateReason := identity.EligibleForMonth(in.RM, in.Month)

	configHash, schemaVersion := firstConfigMeta(in)

	return model.PublicRow{
		EmployeeID:         in.RM.EmployeeID,
		EmployeeName:       in.RM.DisplayName,
		PeriodMonth:        in.Month,
		TotalPointsPublic:  totalPublic,
		MFPoints:           mfPoints,
		MFSipPoints:        sipPoints,
		MFLumpsumPoints:    lumpsumPoints,
		InsPoints:          insPoints,
		RefPoints:          refPoints,
		NetSip:             netSip,
		AumStart:           aumStart,
		InsFreshPremium:    freshPremium,
		PayoutEligible:     eligible,
		IsActive:           in.RM.IsActive,
		Profile:            in.RM.Profile,
		Adjustments:        approved,
		AdjTotal:           adjTotal,
		TotalPointsFinal:   totalPublic.Add(adjTotal),
		SchemaVersion:      schemaVersion,
		ConfigHash:         configHash,
		UpdatedAt:          in.Month.Start(),
		AuditSummary: model.PublicAuditSummary{
			LumpsumGrowthPct: growthPct,
			LumpsumRate:      rate,
			SipTier:          tier,
			InsPayoutSlab:    payoutSlab,
			GateApplied:      gateApplied || !eligible && gateReason != "",
		},
	}
}

func firstConfigMeta(in RowInputs) (string, int) {
	if in.Lumpsum != nil {
		return in.Lumpsum.ConfigHash, in.Lumpsum.SchemaVersion
	}
	if in.Sip != nil {
		return in.Sip.ConfigHash, in.Sip.SchemaVersion
	}
	if in.Insurance != nil {
		return in.Insurance.ConfigHash, in.Insurance.SchemaVersion
	}
	return "", 0
}

// BuildMFLeaderCredit computes the MF-bucket leader-credit row for one
// RM/month from the already-aggregated public row (spec.md §4.8 step 5:
// "split each RM's base total by bucket (INS vs MF-profile)"). Mirrors
// insurance.Aggregate's INS-bucket credit, which is built inside the
// Insurance scorer itself since that scorer owns the INS total; the MF
// total only exists after this package joins the SIP and Lumpsum rows, so
// the MF-bucket credit is built here instead.
func BuildMFLeaderCredit(rm model.RM, month model.Month, mfPoints model.Points) model.LeaderCredit {
	return model.LeaderCredit{
		Source:         rm.EmployeeID,
		PeriodMonth:    month,
		Bucket:         model.BucketMutualFund,
		ExpectedCredit: mfPoints.MulFloat(MFLeaderCreditPct),
	}
}

// ReconcileLeaderCredits marks each credit Reconciled when actual, the
// referrer's observed MF point total for the period, covers at least the
// ExpectedCredit (spec.md §4.8 step 6).
func ReconcileLeaderCredits(credits []model.LeaderCredit, actualByLeader map[model.EntityID]model.Points) []model.LeaderCredit {
	out := make([]model.LeaderCredit, len(credits))
	for i, c := range credits {
		actual, ok := actualByLeader[c.Source]
		if !ok {
			actual = model.ZeroPoints()
		}
		c.CreditedAmount = actual.Min(c.ExpectedCredit)
		if actual.GreaterOrEqual(c.ExpectedCredit) {
			c.CreditedAmount = c.ExpectedCredit
		}
		c.Reconciled = actual.GreaterOrEqual(c.ExpectedCredit)
		out[i] = c
	}
	return out
}

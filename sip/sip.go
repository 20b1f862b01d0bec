/*
Package sip implements the SIP Scorer (C5): it expands raw SIP/SWP
documents into eligible effective rows, nets registrations against
cancellations (and, optionally, SWP activity), and derives an incentive
point total gated by the RM's concurrent Lumpsum performance.
*/
package sip

import (
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/model"
)

// Ingest expands a raw SIP/SWP document into its eligible effective rows
// (spec.md §4.5 step 1): each fraction scores independently, filtered to
// window and to a reconciliation status that is Eligible(), and dated by
// its latest APPROVED validation inside the window.
func Ingest(tx model.SipTransaction, win model.Window) []model.EffectiveSipRow {
	var out []model.EffectiveSipRow
	if len(tx.Fractions) == 0 {
		if !tx.ReconciliationStatus.Eligible() {
			return nil
		}
		execDate, ok := model.LatestApprovedWithin(tx.Validations, win)
		if !ok {
			return nil
		}
		return []model.EffectiveSipRow{{
			RMName: tx.RMName, ExecDate: execDate, Type: tx.TransactionType,
			For: tx.TransactionFor, Amount: tx.Amount, SchemeName: tx.SchemeName,
		}}
	}
	for _, f := range tx.Fractions {
		if !f.ReconciliationStatus.Eligible() {
			continue
		}
		execDate, ok := model.LatestApprovedWithin(f.Validations, win)
		if !ok {
			continue
		}
		out = append(out, model.EffectiveSipRow{
			RMName: tx.RMName, ExecDate: execDate, Type: tx.TransactionType,
			For: tx.TransactionFor, Amount: f.Amount, SchemeName: tx.SchemeName,
		})
	}
	return out
}

// LumpsumGateInput is the slice of a concurrent Lumpsum row the SIP
// scorer needs to evaluate the cross-metric gate (spec.md §4.5 step 6).
type LumpsumGateInput struct {
	Available   bool // false when the Lumpsum scorer has no row for this RM/month yet
	GrowthPct   float64
	NetPurchase model.Rupees
	Rate        float64 // Lumpsum scorer's slab rate for this month (spec.md §4.5 step 9)
}

type ScoreInput struct {
	RM            model.RM
	Month         model.Month
	EffectiveRows []model.EffectiveSipRow
	AumStart      model.Rupees
	AumFound      bool
	PrevPositiveStreak int
	Gate          LumpsumGateInput
	Cfg           config.SipConfig
	ConfigHash    string
	SchemaVersion int
}

func tierFor(netSip float64, thresholds []config.TierThreshold) (string, string) {
	sorted := config.SortTierThresholdsDesc(thresholds)
	for _, t := range sorted {
		if netSip >= t.MinValue {
			return t.Tier, t.Label
		}
	}
	if len(sorted) > 0 {
		return sorted[len(sorted)-1].Tier, sorted[len(sorted)-1].Label
	}
	return "T0", ""
}

// ladderBps walks a descending-by-Val slab table, first-match-wins, and
// returns its Bps, or 0 if value clears none of the thresholds.
func ladderBps(value float64, slabs []config.ValBpsSlab) float64 {
	sorted := config.SortValBpsDesc(slabs)
	for _, s := range sorted {
		if value >= s.Val {
			return s.Bps
		}
	}
	return 0
}

func sipPenaltyBps(loss float64, slabs []config.SipPenaltySlab) float64 {
	sorted := config.SortSipPenaltyDesc(slabs)
	for i := len(sorted) - 1; i >= 0; i-- {
		if loss <= sorted[i].MaxLoss {
			return sorted[i].RateBps
		}
	}
	if len(sorted) > 0 {
		return sorted[0].RateBps
	}
	return 0
}

// Score computes one SIP output row and the positive-streak count to pass
// into next month's run (spec.md §4.5).
func Score(in ScoreInput) (model.SipRow, int) {
	flags := model.ScoringFlags{}
	if !in.AumFound {
		flags.MissingAUM = true
	}

	var grossSIP, cancelSIP, swpReg, swpCanc float64
	var regCount int
	for _, r := range in.EffectiveRows {
		switch {
		case r.Type == model.SipTx && r.For == model.SipRegistration:
			grossSIP += r.Amount
			regCount++
		case r.Type == model.SipTx && r.For == model.SipCancellation:
			cancelSIP += r.Amount
		case r.Type == model.SwpTx && r.For == model.SipRegistration:
			swpReg += r.Amount
		case r.Type == model.SwpTx && r.For == model.SipCancellation:
			swpCanc += r.Amount
		}
	}

	netSipCore := model.NewRupees(grossSIP - cancelSIP)
	swpRegWeighted := model.NewRupees(swpReg).MulFloat(in.Cfg.Options.SwpWeights.Registration)
	swpCancelWeighted := model.NewRupees(swpCanc).MulFloat(in.Cfg.Options.SwpWeights.Cancellation)

	netSip := netSipCore
	if in.Cfg.Options.IncludeSWP {
		netSip = netSip.Add(swpRegWeighted).Add(swpCancelWeighted)
	}

	avgSIP := model.ZeroRupees()
	if regCount > 0 {
		avgSIP = model.NewRupees(grossSIP / float64(regCount))
	}

	sipAumRatio := 0.0
	if in.AumStart.IsPositive() {
		sipAumRatio = netSip.Float64() / in.AumStart.Float64()
	}

	positiveStreak := in.PrevPositiveStreak
	if netSip.IsPositive() {
		positiveStreak++
	} else {
		positiveStreak = 0
	}

	gateApplied := false
	if in.Gate.Available && in.Gate.GrowthPct <= in.Cfg.Options.LsGatePct && in.Gate.NetPurchase.Abs().Float64() >= in.Cfg.Options.LsGateMinRupees {
		gateApplied = true
	}

	// Horizon scaling (spec.md §4.5 step 8): one month's net SIP is assumed
	// to persist as AUM and earns trail over horizon_months.
	horizon := float64(in.Cfg.Options.HorizonMonths)

	var rateBps float64
	if netSip.IsNegative() {
		penaltyBps := 0.0
		if in.Cfg.Penalty.Enable {
			penaltyBps = sipPenaltyBps(netSip.Abs().Float64(), in.Cfg.Penalty.Slabs)
		}
		rateBps = -penaltyBps
	} else {
		baseBps := in.Cfg.Coefficients.SipBaseBps
		if baseBps == 0 && horizon > 0 {
			baseBps = in.Cfg.Coefficients.SipPointsPerRupee * 10000.0 / horizon
		}
		bonusBps := ladderBps(sipAumRatio, in.Cfg.BonusSlabs.SipToAUM) +
			ladderBps(netSip.Float64(), in.Cfg.BonusSlabs.Absolute) +
			ladderBps(avgSIP.Float64(), in.Cfg.BonusSlabs.AvgTicket) +
			ladderBps(float64(positiveStreak), in.Cfg.BonusSlabs.Consistency)
		rateBps = baseBps + bonusBps
	}

	sipPoints := netSip.MulFloat(rateBps / 10000.0 * horizon)

	// Gate (spec.md §4.5 step 6): positive SIP points are zeroed, negative
	// (penalty) points survive.
	if gateApplied && sipPoints.IsPositive() {
		sipPoints = model.ZeroPoints()
	}

	// Lumpsum-points reflection (spec.md §4.5 step 9): independent of the
	// gate, always derived from the concurrent Lumpsum row's slab rate,
	// floored so a single bad month can't sink the combined total further
	// than -5,000.
	lumpsumPoints := model.ZeroPoints()
	if in.Gate.Available {
		lp := in.Gate.NetPurchase.MulFloat(in.Gate.Rate)
		if lp.Float64() < -5000 {
			lp = model.NewRupees(-5000)
		}
		lumpsumPoints = model.NewPoints(lp.Float64())
	}

	// Tier (spec.md §4.5 step 11): keyed on total_points, not net_sip, so a
	// gated-to-zero month reports T0 rather than the tier its raw net SIP
	// would otherwise clear.
	totalPoints := sipPoints.Add(lumpsumPoints)
	tier, _ := tierFor(totalPoints.Float64(), in.Cfg.TierThresholds)
	monthlyTrailRate := in.Cfg.TierFactors[tier]
	annualTrailRate := monthlyTrailRate * 12
	trailAmount := in.AumStart.MulFloat(monthlyTrailRate)

	row := model.SipRow{
		OutputHeader: model.OutputHeader{
			EmployeeID:    in.RM.EmployeeID,
			EmployeeName:  in.RM.DisplayName,
			Month:         in.Month,
			IsActive:      in.RM.IsActive,
			UpdatedAt:     in.Month.Start(),
			ConfigHash:    in.ConfigHash,
			SchemaVersion: in.SchemaVersion,
			Flags:         flags,
		},
		GrossSIP:          model.NewRupees(grossSIP),
		CancelSIP:         model.NewRupees(cancelSIP),
		NetSipCore:        netSipCore,
		AvgSIP:            avgSIP,
		SwpRegWeighted:    swpRegWeighted,
		SwpCancelWeighted: swpCancelWeighted,
		NetSip:            netSip,
		AumStart:          in.AumStart,
		SipAumRatio:       sipAumRatio,
		PositiveStreak:    positiveStreak,
		GateApplied:       gateApplied,
		RateBps:           rateBps,
		SipPoints:         sipPoints,
		LumpsumPoints:     lumpsumPoints,
		Tier:              tier,
		MonthlyTrailRate:  monthlyTrailRate,
		AnnualTrailRate:   annualTrailRate,
		TrailAmountMonth:  trailAmount,
	}
	row.PointsTotal = totalPoints
	row.VPPointsCredit = totalPoints.MulFloat(0.20)

	return row, positiveStreak
}

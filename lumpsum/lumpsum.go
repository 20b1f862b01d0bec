/*
Package lumpsum implements the Lumpsum Scorer (C4): classifies a month's
mutual-fund purchase/redemption/switch/COB transactions into weighted
buckets, derives a growth-rate incentive with meeting-count and penalty
adjustments, and layers on streak and quarterly/annual bonus projections.
*/
package lumpsum

import (
	"strings"

	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/model"
)

// QuarterAggregates carries the cross-month totals the orchestrator
// supplies only on quarter-end/FY-end runs, since the quarterly/annual
// bonus projection (spec.md §4.4 steps 10-11) looks at cumulative net
// purchase across the whole period rather than a single month.
type QuarterAggregates struct {
	QuarterNetPurchase   model.OptFloat
	QuarterPositiveMonths model.OptInt
	AnnualNetPurchase    model.OptFloat
	AnnualPositiveMonths  model.OptInt
}

// ScoreInput is everything the Lumpsum scorer needs for one
// (employee_id, month) row.
type ScoreInput struct {
	RM            model.RM
	Month         model.Month
	Transactions  []model.LumpsumTransaction
	AumStart      model.Rupees
	AumFound      bool
	MeetingCount  int
	PrevStreak    model.StreakState
	Quarter       QuarterAggregates
	Cfg           config.LumpsumConfig
	ConfigHash    string
	SchemaVersion int
}

func isBlacklisted(subCategory string, terms []string) bool {
	sc := strings.ToLower(subCategory)
	for _, t := range terms {
		if strings.Contains(sc, strings.ToLower(t)) {
			return true
		}
	}
	return false
}

// schemeWeight returns the first matching scheme_rules weight_pct for the
// transaction's bucket, or ok=false when no rule applies (spec.md §4.4
// step 2c: "ordered, first-match-wins").
func schemeWeight(tx model.LumpsumTransaction, rules []config.SchemeRule) (float64, bool) {
	for _, r := range rules {
		if !ruleApplies(r, tx.Type) {
			continue
		}
		name := strings.ToLower(tx.SchemeName)
		kw := strings.ToLower(r.Keyword)
		matched := false
		switch r.Match {
		case config.MatchExact:
			matched = name == kw
		case config.MatchStartsWith:
			matched = strings.HasPrefix(name, kw)
		default: // contains
			matched = strings.Contains(name, kw)
		}
		if matched {
			return r.WeightPct, true
		}
	}
	return 0, false
}

func ruleApplies(r config.SchemeRule, t model.LumpsumTxType) bool {
	switch t {
	case model.TxPurchase:
		return r.ApplyTo.Purchase
	case model.TxRedemption:
		return r.ApplyTo.Redemption
	case model.TxSwitchIn:
		return r.ApplyTo.SwitchIn
	case model.TxSwitchOut:
		return r.ApplyTo.SwitchOut
	case model.TxCOBIn:
		return r.ApplyTo.COBIn
	case model.TxCOBOut:
		return r.ApplyTo.COBOut
	}
	return false
}

// bucketWeightPct returns the default weight_pct (before any scheme-rule
// override) for a bucket, per spec.md §4.4 step 2d.
func bucketWeightPct(t model.LumpsumTxType, w config.LumpsumWeights) float64 {
	switch t {
	case model.TxCOBIn:
		return w.COBInPct
	case model.TxCOBOut:
		return w.COBOutPct
	case model.TxSwitchIn:
		return w.SwitchInPct
	case model.TxSwitchOut:
		return w.SwitchOutPct
	default: // Purchase, Redemption weight at par
		return 100.0
	}
}

func addToBucket(b *model.BucketSums, t model.LumpsumTxType, amount float64) {
	switch t {
	case model.TxPurchase:
		b.Purchase += amount
	case model.TxRedemption:
		b.Redemption += amount
	case model.TxSwitchIn:
		b.SwitchIn += amount
	case model.TxSwitchOut:
		b.SwitchOut += amount
	case model.TxCOBIn:
		b.COBIn += amount
	case model.TxCOBOut:
		b.COBOut += amount
	}
}

// rateForGrowth walks RateSlabs (ascending MinPct, last slab MaxPct==nil)
// first-match-wins (spec.md §4.4 step 4).
func rateForGrowth(growthPct float64, slabs []config.RateSlab) float64 {
	for _, s := range slabs {
		if growthPct < s.MinPct {
			continue
		}
		if s.MaxPct == nil || growthPct < *s.MaxPct {
			return s.Rate
		}
	}
	if len(slabs) > 0 {
		return slabs[len(slabs)-1].Rate
	}
	return 0
}

// multiplierForMeetings walks MeetingSlabs ascending by MaxCount
// (spec.md §4.4 step 6).
func multiplierForMeetings(count int, slabs []config.MeetingSlab) float64 {
	for _, s := range slabs {
		if s.MaxCount == nil || count <= *s.MaxCount {
			return s.Multiplier
		}
	}
	return 1.0
}

// penalty computes the penalty rupees when net purchase is negative,
// applying the configured min/max strategy between the capped trail-rate
// band and the flat band (spec.md §4.4 step 8).
func penalty(netPurchase model.Rupees, p config.LumpsumPenaltyConfig) model.Rupees {
	if !p.Enable || !netPurchase.IsNegative() {
		return model.ZeroRupees()
	}
	loss := netPurchase.Abs()
	band1 := loss.MulFloat(p.Band1TrailPct / 100.0)
	capped := model.NewRupees(p.Band1CapRupees)
	if band1.GreaterThan(capped) {
		band1 = capped
	}
	band2 := model.NewRupees(p.Band2Rupees)
	switch p.Strategy {
	case config.PenaltyStrategyMax:
		return band1.Max(band2)
	default:
		return band1.Min(band2)
	}
}

// bonusProjection walks a quarterly/annual bonus slab table in stored
// order and returns the last slab whose MinNP the net purchase clears —
// the highest such slab when the table is ascending by MinNP.
func bonusProjection(netPurchase float64, positiveMonths int, minPositive int, slabs []config.BonusProjectionSlab) (float64, bool) {
	if positiveMonths < minPositive || len(slabs) == 0 {
		return 0, false
	}
	best := 0.0
	hit := false
	for _, s := range slabs {
		if netPurchase >= s.MinNP {
			best = s.BonusRupees
			hit = true
		}
	}
	return best, hit
}

// Score computes one Lumpsum output row and the streak state to pass into
// next month's run (spec.md §4.4, §9 design note: streak state is an
// explicit return, never a package-level variable).
func Score(in ScoreInput) (model.LumpsumRow, model.StreakState) {
	flags := model.ScoringFlags{}
	if !in.AumFound {
		flags.MissingAUM = true
	}

	ignored := in.RM.EmployeeID == "" || in.RM.DisplayName == ""
	if ignored {
		flags.MissingDirectory = true
	}

	var raw, weighted model.BucketSums
	for _, tx := range in.Transactions {
		addToBucket(&raw, tx.Type, tx.Amount)

		weightPct := bucketWeightPct(tx.Type, in.Cfg.Weights)
		if override, ok := schemeWeight(tx, in.Cfg.SchemeRules); ok {
			weightPct = override
		}
		blacklisted := isBlacklisted(tx.SubCategory, in.Cfg.CategoryRules.BlacklistedTerms)
		if blacklisted {
			if tx.Type == model.TxPurchase && in.Cfg.CategoryRules.ZeroWeightPurchase {
				weightPct = 0
			}
			if tx.Type == model.TxSwitchIn && in.Cfg.CategoryRules.ZeroWeightSwitchIn {
				weightPct = 0
			}
		}
		addToBucket(&weighted, tx.Type, tx.Amount*weightPct/100.0)
	}

	additions := model.NewRupees(weighted.Purchase + weighted.SwitchIn + weighted.COBIn)
	subtractions := model.NewRupees(weighted.Redemption + weighted.SwitchOut + weighted.COBOut)
	netPurchase := additions.Sub(subtractions)

	debtBonus := model.ZeroRupees()
	if in.Cfg.Weights.DebtBonus.Enable && netPurchase.IsPositive() {
		debtBonus = netPurchase.MulFloat(in.Cfg.Weights.DebtBonus.BonusPct / 100.0)
	}

	growthPct := 0.0
	if in.AumStart.IsPositive() {
		growthPct = netPurchase.Float64() / in.AumStart.Float64() * 100.0
	}

	rate := rateForGrowth(growthPct, in.Cfg.RateSlabs)
	multiplier := multiplierForMeetings(in.MeetingCount, in.Cfg.MeetingSlabs)

	baseIncentive := netPurchase.Add(debtBonus).MulFloat(rate)
	incentiveAfterMultiplier := baseIncentive.MulFloat(multiplier)
	penaltyRupees := penalty(netPurchase, in.Cfg.Penalty)
	finalIncentive := incentiveAfterMultiplier.Sub(penaltyRupees)
	if finalIncentive.IsNegative() {
		finalIncentive = model.ZeroRupees()
	}

	streak := in.PrevStreak
	streakBonus := model.ZeroRupees()
	if in.Cfg.Options.ApplyStreakBonus {
		if growthPct > in.Cfg.Options.HattrickThresholdPct {
			streak.PositiveMonths++
		} else {
			streak = model.StreakState{}
		}
		if streak.PositiveMonths >= 3 && !streak.HattrickPaid {
			streakBonus = streakBonus.Add(model.NewRupees(in.Cfg.Options.HattrickBonus))
			streak.HattrickPaid = true
		}
		if streak.PositiveMonths >= 5 && !streak.FiveStreakPaid {
			streakBonus = streakBonus.Add(model.NewRupees(in.Cfg.Options.FiveStreakBonus))
			streak.FiveStreakPaid = true
		}
	}

	row := model.LumpsumRow{
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
		Raw:            raw,
		Weighted:       weighted,
		DebtBonus:      debtBonus,
		Additions:      additions,
		Subtractions:   subtractions,
		NetPurchase:    netPurchase,
		AumStart:       in.AumStart,
		GrowthPct:      growthPct,
		Rate:           rate,
		MeetingCount:   in.MeetingCount,
		Multiplier:     multiplier,
		BaseIncentive:  baseIncentive,
		FinalIncentive: finalIncentive.Add(streakBonus),
		PenaltyRupees:  penaltyRupees,
		Streak:         streak,
		StreakBonus:    streakBonus,
		QtrBonusRupees: model.NoFloat(),
		AnnualBonusRupees: model.NoFloat(),
	}
	row.PointsTotal = model.NewPoints(row.FinalIncentive.Float64())

	if in.Month.IsQuarterEnd(model.FYMode(in.Cfg.Options.FYMode)) {
		if qnp, ok := in.Quarter.QuarterNetPurchase.Value, in.Quarter.QuarterNetPurchase.Ok; ok {
			if bonus, hit := bonusProjection(qnp, in.Quarter.QuarterPositiveMonths.OrZero(), in.Cfg.QtrBonusMinPositive, in.Cfg.QtrBonusSlabs); hit {
				row.QtrBonusRupees = model.Float(bonus)
			}
		}
	}
	if in.Month.IsFYEnd(model.FYMode(in.Cfg.Options.FYMode)) {
		if anp, ok := in.Quarter.AnnualNetPurchase.Value, in.Quarter.AnnualNetPurchase.Ok; ok {
			if bonus, hit := bonusProjection(anp, in.Quarter.AnnualPositiveMonths.OrZero(), in.Cfg.AnnualBonusMinPositive, in.Cfg.AnnualBonusSlabs); hit {
				row.AnnualBonusRupees = model.Float(bonus)
			}
		}
	}

	return row, streak
}

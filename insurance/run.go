package insurance

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/identity"
	"github.com/vilakshan/pli-leaderboard/model"
)

// PolicySource is the raw policy extract for one month (store/sqlite in
// this repo).
type PolicySource interface {
	InsurancePoliciesForMonth(ctx context.Context, month model.Month) ([]model.InsurancePolicy, error)
}

// StreakStore threads hattrick/five-streak state across monthly runs.
type StreakStore interface {
	LoadStreak(ctx context.Context, metric, employeeID string) (model.StreakState, error)
	SaveStreak(ctx context.Context, metric, employeeID string, st model.StreakState) error
}

// RangeTotals supplies the cumulative figures the quarter/FY-end bonus
// projection steps need (spec.md §4.6 step 12).
type RangeTotals interface {
	InsuranceRangeTotals(ctx context.Context, employeeID model.EntityID, from, to model.Month) (freshPremium float64, positiveMonths int, err error)
}

type Audit interface {
	WriteInsurance(ctx context.Context, row model.InsuranceRow, mode config.AuditMode)
}

// Runner wires the Insurance Scorer (C6) to its collaborators.
type Runner struct {
	Directory identity.Directory
	Policies  PolicySource
	Streaks   StreakStore
	Totals    RangeTotals
	Config    *config.Store
	Audit     Audit
	Log       zerolog.Logger
}

func NewRunner(
	dir identity.Directory, policies PolicySource, streaks StreakStore, totals RangeTotals,
	cfgStore *config.Store, auditSvc Audit, log zerolog.Logger,
) *Runner {
	return &Runner{
		Directory: dir, Policies: policies, Streaks: streaks, Totals: totals,
		Config: cfgStore, Audit: auditSvc, Log: log.With().Str("component", "insurance").Logger(),
	}
}

// cashbackPct derives a policy's cashback-as-percent-of-premium figure
// from its referral-fee field (spec.md §4.6 step 9: "tiered by cashback%
// of premium"); a policy carrying no fee scores a 0% cashback tier.
func cashbackPct(p model.InsurancePolicy) float64 {
	if !p.ReferralFeeAmount.Ok || !p.ThisYearPremium.Ok || p.ThisYearPremium.Value <= 0 {
		return 0
	}
	return p.ReferralFeeAmount.Value / p.ThisYearPremium.Value * 100
}

// Run implements orchestrator.Scorers.RunInsurance's signature: it
// classifies every policy converted or renewed in month, scores each one
// against its processing RM, and rolls the per-policy scores up into one
// InsuranceRow plus a leader-credit share per RM (spec.md §4.6).
func (r *Runner) Run(ctx context.Context, month model.Month) ([]model.InsuranceRow, []model.LeaderCredit, error) {
	doc, err := r.Config.Insurance(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("insurance: load config: %w", err)
	}
	cfg := doc.Options
	hash := config.MustHash(cfg)

	resolver := identity.NewResolver(r.Directory, cfg.IgnoredRMs)

	policies, err := r.Policies.InsurancePoliciesForMonth(ctx, month)
	if err != nil {
		return nil, nil, fmt.Errorf("insurance: load policies: %w", err)
	}

	byRM := make(map[string][]model.InsurancePolicy)
	for _, p := range policies {
		byRM[p.ProcessingUser.Name] = append(byRM[p.ProcessingUser.Name], p)
	}

	rms, err := r.Directory.All(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("insurance: load rm directory: %w", err)
	}

	fyMode := model.FYMode(cfg.Options.FYMode)
	var rows []model.InsuranceRow
	var credits []model.LeaderCredit
	for _, rm := range rms {
		if resolver.IsIgnored(rm.DisplayName) {
			continue
		}

		var scored []model.PolicyScoreRow
		for _, p := range byRM[rm.DisplayName] {
			derived := ClassifyPolicy(p, month)
			scored = append(scored, ScorePolicy(derived, rm.TenureYears, cashbackPct(p), rm, cfg))
		}

		prevStreak, err := r.Streaks.LoadStreak(ctx, "insurance", string(rm.EmployeeID))
		if err != nil {
			return nil, nil, fmt.Errorf("insurance: load streak %q: %w", rm.EmployeeID, err)
		}

		var quarter QuarterAggregates
		if month.IsQuarterEnd(fyMode) {
			premium, pos, err := r.Totals.InsuranceRangeTotals(ctx, rm.EmployeeID, month.QuarterStart(fyMode), month)
			if err != nil {
				return nil, nil, fmt.Errorf("insurance: quarter totals %q: %w", rm.EmployeeID, err)
			}
			quarter.QuarterFreshPremium = model.Float(premium)
			quarter.QuarterPositivePolicies = model.Int(pos)
		}
		if month.IsFYEnd(fyMode) {
			premium, pos, err := r.Totals.InsuranceRangeTotals(ctx, rm.EmployeeID, month.FYStart(fyMode), month)
			if err != nil {
				return nil, nil, fmt.Errorf("insurance: annual totals %q: %w", rm.EmployeeID, err)
			}
			quarter.AnnualFreshPremium = model.Float(premium)
			quarter.AnnualPositivePolicies = model.Int(pos)
		}

		row, credit := Aggregate(AggregateInput{
			RM: rm, Month: month, Policies: scored, PrevStreak: prevStreak, Quarter: quarter,
			Cfg: cfg, ConfigHash: hash, SchemaVersion: doc.SchemaVersion,
		})

		newStreak := prevStreak
		if cfg.Options.ApplyStreakBonus {
			if row.FreshPremiumEligible >= cfg.Options.StreakPremiumThreshold {
				newStreak.PositiveMonths++
			} else {
				newStreak = model.StreakState{}
			}
			if newStreak.PositiveMonths >= 3 {
				newStreak.HattrickPaid = true
			}
			if newStreak.PositiveMonths >= 5 {
				newStreak.FiveStreakPaid = true
			}
		}
		if err := r.Streaks.SaveStreak(ctx, "insurance", string(rm.EmployeeID), newStreak); err != nil {
			return nil, nil, fmt.Errorf("insurance: save streak %q: %w", rm.EmployeeID, err)
		}

		r.Audit.WriteInsurance(ctx, row, cfg.Options.AuditMode)
		rows = append(rows, row)
		credits = append(credits, credit)
	}

	r.Log.Info().Str("month", month.String()).Int("rows", len(rows)).Msg("insurance scored")
	return rows, credits, nil
}

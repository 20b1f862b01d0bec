package lumpsum

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vilakshan/pli-leaderboard/aum"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/identity"
	"github.com/vilakshan/pli-leaderboard/model"
)

// TransactionSource is the raw mutual-fund transaction extract for one
// month (store/sqlite in this repo).
type TransactionSource interface {
	LumpsumTransactionsForMonth(ctx context.Context, month model.Month) ([]model.LumpsumTransaction, error)
}

// MeetingSource is the RM-wise meeting count extract for one month.
type MeetingSource interface {
	MeetingCountsForMonth(ctx context.Context, month model.Month) (map[string]int, error)
}

// StreakStore threads hattrick/five-streak state across monthly runs
// (spec.md §9 design note).
type StreakStore interface {
	LoadStreak(ctx context.Context, metric, employeeID string) (model.StreakState, error)
	SaveStreak(ctx context.Context, metric, employeeID string, st model.StreakState) error
}

// RangeTotals supplies the cumulative figures the quarter/FY-end bonus
// projection steps need (spec.md §4.4 step 10).
type RangeTotals interface {
	LumpsumRangeTotals(ctx context.Context, employeeID model.EntityID, from, to model.Month) (netPurchase float64, positiveMonths int, err error)
}

// Audit is what a completed row is reported to (audit.Service in this
// repo).
type Audit interface {
	WriteLumpsum(ctx context.Context, row model.LumpsumRow, mode config.AuditMode)
}

// Runner wires the Lumpsum Scorer (C4) to its collaborators and exposes
// Run in the exact shape orchestrator.Scorers.RunLumpsum expects.
type Runner struct {
	Directory    identity.Directory
	Aum          *aum.Lookup
	Transactions TransactionSource
	Meetings     MeetingSource
	Streaks      StreakStore
	Totals       RangeTotals
	Config       *config.Store
	Audit        Audit
	Log          zerolog.Logger
}

func NewRunner(
	dir identity.Directory, aumLookup *aum.Lookup, tx TransactionSource, meetings MeetingSource,
	streaks StreakStore, totals RangeTotals, cfgStore *config.Store, auditSvc Audit, log zerolog.Logger,
) *Runner {
	return &Runner{
		Directory: dir, Aum: aumLookup, Transactions: tx, Meetings: meetings,
		Streaks: streaks, Totals: totals, Config: cfgStore, Audit: auditSvc,
		Log: log.With().Str("component", "lumpsum").Logger(),
	}
}

// Run scores every directory RM for month (spec.md §4.4): gathers the
// month's transactions and meeting counts, groups by RM name, and
// invokes Score once per RM with the streak state and quarter/FY
// aggregates threaded in from the store.
func (r *Runner) Run(ctx context.Context, month model.Month) ([]model.LumpsumRow, error) {
	doc, err := r.Config.Lumpsum(ctx)
	if err != nil {
		return nil, fmt.Errorf("lumpsum: load config: %w", err)
	}
	cfg := doc.Options
	hash := config.MustHash(cfg)
	cfg.SortSlabs()

	resolver := identity.NewResolver(r.Directory, cfg.IgnoredRMs)

	txs, err := r.Transactions.LumpsumTransactionsForMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("lumpsum: load transactions: %w", err)
	}
	win := model.ResolveWindow(month, model.RangeMode(cfg.Options.RangeMode), model.FYMode(cfg.Options.FYMode), nil)
	byRM := make(map[string][]model.LumpsumTransaction)
	for _, tx := range txs {
		if !win.Contains(tx.TransactionDate) {
			continue
		}
		byRM[tx.RMName] = append(byRM[tx.RMName], tx)
	}

	meetings, err := r.Meetings.MeetingCountsForMonth(ctx, month)
	if err != nil {
		return nil, fmt.Errorf("lumpsum: load meeting counts: %w", err)
	}

	rms, err := r.Directory.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("lumpsum: load rm directory: %w", err)
	}

	fyMode := model.FYMode(cfg.Options.FYMode)
	var out []model.LumpsumRow
	for _, rm := range rms {
		if resolver.IsIgnored(rm.DisplayName) {
			continue
		}
		rowTxs := byRM[rm.DisplayName]

		aumStart, aumFound, err := r.Aum.AumFor(ctx, month, rm.DisplayName)
		if err != nil {
			return nil, fmt.Errorf("lumpsum: aum lookup %q: %w", rm.DisplayName, err)
		}

		prevStreak, err := r.Streaks.LoadStreak(ctx, "lumpsum", string(rm.EmployeeID))
		if err != nil {
			return nil, fmt.Errorf("lumpsum: load streak %q: %w", rm.EmployeeID, err)
		}

		var quarter QuarterAggregates
		if month.IsQuarterEnd(fyMode) {
			np, pos, err := r.Totals.LumpsumRangeTotals(ctx, rm.EmployeeID, month.QuarterStart(fyMode), month)
			if err != nil {
				return nil, fmt.Errorf("lumpsum: quarter totals %q: %w", rm.EmployeeID, err)
			}
			quarter.QuarterNetPurchase = model.Float(np)
			quarter.QuarterPositiveMonths = model.Int(pos)
		}
		if month.IsFYEnd(fyMode) {
			np, pos, err := r.Totals.LumpsumRangeTotals(ctx, rm.EmployeeID, month.FYStart(fyMode), month)
			if err != nil {
				return nil, fmt.Errorf("lumpsum: annual totals %q: %w", rm.EmployeeID, err)
			}
			quarter.AnnualNetPurchase = model.Float(np)
			quarter.AnnualPositiveMonths = model.Int(pos)
		}

		row, streak := Score(ScoreInput{
			RM: rm, Month: month, Transactions: rowTxs, AumStart: aumStart, AumFound: aumFound,
			MeetingCount: meetings[rm.DisplayName], PrevStreak: prevStreak, Quarter: quarter,
			Cfg: cfg, ConfigHash: hash, SchemaVersion: doc.SchemaVersion,
		})

		if err := r.Streaks.SaveStreak(ctx, "lumpsum", string(rm.EmployeeID), streak); err != nil {
			return nil, fmt.Errorf("lumpsum: save streak %q: %w", rm.EmployeeID, err)
		}
		r.Audit.WriteLumpsum(ctx, row, cfg.Options.AuditMode)
		out = append(out, row)
	}

	r.Log.Info().Str("month", month.String()).Int("rows", len(out)).Msg("lumpsum scored")
	return out, nil
}

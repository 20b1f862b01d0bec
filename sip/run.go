package sip

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/vilakshan/pli-leaderboard/aum"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/identity"
	"github.com/vilakshan/pli-leaderboard/model"
)

// TransactionSource is the raw reconciled SIP/SWP extract (store/sqlite
// in this repo). Unlike Lumpsum's monthly batches, documents are returned
// unfiltered; Ingest applies the window per fraction's validation date.
type TransactionSource interface {
	SipTransactionsForWindow(ctx context.Context, win model.Window) ([]model.SipTransaction, error)
}

// StreakStore threads the positive-SIP-month streak used by the bonus
// ladder's consistency slab.
type StreakStore interface {
	LoadStreak(ctx context.Context, metric, employeeID string) (model.StreakState, error)
	SaveStreak(ctx context.Context, metric, employeeID string, st model.StreakState) error
}

type Audit interface {
	WriteSip(ctx context.Context, row model.SipRow, mode config.AuditMode)
}

// Runner wires the SIP Scorer (C5) to its collaborators.
type Runner struct {
	Directory    identity.Directory
	Aum          *aum.Lookup
	Transactions TransactionSource
	Streaks      StreakStore
	Config       *config.Store
	Audit        Audit
	Log          zerolog.Logger
}

func NewRunner(
	dir identity.Directory, aumLookup *aum.Lookup, tx TransactionSource, streaks StreakStore,
	cfgStore *config.Store, auditSvc Audit, log zerolog.Logger,
) *Runner {
	return &Runner{
		Directory: dir, Aum: aumLookup, Transactions: tx, Streaks: streaks,
		Config: cfgStore, Audit: auditSvc, Log: log.With().Str("component", "sip").Logger(),
	}
}

// Run implements orchestrator.Scorers.RunSip's signature: lumpsumByRM
// carries the concurrent Lumpsum row per RM so the cross-metric gate
// (spec.md §4.5 step 6) can be evaluated.
func (r *Runner) Run(ctx context.Context, month model.Month, lumpsumByRM map[model.EntityID]model.LumpsumRow) ([]model.SipRow, error) {
	doc, err := r.Config.Sip(ctx)
	if err != nil {
		return nil, fmt.Errorf("sip: load config: %w", err)
	}
	cfg := doc.Options
	hash := config.MustHash(cfg)

	resolver := identity.NewResolver(r.Directory, cfg.IgnoredRMs)

	win := model.ResolveWindow(month, model.RangeMode(cfg.Options.RangeMode), model.FYMode(cfg.Options.FYMode), nil)
	txs, err := r.Transactions.SipTransactionsForWindow(ctx, win)
	if err != nil {
		return nil, fmt.Errorf("sip: load transactions: %w", err)
	}

	byRM := make(map[string][]model.EffectiveSipRow)
	for _, tx := range txs {
		rows := Ingest(tx, win)
		if len(rows) == 0 {
			continue
		}
		byRM[tx.RMName] = append(byRM[tx.RMName], rows...)
	}

	rms, err := r.Directory.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("sip: load rm directory: %w", err)
	}

	var out []model.SipRow
	for _, rm := range rms {
		if resolver.IsIgnored(rm.DisplayName) {
			continue
		}
		effRows := byRM[rm.DisplayName]

		aumStart, aumFound, err := r.Aum.AumFor(ctx, month, rm.DisplayName)
		if err != nil {
			return nil, fmt.Errorf("sip: aum lookup %q: %w", rm.DisplayName, err)
		}

		prevStreak, err := r.Streaks.LoadStreak(ctx, "sip", string(rm.EmployeeID))
		if err != nil {
			return nil, fmt.Errorf("sip: load streak %q: %w", rm.EmployeeID, err)
		}

		gate := LumpsumGateInput{}
		if l, ok := lumpsumByRM[rm.EmployeeID]; ok {
			gate = LumpsumGateInput{Available: true, GrowthPct: l.GrowthPct, NetPurchase: l.NetPurchase, Rate: l.Rate}
		}

		row, positiveStreak := Score(ScoreInput{
			RM: rm, Month: month, EffectiveRows: effRows, AumStart: aumStart, AumFound: aumFound,
			PrevPositiveStreak: prevStreak.PositiveMonths, Gate: gate, Cfg: cfg,
			ConfigHash: hash, SchemaVersion: doc.SchemaVersion,
		})

		if err := r.Streaks.SaveStreak(ctx, "sip", string(rm.EmployeeID), model.StreakState{PositiveMonths: positiveStreak}); err != nil {
			return nil, fmt.Errorf("sip: save streak %q: %w", rm.EmployeeID, err)
		}
		r.Audit.WriteSip(ctx, row, cfg.Options.AuditMode)
		out = append(out, row)
	}

	r.Log.Info().Str("month", month.String()).Int("rows", len(out)).Msg("sip scored")
	return out, nil
}

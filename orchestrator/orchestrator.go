/*
Package orchestrator implements the Re-aggregation Orchestrator (C9): it
drives a re-score of one or more months end-to-end — Lumpsum and
Insurance first (since SIP's cross-metric gate and the leader-credit
roll-up both read their output), then SIP, then the Leaderboard
Aggregator — and upserts every row idempotently so a re-run for an
already-scored month never duplicates data.
*/
package orchestrator

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"

	"github.com/vilakshan/pli-leaderboard/leaderboard"
	"github.com/vilakshan/pli-leaderboard/metrics"
	"github.com/vilakshan/pli-leaderboard/model"
)

// Scorers is the set of per-metric run functions the orchestrator drives.
// Each one reads its own inputs (transactions, policies, referrals) for
// the month, scores every directory RM not on the metric's ignore list
// (inactive RMs included), and returns its rows; the orchestrator
// sequences the calls, persists the rows through Sink, and aggregates
// the result.
type Scorers struct {
	RunLumpsum   func(ctx context.Context, month model.Month) ([]model.LumpsumRow, error)
	RunInsurance func(ctx context.Context, month model.Month) ([]model.InsuranceRow, []model.LeaderCredit, error)
	RunSip       func(ctx context.Context, month model.Month, lumpsumByRM map[model.EntityID]model.LumpsumRow) ([]model.SipRow, error)
	RunReferral  func(ctx context.Context, month model.Month) ([]model.ReferralRow, error)
	LoadAdjustments func(ctx context.Context, month model.Month) (map[model.EntityID][]model.Adjustment, error)
	LoadRMs      func(ctx context.Context) ([]model.RM, error)
}

// Sink is where the orchestrator idempotently upserts every row it
// produces (store/sqlite in this repo): Upsert* calls replace any
// existing row for the same (employee_id, month) key rather than
// inserting a duplicate, which is what makes re-running a month safe.
type Sink interface {
	UpsertLumpsum(ctx context.Context, rows []model.LumpsumRow) error
	UpsertSip(ctx context.Context, rows []model.SipRow) error
	UpsertInsurance(ctx context.Context, rows []model.InsuranceRow) error
	UpsertReferral(ctx context.Context, rows []model.ReferralRow) error
	UpsertLeaderCredits(ctx context.Context, credits []model.LeaderCredit) error
	UpsertPublic(ctx context.Context, rows []model.PublicRow) error
}

type Orchestrator struct {
	scorers Scorers
	sink    Sink
	log     zerolog.Logger
	metrics *metrics.Registry
}

func New(scorers Scorers, sink Sink, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{scorers: scorers, sink: sink, log: log.With().Str("component", "orchestrator").Logger()}
}

// WithMetrics attaches a Registry so each scorer's run duration and row
// count are observed. Optional: an Orchestrator built without it just
// skips the observation.
func (o *Orchestrator) WithMetrics(reg *metrics.Registry) *Orchestrator {
	o.metrics = reg
	return o
}

// observe times fn, which returns the number of rows it produced, and
// labels the resulting duration and row count under metricName.
func (o *Orchestrator) observe(metricName string, fn func() (int, error)) error {
	start := time.Now()
	rows, err := fn()
	if o.metrics != nil {
		o.metrics.ScoreRunDuration.WithLabelValues(metricName).Observe(time.Since(start).Seconds())
		if err == nil {
			o.metrics.RowsWritten.WithLabelValues(metricName).Add(float64(rows))
		}
	}
	return err
}

// RunMonth re-scores a single month end-to-end (spec.md §4.9, Open
// Question #1 decided: Lumpsum+Insurance run before SIP so the
// cross-metric gate and leader-credit inputs are always current).
func (o *Orchestrator) RunMonth(ctx context.Context, month model.Month) error {
	o.log.Info().Str("month", month.String()).Msg("re-aggregation starting")

	var lumpsumRows []model.LumpsumRow
	if err := o.observe("lumpsum", func() (int, error) {
		var err error
		lumpsumRows, err = o.scorers.RunLumpsum(ctx, month)
		return len(lumpsumRows), err
	}); err != nil {
		return eris.Wrap(err, "lumpsum scorer")
	}
	if err := o.sink.UpsertLumpsum(ctx, lumpsumRows); err != nil {
		return eris.Wrap(err, "upsert lumpsum")
	}

	var insRows []model.InsuranceRow
	var credits []model.LeaderCredit
	if err := o.observe("insurance", func() (int, error) {
		var err error
		insRows, credits, err = o.scorers.RunInsurance(ctx, month)
		return len(insRows), err
	}); err != nil {
		return eris.Wrap(err, "insurance scorer")
	}
	if err := o.sink.UpsertInsurance(ctx, insRows); err != nil {
		return eris.Wrap(err, "upsert insurance")
	}

	lumpsumByRM := make(map[model.EntityID]model.LumpsumRow, len(lumpsumRows))
	for _, r := range lumpsumRows {
		lumpsumByRM[r.EmployeeID] = r
	}

	var sipRows []model.SipRow
	if err := o.observe("sip", func() (int, error) {
		var err error
		sipRows, err = o.scorers.RunSip(ctx, month, lumpsumByRM)
		return len(sipRows), err
	}); err != nil {
		return eris.Wrap(err, "sip scorer")
	}
	if err := o.sink.UpsertSip(ctx, sipRows); err != nil {
		return eris.Wrap(err, "upsert sip")
	}
	sipByRM := make(map[model.EntityID]model.SipRow, len(sipRows))
	for _, r := range sipRows {
		sipByRM[r.EmployeeID] = r
	}

	var refRows []model.ReferralRow
	if err := o.observe("referral", func() (int, error) {
		var err error
		refRows, err = o.scorers.RunReferral(ctx, month)
		return len(refRows), err
	}); err != nil {
		return eris.Wrap(err, "referral scorer")
	}
	if err := o.sink.UpsertReferral(ctx, refRows); err != nil {
		return eris.Wrap(err, "upsert referral")
	}
	refByRM := make(map[model.EntityID][]model.ReferralRow)
	for _, r := range refRows {
		refByRM[r.EmployeeID] = append(refByRM[r.EmployeeID], r)
	}

	insByRM := make(map[model.EntityID]model.InsuranceRow, len(insRows))
	for _, r := range insRows {
		insByRM[r.EmployeeID] = r
	}

	adjByRM, err := o.scorers.LoadAdjustments(ctx, month)
	if err != nil {
		return eris.Wrap(err, "load adjustments")
	}

	rms, err := o.scorers.LoadRMs(ctx)
	if err != nil {
		return eris.Wrap(err, "load RM directory")
	}

	public := make([]model.PublicRow, 0, len(rms))
	actualMF := make(map[model.EntityID]model.Points, len(rms))
	for _, rm := range rms {
		var lp *model.LumpsumRow
		if l, ok := lumpsumByRM[rm.EmployeeID]; ok {
			lp = &l
		}
		var sp *model.SipRow
		if s, ok := sipByRM[rm.EmployeeID]; ok {
			sp = &s
		}
		var ip *model.InsuranceRow
		if i, ok := insByRM[rm.EmployeeID]; ok {
			ip = &i
		}
		row := leaderboard.Aggregate(leaderboard.RowInputs{
			RM: rm, Month: month, Lumpsum: lp, Sip: sp, Insurance: ip,
			Referrals: refByRM[rm.EmployeeID], Adjustments: adjByRM[rm.EmployeeID],
		})
		public = append(public, row)
		actualMF[rm.EmployeeID] = row.MFPoints
		credits = append(credits, leaderboard.BuildMFLeaderCredit(rm, month, row.MFPoints))
	}

	credits = leaderboard.ReconcileLeaderCredits(credits, actualMF)
	if err := o.sink.UpsertLeaderCredits(ctx, credits); err != nil {
		return eris.Wrap(err, "upsert leader credits")
	}
	if err := o.sink.UpsertPublic(ctx, public); err != nil {
		return eris.Wrap(err, "upsert public")
	}

	o.log.Info().Str("month", month.String()).Int("rms", len(public)).Msg("re-aggregation complete")
	return nil
}

// RunRange re-scores every month in [from, to] inclusive, in chronological
// order (spec.md §4.12 "reaggregate --month=..." accepts a range).
func (o *Orchestrator) RunRange(ctx context.Context, from, to model.Month) error {
	for m := from; !m.After(to); m = m.Next() {
		if err := o.RunMonth(ctx, m); err != nil {
			return eris.Wrapf(err, "orchestrator: month %s", m)
		}
	}
	return nil
}

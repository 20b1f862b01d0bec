/*
Package audit implements the Audit Writer (C10): it serializes each
scorer's output into an audit trail record, compact or full depending on
the metric's configured audit_mode, and never lets a write failure block
the scoring run that produced it.
*/
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/model"
)

// Record is one row written to an audit_<metric> table (spec.md §6.1,
// §4.10).
type Record struct {
	Metric     config.Metric
	EmployeeID model.EntityID
	Month      model.Month
	Mode       config.AuditMode
	Payload    json.RawMessage
	WrittenAt  time.Time
}

// Writer persists audit records (store/sqlite in this repo).
type Writer interface {
	Write(ctx context.Context, rec Record) error
}

// Service is what the scorers call after producing each row. Write
// failures are logged, never returned — spec.md §4.10: "audit failure is
// observability, not correctness; it must never fail or delay the
// scoring run."
type Service struct {
	writer Writer
	log    zerolog.Logger
}

func NewService(writer Writer, log zerolog.Logger) *Service {
	return &Service{writer: writer, log: log.With().Str("component", "audit").Logger()}
}

// compactLumpsum is the audit_mode=compact projection of a LumpsumRow:
// enough to explain the incentive figure, not the full transaction trail.
type compactLumpsum struct {
	NetPurchase    float64 `json:"net_purchase"`
	GrowthPct      float64 `json:"growth_pct"`
	Rate           float64 `json:"rate"`
	Multiplier     float64 `json:"multiplier"`
	FinalIncentive float64 `json:"final_incentive"`
	ConfigHash     string  `json:"config_hash"`
}

func (s *Service) WriteLumpsum(ctx context.Context, row model.LumpsumRow, mode config.AuditMode) {
	var payload any
	if mode == config.AuditFull {
		payload = row
	} else {
		payload = compactLumpsum{
			NetPurchase: row.NetPurchase.Float64(), GrowthPct: row.GrowthPct, Rate: row.Rate,
			Multiplier: row.Multiplier, FinalIncentive: row.FinalIncentive.Float64(), ConfigHash: row.ConfigHash,
		}
	}
	s.write(ctx, config.MetricLumpsum, row.EmployeeID, row.Month, mode, payload)
}

type compactSip struct {
	NetSip      float64 `json:"net_sip"`
	Tier        string  `json:"tier"`
	RateBps     float64 `json:"rate_bps"`
	GateApplied bool    `json:"gate_applied"`
	ConfigHash  string  `json:"config_hash"`
}

func (s *Service) WriteSip(ctx context.Context, row model.SipRow, mode config.AuditMode) {
	var payload any
	if mode == config.AuditFull {
		payload = row
	} else {
		payload = compactSip{
			NetSip: row.NetSip.Float64(), Tier: row.Tier, RateBps: row.RateBps,
			GateApplied: row.GateApplied, ConfigHash: row.ConfigHash,
		}
	}
	s.write(ctx, config.MetricSip, row.EmployeeID, row.Month, mode, payload)
}

type compactInsurance struct {
	PointsTotal     float64 `json:"points_total"`
	PayoutSlabLabel string  `json:"payout_slab_label"`
	PayoutAmount    float64 `json:"payout_amount"`
	ConfigHash      string  `json:"config_hash"`
}

func (s *Service) WriteInsurance(ctx context.Context, row model.InsuranceRow, mode config.AuditMode) {
	var payload any
	if mode == config.AuditFull {
		payload = row
	} else {
		payload = compactInsurance{
			PointsTotal: row.PointsTotal.Float64(), PayoutSlabLabel: row.PayoutSlabLabel,
			PayoutAmount: row.PayoutAmount.Float64(), ConfigHash: row.ConfigHash,
		}
	}
	s.write(ctx, config.MetricInsurance, row.EmployeeID, row.Month, mode, payload)
}

func (s *Service) WriteReferral(ctx context.Context, row model.ReferralRow, mode config.AuditMode) {
	s.write(ctx, config.MetricReferral, row.EmployeeID, row.Month, mode, row)
}

func (s *Service) write(ctx context.Context, metric config.Metric, employeeID model.EntityID, month model.Month, mode config.AuditMode, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		s.log.Error().Err(err).Str("metric", string(metric)).Msg("audit payload marshal failed")
		return
	}
	rec := Record{Metric: metric, EmployeeID: employeeID, Month: month, Mode: mode, Payload: raw, WrittenAt: month.Start()}
	if err := s.writer.Write(ctx, rec); err != nil {
		s.log.Error().Err(err).Str("metric", string(metric)).Str("employee_id", string(employeeID)).Msg("audit write failed")
	}
}

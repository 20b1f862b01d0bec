/*
dto.go - request/response shapes for the leaderboard and admin config API

Keeps model.PublicRow (and the config payload types) off the wire
directly so storage-layer field renames don't silently reshape the API.
*/
package api

import (
	"encoding/json"
	"time"

	"github.com/vilakshan/pli-leaderboard/config"
	"github.com/vilakshan/pli-leaderboard/model"
)

// LeaderboardRowDTO is one ranked entry in GET /leaderboard.
type LeaderboardRowDTO struct {
	Rank              int               `json:"rank"`
	EmployeeID        string            `json:"employee_id"`
	EmployeeName      string            `json:"employee_name"`
	Month             string            `json:"month"`
	TotalPointsPublic float64           `json:"total_points_public"`
	TotalPointsFinal  float64           `json:"total_points_final"`
	MFPoints          float64           `json:"mf_points"`
	InsPoints         float64           `json:"ins_points"`
	RefPoints         float64           `json:"ref_points"`
	PayoutEligible    bool              `json:"payout_eligible"`
	IsActive          bool              `json:"is_active"`
	Profile           string            `json:"profile,omitempty"`
	Adjustments       []AdjustmentDTO   `json:"adjustments"`
	RupeeIncentive    RupeeIncentiveDTO `json:"rupee_incentive"`
}

// RupeeIncentiveDTO is the payout block a public row embeds. Amount is
// always zero: nothing in this repository converts points to rupees for
// the public row, and the points figures are authoritative.
type RupeeIncentiveDTO struct {
	Amount   float64 `json:"amount"`
	Eligible bool    `json:"eligible"`
}

// BreakdownDTO is the per-metric detail behind one public row.
type BreakdownDTO struct {
	EmployeeID   string              `json:"employee_id"`
	EmployeeName string              `json:"employee_name"`
	Month        string              `json:"month"`
	Lumpsum      *LumpsumDTO         `json:"lumpsum,omitempty"`
	Sip          *SipDTO             `json:"sip,omitempty"`
	Insurance    *InsuranceDTO       `json:"insurance,omitempty"`
	Referrals    []ReferralRowDTO    `json:"referrals"`
	Adjustments  []AdjustmentDTO     `json:"adjustments"`
	AuditSummary PublicAuditSummary  `json:"audit_summary"`
}

type PublicAuditSummary struct {
	LumpsumGrowthPct float64 `json:"lumpsum_growth_pct"`
	LumpsumRate      float64 `json:"lumpsum_rate"`
	SipTier          string  `json:"sip_tier"`
	InsPayoutSlab    string  `json:"ins_payout_slab"`
	GateApplied      bool    `json:"gate_applied"`
}

type LumpsumDTO struct {
	NetPurchase float64 `json:"net_purchase"`
	GrowthPct   float64 `json:"growth_pct"`
	Rate        float64 `json:"rate"`
	PointsTotal float64 `json:"points_total"`
}

type SipDTO struct {
	NetSip      float64 `json:"net_sip"`
	Tier        string  `json:"tier"`
	GateApplied bool    `json:"gate_applied"`
	SipPoints   float64 `json:"sip_points"`
	PointsTotal float64 `json:"points_total"`
}

type InsuranceDTO struct {
	FreshPremiumEligible float64 `json:"fresh_premium_eligible"`
	PayoutSlabLabel      string  `json:"payout_slab_label"`
	PointsTotal          float64 `json:"points_total"`
}

type ReferralRowDTO struct {
	LeadID   string  `json:"lead_id"`
	Scenario string  `json:"scenario"`
	Points   float64 `json:"points"`
}

type AdjustmentDTO struct {
	ID      string  `json:"id"`
	Reason  string  `json:"reason"`
	Value   float64 `json:"value"`
	Type    string  `json:"type"`
	Status  string  `json:"status"`
	ActedBy string  `json:"acted_by,omitempty"`
}

// GroupMemberDTO is one row of GET /leaderboard/team-view/members.
type GroupMemberDTO struct {
	EmployeeID        string  `json:"employee_id"`
	EmployeeName      string  `json:"employee_name"`
	TotalPointsPublic float64 `json:"total_points_public"`
	PayoutEligible    bool    `json:"payout_eligible"`
}

// GroupSummaryDTO is one row of GET /leaderboard/team-view.
type GroupSummaryDTO struct {
	GroupKey          string  `json:"group_key"`
	MemberCount       int     `json:"member_count"`
	TotalPointsPublic float64 `json:"total_points_public"`
}

// ErrorResponse is the envelope for every non-2xx JSON reply.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Details string            `json:"details,omitempty"`
	Fields  []FieldErrorDTO   `json:"errors,omitempty"`
}

type FieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ScorerConfigResponse backs GET /admin/scorer/:module.
type ScorerConfigResponse struct {
	Module          string `json:"module"`
	EffectiveConfig any    `json:"effective_config"`
	RawConfig       any    `json:"raw_config"`
	SchemaVersion   int    `json:"schema_version"`
	Version         int    `json:"version"`
	UpdatedAt       string `json:"updated_at"`
	UpdatedBy       string `json:"updated_by,omitempty"`
}

// ScorerPutRequest is the PUT /admin/scorer/:module body. The patch is
// kept as raw JSON and unmarshaled into the metric's typed payload by
// the handler, since each module has a distinct options shape.
type ScorerPutRequest struct {
	Reason string          `json:"reason" validate:"required"`
	Patch  json.RawMessage `json:"patch" validate:"required"`
}

// ReaggregateRequest is the POST .../reaggregate body; either Month or
// Months must be set (spec.md §6.3).
type ReaggregateRequest struct {
	Month  string   `json:"month,omitempty"`
	Months []string `json:"months,omitempty"`
}

// CreateAdjustmentRequest is the POST /admin/adjustments body (spec.md
// §3.8, §6.1 "Leaderboard_Adjustments ... written by admin API").
type CreateAdjustmentRequest struct {
	EmployeeID string  `json:"employee_id" validate:"required"`
	Month      string  `json:"month" validate:"required"`
	Reason     string  `json:"reason" validate:"required"`
	Value      float64 `json:"value" validate:"required"`
	Type       string  `json:"adjustment_type" validate:"required,oneof=Points Rupees"`
}

// SetAdjustmentStatusRequest is the POST /admin/adjustments/{id}/status body.
type SetAdjustmentStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=APPROVED REJECTED"`
}

// AuditEntryDTO is one row of GET /admin/scorer/:module/audit.
type AuditEntryDTO struct {
	Version      int    `json:"version"`
	ArchivedAt   string `json:"archived_at"`
	ReplacedBy   int    `json:"replaced_by"`
	ChangeReason string `json:"change_reason"`
}

func toAuditEntryDTO(e config.ArchiveEntry) AuditEntryDTO {
	return AuditEntryDTO{
		Version:      e.Version,
		ArchivedAt:   e.ArchivedAt.Format(time.RFC3339),
		ReplacedBy:   e.ReplacedBy,
		ChangeReason: e.ChangeReason,
	}
}

func toAdjustmentDTO(a model.Adjustment) AdjustmentDTO {
	return AdjustmentDTO{
		ID: a.ID, Reason: a.Reason, Value: a.Value,
		Type: string(a.Type), Status: string(a.Status), ActedBy: a.ActedBy,
	}
}

func toAdjustmentDTOs(as []model.Adjustment) []AdjustmentDTO {
	out := make([]AdjustmentDTO, len(as))
	for i, a := range as {
		out[i] = toAdjustmentDTO(a)
	}
	return out
}

func toLeaderboardRowDTO(rank int, row model.PublicRow) LeaderboardRowDTO {
	return LeaderboardRowDTO{
		Rank: rank, EmployeeID: string(row.EmployeeID), EmployeeName: row.EmployeeName,
		Month: row.PeriodMonth.String(),
		TotalPointsPublic: row.TotalPointsPublic.Float64(), TotalPointsFinal: row.TotalPointsFinal.Float64(),
		MFPoints: row.MFPoints.Float64(), InsPoints: row.InsPoints.Float64(), RefPoints: row.RefPoints.Float64(),
		PayoutEligible: row.PayoutEligible, IsActive: row.IsActive, Profile: row.Profile,
		Adjustments: toAdjustmentDTOs(row.Adjustments),
		RupeeIncentive: RupeeIncentiveDTO{Eligible: row.PayoutEligible},
	}
}

func toPublicAuditSummaryDTO(s model.PublicAuditSummary) PublicAuditSummary {
	return PublicAuditSummary{
		LumpsumGrowthPct: s.LumpsumGrowthPct, LumpsumRate: s.LumpsumRate,
		SipTier: s.SipTier, InsPayoutSlab: s.InsPayoutSlab, GateApplied: s.GateApplied,
	}
}

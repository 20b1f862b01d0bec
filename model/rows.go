package model

import "time"

// OutputHeader carries the fields every per-metric output row shares
// (spec.md §3.5).
type OutputHeader struct {
	EmployeeID    EntityID
	EmployeeName  string
	Month         Month
	PointsTotal   Points
	IsActive      bool
	PayoutEligible bool
	UpdatedAt     time.Time
	ConfigHash    string
	SchemaVersion int
	Flags         ScoringFlags
}

// BucketSums is the raw (un-weighted) and weighted sums per classification
// bucket, used by both Lumpsum scoring and its audit trail (spec.md §4.10).
type BucketSums struct {
	Purchase   float64
	Redemption float64
	SwitchIn   float64
	SwitchOut  float64
	COBIn      float64
	COBOut     float64
}

// StreakState is threaded explicitly between monthly runs rather than held
// in a package-level map (spec.md §9 design note on in-process state).
type StreakState struct {
	PositiveMonths int // consecutive months with growth_pct > threshold
	HattrickPaid   bool
	FiveStreakPaid bool
}

// LumpsumRow is the per-(employee_id, month) output of the Lumpsum scorer.
type LumpsumRow struct {
	OutputHeader
	Raw            BucketSums
	Weighted       BucketSums
	DebtBonus      Rupees
	Additions      Rupees
	Subtractions   Rupees
	NetPurchase    Rupees
	AumStart       Rupees
	GrowthPct      float64
	Rate           float64
	MeetingCount   int
	Multiplier     float64
	BaseIncentive  Rupees
	FinalIncentive Rupees
	PenaltyRupees  Rupees
	Streak         StreakState
	StreakBonus    Rupees
	QtrBonusRupees OptFloat // only populated at quarter-end months
	AnnualBonusRupees OptFloat
}

// SipRow is the per-(employee_id, month) output of the SIP scorer.
type SipRow struct {
	OutputHeader
	GrossSIP       Rupees
	CancelSIP      Rupees
	NetSipCore     Rupees
	AvgSIP         Rupees
	SwpRegWeighted Rupees
	SwpCancelWeighted Rupees
	NetSip         Rupees
	AumStart       Rupees
	SipAumRatio    float64
	PositiveStreak int
	GateApplied    bool
	RateBps        float64
	SipPoints      Points
	LumpsumPoints  Points
	Tier           string
	MonthlyTrailRate float64
	AnnualTrailRate  float64
	TrailAmountMonth Rupees
	VPPointsCredit   Points
}

// InsuranceRow is the monthly per-RM aggregation of policy scores.
type InsuranceRow struct {
	OutputHeader
	PointsPolicy        float64
	PointsBonus         float64
	FreshPremiumEligible float64
	RenewalPremium      float64
	PayoutSlabLabel     string
	FreshPct            float64
	RenewPct            float64
	QtrBonusRupees      OptFloat
	AnnualBonusRupees   OptFloat
	PayoutAmount        Rupees
	Policies            []PolicyScoreRow
}

// ReferralScenario selects which fixed-point rule applied (spec.md §4.7).
type ReferralScenario string

const (
	ScenarioSelfSourced    ReferralScenario = "self_sourced"
	ScenarioConverterOnly  ReferralScenario = "converter_only"
	ScenarioReferrerCredit ReferralScenario = "referrer_credit"
)

// ReferralRow is one Referral_Leaderboard row, keyed by
// (lead_id, employee_id, referral_type) per spec.md §6.1.
type ReferralRow struct {
	LeadID       string
	EmployeeID   EntityID
	ReferralType string // "insurance" | "investment"
	Scenario     ReferralScenario
	Points       Points
	Month        Month
	ConfigHash   string
	UpdatedAt    time.Time
}

// AdjustmentType distinguishes point vs. rupee manual adjustments
// (spec.md §3.8).
type AdjustmentType string

const (
	AdjustmentPoints  AdjustmentType = "Points"
	AdjustmentRupees  AdjustmentType = "Rupees"
)

type AdjustmentStatus string

const (
	AdjustmentPending  AdjustmentStatus = "PENDING"
	AdjustmentApproved AdjustmentStatus = "APPROVED"
	AdjustmentRejected AdjustmentStatus = "REJECTED"
)

// Adjustment is a manual per-(employee_id, month) correction. Only
// APPROVED rows feed the aggregator, and only additively.
type Adjustment struct {
	ID         string
	EmployeeID EntityID
	Month      Month
	Reason     string
	Value      float64
	Type       AdjustmentType
	Status     AdjustmentStatus
	CreatedAt  time.Time
	ActedBy    string
}

// LeaderBucket is which profile-bucket a leader-credit roll-up belongs to
// (spec.md §4.6 step 14, §4.8 step 5).
type LeaderBucket string

const (
	BucketInsurance LeaderBucket = "INS"
	BucketMutualFund LeaderBucket = "MF"
)

// LeaderCredit is one Leader_Credits row, keyed by
// (source, period_month, bucket).
type LeaderCredit struct {
	Source       EntityID // the RM whose points are being rolled up
	PeriodMonth  Month
	Bucket       LeaderBucket
	ExpectedCredit Points
	CreditedAmount Points
	Reconciled     bool
	UpdatedAt      time.Time
}

// PublicRow is the canonical per-(employee_id, period_month) document the
// leaderboard API reads (spec.md §3.6).
type PublicRow struct {
	EmployeeID          EntityID
	EmployeeName        string
	PeriodMonth         Month
	TotalPointsPublic   Points
	MFPoints            Points
	MFSipPoints         Points
	MFLumpsumPoints     Points
	InsPoints           Points
	RefPoints           Points
	NetSip              Rupees
	AumStart            Rupees
	InsFreshPremium     float64
	PayoutEligible      bool
	IsActive            bool
	Profile             string
	TeamID              string
	ReportingManagerID  string
	Adjustments         []Adjustment
	AdjTotal            Points
	TotalPointsFinal    Points
	SchemaVersion       int
	ConfigHash          string
	UpdatedAt           time.Time
	AuditSummary        PublicAuditSummary
}

// PublicAuditSummary is the "compact audit block" embedded in PublicRow
// (spec.md §3.6).
type PublicAuditSummary struct {
	LumpsumGrowthPct float64
	LumpsumRate      float64
	SipTier          string
	InsPayoutSlab    string
	GateApplied      bool
}

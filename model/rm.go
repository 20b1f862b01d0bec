package model

import "time"

// EntityID is the canonical employee identity key (spec.md §3.1).
type EntityID string

// RM mirrors a record from the external user directory. The core never
// mutates it except to stamp InactiveSince on an observed active→inactive
// transition (identity.Resolver.SyncAll does this; nothing else may).
type RM struct {
	EmployeeID    EntityID
	DisplayName   string
	IsActive      bool
	InactiveSince *time.Time
	Profile       string
	TenureYears   float64
}

// IsInvestmentProfile reports whether the RM should be scored against the
// investment-RM insurance payout slabs (spec.md §4.6 step 11).
func (r RM) IsInvestmentProfile() bool {
	return r.Profile == "Mutual Funds"
}

// ScoringFlags records the error-taxonomy outcomes of spec.md §7 on every
// output row, instead of silently propagating nulls as zero.
type ScoringFlags struct {
	MissingAUM          bool
	MissingDirectory     bool
	ConfigFallbackUsed   bool
	GateNotAppliedReason string // empty when gate applied or not applicable
}

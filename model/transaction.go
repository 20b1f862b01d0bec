package model

import "time"

// LumpsumTxType is one of the six buckets a Lumpsum transaction classifies
// into (spec.md §3.2, §4.4 step 2a).
type LumpsumTxType string

const (
	TxPurchase    LumpsumTxType = "Purchase"
	TxRedemption  LumpsumTxType = "Redemption"
	TxSwitchIn    LumpsumTxType = "Switch-In"
	TxSwitchOut   LumpsumTxType = "Switch-Out"
	TxCOBIn       LumpsumTxType = "COB-In"
	TxCOBOut      LumpsumTxType = "COB-Out"
)

// LumpsumTransaction is a raw, un-weighted mutual-fund transaction.
type LumpsumTransaction struct {
	RMName          string
	TransactionDate time.Time
	Amount          float64
	Type            LumpsumTxType
	SubCategory     string
	SchemeName      string
}

// SipTxType distinguishes a SIP registration/instalment from an SWP.
type SipTxType string

const (
	SipTx SipTxType = "SIP"
	SwpTx SipTxType = "SWP"
)

// SipFor is whether the transaction registers or cancels a standing
// instruction (spec.md §3.3).
type SipFor string

const (
	SipRegistration SipFor = "Registration"
	SipCancellation SipFor = "Cancellation"
)

// ReconciliationStatus gates SIP/SWP eligibility (spec.md §3.3 invariant).
type ReconciliationStatus string

const (
	ReconReconciled            ReconciliationStatus = "RECONCILED"
	ReconReconciledMinor       ReconciliationStatus = "RECONCILED_WITH_MINOR"
	ReconPending               ReconciliationStatus = "PENDING"
	ReconMismatch              ReconciliationStatus = "MISMATCH"
)

func (s ReconciliationStatus) Eligible() bool {
	return s == ReconReconciled || s == ReconReconciledMinor
}

// ValidationStatus is the lifecycle state of a single validation event.
type ValidationStatus string

const (
	ValidationApproved ValidationStatus = "APPROVED"
	ValidationRejected ValidationStatus = "REJECTED"
	ValidationPending  ValidationStatus = "PENDING"
)

type Validation struct {
	Status      ValidationStatus
	ValidatedAt time.Time
}

// LatestApprovedWithin returns the latest APPROVED validation timestamp
// that falls in the half-open window, and whether one exists.
func LatestApprovedWithin(validations []Validation, win Window) (time.Time, bool) {
	var best time.Time
	found := false
	for _, v := range validations {
		if v.Status != ValidationApproved {
			continue
		}
		if !win.Contains(v.ValidatedAt) {
			continue
		}
		if !found || v.ValidatedAt.After(best) {
			best = v.ValidatedAt
			found = true
		}
	}
	return best, found
}

// SipFraction lets one SIP/SWP document score independently per fraction,
// each carrying its own amount and validation history (spec.md §3.3).
type SipFraction struct {
	Amount               float64
	Validations          []Validation
	ReconciliationStatus ReconciliationStatus
}

// SipTransaction is a raw reconciled SIP/SWP document, optionally split
// into fractions.
type SipTransaction struct {
	RMName               string
	TransactionType      SipTxType
	TransactionFor       SipFor
	Amount               float64
	SchemeName           string
	ReconciliationStatus ReconciliationStatus
	Validations          []Validation
	Fractions            []SipFraction
}

// EffectiveSipRow is one normalized, eligible transaction line emitted by
// the SIP ingestion step (spec.md §4.5 step 1), after fraction expansion,
// reconciliation filtering, and the window check.
type EffectiveSipRow struct {
	RMName     string
	ExecDate   time.Time
	Type       SipTxType
	For        SipFor
	Amount     float64 // raw amount, before scheme weighting
	SchemeName string
}

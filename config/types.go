/*
Package config implements the Config Store (C1): versioned, schema-
validated per-metric configuration documents that every scorer reads on
each run.

Rather than the distilled source's ad-hoc dict-merge-over-defaults, each
metric gets its own typed payload (LumpsumConfig, SipConfig,
InsuranceConfig, ReferralConfig) wrapped in the generic Document[T]. Merge
is an explicit, field-by-field MergeOver function per payload type (see
lumpsum.go/sip.go/insurance.go/referral.go) instead of a dictionary union —
spec.md §9 design note.
*/
package config

import "time"

// Metric names the four configurable scorers.
type Metric string

const (
	MetricLumpsum   Metric = "lumpsum"
	MetricSip       Metric = "sip"
	MetricInsurance Metric = "insurance"
	MetricReferral  Metric = "referral"
)

// Status of a config document.
type Status string

const (
	StatusActive   Status = "active"
	StatusArchived Status = "archived"
)

// Document wraps a metric's typed payload with the version/audit metadata
// spec.md §3.7 requires of every config document.
type Document[T any] struct {
	ID            string
	Schema        string
	SchemaVersion int
	Version       int
	Status        Status
	Options       T
	UpdatedAt     time.Time
	UpdatedBy     string
}

// ArchiveEntry is one config_audit row (spec.md §3.7, §4.1 Put).
type ArchiveEntry struct {
	Metric        Metric
	Version       int
	ArchivedAt    time.Time
	ReplacedBy    int
	ChangeReason  string
	ConfigSnapshot string // canonical JSON of the archived document
}

// ValidationError is one structured rejection reason (spec.md §4.1
// "rejection semantics: return structured error list; no partial writes").
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string { return e.Field + ": " + e.Message }

// ValidationErrors is the list returned on a rejected Put.
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	if len(v) == 0 {
		return "no validation errors"
	}
	msg := v[0].Error()
	for _, e := range v[1:] {
		msg += "; " + e.Error()
	}
	return msg
}

func (v ValidationErrors) HasErrors() bool { return len(v) > 0 }

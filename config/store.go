package config

import (
	"context"
	"encoding/json"
	"time"
)

// DocMeta is the version/audit envelope a Backend persists alongside the
// raw JSON options payload.
type DocMeta struct {
	SchemaVersion int
	Version       int
	Status        Status
	UpdatedAt     time.Time
	UpdatedBy     string
}

// Backend is what a storage layer (store/sqlite in this repo) must provide
// for the Config Store to work. Kept narrow and JSON-blob shaped, matching
// how the teacher's generic engine persists metric-specific payloads
// without the store package knowing their Go types.
type Backend interface {
	LoadActive(ctx context.Context, metric Metric) (raw []byte, meta DocMeta, found bool, err error)
	SaveActive(ctx context.Context, metric Metric, meta DocMeta, raw []byte) error
	AppendArchive(ctx context.Context, entry ArchiveEntry) error
	ListArchive(ctx context.Context, metric Metric, limit int) ([]ArchiveEntry, error)
}

// Store is the Config Store (C1). It never talks to SQL directly; it
// holds a Backend and applies the merge/validate/archive rules uniformly
// across all four metrics.
type Store struct {
	backend Backend
}

func NewStore(backend Backend) *Store {
	return &Store{backend: backend}
}

// GetDocument loads a metric's active document, falling back to the
// compiled-in default (version 0, unpersisted) when the backend has none
// yet (spec.md §4.1).
func GetDocument[T any](ctx context.Context, s *Store, metric Metric, fallback Document[T]) (Document[T], error) {
	raw, meta, found, err := s.backend.LoadActive(ctx, metric)
	if err != nil {
		return Document[T]{}, err
	}
	if !found {
		return fallback, nil
	}
	var opts T
	if err := json.Unmarshal(raw, &opts); err != nil {
		return Document[T]{}, err
	}
	return Document[T]{
		ID: string(metric), Schema: string(metric),
		SchemaVersion: meta.SchemaVersion, Version: meta.Version, Status: meta.Status,
		Options: opts, UpdatedAt: meta.UpdatedAt, UpdatedBy: meta.UpdatedBy,
	}, nil
}

// PutDocument validates patch merged over the current active options,
// archives the document being replaced (skipped for an unpersisted
// version-0 fallback), and writes the merged document at version+1. On
// validation failure it writes nothing and returns the errors (spec.md
// §4.1: "rejection semantics: return structured error list; no partial
// writes").
func PutDocument[T any](
	ctx context.Context, s *Store, metric Metric, current Document[T], patch T,
	mergeOver func(stored, base T) T, validate func(T) ValidationErrors,
	updatedBy, reason string,
) (Document[T], ValidationErrors, error) {
	merged := mergeOver(patch, current.Options)
	if errs := validate(merged); errs.HasErrors() {
		return Document[T]{}, errs, nil
	}
	if current.Version > 0 {
		snapshot, err := json.Marshal(current.Options)
		if err != nil {
			return Document[T]{}, nil, err
		}
		entry := ArchiveEntry{
			Metric: metric, Version: current.Version, ArchivedAt: time.Now(),
			ReplacedBy: current.Version + 1, ChangeReason: reason, ConfigSnapshot: string(snapshot),
		}
		if err := s.backend.AppendArchive(ctx, entry); err != nil {
			return Document[T]{}, nil, err
		}
	}
	raw, err := json.Marshal(merged)
	if err != nil {
		return Document[T]{}, nil, err
	}
	meta := DocMeta{
		SchemaVersion: current.SchemaVersion, Version: current.Version + 1,
		Status: StatusActive, UpdatedAt: time.Now(), UpdatedBy: updatedBy,
	}
	if err := s.backend.SaveActive(ctx, metric, meta, raw); err != nil {
		return Document[T]{}, nil, err
	}
	return Document[T]{
		ID: string(metric), Schema: string(metric),
		SchemaVersion: meta.SchemaVersion, Version: meta.Version, Status: meta.Status,
		Options: merged, UpdatedAt: meta.UpdatedAt, UpdatedBy: meta.UpdatedBy,
	}, nil, nil
}

func (s *Store) Lumpsum(ctx context.Context) (Document[LumpsumConfig], error) {
	fallback, _ := DefaultDocument(MetricLumpsum)
	return GetDocument(ctx, s, MetricLumpsum, fallback.(Document[LumpsumConfig]))
}

func (s *Store) PutLumpsum(ctx context.Context, patch LumpsumConfig, updatedBy, reason string) (Document[LumpsumConfig], ValidationErrors, error) {
	current, err := s.Lumpsum(ctx)
	if err != nil {
		return Document[LumpsumConfig]{}, nil, err
	}
	merge := func(stored, base LumpsumConfig) LumpsumConfig { return stored.MergeOver(base) }
	validate := func(c LumpsumConfig) ValidationErrors { return c.Validate() }
	return PutDocument(ctx, s, MetricLumpsum, current, patch, merge, validate, updatedBy, reason)
}

func (s *Store) ResetLumpsum(ctx context.Context, updatedBy, reason string) (Document[LumpsumConfig], error) {
	current, err := s.Lumpsum(ctx)
	if err != nil {
		return Document[LumpsumConfig]{}, err
	}
	def := DefaultLumpsumConfig()
	merge := func(stored, base LumpsumConfig) LumpsumConfig { return stored }
	validate := func(c LumpsumConfig) ValidationErrors { return c.Validate() }
	doc, _, err := PutDocument(ctx, s, MetricLumpsum, current, def, merge, validate, updatedBy, reason)
	return doc, err
}

func (s *Store) Sip(ctx context.Context) (Document[SipConfig], error) {
	fallback, _ := DefaultDocument(MetricSip)
	return GetDocument(ctx, s, MetricSip, fallback.(Document[SipConfig]))
}

func (s *Store) PutSip(ctx context.Context, patch SipConfig, updatedBy, reason string) (Document[SipConfig], ValidationErrors, error) {
	current, err := s.Sip(ctx)
	if err != nil {
		return Document[SipConfig]{}, nil, err
	}
	merge := func(stored, base SipConfig) SipConfig { return stored.MergeOver(base) }
	validate := func(c SipConfig) ValidationErrors { return c.Validate() }
	return PutDocument(ctx, s, MetricSip, current, patch, merge, validate, updatedBy, reason)
}

func (s *Store) ResetSip(ctx context.Context, updatedBy, reason string) (Document[SipConfig], error) {
	current, err := s.Sip(ctx)
	if err != nil {
		return Document[SipConfig]{}, err
	}
	def := DefaultSipConfig()
	merge := func(stored, base SipConfig) SipConfig { return stored }
	validate := func(c SipConfig) ValidationErrors { return c.Validate() }
	doc, _, err := PutDocument(ctx, s, MetricSip, current, def, merge, validate, updatedBy, reason)
	return doc, err
}

func (s *Store) Insurance(ctx context.Context) (Document[InsuranceConfig], error) {
	fallback, _ := DefaultDocument(MetricInsurance)
	return GetDocument(ctx, s, MetricInsurance, fallback.(Document[InsuranceConfig]))
}

func (s *Store) PutInsurance(ctx context.Context, patch InsuranceConfig, updatedBy, reason string) (Document[InsuranceConfig], ValidationErrors, error) {
	current, err := s.Insurance(ctx)
	if err != nil {
		return Document[InsuranceConfig]{}, nil, err
	}
	merge := func(stored, base InsuranceConfig) InsuranceConfig { return stored.MergeOver(base) }
	validate := func(c InsuranceConfig) ValidationErrors { return c.Validate() }
	return PutDocument(ctx, s, MetricInsurance, current, patch, merge, validate, updatedBy, reason)
}

func (s *Store) ResetInsurance(ctx context.Context, updatedBy, reason string) (Document[InsuranceConfig], error) {
	current, err := s.Insurance(ctx)
	if err != nil {
		return Document[InsuranceConfig]{}, err
	}
	def := DefaultInsuranceConfig()
	merge := func(stored, base InsuranceConfig) InsuranceConfig { return stored }
	validate := func(c InsuranceConfig) ValidationErrors { return c.Validate() }
	doc, _, err := PutDocument(ctx, s, MetricInsurance, current, def, merge, validate, updatedBy, reason)
	return doc, err
}

func (s *Store) Referral(ctx context.Context) (Document[ReferralConfig], error) {
	fallback, _ := DefaultDocument(MetricReferral)
	return GetDocument(ctx, s, MetricReferral, fallback.(Document[ReferralConfig]))
}

func (s *Store) PutReferral(ctx context.Context, patch ReferralConfig, updatedBy, reason string) (Document[ReferralConfig], ValidationErrors, error) {
	current, err := s.Referral(ctx)
	if err != nil {
		return Document[ReferralConfig]{}, nil, err
	}
	merge := func(stored, base ReferralConfig) ReferralConfig { return stored.MergeOver(base) }
	validate := func(c ReferralConfig) ValidationErrors { return c.Validate() }
	return PutDocument(ctx, s, MetricReferral, current, patch, merge, validate, updatedBy, reason)
}

func (s *Store) ResetReferral(ctx context.Context, updatedBy, reason string) (Document[ReferralConfig], error) {
	current, err := s.Referral(ctx)
	if err != nil {
		return Document[ReferralConfig]{}, err
	}
	def := DefaultReferralConfig()
	merge := func(stored, base ReferralConfig) ReferralConfig { return stored }
	validate := func(c ReferralConfig) ValidationErrors { return c.Validate() }
	doc, _, err := PutDocument(ctx, s, MetricReferral, current, def, merge, validate, updatedBy, reason)
	return doc, err
}

// Audit lists archived versions for a metric, newest first, per spec.md
// §4.12's "config audit --module=... --limit=N".
func (s *Store) Audit(ctx context.Context, metric Metric, limit int) ([]ArchiveEntry, error) {
	return s.backend.ListArchive(ctx, metric, limit)
}

/*
Package identity implements the Identity Resolver (C2): it maps a raw RM
name/employee id as it appears on a transaction row to a canonical RM
record, and decides whether that RM is eligible to be scored/paid for a
given month under the inactivity gate (spec.md §4.2).
*/
package identity

import (
	"context"
	"strings"
	"time"

	"github.com/vilakshan/pli-leaderboard/model"
)

// Directory is the backing store of RM records (store/sqlite in this
// repo). Kept narrow, mirroring config.Backend's shape.
type Directory interface {
	Lookup(ctx context.Context, employeeID model.EntityID) (model.RM, bool, error)
	LookupByName(ctx context.Context, name string) (model.RM, bool, error)
	Upsert(ctx context.Context, rm model.RM) error
	All(ctx context.Context) ([]model.RM, error)
}

// InactivityGateMonths is the number of consecutive months an RM may be
// marked inactive before the leaderboard aggregator withholds payout
// eligibility for them (spec.md §4.2, §4.9).
const InactivityGateMonths = 6

type Resolver struct {
	dir        Directory
	ignored    map[string]struct{}
}

func NewResolver(dir Directory, ignoredRMs []string) *Resolver {
	ig := make(map[string]struct{}, len(ignoredRMs))
	for _, n := range ignoredRMs {
		ig[normalizeName(n)] = struct{}{}
	}
	return &Resolver{dir: dir, ignored: ig}
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Resolve maps an employee id to its canonical RM record.
func (r *Resolver) Resolve(ctx context.Context, employeeID model.EntityID) (model.RM, bool, error) {
	return r.dir.Lookup(ctx, employeeID)
}

// ResolveByName maps a free-text RM name (as it appears on a transaction
// row) to a canonical RM record, case-insensitively.
func (r *Resolver) ResolveByName(ctx context.Context, rawName string) (model.RM, bool, error) {
	return r.dir.LookupByName(ctx, rawName)
}

// IsIgnored reports whether an RM name is on the metric's ignored_rms
// skip-list, checked before any scoring or eligibility logic runs.
func (r *Resolver) IsIgnored(name string) bool {
	_, ok := r.ignored[normalizeName(name)]
	return ok
}

// SyncAll upserts a batch of directory rows (an HR/ops export), returning
// the number of rows written. Existing rows not present in the batch are
// left untouched — SyncAll is additive, never a destructive replace.
// An active row has InactiveSince cleared. An inactive row without
// InactiveSince is stamped with the current time when the stored record
// was active, and otherwise keeps the date already stored.
func (r *Resolver) SyncAll(ctx context.Context, rows []model.RM) (int, error) {
	n := 0
	for _, rm := range rows {
		prev, found, err := r.dir.Lookup(ctx, rm.EmployeeID)
		if err != nil {
			return n, err
		}
		switch {
		case rm.IsActive:
			rm.InactiveSince = nil
		case rm.InactiveSince == nil && found && prev.IsActive:
			now := time.Now().UTC()
			rm.InactiveSince = &now
		case rm.InactiveSince == nil && found:
			rm.InactiveSince = prev.InactiveSince
		}
		if err := r.dir.Upsert(ctx, rm); err != nil {
			return n, err
		}
		n++
	}
	return n, nil
}

// EligibleForMonth implements the inactivity gate (spec.md §4.2 step 3,
// §4.9): an active RM is always eligible. An inactive RM remains eligible
// for InactivityGateMonths months counting the month of InactiveSince
// itself (inactive since March: eligible March through August; a grace
// window covering notice periods and mid-month exits), after which
// payout eligibility is withheld, though the RM still gets scored and
// appears on the leaderboard (the gate controls payout, not visibility).
func EligibleForMonth(rm model.RM, month model.Month) (bool, string) {
	if rm.IsActive {
		return true, ""
	}
	if rm.InactiveSince == nil {
		return true, ""
	}
	inactiveMonth := model.NewMonth(rm.InactiveSince.Year(), rm.InactiveSince.Month())
	gap := month.Index() - inactiveMonth.Index()
	if gap < InactivityGateMonths {
		return true, ""
	}
	return false, "inactive_gate: inactive since " + inactiveMonth.String() + ", gate applies from month " +
		inactiveMonth.Add(InactivityGateMonths).String()
}

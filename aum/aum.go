/*
Package aum implements the AUM Lookup (C3): resolving an RM's start-of-month
assets-under-management figure from the AUM extract, tolerating the minor
name-spelling drift that creeps into manually maintained RM name columns.
*/
package aum

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/vilakshan/pli-leaderboard/model"
)

// Source is the raw per-month AUM extract (store/sqlite in this repo).
type Source interface {
	// RowsForMonth returns every (name, aum) pair recorded for month.
	RowsForMonth(ctx context.Context, month model.Month) (map[string]model.Rupees, error)
}

// variantPattern strips punctuation/whitespace/case differences so that
// "A. Sharma", "A Sharma" and "a.sharma" all resolve to the same key
// (spec.md §4.3 step 3: "name-variant fallback").
var variantPattern = regexp.MustCompile(`[^a-z0-9]+`)

func variantKey(name string) string {
	return variantPattern.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "")
}

type cacheKey struct {
	month model.Month
	name  string
}

// Lookup resolves RM names to AUM figures, walking exact -> case-insensitive
// -> name-variant fallback, and caches results per (month, name) since the
// same RM is looked up once per scorer per month across potentially
// thousands of transaction rows.
type Lookup struct {
	src   Source
	mu    sync.Mutex
	cache map[cacheKey]lookupResult

	monthRows    map[model.Month]map[string]model.Rupees
	monthLower   map[model.Month]map[string]model.Rupees
	monthVariant map[model.Month]map[string]model.Rupees
}

type lookupResult struct {
	amount model.Rupees
	found  bool
}

func NewLookup(src Source) *Lookup {
	return &Lookup{
		src:          src,
		cache:        make(map[cacheKey]lookupResult),
		monthRows:    make(map[model.Month]map[string]model.Rupees),
		monthLower:   make(map[model.Month]map[string]model.Rupees),
		monthVariant: make(map[model.Month]map[string]model.Rupees),
	}
}

func (l *Lookup) indexForMonth(ctx context.Context, month model.Month) (map[string]model.Rupees, map[string]model.Rupees, map[string]model.Rupees, error) {
	l.mu.Lock()
	rows, ok := l.monthRows[month]
	l.mu.Unlock()
	if ok {
		return rows, l.monthLower[month], l.monthVariant[month], nil
	}

	raw, err := l.src.RowsForMonth(ctx, month)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("aum: rows for month %s: %w", month, err)
	}
	lower := make(map[string]model.Rupees, len(raw))
	variant := make(map[string]model.Rupees, len(raw))
	for name, amt := range raw {
		lower[strings.ToLower(strings.TrimSpace(name))] = amt
		variant[variantKey(name)] = amt
	}

	l.mu.Lock()
	l.monthRows[month] = raw
	l.monthLower[month] = lower
	l.monthVariant[month] = variant
	l.mu.Unlock()
	return raw, lower, variant, nil
}

// AumFor resolves name's start-of-month AUM for month. found is false
// when no exact, case-insensitive, or name-variant match exists in the
// extract — callers treat this as MissingAUM (spec.md §4.4 step 1,
// ScoringFlags.MissingAUM).
func (l *Lookup) AumFor(ctx context.Context, month model.Month, name string) (model.Rupees, bool, error) {
	key := cacheKey{month: month, name: name}
	l.mu.Lock()
	if cached, ok := l.cache[key]; ok {
		l.mu.Unlock()
		return cached.amount, cached.found, nil
	}
	l.mu.Unlock()

	exact, lower, variant, err := l.indexForMonth(ctx, month)
	if err != nil {
		return model.ZeroRupees(), false, err
	}

	var result lookupResult
	if amt, ok := exact[name]; ok {
		result = lookupResult{amt, true}
	} else if amt, ok := lower[strings.ToLower(strings.TrimSpace(name))]; ok {
		result = lookupResult{amt, true}
	} else if amt, ok := variant[variantKey(name)]; ok {
		result = lookupResult{amt, true}
	} else {
		result = lookupResult{model.ZeroRupees(), false}
	}

	l.mu.Lock()
	l.cache[key] = result
	l.mu.Unlock()
	return result.amount, result.found, nil
}

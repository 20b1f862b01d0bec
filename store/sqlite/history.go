package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vilakshan/pli-leaderboard/model"
)

// LoadStreak reads the persisted streak state for one (metric, employee)
// pair, used by the Lumpsum and Insurance scorers to thread hattrick/
// five-streak bonus eligibility across months (spec.md §9 design note:
// streak state is explicit, never an in-process map).
func (s *Store) LoadStreak(ctx context.Context, metric, employeeID string) (model.StreakState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT state_json FROM scorer_streaks WHERE metric = ? AND employee_id = ?`, metric, employeeID).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.StreakState{}, nil
	}
	if err != nil {
		return model.StreakState{}, fmt.Errorf("sqlite: load streak %s/%s: %w", metric, employeeID, err)
	}
	var st model.StreakState
	if err := json.Unmarshal([]byte(raw), &st); err != nil {
		return model.StreakState{}, fmt.Errorf("sqlite: unmarshal streak %s/%s: %w", metric, employeeID, err)
	}
	return st, nil
}

// SaveStreak persists the streak state a scoring run just produced.
func (s *Store) SaveStreak(ctx context.Context, metric, employeeID string, st model.StreakState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("sqlite: marshal streak %s/%s: %w", metric, employeeID, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scorer_streaks (metric, employee_id, state_json) VALUES (?, ?, ?)
		ON CONFLICT(metric, employee_id) DO UPDATE SET state_json = excluded.state_json
	`, metric, employeeID, string(raw))
	if err != nil {
		return fmt.Errorf("sqlite: save streak %s/%s: %w", metric, employeeID, err)
	}
	return nil
}

// LumpsumRangeTotals sums NetPurchase and counts positive-growth months
// for one RM across [from, to] inclusive, feeding the quarterly/annual
// bonus-projection steps (spec.md §4.4 step 10).
func (s *Store) LumpsumRangeTotals(ctx context.Context, employeeID model.EntityID, from, to model.Month) (netPurchase float64, positiveMonths int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_json FROM leaderboard_lumpsum WHERE employee_id = ? AND period_month >= ? AND period_month <= ?`,
		string(employeeID), from.String(), to.String())
	if err != nil {
		return 0, 0, fmt.Errorf("sqlite: lumpsum range totals %s: %w", employeeID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, 0, fmt.Errorf("sqlite: scan lumpsum range row: %w", err)
		}
		var r model.LumpsumRow
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return 0, 0, fmt.Errorf("sqlite: unmarshal lumpsum range row: %w", err)
		}
		netPurchase += r.NetPurchase.Float64()
		if r.GrowthPct > 0 {
			positiveMonths++
		}
	}
	return netPurchase, positiveMonths, rows.Err()
}

// InsuranceRangeTotals sums FreshPremiumEligible and counts months with at
// least one scored policy for one RM across [from, to] inclusive, feeding
// spec.md §4.6 step 12.
func (s *Store) InsuranceRangeTotals(ctx context.Context, employeeID model.EntityID, from, to model.Month) (freshPremium float64, positiveMonths int, err error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_json FROM leaderboard_insurance WHERE employee_id = ? AND period_month >= ? AND period_month <= ?`,
		string(employeeID), from.String(), to.String())
	if err != nil {
		return 0, 0, fmt.Errorf("sqlite: insurance range totals %s: %w", employeeID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return 0, 0, fmt.Errorf("sqlite: scan insurance range row: %w", err)
		}
		var r model.InsuranceRow
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return 0, 0, fmt.Errorf("sqlite: unmarshal insurance range row: %w", err)
		}
		freshPremium += r.FreshPremiumEligible
		if len(r.Policies) > 0 {
			positiveMonths++
		}
	}
	return freshPremium, positiveMonths, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vilakshan/pli-leaderboard/model"
)

// Create implements leaderboard.AdjustmentStore.
func (s *Store) Create(ctx context.Context, a model.Adjustment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("sqlite: marshal adjustment: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO leaderboard_adjustments (id, employee_id, period_month, status, row_json)
		VALUES (?, ?, ?, ?, ?)
	`, a.ID, string(a.EmployeeID), a.Month.String(), string(a.Status), string(raw))
	if err != nil {
		return fmt.Errorf("sqlite: create adjustment %q: %w", a.ID, err)
	}
	return nil
}

// Get implements leaderboard.AdjustmentStore.
func (s *Store) Get(ctx context.Context, id string) (model.Adjustment, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx, `SELECT row_json FROM leaderboard_adjustments WHERE id = ?`, id).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.Adjustment{}, false, nil
	}
	if err != nil {
		return model.Adjustment{}, false, fmt.Errorf("sqlite: get adjustment %q: %w", id, err)
	}
	var a model.Adjustment
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		return model.Adjustment{}, false, fmt.Errorf("sqlite: unmarshal adjustment %q: %w", id, err)
	}
	return a, true, nil
}

// SetStatus implements leaderboard.AdjustmentStore.
func (s *Store) SetStatus(ctx context.Context, id string, status model.AdjustmentStatus, actedBy string) error {
	a, found, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("sqlite: adjustment %q not found", id)
	}
	a.Status = status
	a.ActedBy = actedBy
	raw, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("sqlite: marshal adjustment %q: %w", id, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err = s.db.ExecContext(ctx,
		`UPDATE leaderboard_adjustments SET status = ?, row_json = ? WHERE id = ?`,
		string(status), string(raw), id)
	if err != nil {
		return fmt.Errorf("sqlite: set adjustment %q status: %w", id, err)
	}
	return nil
}

// ListForMonth implements leaderboard.AdjustmentStore.
func (s *Store) ListForMonth(ctx context.Context, employeeID model.EntityID, month model.Month) ([]model.Adjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_json FROM leaderboard_adjustments WHERE employee_id = ? AND period_month = ?`,
		string(employeeID), month.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: list adjustments for %s/%s: %w", employeeID, month, err)
	}
	defer rows.Close()

	var out []model.Adjustment
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sqlite: scan adjustment row: %w", err)
		}
		var a model.Adjustment
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal adjustment row: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// AllForMonth groups every adjustment for a month by employee, feeding
// orchestrator.Scorers.LoadAdjustments.
func (s *Store) AllForMonth(ctx context.Context, month model.Month) (map[model.EntityID][]model.Adjustment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_json FROM leaderboard_adjustments WHERE period_month = ?`, month.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: list adjustments for %s: %w", month, err)
	}
	defer rows.Close()

	out := make(map[model.EntityID][]model.Adjustment)
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sqlite: scan adjustment row: %w", err)
		}
		var a model.Adjustment
		if err := json.Unmarshal([]byte(raw), &a); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal adjustment row: %w", err)
		}
		out[a.EmployeeID] = append(out[a.EmployeeID], a)
	}
	return out, rows.Err()
}

package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/vilakshan/pli-leaderboard/model"
)

func scanRM(row interface{ Scan(...any) error }) (model.RM, error) {
	var employeeID, displayName, profile string
	var isActive int
	var inactiveSince sql.NullString
	var tenureYears float64
	if err := row.Scan(&employeeID, &displayName, &isActive, &inactiveSince, &profile, &tenureYears); err != nil {
		return model.RM{}, err
	}
	rm := model.RM{
		EmployeeID: model.EntityID(employeeID), DisplayName: displayName,
		IsActive: isActive != 0, Profile: profile, TenureYears: tenureYears,
	}
	if inactiveSince.Valid && inactiveSince.String != "" {
		t, err := time.Parse(time.RFC3339, inactiveSince.String)
		if err == nil {
			rm.InactiveSince = &t
		}
	}
	return rm, nil
}

// Lookup implements identity.Directory.
func (s *Store) Lookup(ctx context.Context, employeeID model.EntityID) (model.RM, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT employee_id, display_name, is_active, inactive_since, profile, tenure_years FROM rm_directory WHERE employee_id = ?`,
		string(employeeID))
	rm, err := scanRM(row)
	if err == sql.ErrNoRows {
		return model.RM{}, false, nil
	}
	if err != nil {
		return model.RM{}, false, fmt.Errorf("sqlite: lookup rm %q: %w", employeeID, err)
	}
	return rm, true, nil
}

// LookupByName implements identity.Directory, matching case-insensitively.
func (s *Store) LookupByName(ctx context.Context, name string) (model.RM, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT employee_id, display_name, is_active, inactive_since, profile, tenure_years
		 FROM rm_directory WHERE display_name_lower = ?`,
		strings.ToLower(strings.TrimSpace(name)))
	rm, err := scanRM(row)
	if err == sql.ErrNoRows {
		return model.RM{}, false, nil
	}
	if err != nil {
		return model.RM{}, false, fmt.Errorf("sqlite: lookup rm by name %q: %w", name, err)
	}
	return rm, true, nil
}

// Upsert implements identity.Directory.
func (s *Store) Upsert(ctx context.Context, rm model.RM) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var inactiveSince sql.NullString
	if rm.InactiveSince != nil {
		inactiveSince = sql.NullString{String: rm.InactiveSince.Format(time.RFC3339), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rm_directory (employee_id, display_name, display_name_lower, is_active, inactive_since, profile, tenure_years)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(employee_id) DO UPDATE SET
			display_name = excluded.display_name,
			display_name_lower = excluded.display_name_lower,
			is_active = excluded.is_active,
			inactive_since = excluded.inactive_since,
			profile = excluded.profile,
			tenure_years = excluded.tenure_years
	`, string(rm.EmployeeID), rm.DisplayName, strings.ToLower(strings.TrimSpace(rm.DisplayName)),
		boolToInt(rm.IsActive), inactiveSince, rm.Profile, rm.TenureYears)
	if err != nil {
		return fmt.Errorf("sqlite: upsert rm %q: %w", rm.EmployeeID, err)
	}
	return nil
}

// All implements identity.Directory.
func (s *Store) All(ctx context.Context) ([]model.RM, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id, display_name, is_active, inactive_since, profile, tenure_years FROM rm_directory`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list rm directory: %w", err)
	}
	defer rows.Close()

	var out []model.RM
	for rows.Next() {
		rm, err := scanRM(rows)
		if err != nil {
			return nil, fmt.Errorf("sqlite: scan rm directory row: %w", err)
		}
		out = append(out, rm)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

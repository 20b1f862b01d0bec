package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/vilakshan/pli-leaderboard/model"
)

// UpsertLumpsum implements orchestrator.Sink. Re-running a month replaces
// the row for each (employee_id, period_month) rather than duplicating it.
func (s *Store) UpsertLumpsum(ctx context.Context, rows []model.LumpsumRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("sqlite: marshal lumpsum row %s/%s: %w", r.EmployeeID, r.Month, err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO leaderboard_lumpsum (employee_id, period_month, row_json) VALUES (?, ?, ?)
			ON CONFLICT(employee_id, period_month) DO UPDATE SET row_json = excluded.row_json
		`, string(r.EmployeeID), r.Month.String(), string(raw))
		if err != nil {
			return fmt.Errorf("sqlite: upsert lumpsum row %s/%s: %w", r.EmployeeID, r.Month, err)
		}
	}
	return nil
}

// UpsertSip implements orchestrator.Sink.
func (s *Store) UpsertSip(ctx context.Context, rows []model.SipRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("sqlite: marshal sip row %s/%s: %w", r.EmployeeID, r.Month, err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO mf_sip_leaderboard (employee_id, period_month, row_json) VALUES (?, ?, ?)
			ON CONFLICT(employee_id, period_month) DO UPDATE SET row_json = excluded.row_json
		`, string(r.EmployeeID), r.Month.String(), string(raw))
		if err != nil {
			return fmt.Errorf("sqlite: upsert sip row %s/%s: %w", r.EmployeeID, r.Month, err)
		}
	}
	return nil
}

// UpsertInsurance implements orchestrator.Sink. It writes both the monthly
// aggregate (leaderboard_insurance) and the per-policy breakdown
// (insurance_policy_scoring) carried on InsuranceRow.Policies.
func (s *Store) UpsertInsurance(ctx context.Context, rows []model.InsuranceRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("sqlite: marshal insurance row %s/%s: %w", r.EmployeeID, r.Month, err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO leaderboard_insurance (employee_id, period_month, row_json) VALUES (?, ?, ?)
			ON CONFLICT(employee_id, period_month) DO UPDATE SET row_json = excluded.row_json
		`, string(r.EmployeeID), r.Month.String(), string(raw))
		if err != nil {
			return fmt.Errorf("sqlite: upsert insurance row %s/%s: %w", r.EmployeeID, r.Month, err)
		}

		for _, p := range r.Policies {
			policyNumber := p.Derived.Policy.PolicyNumber
			praw, err := json.Marshal(p)
			if err != nil {
				return fmt.Errorf("sqlite: marshal policy row %s/%s/%s: %w", r.EmployeeID, r.Month, policyNumber, err)
			}
			_, err = s.db.ExecContext(ctx, `
				INSERT INTO insurance_policy_scoring (employee_id, period_month, policy_number, row_json)
				VALUES (?, ?, ?, ?)
				ON CONFLICT(employee_id, period_month, policy_number) DO UPDATE SET row_json = excluded.row_json
			`, string(r.EmployeeID), r.Month.String(), policyNumber, string(praw))
			if err != nil {
				return fmt.Errorf("sqlite: upsert policy row %s/%s/%s: %w", r.EmployeeID, r.Month, policyNumber, err)
			}
		}
	}
	return nil
}

// UpsertReferral implements orchestrator.Sink.
func (s *Store) UpsertReferral(ctx context.Context, rows []model.ReferralRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("sqlite: marshal referral row %s/%s: %w", r.LeadID, r.EmployeeID, err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO referral_leaderboard (lead_id, employee_id, referral_type, period_month, row_json)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(lead_id, employee_id, referral_type) DO UPDATE SET
				period_month = excluded.period_month, row_json = excluded.row_json
		`, r.LeadID, string(r.EmployeeID), r.ReferralType, r.Month.String(), string(raw))
		if err != nil {
			return fmt.Errorf("sqlite: upsert referral row %s/%s: %w", r.LeadID, r.EmployeeID, err)
		}
	}
	return nil
}

// UpsertLeaderCredits implements orchestrator.Sink.
func (s *Store) UpsertLeaderCredits(ctx context.Context, credits []model.LeaderCredit) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, c := range credits {
		raw, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("sqlite: marshal leader credit %s/%s/%s: %w", c.Source, c.PeriodMonth, c.Bucket, err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO leader_credits (source, period_month, bucket, row_json) VALUES (?, ?, ?, ?)
			ON CONFLICT(source, period_month, bucket) DO UPDATE SET row_json = excluded.row_json
		`, string(c.Source), c.PeriodMonth.String(), string(c.Bucket), string(raw))
		if err != nil {
			return fmt.Errorf("sqlite: upsert leader credit %s/%s/%s: %w", c.Source, c.PeriodMonth, c.Bucket, err)
		}
	}
	return nil
}

// UpsertPublic implements orchestrator.Sink.
func (s *Store) UpsertPublic(ctx context.Context, rows []model.PublicRow) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range rows {
		raw, err := json.Marshal(r)
		if err != nil {
			return fmt.Errorf("sqlite: marshal public row %s/%s: %w", r.EmployeeID, r.PeriodMonth, err)
		}
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO public_leaderboard (employee_id, period_month, row_json) VALUES (?, ?, ?)
			ON CONFLICT(employee_id, period_month) DO UPDATE SET row_json = excluded.row_json
		`, string(r.EmployeeID), r.PeriodMonth.String(), string(raw))
		if err != nil {
			return fmt.Errorf("sqlite: upsert public row %s/%s: %w", r.EmployeeID, r.PeriodMonth, err)
		}
	}
	return nil
}

// PublicForMonth reads the leaderboard API's primary source table: every
// RM's public row for a given month, in no particular order.
func (s *Store) PublicForMonth(ctx context.Context, month model.Month) ([]model.PublicRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_json FROM public_leaderboard WHERE period_month = ?`, month.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: public rows for month %s: %w", month, err)
	}
	defer rows.Close()

	var out []model.PublicRow
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sqlite: scan public row: %w", err)
		}
		var r model.PublicRow
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal public row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LumpsumForEmployee reads a single RM's lumpsum row for a month, feeding
// the "/breakdown" routes.
func (s *Store) LumpsumForEmployee(ctx context.Context, employeeID model.EntityID, month model.Month) (model.LumpsumRow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT row_json FROM leaderboard_lumpsum WHERE employee_id = ? AND period_month = ?`,
		string(employeeID), month.String()).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.LumpsumRow{}, false, nil
	}
	if err != nil {
		return model.LumpsumRow{}, false, fmt.Errorf("sqlite: lumpsum row for %s/%s: %w", employeeID, month, err)
	}
	var r model.LumpsumRow
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return model.LumpsumRow{}, false, fmt.Errorf("sqlite: unmarshal lumpsum row %s/%s: %w", employeeID, month, err)
	}
	return r, true, nil
}

// SipForEmployee reads a single RM's SIP row for a month.
func (s *Store) SipForEmployee(ctx context.Context, employeeID model.EntityID, month model.Month) (model.SipRow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT row_json FROM mf_sip_leaderboard WHERE employee_id = ? AND period_month = ?`,
		string(employeeID), month.String()).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.SipRow{}, false, nil
	}
	if err != nil {
		return model.SipRow{}, false, fmt.Errorf("sqlite: sip row for %s/%s: %w", employeeID, month, err)
	}
	var r model.SipRow
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return model.SipRow{}, false, fmt.Errorf("sqlite: unmarshal sip row %s/%s: %w", employeeID, month, err)
	}
	return r, true, nil
}

// InsuranceForEmployee reads a single RM's insurance aggregate row for a
// month, policy breakdown included.
func (s *Store) InsuranceForEmployee(ctx context.Context, employeeID model.EntityID, month model.Month) (model.InsuranceRow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT row_json FROM leaderboard_insurance WHERE employee_id = ? AND period_month = ?`,
		string(employeeID), month.String()).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.InsuranceRow{}, false, nil
	}
	if err != nil {
		return model.InsuranceRow{}, false, fmt.Errorf("sqlite: insurance row for %s/%s: %w", employeeID, month, err)
	}
	var r model.InsuranceRow
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return model.InsuranceRow{}, false, fmt.Errorf("sqlite: unmarshal insurance row %s/%s: %w", employeeID, month, err)
	}
	return r, true, nil
}

// ReferralForEmployee reads every Referral_Leaderboard row an RM earned in
// a month.
func (s *Store) ReferralForEmployee(ctx context.Context, employeeID model.EntityID, month model.Month) ([]model.ReferralRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT row_json FROM referral_leaderboard WHERE employee_id = ? AND period_month = ?`,
		string(employeeID), month.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: referral rows for %s/%s: %w", employeeID, month, err)
	}
	defer rows.Close()

	var out []model.ReferralRow
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sqlite: scan referral row: %w", err)
		}
		var r model.ReferralRow
		if err := json.Unmarshal([]byte(raw), &r); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal referral row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// PublicForEmployee reads a single RM's public row for a month, used by
// the authenticated "/leaderboard/me" route.
func (s *Store) PublicForEmployee(ctx context.Context, employeeID model.EntityID, month model.Month) (model.PublicRow, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT row_json FROM public_leaderboard WHERE employee_id = ? AND period_month = ?`,
		string(employeeID), month.String()).Scan(&raw)
	if err == sql.ErrNoRows {
		return model.PublicRow{}, false, nil
	}
	if err != nil {
		return model.PublicRow{}, false, fmt.Errorf("sqlite: public row for %s/%s: %w", employeeID, month, err)
	}
	var r model.PublicRow
	if err := json.Unmarshal([]byte(raw), &r); err != nil {
		return model.PublicRow{}, false, fmt.Errorf("sqlite: unmarshal public row %s/%s: %w", employeeID, month, err)
	}
	return r, true, nil
}

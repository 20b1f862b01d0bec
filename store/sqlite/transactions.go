package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/vilakshan/pli-leaderboard/model"
)

// LumpsumTransactionsForMonth implements lumpsum.TransactionSource,
// reading every raw transaction dated inside the calendar month.
func (s *Store) LumpsumTransactionsForMonth(ctx context.Context, month model.Month) ([]model.LumpsumTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT rm_name, tx_type, scheme_name, amount, tx_date FROM lumpsum_transactions
		WHERE period_month = ?
	`, month.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: lumpsum transactions for %s: %w", month, err)
	}
	defer rows.Close()

	var out []model.LumpsumTransaction
	for rows.Next() {
		var rmName, txType, scheme, txDate string
		var amount float64
		if err := rows.Scan(&rmName, &txType, &scheme, &amount, &txDate); err != nil {
			return nil, fmt.Errorf("sqlite: scan lumpsum transaction: %w", err)
		}
		d, _ := time.Parse(time.RFC3339, txDate)
		out = append(out, model.LumpsumTransaction{
			RMName: rmName, TransactionDate: d, Amount: amount,
			Type: model.LumpsumTxType(txType), SchemeName: scheme,
		})
	}
	return out, rows.Err()
}

// InsertLumpsumTransaction is the ingestion-side counterpart used by
// whatever import job feeds the raw mutual-fund extract.
func (s *Store) InsertLumpsumTransaction(ctx context.Context, id string, tx model.LumpsumTransaction, month model.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO lumpsum_transactions (transaction_id, rm_name, period_month, tx_type, scheme_name, amount, tx_date)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			rm_name = excluded.rm_name, period_month = excluded.period_month, tx_type = excluded.tx_type,
			scheme_name = excluded.scheme_name, amount = excluded.amount, tx_date = excluded.tx_date
	`, id, tx.RMName, month.String(), string(tx.Type), tx.SchemeName, tx.Amount, tx.TransactionDate.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("sqlite: insert lumpsum transaction %q: %w", id, err)
	}
	return nil
}

// MeetingCountsForMonth implements lumpsum.MeetingSource.
func (s *Store) MeetingCountsForMonth(ctx context.Context, month model.Month) (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT rm_name, meeting_count FROM meetings_monthly WHERE period_month = ?`, month.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: meeting counts for %s: %w", month, err)
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var rmName string
		var count int
		if err := rows.Scan(&rmName, &count); err != nil {
			return nil, fmt.Errorf("sqlite: scan meeting count: %w", err)
		}
		out[rmName] = count
	}
	return out, rows.Err()
}

// UpsertMeetingCount records one RM's meeting count for a month.
func (s *Store) UpsertMeetingCount(ctx context.Context, month model.Month, rmName string, count int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO meetings_monthly (rm_name, period_month, meeting_count) VALUES (?, ?, ?)
		ON CONFLICT(rm_name, period_month) DO UPDATE SET meeting_count = excluded.meeting_count
	`, rmName, month.String(), count)
	if err != nil {
		return fmt.Errorf("sqlite: upsert meeting count %q/%s: %w", rmName, month, err)
	}
	return nil
}

// SipTransactionsForWindow implements sip.TransactionSource. Every stored
// document is returned unfiltered — sip.Ingest applies the window and
// reconciliation checks per fraction.
func (s *Store) SipTransactionsForWindow(ctx context.Context, win model.Window) ([]model.SipTransaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT rm_name, scheme_name, tx_type, sip_for, amount, reconciliation_status, fractions_json, validations_json
		FROM sip_transactions
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite: sip transactions: %w", err)
	}
	defer rows.Close()

	var out []model.SipTransaction
	for rows.Next() {
		var rmName, scheme, txType, sipFor, status, fractionsJSON, validationsJSON string
		var amount float64
		if err := rows.Scan(&rmName, &scheme, &txType, &sipFor, &amount, &status, &fractionsJSON, &validationsJSON); err != nil {
			return nil, fmt.Errorf("sqlite: scan sip transaction: %w", err)
		}
		var fractions []model.SipFraction
		if err := json.Unmarshal([]byte(fractionsJSON), &fractions); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal sip fractions: %w", err)
		}
		var validations []model.Validation
		if err := json.Unmarshal([]byte(validationsJSON), &validations); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal sip validations: %w", err)
		}
		out = append(out, model.SipTransaction{
			RMName: rmName, SchemeName: scheme, TransactionType: model.SipTxType(txType),
			TransactionFor: model.SipFor(sipFor), Amount: amount,
			ReconciliationStatus: model.ReconciliationStatus(status),
			Fractions:            fractions, Validations: validations,
		})
	}
	return out, rows.Err()
}

// InsertSipTransaction is the ingestion-side counterpart for the raw
// SIP/SWP extract.
func (s *Store) InsertSipTransaction(ctx context.Context, id string, tx model.SipTransaction) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	fractions, err := json.Marshal(tx.Fractions)
	if err != nil {
		return fmt.Errorf("sqlite: marshal sip fractions %q: %w", id, err)
	}
	validations, err := json.Marshal(tx.Validations)
	if err != nil {
		return fmt.Errorf("sqlite: marshal sip validations %q: %w", id, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sip_transactions (transaction_id, rm_name, scheme_name, tx_type, sip_for, amount, reconciliation_status, fractions_json, validations_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(transaction_id) DO UPDATE SET
			rm_name = excluded.rm_name, scheme_name = excluded.scheme_name, tx_type = excluded.tx_type,
			sip_for = excluded.sip_for, amount = excluded.amount, reconciliation_status = excluded.reconciliation_status,
			fractions_json = excluded.fractions_json, validations_json = excluded.validations_json
	`, id, tx.RMName, tx.SchemeName, string(tx.TransactionType), string(tx.TransactionFor), tx.Amount,
		string(tx.ReconciliationStatus), string(fractions), string(validations))
	if err != nil {
		return fmt.Errorf("sqlite: insert sip transaction %q: %w", id, err)
	}
	return nil
}

// InsurancePoliciesForMonth implements insurance.PolicySource, returning
// every policy whose conversion/renewal activity falls in the month.
func (s *Store) InsurancePoliciesForMonth(ctx context.Context, month model.Month) ([]model.InsurancePolicy, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT policy_json FROM insurance_policies WHERE period_month = ?`, month.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: insurance policies for %s: %w", month, err)
	}
	defer rows.Close()

	var out []model.InsurancePolicy
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("sqlite: scan insurance policy: %w", err)
		}
		var p model.InsurancePolicy
		if err := json.Unmarshal([]byte(raw), &p); err != nil {
			return nil, fmt.Errorf("sqlite: unmarshal insurance policy: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// InsertInsurancePolicy is the ingestion-side counterpart for the raw
// policy extract.
func (s *Store) InsertInsurancePolicy(ctx context.Context, p model.InsurancePolicy, month model.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("sqlite: marshal insurance policy %q: %w", p.PolicyNumber, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO insurance_policies (policy_number, rm_name, period_month, policy_json) VALUES (?, ?, ?, ?)
		ON CONFLICT(policy_number) DO UPDATE SET
			rm_name = excluded.rm_name, period_month = excluded.period_month, policy_json = excluded.policy_json
	`, p.PolicyNumber, p.ProcessingUser.Name, month.String(), string(raw))
	if err != nil {
		return fmt.Errorf("sqlite: insert insurance policy %q: %w", p.PolicyNumber, err)
	}
	return nil
}

// ReferralLeadsForMonth implements referral.LeadSource.
func (s *Store) ReferralLeadsForMonth(ctx context.Context, month model.Month) ([]model.ReferralLead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT lead_id, referral_type, converter_employee_id, referrer_employee_id, same_family_head, special_permission
		FROM referral_leads WHERE period_month = ?
	`, month.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: referral leads for %s: %w", month, err)
	}
	defer rows.Close()

	var out []model.ReferralLead
	for rows.Next() {
		var leadID, referralType, converter string
		var referrer sql.NullString
		var sameFamily, specialPermission int
		if err := rows.Scan(&leadID, &referralType, &converter, &referrer, &sameFamily, &specialPermission); err != nil {
			return nil, fmt.Errorf("sqlite: scan referral lead: %w", err)
		}
		lead := model.ReferralLead{
			LeadID: leadID, ReferralType: referralType, ConverterEmployeeID: model.EntityID(converter),
			SameFamilyHeadAsExisting: sameFamily != 0, Month: month,
		}
		if referrer.Valid && referrer.String != "" {
			id := model.EntityID(referrer.String)
			lead.ReferrerEmployeeID = &id
		}
		out = append(out, lead)
	}
	return out, rows.Err()
}

// InsertReferralLead is the ingestion-side counterpart for the raw
// referral extract. specialPermission is carried for audit visibility;
// the scoring rules in referral.Score only consult SameFamilyHeadAsExisting.
func (s *Store) InsertReferralLead(ctx context.Context, lead model.ReferralLead, specialPermission bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var referrer sql.NullString
	if lead.ReferrerEmployeeID != nil {
		referrer = sql.NullString{String: string(*lead.ReferrerEmployeeID), Valid: true}
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO referral_leads (lead_id, referral_type, converter_employee_id, referrer_employee_id, same_family_head, special_permission, period_month)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(lead_id) DO UPDATE SET
			referral_type = excluded.referral_type, converter_employee_id = excluded.converter_employee_id,
			referrer_employee_id = excluded.referrer_employee_id, same_family_head = excluded.same_family_head,
			special_permission = excluded.special_permission, period_month = excluded.period_month
	`, lead.LeadID, lead.ReferralType, string(lead.ConverterEmployeeID), referrer,
		boolToInt(lead.SameFamilyHeadAsExisting), boolToInt(specialPermission), lead.Month.String())
	if err != nil {
		return fmt.Errorf("sqlite: insert referral lead %q: %w", lead.LeadID, err)
	}
	return nil
}

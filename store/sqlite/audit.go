package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/vilakshan/pli-leaderboard/audit"
	"github.com/vilakshan/pli-leaderboard/config"
)

// Write implements audit.Writer, fanning out to the per-metric audit table
// matching the record's Metric.
func (s *Store) Write(ctx context.Context, rec audit.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	table, err := auditTable(rec.Metric)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (employee_id, period_month, written_at, payload_json) VALUES (?, ?, ?, ?)
	`, table), string(rec.EmployeeID), rec.Month.String(), rec.WrittenAt.Format(time.RFC3339), string(rec.Payload))
	if err != nil {
		return fmt.Errorf("sqlite: write audit record %s/%s/%s: %w", rec.Metric, rec.EmployeeID, rec.Month, err)
	}
	return nil
}

func auditTable(metric config.Metric) (string, error) {
	switch metric {
	case config.MetricLumpsum:
		return "audit_lumpsum", nil
	case config.MetricSip:
		return "audit_sip", nil
	case config.MetricInsurance:
		return "audit_insurance", nil
	case config.MetricReferral:
		return "audit_referral", nil
	default:
		return "", fmt.Errorf("sqlite: no audit table for metric %q", metric)
	}
}

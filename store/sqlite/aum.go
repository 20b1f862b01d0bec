package sqlite

import (
	"context"
	"fmt"

	"github.com/vilakshan/pli-leaderboard/model"
)

// RowsForMonth implements aum.Source.
func (s *Store) RowsForMonth(ctx context.Context, month model.Month) (map[string]model.Rupees, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		`SELECT rm_name, aum_start FROM aum_monthly WHERE period_month = ?`, month.String())
	if err != nil {
		return nil, fmt.Errorf("sqlite: aum rows for month %s: %w", month, err)
	}
	defer rows.Close()

	out := make(map[string]model.Rupees)
	for rows.Next() {
		var name string
		var amt float64
		if err := rows.Scan(&name, &amt); err != nil {
			return nil, fmt.Errorf("sqlite: scan aum row: %w", err)
		}
		out[name] = model.NewRupees(amt)
	}
	return out, rows.Err()
}

// UpsertAum writes one month's AUM extract, replacing any prior row for
// the same (month, rm_name).
func (s *Store) UpsertAum(ctx context.Context, month model.Month, rmName string, amount model.Rupees) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO aum_monthly (period_month, rm_name, aum_start) VALUES (?, ?, ?)
		ON CONFLICT(period_month, rm_name) DO UPDATE SET aum_start = excluded.aum_start
	`, month.String(), rmName, amount.Float64())
	if err != nil {
		return fmt.Errorf("sqlite: upsert aum %s/%s: %w", month, rmName, err)
	}
	return nil
}

/*
Package sqlite is the persistence layer for every collection in spec.md
§6.1: config documents and their archive, the RM/AUM directories, the
four scorers' output rows, the public leaderboard, leader credits,
adjustments, and the audit trail. It follows the teacher engine's
posture: WAL mode, a single *sql.DB guarded by a RWMutex (SQLite allows
concurrent readers but one writer at a time), and JSON-blob payload
columns next to a handful of indexed scalar columns used for lookups.
*/
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// Store wraps the shared *sql.DB handle every per-collection accessor in
// this package embeds. A single RWMutex serializes writers while letting
// reads proceed concurrently, matching SQLite's own single-writer model.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open creates (or attaches to) the SQLite file at path, enables WAL mode
// and foreign keys, and applies the schema migration.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("sqlite: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // go-sqlite3 + WAL: serialize at the connection-pool level too
	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

const schema = `
CREATE TABLE IF NOT EXISTS config_documents (
	metric TEXT PRIMARY KEY,
	schema_version INTEGER NOT NULL,
	version INTEGER NOT NULL,
	status TEXT NOT NULL,
	options_json TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	updated_by TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS config_audit (
	metric TEXT NOT NULL,
	version INTEGER NOT NULL,
	archived_at TEXT NOT NULL,
	replaced_by INTEGER NOT NULL,
	change_reason TEXT NOT NULL,
	config_snapshot TEXT NOT NULL,
	PRIMARY KEY (metric, version)
);

CREATE TABLE IF NOT EXISTS rm_directory (
	employee_id TEXT PRIMARY KEY,
	display_name TEXT NOT NULL,
	display_name_lower TEXT NOT NULL,
	is_active INTEGER NOT NULL,
	inactive_since TEXT,
	profile TEXT NOT NULL,
	tenure_years REAL NOT NULL DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_rm_directory_name_lower ON rm_directory(display_name_lower);

CREATE TABLE IF NOT EXISTS aum_monthly (
	period_month TEXT NOT NULL,
	rm_name TEXT NOT NULL,
	aum_start REAL NOT NULL,
	PRIMARY KEY (period_month, rm_name)
);

CREATE TABLE IF NOT EXISTS leaderboard_lumpsum (
	employee_id TEXT NOT NULL,
	period_month TEXT NOT NULL,
	row_json TEXT NOT NULL,
	PRIMARY KEY (employee_id, period_month)
);

CREATE TABLE IF NOT EXISTS mf_sip_leaderboard (
	employee_id TEXT NOT NULL,
	period_month TEXT NOT NULL,
	row_json TEXT NOT NULL,
	PRIMARY KEY (employee_id, period_month)
);

CREATE TABLE IF NOT EXISTS insurance_policy_scoring (
	employee_id TEXT NOT NULL,
	period_month TEXT NOT NULL,
	policy_number TEXT NOT NULL,
	row_json TEXT NOT NULL,
	PRIMARY KEY (employee_id, period_month, policy_number)
);

CREATE TABLE IF NOT EXISTS leaderboard_insurance (
	employee_id TEXT NOT NULL,
	period_month TEXT NOT NULL,
	row_json TEXT NOT NULL,
	PRIMARY KEY (employee_id, period_month)
);

CREATE TABLE IF NOT EXISTS referral_leaderboard (
	lead_id TEXT NOT NULL,
	employee_id TEXT NOT NULL,
	referral_type TEXT NOT NULL,
	period_month TEXT NOT NULL,
	row_json TEXT NOT NULL,
	PRIMARY KEY (lead_id, employee_id, referral_type)
);

CREATE TABLE IF NOT EXISTS public_leaderboard (
	employee_id TEXT NOT NULL,
	period_month TEXT NOT NULL,
	row_json TEXT NOT NULL,
	PRIMARY KEY (employee_id, period_month)
);

CREATE TABLE IF NOT EXISTS leader_credits (
	source TEXT NOT NULL,
	period_month TEXT NOT NULL,
	bucket TEXT NOT NULL,
	row_json TEXT NOT NULL,
	PRIMARY KEY (source, period_month, bucket)
);

CREATE TABLE IF NOT EXISTS leaderboard_adjustments (
	id TEXT PRIMARY KEY,
	employee_id TEXT NOT NULL,
	period_month TEXT NOT NULL,
	status TEXT NOT NULL,
	row_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_adjustments_employee_month ON leaderboard_adjustments(employee_id, period_month);

CREATE TABLE IF NOT EXISTS audit_lumpsum (
	employee_id TEXT NOT NULL, period_month TEXT NOT NULL, written_at TEXT NOT NULL, payload_json TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS audit_sip (
	employee_id TEXT NOT NULL, period_month TEXT NOT NULL, written_at TEXT NOT NULL, payload_json TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS audit_insurance (
	employee_id TEXT NOT NULL, period_month TEXT NOT NULL, written_at TEXT NOT NULL, payload_json TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS audit_referral (
	employee_id TEXT NOT NULL, period_month TEXT NOT NULL, written_at TEXT NOT NULL, payload_json TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS lumpsum_transactions (
	transaction_id TEXT PRIMARY KEY,
	rm_name TEXT NOT NULL,
	period_month TEXT NOT NULL,
	tx_type TEXT NOT NULL,
	scheme_name TEXT NOT NULL,
	amount REAL NOT NULL,
	tx_date TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_lumpsum_tx_rm_month ON lumpsum_transactions(rm_name, period_month);

CREATE TABLE IF NOT EXISTS meetings_monthly (
	rm_name TEXT NOT NULL,
	period_month TEXT NOT NULL,
	meeting_count INTEGER NOT NULL,
	PRIMARY KEY (rm_name, period_month)
);

CREATE TABLE IF NOT EXISTS sip_transactions (
	transaction_id TEXT PRIMARY KEY,
	rm_name TEXT NOT NULL,
	scheme_name TEXT NOT NULL,
	tx_type TEXT NOT NULL,
	sip_for TEXT NOT NULL,
	amount REAL NOT NULL,
	reconciliation_status TEXT NOT NULL,
	fractions_json TEXT NOT NULL,
	validations_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_sip_tx_rm ON sip_transactions(rm_name);

CREATE TABLE IF NOT EXISTS insurance_policies (
	policy_number TEXT PRIMARY KEY,
	rm_name TEXT NOT NULL,
	period_month TEXT NOT NULL,
	policy_json TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_insurance_policies_rm_month ON insurance_policies(rm_name, period_month);

CREATE TABLE IF NOT EXISTS referral_leads (
	lead_id TEXT PRIMARY KEY,
	referral_type TEXT NOT NULL,
	converter_employee_id TEXT NOT NULL,
	referrer_employee_id TEXT,
	same_family_head INTEGER NOT NULL,
	special_permission INTEGER NOT NULL,
	period_month TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_referral_leads_month ON referral_leads(period_month);

CREATE TABLE IF NOT EXISTS scorer_streaks (
	metric TEXT NOT NULL,
	employee_id TEXT NOT NULL,
	state_json TEXT NOT NULL,
	PRIMARY KEY (metric, employee_id)
);
`

func (s *Store) migrate() error {
	_, err := s.db.Exec(schema)
	return err
}

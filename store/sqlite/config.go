package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/vilakshan/pli-leaderboard/config"
)

// LoadActive implements config.Backend.
func (s *Store) LoadActive(ctx context.Context, metric config.Metric) ([]byte, config.DocMeta, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var optionsJSON, status, updatedBy, updatedAt string
	var schemaVersion, version int
	row := s.db.QueryRowContext(ctx,
		`SELECT options_json, schema_version, version, status, updated_at, updated_by
		 FROM config_documents WHERE metric = ?`, string(metric))
	err := row.Scan(&optionsJSON, &schemaVersion, &version, &status, &updatedAt, &updatedBy)
	if err == sql.ErrNoRows {
		return nil, config.DocMeta{}, false, nil
	}
	if err != nil {
		return nil, config.DocMeta{}, false, fmt.Errorf("sqlite: load active config %q: %w", metric, err)
	}
	ts, _ := time.Parse(time.RFC3339, updatedAt)
	return []byte(optionsJSON), config.DocMeta{
		SchemaVersion: schemaVersion, Version: version, Status: config.Status(status),
		UpdatedAt: ts, UpdatedBy: updatedBy,
	}, true, nil
}

// SaveActive implements config.Backend.
func (s *Store) SaveActive(ctx context.Context, metric config.Metric, meta config.DocMeta, raw []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config_documents (metric, schema_version, version, status, options_json, updated_at, updated_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(metric) DO UPDATE SET
			schema_version = excluded.schema_version,
			version = excluded.version,
			status = excluded.status,
			options_json = excluded.options_json,
			updated_at = excluded.updated_at,
			updated_by = excluded.updated_by
	`, string(metric), meta.SchemaVersion, meta.Version, string(meta.Status), string(raw),
		meta.UpdatedAt.Format(time.RFC3339), meta.UpdatedBy)
	if err != nil {
		return fmt.Errorf("sqlite: save active config %q: %w", metric, err)
	}
	return nil
}

// AppendArchive implements config.Backend.
func (s *Store) AppendArchive(ctx context.Context, entry config.ArchiveEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO config_audit (metric, version, archived_at, replaced_by, change_reason, config_snapshot)
		VALUES (?, ?, ?, ?, ?, ?)
	`, string(entry.Metric), entry.Version, entry.ArchivedAt.Format(time.RFC3339), entry.ReplacedBy,
		entry.ChangeReason, entry.ConfigSnapshot)
	if err != nil {
		return fmt.Errorf("sqlite: append config archive %q v%d: %w", entry.Metric, entry.Version, err)
	}
	return nil
}

// ListArchive implements config.Backend.
func (s *Store) ListArchive(ctx context.Context, metric config.Metric, limit int) ([]config.ArchiveEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT metric, version, archived_at, replaced_by, change_reason, config_snapshot
		FROM config_audit WHERE metric = ? ORDER BY version DESC LIMIT ?
	`, string(metric), limit)
	if err != nil {
		return nil, fmt.Errorf("sqlite: list config archive %q: %w", metric, err)
	}
	defer rows.Close()

	var out []config.ArchiveEntry
	for rows.Next() {
		var e config.ArchiveEntry
		var m, archivedAt string
		if err := rows.Scan(&m, &e.Version, &archivedAt, &e.ReplacedBy, &e.ChangeReason, &e.ConfigSnapshot); err != nil {
			return nil, fmt.Errorf("sqlite: scan config archive row: %w", err)
		}
		e.Metric = config.Metric(m)
		e.ArchivedAt, _ = time.Parse(time.RFC3339, archivedAt)
		out = append(out, e)
	}
	return out, rows.Err()
}

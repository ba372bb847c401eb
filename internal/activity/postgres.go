package activity

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresStore is the SQL-backed activity store. It keeps the same
// reverse-chronological row key as the table store so both backends
// enumerate newest records first under an ascending key scan.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates an activity store over the given database handle.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Append(ctx context.Context, rec Record) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO activity_records (container, row_key, action, file_name,
			directory, user_id, size_bytes, correlation_id, occurred_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rec.Container, rowKeyFor(rec.OccurredAt), string(rec.Action), rec.FileName,
		rec.Directory, rec.UserID, rec.SizeBytes, rec.CorrelationID, rec.OccurredAt.UTC())
	if err != nil {
		return fmt.Errorf("append activity record: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListByContainer(ctx context.Context, container string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT container, action, file_name, directory, user_id, size_bytes,
			correlation_id, occurred_at
		FROM activity_records
		WHERE container = $1
		ORDER BY row_key
		LIMIT $2`, container, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// ListAll returns the newest records across every container. The shared
// reverse-chronological row key makes the global scan a plain key order.
func (s *PostgresStore) ListAll(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT container, action, file_name, directory, user_id, size_bytes,
			correlation_id, occurred_at
		FROM activity_records
		ORDER BY row_key
		LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var recs []Record
	for rows.Next() {
		var rec Record
		var action string
		if err := rows.Scan(&rec.Container, &action, &rec.FileName, &rec.Directory,
			&rec.UserID, &rec.SizeBytes, &rec.CorrelationID, &rec.OccurredAt); err != nil {
			return nil, err
		}
		rec.Action = Action(action)
		recs = append(recs, rec)
	}
	return recs, rows.Err()
}

package store

import (
	"database/sql"
	"time"
)

// InsertExecution appends a new execution-log row (spec §3.3).
func (s *Store) InsertExecution(rec *ExecutionRecord) error {
	return withRetry(func() error {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		_, err := s.db.Exec(`INSERT INTO execution_log
			(id, work_item_id, action, status, agent_id, details, error_message,
			 duration_ms, timestamp, metadata, sequence_snapshot)
			VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
			rec.ID, rec.WorkItemID, rec.Action, rec.Status, rec.AgentID, rec.Details,
			rec.ErrorMessage, rec.DurationMillis, rec.Timestamp.UTC().Format(time.RFC3339),
			rec.Metadata, rec.SequenceSnapshot)
		return err
	})
}

// UpdateExecutionStatus transitions an execution record's status in place
// (spec §4.7 state machine: pending → running → succeeded|failed|cancelled).
func (s *Store) UpdateExecutionStatus(id, status, errMsg string, durationMillis int64) error {
	return withRetry(func() error {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		res, err := s.db.Exec(`UPDATE execution_log
			SET status = ?, error_message = ?, duration_ms = ?
			WHERE id = ?`, status, errMsg, durationMillis, id)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
}

// GetExecution fetches a single execution record by id.
func (s *Store) GetExecution(id string) (*ExecutionRecord, error) {
	row := s.db.QueryRow(`SELECT id, work_item_id, action, status, agent_id, details,
		error_message, duration_ms, timestamp, metadata, sequence_snapshot
		FROM execution_log WHERE id = ?`, id)
	return scanExecution(row)
}

// ListExecutionsForWorkItem returns history entries for one item, newest first.
func (s *Store) ListExecutionsForWorkItem(workItemID string) ([]*ExecutionRecord, error) {
	rows, err := s.db.Query(`SELECT id, work_item_id, action, status, agent_id, details,
		error_message, duration_ms, timestamp, metadata, sequence_snapshot
		FROM execution_log WHERE work_item_id = ? ORDER BY timestamp DESC`, workItemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*ExecutionRecord
	for rows.Next() {
		rec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// AllExecutions returns every execution-log row, used by progress analytics.
func (s *Store) AllExecutions() ([]*ExecutionRecord, error) {
	rows, err := s.db.Query(`SELECT id, work_item_id, action, status, agent_id, details,
		error_message, duration_ms, timestamp, metadata, sequence_snapshot
		FROM execution_log ORDER BY timestamp DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*ExecutionRecord
	for rows.Next() {
		rec, err := scanExecution(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func scanExecution(row rowScanner) (*ExecutionRecord, error) {
	var rec ExecutionRecord
	var ts string
	err := row.Scan(&rec.ID, &rec.WorkItemID, &rec.Action, &rec.Status, &rec.AgentID,
		&rec.Details, &rec.ErrorMessage, &rec.DurationMillis, &ts, &rec.Metadata,
		&rec.SequenceSnapshot)
	if err != nil {
		return nil, err
	}
	rec.Timestamp, _ = time.Parse(time.RFC3339, ts)
	return &rec, nil
}

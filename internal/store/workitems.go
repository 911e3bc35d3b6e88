package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// InsertWorkItem adds a new row (spec §6.2 add(name, rows)). The store has
// no in-place update (spec §4.5.2): callers delete-then-insert on change.
func (s *Store) InsertWorkItem(it *Item) error {
	return withRetry(func() error {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()
		return s.insertWorkItemTx(it)
	})
}

func (s *Store) insertWorkItemTx(it *Item) error {
	deps, _ := json.Marshal(it.Dependencies)
	tags, _ := json.Marshal(it.Tags)
	ac, _ := json.Marshal(it.AcceptanceCriteria)
	var completedAt string
	if it.CompletedAt != nil {
		completedAt = it.CompletedAt.UTC().Format(time.RFC3339)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO work_items
		(id, item_type, title, description, status, priority, progress_percentage,
		 parent_id, dependencies, sequence_number, order_index, tags,
		 acceptance_criteria, vector, created_at, updated_at, completed_at, metadata)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		it.ID, string(it.ItemType), it.Title, it.Description, string(it.Status),
		string(it.Priority), it.ProgressPercentage, it.ParentID, string(deps),
		it.SequenceNumber, it.OrderIndex, string(tags), string(ac),
		encodeVector(it.Vector), it.CreatedAt.UTC().Format(time.RFC3339),
		it.UpdatedAt.UTC().Format(time.RFC3339), completedAt, it.Metadata)
	if err != nil {
		return fmt.Errorf("insert work item: %w", err)
	}

	if _, err := tx.Exec(`INSERT INTO work_items_fts
		(id, title, description, acceptance_criteria, status, priority, item_type)
		VALUES (?,?,?,?,?,?,?)`,
		it.ID, it.Title, it.Description, strings.Join(it.AcceptanceCriteria, " "),
		string(it.Status), string(it.Priority), string(it.ItemType)); err != nil {
		return fmt.Errorf("insert fts row: %w", err)
	}

	return tx.Commit()
}

// DeleteWorkItem removes a row by id. Returns sql.ErrNoRows if absent.
func (s *Store) DeleteWorkItem(id string) error {
	return withRetry(func() error {
		s.writeMu.Lock()
		defer s.writeMu.Unlock()

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		defer tx.Rollback()

		res, err := tx.Exec(`DELETE FROM work_items WHERE id = ?`, id)
		if err != nil {
			return err
		}
		n, _ := res.RowsAffected()
		if n == 0 {
			return sql.ErrNoRows
		}
		if _, err := tx.Exec(`DELETE FROM work_items_fts WHERE id = ?`, id); err != nil {
			return err
		}
		return tx.Commit()
	})
}

// GetWorkItem fetches a single item by id.
func (s *Store) GetWorkItem(id string) (*Item, error) {
	row := s.db.QueryRow(workItemSelect+` WHERE id = ?`, id)
	return scanWorkItem(row)
}

// WorkItemFilter narrows ListWorkItems / CountWorkItems (spec §4.4
// `jive_get_work_item` list action's "filters").
type WorkItemFilter struct {
	ItemTypes        []ItemType
	Statuses         []Status
	Priorities       []Priority
	ParentID         *string // nil = no filter, "" = top-level only
	IncludeCompleted bool
	IncludeCancelled bool
	Limit            int
	Offset           int
}

const workItemSelect = `SELECT id, item_type, title, description, status, priority,
	progress_percentage, parent_id, dependencies, sequence_number, order_index,
	tags, acceptance_criteria, vector, created_at, updated_at, completed_at, metadata
	FROM work_items`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanWorkItem(row rowScanner) (*Item, error) {
	var it Item
	var deps, tags, ac, completedAt, createdAt, updatedAt string
	var vecB []byte
	err := row.Scan(&it.ID, &it.ItemType, &it.Title, &it.Description, &it.Status,
		&it.Priority, &it.ProgressPercentage, &it.ParentID, &deps, &it.SequenceNumber,
		&it.OrderIndex, &tags, &ac, &vecB, &createdAt, &updatedAt, &completedAt, &it.Metadata)
	if err != nil {
		return nil, err
	}
	_ = json.Unmarshal([]byte(deps), &it.Dependencies)
	_ = json.Unmarshal([]byte(tags), &it.Tags)
	_ = json.Unmarshal([]byte(ac), &it.AcceptanceCriteria)
	it.Vector = decodeVector(vecB)
	it.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	it.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	if completedAt != "" {
		t, err := time.Parse(time.RFC3339, completedAt)
		if err == nil {
			it.CompletedAt = &t
		}
	}
	return &it, nil
}

// ListWorkItems applies filter and returns matching rows ordered by
// order_index then created_at (spec §4.5.3 tie-break).
func (s *Store) ListWorkItems(filter WorkItemFilter) ([]*Item, error) {
	where, args := filter.buildWhere()
	q := workItemSelect + where + ` ORDER BY order_index ASC, created_at ASC`
	if filter.Limit > 0 {
		q += fmt.Sprintf(" LIMIT %d OFFSET %d", filter.Limit, filter.Offset)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Item
	for rows.Next() {
		it, err := scanWorkItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// CountWorkItems counts rows matching filter (spec §6.2 count(name)).
func (s *Store) CountWorkItems(filter WorkItemFilter) (int, error) {
	where, args := filter.buildWhere()
	var n int
	err := s.db.QueryRow(`SELECT COUNT(*) FROM work_items`+where, args...).Scan(&n)
	return n, err
}

// AllWorkItems returns every item in the namespace, used by hierarchy
// validation and sequence-number regeneration (spec §4.5.3, §4.5.7).
func (s *Store) AllWorkItems() ([]*Item, error) {
	return s.ListWorkItems(WorkItemFilter{IncludeCompleted: true, IncludeCancelled: true})
}

func (f WorkItemFilter) buildWhere() (string, []interface{}) {
	var clauses []string
	var args []interface{}

	if len(f.ItemTypes) > 0 {
		clauses = append(clauses, inClause("item_type", len(f.ItemTypes)))
		for _, t := range f.ItemTypes {
			args = append(args, string(t))
		}
	}
	if len(f.Statuses) > 0 {
		clauses = append(clauses, inClause("status", len(f.Statuses)))
		for _, st := range f.Statuses {
			args = append(args, string(st))
		}
	} else {
		if !f.IncludeCompleted {
			clauses = append(clauses, "status != ?")
			args = append(args, string(Completed))
		}
		if !f.IncludeCancelled {
			clauses = append(clauses, "status != ?")
			args = append(args, string(Cancelled))
		}
	}
	if len(f.Priorities) > 0 {
		clauses = append(clauses, inClause("priority", len(f.Priorities)))
		for _, p := range f.Priorities {
			args = append(args, string(p))
		}
	}
	if f.ParentID != nil {
		clauses = append(clauses, "parent_id = ?")
		args = append(args, *f.ParentID)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func inClause(col string, n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = "?"
	}
	return col + " IN (" + strings.Join(placeholders, ",") + ")"
}

// ErrNotFound names the not-found condition. The single-row lookups in
// this package return sql.ErrNoRows instead and do not use it.
var ErrNotFound = errors.New("store: not found")

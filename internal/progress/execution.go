// Package progress implements the execution state machine and progress
// analytics (spec §4.7).
package progress

import (
	"time"

	"github.com/google/uuid"

	"github.com/mehmetkoksal-w/jive-mcp/internal/jiveerr"
	"github.com/mehmetkoksal-w/jive-mcp/internal/store"
)

// Execution statuses, matching spec §4.7's state machine.
const (
	Pending   = "pending"
	Running   = "running"
	Succeeded = "succeeded"
	Failed    = "failed"
	Cancelled = "cancelled"
)

// validTransition enumerates the allowed edges of the execution state
// machine: pending -> running -> {succeeded, failed, cancelled}.
var validTransition = map[string]map[string]bool{
	Pending: {Running: true},
	Running: {Succeeded: true, Failed: true, Cancelled: true},
}

// Tracker records and queries execution history for one namespace.
type Tracker struct {
	store *store.Store
}

func New(s *store.Store) *Tracker { return &Tracker{store: s} }

// Start records a new pending->running execution for a work item (spec
// §4.7 execute action).
func (t *Tracker) Start(workItemID, action, agentID string) (*store.ExecutionRecord, error) {
	it, err := t.store.GetWorkItem(workItemID)
	if err != nil {
		return nil, jiveerr.New(jiveerr.WorkItemNotFound, workItemID)
	}
	rec := &store.ExecutionRecord{
		ID:               uuid.NewString(),
		WorkItemID:       workItemID,
		Action:           action,
		Status:           Running,
		AgentID:          agentID,
		Timestamp:        time.Now().UTC(),
		SequenceSnapshot: it.SequenceNumber,
	}
	if err := t.store.InsertExecution(rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Finish transitions a running execution to succeeded, failed, or
// cancelled, rejecting any edge not present in validTransition.
func (t *Tracker) Finish(executionID, newStatus, errMessage string, durationMillis int64) (*store.ExecutionRecord, error) {
	rec, err := t.store.GetExecution(executionID)
	if err != nil {
		return nil, jiveerr.New(jiveerr.ExecutionNotFound, executionID)
	}
	if !validTransition[rec.Status][newStatus] {
		return nil, jiveerr.New(jiveerr.InvalidTransition,
			rec.Status+" -> "+newStatus+" is not a valid execution transition")
	}
	if err := t.store.UpdateExecutionStatus(executionID, newStatus, errMessage, durationMillis); err != nil {
		return nil, err
	}
	return t.store.GetExecution(executionID)
}

// Get fetches a single execution record by id.
func (t *Tracker) Get(executionID string) (*store.ExecutionRecord, error) {
	rec, err := t.store.GetExecution(executionID)
	if err != nil {
		return nil, jiveerr.New(jiveerr.ExecutionNotFound, executionID)
	}
	return rec, nil
}

// History returns the execution log for one work item, newest first.
func (t *Tracker) History(workItemID string) ([]*store.ExecutionRecord, error) {
	return t.store.ListExecutionsForWorkItem(workItemID)
}

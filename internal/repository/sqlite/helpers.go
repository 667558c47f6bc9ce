package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"hopmap/internal/domain"
)

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// ============================================================================
// Time Helpers
// ============================================================================

// Times are stored as unix nanoseconds so ordering and round trips are exact.

func timeToNanos(t time.Time) int64 {
	return t.UTC().UnixNano()
}

func nanosToTime(n int64) time.Time {
	return time.Unix(0, n).UTC()
}

// ============================================================================
// State Row Scanner
// ============================================================================
//
// CRITICAL: Column order must match between:
// - stateColumns constant
// - scanArgs() return slice
// - stateInsertArgs()

// stateRow holds all columns from an applied_states query for scanning
type stateRow struct {
	ID           string
	SnapshotJSON string
	AppliedAt    int64
	Source       sql.NullString
}

// scanArgs returns pointers to all fields for sql.Scan()
// MUST match stateColumns order exactly: id, snapshot, applied_at, source
func (r *stateRow) scanArgs() []interface{} {
	return []interface{}{
		&r.ID,           // 1
		&r.SnapshotJSON, // 2
		&r.AppliedAt,    // 3
		&r.Source,       // 4
	}
}

// toDomain converts the scanned row to a domain.AppliedState
func (r *stateRow) toDomain() (*domain.AppliedState, error) {
	state := &domain.AppliedState{
		ID:        r.ID,
		AppliedAt: nanosToTime(r.AppliedAt),
		Source:    nullToString(r.Source),
	}

	if err := json.Unmarshal([]byte(r.SnapshotJSON), &state.Snapshot); err != nil {
		return nil, fmt.Errorf("unmarshal snapshot: %w", err)
	}
	if state.Snapshot == nil {
		state.Snapshot = domain.Snapshot{}
	}

	return state, nil
}

// stateColumns returns the SELECT column list for applied_states queries
const stateColumns = `id, snapshot, applied_at, source`

// ============================================================================
// State Write Helpers
// ============================================================================

// stateInsertArgs prepares arguments for applied_states INSERT
// Returns: id, snapshot, applied_at, source
func stateInsertArgs(state *domain.AppliedState) ([]interface{}, error) {
	snapshot := state.Snapshot
	if snapshot == nil {
		snapshot = domain.Snapshot{}
	}
	data, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	return []interface{}{
		state.ID,
		string(data),
		timeToNanos(state.AppliedAt),
		stringToNull(state.Source),
	}, nil
}

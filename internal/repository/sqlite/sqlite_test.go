package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"hopmap/internal/domain"
	"hopmap/internal/repository"
)

// ============================================================================
// Test Helpers
// ============================================================================

// newTestRepo creates an in-memory SQLite repository for testing
func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})
	return repo
}

// assertNoError fails the test if err is not nil
func assertNoError(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// assertEqual fails the test if expected != actual
func assertEqual(t *testing.T, expected, actual interface{}) {
	t.Helper()
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("expected %v, got %v", expected, actual)
	}
}

func testState(id string, at time.Time, loads map[string][2]int) *domain.AppliedState {
	snapshot := domain.Snapshot{}
	for k, v := range loads {
		key, err := domain.ParseEdgeKey(k)
		if err != nil {
			panic(err)
		}
		snapshot[key] = domain.NewEdgeLoad(v[0], v[1])
	}
	return &domain.AppliedState{ID: id, Snapshot: snapshot, AppliedAt: at.UTC()}
}

// ============================================================================
// Helper Function Tests
// ============================================================================

func TestNullToString(t *testing.T) {
	tests := []struct {
		name     string
		input    sql.NullString
		expected string
	}{
		{"valid", sql.NullString{String: "127.0.0.1:5000", Valid: true}, "127.0.0.1:5000"},
		{"invalid", sql.NullString{String: "ignored", Valid: false}, ""},
		{"empty valid", sql.NullString{String: "", Valid: true}, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assertEqual(t, tt.expected, nullToString(tt.input))
		})
	}
}

func TestStringToNull(t *testing.T) {
	if ns := stringToNull(""); ns.Valid {
		t.Errorf("expected empty string to map to NULL")
	}
	ns := stringToNull("hopctl")
	if !ns.Valid || ns.String != "hopctl" {
		t.Errorf("expected valid hopctl, got %+v", ns)
	}
}

func TestTimeNanosRoundTrip(t *testing.T) {
	at := time.Date(2024, 3, 1, 12, 30, 45, 123456789, time.FixedZone("MSK", 3*3600))
	got := nanosToTime(timeToNanos(at))
	if !got.Equal(at) {
		t.Errorf("expected %v, got %v", at, got)
	}
	if got.Location() != time.UTC {
		t.Errorf("expected UTC, got %v", got.Location())
	}
}

func TestStateRowToDomain(t *testing.T) {
	row := stateRow{
		ID:           "s1",
		SnapshotJSON: `{"A-B":[2,1],"B-C":[1,3]}`,
		AppliedAt:    1_700_000_000_000_000_000,
		Source:       sql.NullString{String: "10.0.0.5:4711", Valid: true},
	}

	state, err := row.toDomain()
	assertNoError(t, err)
	assertEqual(t, "s1", state.ID)
	assertEqual(t, "10.0.0.5:4711", state.Source)
	assertEqual(t, domain.NewEdgeLoad(2, 1), state.Snapshot[domain.NewEdgeKey("A", "B")])
	assertEqual(t, domain.NewEdgeLoad(1, 3), state.Snapshot[domain.NewEdgeKey("B", "C")])

	row.SnapshotJSON = `{"A_B":[1,1]}`
	if _, err := row.toDomain(); err == nil {
		t.Error("expected error for malformed edge key")
	}
}

// ============================================================================
// Repository Tests
// ============================================================================

func TestCurrentStateEmpty(t *testing.T) {
	repo := newTestRepo(t)

	state, err := repo.CurrentState(context.Background())
	assertNoError(t, err)
	if state != nil {
		t.Errorf("expected nil state, got %+v", state)
	}

	n, err := repo.CountStates(context.Background())
	assertNoError(t, err)
	assertEqual(t, 0, n)
}

func TestSaveAndCurrentState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	first := testState("first", base, map[string][2]int{"A-B": {1, 1}})
	second := testState("second", base.Add(time.Minute), map[string][2]int{"A-B": {2, 1}, "B-C": {1, 3}})
	second.Source = "127.0.0.1:5555"

	assertNoError(t, repo.SaveState(ctx, first))
	assertNoError(t, repo.SaveState(ctx, second))

	current, err := repo.CurrentState(ctx)
	assertNoError(t, err)
	assertEqual(t, second, current)
}

func TestCurrentStateFollowsInsertOrder(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	at := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	// identical timestamps must still resolve to the last insert
	assertNoError(t, repo.SaveState(ctx, testState("one", at, nil)))
	assertNoError(t, repo.SaveState(ctx, testState("two", at, nil)))

	current, err := repo.CurrentState(ctx)
	assertNoError(t, err)
	assertEqual(t, "two", current.ID)
	assertEqual(t, domain.Snapshot{}, current.Snapshot)
}

func TestSaveStateRejectsDuplicateID(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	assertNoError(t, repo.SaveState(ctx, testState("dup", time.Now(), nil)))
	if err := repo.SaveState(ctx, testState("dup", time.Now(), nil)); err == nil {
		t.Error("expected error for duplicate id")
	}
}

func TestSaveStateRejectsMissingID(t *testing.T) {
	repo := newTestRepo(t)
	if err := repo.SaveState(context.Background(), &domain.AppliedState{}); err == nil {
		t.Error("expected error for missing id")
	}
}

func TestGetState(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()

	saved := testState("s1", time.Now(), map[string][2]int{"C-A": {2, 2}})
	assertNoError(t, repo.SaveState(ctx, saved))

	got, err := repo.GetState(ctx, "s1")
	assertNoError(t, err)
	assertEqual(t, saved, got)

	_, err = repo.GetState(ctx, "missing")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestListStates(t *testing.T) {
	repo := newTestRepo(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	ids := []string{"a", "b", "c", "d"}
	for i, id := range ids {
		assertNoError(t, repo.SaveState(ctx, testState(id, base.Add(time.Duration(i)*time.Second), map[string][2]int{"A-B": {i + 1, 1}})))
	}

	tests := []struct {
		name  string
		limit int
		want  []string
	}{
		{"all", 0, []string{"d", "c", "b", "a"}},
		{"negative", -1, []string{"d", "c", "b", "a"}},
		{"limited", 2, []string{"d", "c"}},
		{"over", 10, []string{"d", "c", "b", "a"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			states, err := repo.ListStates(ctx, tt.limit)
			assertNoError(t, err)

			got := make([]string, len(states))
			for i, s := range states {
				got[i] = s.ID
			}
			assertEqual(t, tt.want, got)
		})
	}

	n, err := repo.CountStates(ctx)
	assertNoError(t, err)
	assertEqual(t, len(ids), n)
}

func TestListStatesEmpty(t *testing.T) {
	repo := newTestRepo(t)

	states, err := repo.ListStates(context.Background(), 5)
	assertNoError(t, err)
	if states == nil || len(states) != 0 {
		t.Errorf("expected empty non-nil slice, got %#v", states)
	}
}

func TestPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hopmap.db")
	ctx := context.Background()

	repo, err := New(path)
	assertNoError(t, err)
	saved := testState("persisted", time.Now(), map[string][2]int{"B-C": {5, 7}})
	assertNoError(t, repo.SaveState(ctx, saved))
	assertNoError(t, repo.Close())

	reopened, err := New(path)
	assertNoError(t, err)
	defer reopened.Close()

	current, err := reopened.CurrentState(ctx)
	assertNoError(t, err)
	assertEqual(t, saved, current)
}

func TestPing(t *testing.T) {
	repo := newTestRepo(t)
	assertNoError(t, repo.Ping(context.Background()))
}

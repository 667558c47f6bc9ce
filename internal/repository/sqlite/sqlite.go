package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"hopmap/internal/domain"
	"hopmap/internal/repository"

	_ "modernc.org/sqlite"
)

// Repository implements repository.Repository using SQLite
type Repository struct {
	db *sql.DB
}

var _ repository.Repository = (*Repository)(nil)

// New creates a new SQLite repository
func New(dbPath string) (*Repository, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One connection: pragmas stick and ":memory:" stays a single database.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set %q: %w", pragma, err)
		}
	}

	repo := &Repository{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return repo, nil
}

func (r *Repository) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS applied_states (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		snapshot JSON NOT NULL,
		applied_at INTEGER NOT NULL,
		source TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_applied_states_applied_at ON applied_states(applied_at);
	`

	_, err := r.db.Exec(schema)
	return err
}

// SaveState appends an applied state
func (r *Repository) SaveState(ctx context.Context, state *domain.AppliedState) error {
	if state == nil || state.ID == "" {
		return fmt.Errorf("save state: missing id")
	}

	args, err := stateInsertArgs(state)
	if err != nil {
		return fmt.Errorf("save state %s: %w", state.ID, err)
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO applied_states (`+stateColumns+`)
		VALUES (?, ?, ?, ?)
	`, args...)
	if err != nil {
		return fmt.Errorf("failed to insert state %s: %w", state.ID, err)
	}

	return nil
}

// CurrentState returns the most recently applied state, or nil if none
func (r *Repository) CurrentState(ctx context.Context) (*domain.AppliedState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+stateColumns+`
		FROM applied_states
		ORDER BY seq DESC
		LIMIT 1
	`)

	state, err := scanState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load current state: %w", err)
	}
	return state, nil
}

// GetState retrieves an applied state by id
func (r *Repository) GetState(ctx context.Context, id string) (*domain.AppliedState, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT `+stateColumns+`
		FROM applied_states
		WHERE id = ?
	`, id)

	state, err := scanState(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("state %s: %w", id, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load state %s: %w", id, err)
	}
	return state, nil
}

// ListStates returns up to limit applied states, newest first. A limit of
// zero or less returns every state.
func (r *Repository) ListStates(ctx context.Context, limit int) ([]domain.AppliedState, error) {
	query := `
		SELECT ` + stateColumns + `
		FROM applied_states
		ORDER BY seq DESC
	`
	var args []interface{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query states: %w", err)
	}
	defer rows.Close()

	states := []domain.AppliedState{}
	for rows.Next() {
		state, err := scanState(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan state: %w", err)
		}
		states = append(states, *state)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate states: %w", err)
	}

	return states, nil
}

// CountStates returns the number of stored states
func (r *Repository) CountStates(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM applied_states`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count states: %w", err)
	}
	return n, nil
}

// Ping checks the database connection
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection
func (r *Repository) Close() error {
	return r.db.Close()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanState(s scanner) (*domain.AppliedState, error) {
	var row stateRow
	if err := s.Scan(row.scanArgs()...); err != nil {
		return nil, err
	}
	return row.toDomain()
}

package repository

import (
	"context"
	"errors"

	"hopmap/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = errors.New("not found")

// Repository defines the interface for applied-state persistence
type Repository interface {
	// Write operations
	SaveState(ctx context.Context, state *domain.AppliedState) error

	// Read operations
	// CurrentState returns the most recently applied state, or nil if none
	CurrentState(ctx context.Context) (*domain.AppliedState, error)
	GetState(ctx context.Context, id string) (*domain.AppliedState, error)
	ListStates(ctx context.Context, limit int) ([]domain.AppliedState, error)
	CountStates(ctx context.Context) (int, error)

	// Ping checks the store is reachable
	Ping(ctx context.Context) error

	// Close releases resources
	Close() error
}

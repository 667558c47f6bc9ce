package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"hopmap/internal/codec"
	"hopmap/internal/config"
	"hopmap/internal/domain"
	"hopmap/internal/repository"
)

// ErrWrongConfiguration is wrapped by every rejected snapshot
var ErrWrongConfiguration = errors.New("wrong configuration")

// Reply statuses sent back to submitters
const (
	StatusWrongConfiguration = "Wrong configuration!"
	StatusAlreadyActive      = "Specified configuration is already active!"
	StatusApplied            = "Specified configuration applied!"
)

// Reply is the answer to an apply request
type Reply struct {
	Result bool   `json:"result"`
	Status string `json:"status"`
}

// ApplyResult describes how an apply request ended
type ApplyResult struct {
	Reply Reply
	// State is the stored state when the snapshot changed anything
	State *domain.AppliedState
}

// StateService applies load snapshots to the active topology
type StateService struct {
	repo     repository.Repository
	eventBus *EventBus
	topology atomic.Pointer[config.Topology]
	minLoad  int
	maxLoad  int
	now      func() time.Time

	mu sync.Mutex // serializes applies
}

// NewStateService creates a new state service. Loads outside
// [minLoad, maxLoad] are rejected.
func NewStateService(repo repository.Repository, topo *config.Topology, eventBus *EventBus, minLoad, maxLoad int) *StateService {
	s := &StateService{
		repo:     repo,
		eventBus: eventBus,
		minLoad:  minLoad,
		maxLoad:  maxLoad,
		now:      time.Now,
	}
	s.topology.Store(topo)
	return s
}

// Topology returns the active topology
func (s *StateService) Topology() *config.Topology {
	return s.topology.Load()
}

// SetTopology swaps the active topology and announces it
func (s *StateService) SetTopology(topo *config.Topology) {
	s.topology.Store(topo)
	s.eventBus.Publish(Event{
		Type: EventTopologyReloaded,
		Payload: map[string]interface{}{
			"nodes":    len(topo.Nodes()),
			"edges":    len(topo.InitialLoads()),
			"endpoint": topo.Endpoint(),
		},
	})
}

// Current returns the active loads: the topology's initial loads overlaid
// with the last applied state. Edges that are no longer in the topology are
// ignored.
func (s *StateService) Current(ctx context.Context) (domain.Snapshot, error) {
	return s.current(ctx, s.Topology())
}

func (s *StateService) current(ctx context.Context, topo *config.Topology) (domain.Snapshot, error) {
	current := topo.InitialLoads()

	state, err := s.repo.CurrentState(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load current state: %w", err)
	}
	if state == nil {
		return current, nil
	}

	for key, load := range state.Snapshot {
		if _, ok := current[key]; ok {
			current[key] = load
		}
	}
	return current, nil
}

// Apply validates snapshot and makes it active. Keys may name an edge in
// either orientation; a snapshot that leaves out edges keeps their current
// loads. A rejected snapshot returns the wrong-configuration reply together
// with an error wrapping ErrWrongConfiguration.
func (s *StateService) Apply(ctx context.Context, snapshot domain.Snapshot, source string) (*ApplyResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// one topology for both the checks and the merge
	topo := s.Topology()

	normalized, err := s.normalize(topo, snapshot)
	if err != nil {
		AppliesTotal.WithLabelValues("wrong").Inc()
		return &ApplyResult{Reply: Reply{Result: false, Status: StatusWrongConfiguration}}, err
	}

	current, err := s.current(ctx, topo)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	for key, load := range normalized {
		next[key] = load
	}

	if next.Equal(current) {
		AppliesTotal.WithLabelValues("already_active").Inc()
		return &ApplyResult{Reply: Reply{Result: true, Status: StatusAlreadyActive}}, nil
	}

	state := &domain.AppliedState{
		ID:        uuid.NewString(),
		Snapshot:  next,
		AppliedAt: s.now().UTC(),
		Source:    source,
	}
	if err := s.repo.SaveState(ctx, state); err != nil {
		return nil, fmt.Errorf("failed to save state: %w", err)
	}

	AppliesTotal.WithLabelValues("applied").Inc()
	s.eventBus.Publish(Event{
		Type:    EventStateApplied,
		Payload: state,
	})

	return &ApplyResult{Reply: Reply{Result: true, Status: StatusApplied}, State: state}, nil
}

// History returns up to limit applied states, newest first, and the number
// of states stored
func (s *StateService) History(ctx context.Context, limit int) ([]domain.AppliedState, int, error) {
	states, err := s.repo.ListStates(ctx, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list states: %w", err)
	}
	total, err := s.repo.CountStates(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count states: %w", err)
	}
	return states, total, nil
}

// State returns the applied state with the given id
func (s *StateService) State(ctx context.Context, id string) (*domain.AppliedState, error) {
	state, err := s.repo.GetState(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get state %s: %w", id, err)
	}
	return state, nil
}

// Routes returns the directed per-pair view of the active loads
func (s *StateService) Routes(ctx context.Context) ([]domain.Route, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return nil, err
	}
	return domain.DeriveRoutes(current), nil
}

// ExportTopology writes the active topology in the given format and returns
// the content type used
func (s *StateService) ExportTopology(format string, w io.Writer) (string, error) {
	c, err := codec.ForFormat(format)
	if err != nil {
		return "", err
	}

	spec := s.Topology().Spec()
	if err := c.Export(&spec, w); err != nil {
		return "", err
	}
	return c.ContentType(), nil
}

// Ping checks the backing store
func (s *StateService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

// normalize checks every key against the topology and rewrites reversed keys
// into the topology's orientation
func (s *StateService) normalize(topo *config.Topology, snapshot domain.Snapshot) (domain.Snapshot, error) {
	canonical := topo.InitialLoads()
	out := make(domain.Snapshot, len(snapshot))
	var problems []string

	for _, key := range snapshot.Keys() {
		load := snapshot[key]

		target := key
		if _, ok := canonical[key]; !ok {
			if _, ok := canonical[key.Reverse()]; !ok {
				problems = append(problems, fmt.Sprintf("edge %s is not in the topology", key))
				continue
			}
			target = key.Reverse()
			load = domain.NewEdgeLoad(load.Reverse(), load.Forward())
		}

		if _, dup := out[target]; dup {
			problems = append(problems, fmt.Sprintf("edge %s given in both orientations", target))
			continue
		}

		for _, v := range load {
			if v < s.minLoad || v > s.maxLoad {
				problems = append(problems, fmt.Sprintf("edge %s load %d outside [%d, %d]", key, v, s.minLoad, s.maxLoad))
				break
			}
		}
		out[target] = load
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrWrongConfiguration, strings.Join(problems, "; "))
	}
	return out, nil
}

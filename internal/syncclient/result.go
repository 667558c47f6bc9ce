package syncclient

import (
	"errors"
	"time"
)

// ErrUnexpectedStatus is wrapped by failures caused by a non-2xx response
var ErrUnexpectedStatus = errors.New("unexpected status")

// State is the feedback state of the trigger
type State int

const (
	StateEnabled State = iota
	StateSubmittedPendingAck
	StateAckedCoolingDown
)

func (s State) String() string {
	switch s {
	case StateEnabled:
		return "enabled"
	case StateSubmittedPendingAck:
		return "submitted_pending_ack"
	case StateAckedCoolingDown:
		return "acked_cooling_down"
	default:
		return "unknown"
	}
}

// Outcome classifies how a submission ended
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeTimeout Outcome = "timeout"
)

// Reply is the backend's answer, when it sends one
type Reply struct {
	Result bool   `json:"result"`
	Status string `json:"status"`
}

// Result describes one finished submission
type Result struct {
	ID         string
	Quiet      bool
	Outcome    Outcome
	StatusCode int
	Reply      *Reply
	Err        error
	Duration   time.Duration
}

// OK reports whether the submission succeeded
func (r Result) OK() bool {
	return r.Outcome == OutcomeSuccess
}

// Submission is a handle on an in-flight submit. Callers may ignore it.
type Submission struct {
	ID     string
	done   chan struct{}
	result Result
}

// Done is closed once the submission has settled
func (s *Submission) Done() <-chan struct{} {
	return s.done
}

// Result blocks until the submission settles and returns its result
func (s *Submission) Result() Result {
	<-s.done
	return s.result
}

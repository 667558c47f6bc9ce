package syncclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxReplyBytes bounds how much of a response body is read
const maxReplyBytes = 64 << 10

// Config holds sync client settings
type Config struct {
	// Timeout bounds each request, including reading the reply
	Timeout time.Duration
	// Cooldown is how long the trigger stays done after an acknowledgement
	Cooldown time.Duration
	// HTTPClient defaults to a plain client; Timeout is applied per request
	HTTPClient *http.Client
	// AfterFunc schedules the reversal; defaults to time.AfterFunc
	AfterFunc func(d time.Duration, f func())
}

// DefaultConfig returns the reference settings: 10s timeout, 1s cooldown
func DefaultConfig() Config {
	return Config{
		Timeout:  10 * time.Second,
		Cooldown: time.Second,
	}
}

// Client submits snapshots to one endpoint
type Client struct {
	endpoint  string
	http      *http.Client
	timeout   time.Duration
	cooldown  time.Duration
	afterFunc func(time.Duration, func())

	mu         sync.Mutex
	trigger    Trigger
	observer   func(Result)
	generation uint64
	state      State
	saved      string // handler captured when the current cycle left Enabled

	inflight sync.WaitGroup
}

// New creates a client for an absolute http(s) endpoint
func New(endpoint string, cfg Config) (*Client, error) {
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	if !u.IsAbs() || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("endpoint %q must be an absolute http(s) URL", endpoint)
	}

	defaults := DefaultConfig()
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaults.Timeout
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = defaults.Cooldown
	}
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{}
	}
	if cfg.AfterFunc == nil {
		cfg.AfterFunc = func(d time.Duration, f func()) { time.AfterFunc(d, f) }
	}

	return &Client{
		endpoint:  endpoint,
		http:      cfg.HTTPClient,
		timeout:   cfg.Timeout,
		cooldown:  cfg.Cooldown,
		afterFunc: cfg.AfterFunc,
		state:     StateEnabled,
	}, nil
}

// Endpoint returns the URL snapshots are posted to
func (c *Client) Endpoint() string {
	return c.endpoint
}

// SetTrigger sets the element that receives feedback from non-quiet submissions
func (c *Client) SetTrigger(t Trigger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.trigger = t
}

// SetObserver sets a callback invoked with every settled submission
func (c *Client) SetObserver(fn func(Result)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.observer = fn
}

// State returns the current feedback state
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Submit serializes snapshot and posts it in the background. Only a snapshot
// that cannot be serialized is reported here; transmission problems arrive in
// the Result.
func (c *Client) Submit(snapshot any, quiet bool) (*Submission, error) {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return nil, fmt.Errorf("serialize snapshot: %w", err)
	}

	sub := &Submission{
		ID:   uuid.NewString(),
		done: make(chan struct{}),
	}

	var token uint64
	if !quiet {
		token = c.begin()
	}

	c.inflight.Add(1)
	go c.send(sub, body, quiet, token)

	return sub, nil
}

// Wait blocks until every in-flight submission has settled. Pending reversals
// are not waited for.
func (c *Client) Wait() {
	c.inflight.Wait()
}

// begin opens a new feedback cycle and returns its generation
func (c *Client) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	if c.state == StateEnabled && c.trigger != nil {
		c.saved = c.trigger.ClickHandler()
	}
	c.state = StateSubmittedPendingAck
	return c.generation
}

func (c *Client) send(sub *Submission, body []byte, quiet bool, token uint64) {
	defer c.inflight.Done()

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	res := c.post(ctx, body)
	cancel()

	res.ID = sub.ID
	res.Quiet = quiet
	res.Duration = time.Since(start)

	if !quiet {
		c.settle(token, res.OK())
	}
	observe(res)

	if res.Err != nil {
		log.Printf("Snapshot submission %s %s: %v", sub.ID, res.Outcome, res.Err)
	}

	sub.result = res
	close(sub.done)

	c.mu.Lock()
	observer := c.observer
	c.mu.Unlock()
	if observer != nil {
		observer(res)
	}
}

func (c *Client) post(ctx context.Context, body []byte) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return Result{Outcome: OutcomeFailure, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return Result{Outcome: OutcomeTimeout, Err: fmt.Errorf("post snapshot: %w", context.DeadlineExceeded)}
		}
		return Result{Outcome: OutcomeFailure, Err: fmt.Errorf("post snapshot: %w", err)}
	}
	defer resp.Body.Close()

	res := Result{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxReplyBytes))
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			res.Outcome = OutcomeTimeout
			res.Err = fmt.Errorf("read reply: %w", context.DeadlineExceeded)
			return res
		}
		res.Outcome = OutcomeFailure
		res.Err = fmt.Errorf("read reply: %w", err)
		return res
	}

	var reply Reply
	if json.Unmarshal(data, &reply) == nil && reply.Status != "" {
		res.Reply = &reply
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Outcome = OutcomeFailure
		res.Err = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		if res.Reply != nil {
			res.Err = fmt.Errorf("%w: %d (%s)", ErrUnexpectedStatus, resp.StatusCode, res.Reply.Status)
		}
		return res
	}

	res.Outcome = OutcomeSuccess
	return res
}

// settle applies the outcome of generation token to the trigger. Outcomes of
// superseded generations are dropped; the newer cycle owns the trigger.
func (c *Client) settle(token uint64, ok bool) {
	c.mu.Lock()
	if token != c.generation {
		c.mu.Unlock()
		return
	}

	if !ok {
		c.restoreLocked()
		c.mu.Unlock()
		return
	}

	c.state = StateAckedCoolingDown
	if c.trigger != nil {
		c.trigger.SetDone(true)
		c.trigger.SetClickHandler("")
	}
	c.mu.Unlock()

	c.afterFunc(c.cooldown, func() { c.reverse(token) })
}

// reverse ends the cooldown of generation token if it is still current
func (c *Client) reverse(token uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if token != c.generation || c.state != StateAckedCoolingDown {
		return
	}
	c.restoreLocked()
}

func (c *Client) restoreLocked() {
	c.state = StateEnabled
	if c.trigger != nil {
		c.trigger.SetClickHandler(c.saved)
		c.trigger.SetDone(false)
	}
}

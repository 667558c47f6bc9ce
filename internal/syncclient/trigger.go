package syncclient

import "sync"

// Trigger is the UI element whose click re-submits and whose look shows the
// feedback state. The click handler is an opaque attribute value; an empty
// string means no handler.
type Trigger interface {
	ClickHandler() string
	SetClickHandler(handler string)
	SetDone(done bool)
}

// Element is an in-memory Trigger, safe for concurrent use
type Element struct {
	mu      sync.Mutex
	handler string
	done    bool
}

// NewElement creates an enabled element with the given click handler
func NewElement(handler string) *Element {
	return &Element{handler: handler}
}

// ClickHandler returns the current click handler
func (e *Element) ClickHandler() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handler
}

// SetClickHandler replaces the click handler
func (e *Element) SetClickHandler(handler string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.handler = handler
}

// SetDone toggles the done mark
func (e *Element) SetDone(done bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.done = done
}

// Done reports whether the element is marked done
func (e *Element) Done() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.done
}

// Clickable reports whether the element has a handler and is not marked done
func (e *Element) Clickable() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.handler != "" && !e.done
}

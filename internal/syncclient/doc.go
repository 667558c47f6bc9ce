// Package syncclient pushes topology snapshots to the backend and drives the
// feedback cycle of the UI element that triggered the push.
//
// # Protocol
//
// Submit serializes a snapshot to JSON and POSTs it to the configured endpoint
// with Content-Type application/json. The call returns at once; the request
// runs on its own goroutine, bounded by Config.Timeout. Every submission makes
// exactly one attempt and ends in a Result with outcome success, failure or
// timeout, which is delivered to the observer.
//
// # Feedback
//
// A non-quiet submission drives the trigger through three states:
//
//	Enabled --Submit--> SubmittedPendingAck --2xx--> AckedCoolingDown --cooldown--> Enabled
//	                    SubmittedPendingAck --failure/timeout--> Enabled
//
// On entering SubmittedPendingAck from Enabled the trigger's click handler is
// captured. Success marks the trigger done and clears its handler; the reversal
// puts the captured handler back and clears the done mark. Failure and timeout
// do the same immediately.
//
// Each non-quiet submission takes a new generation number. Acknowledgements and
// reversals that belong to an older generation are ignored, so an overlapping
// submission can never be re-enabled by a stale timer.
//
// Quiet submissions never touch the trigger or the generation.
package syncclient

/*
Package learning owns the live usage state of a session.

The usage package is pure: every write returns a new State. Tracker is the
single holder of the current State and serializes every write through one
lock, so concurrent callers (CLI, MCP handlers) never interleave their
read-modify-write cycles. Uses can be applied synchronously (Use) or queued
and batched in the background (Track); either way the serialized state is
written to storage after each batch.
*/
package learning

import (
	"github.com/khanglvm/strapd/internal/usage"
)

// Event is a single tool use waiting to be applied.
type Event struct {
	// ToolID is the tool that was used.
	ToolID string

	// At is when the tool was used, in milliseconds since the epoch.
	// Queued events keep their original timestamp even if applied later.
	At int64
}

// NewEvent creates an event for toolID stamped by clock.
func NewEvent(toolID string, clock usage.Clock) Event {
	if clock == nil {
		clock = usage.SystemClock{}
	}
	return Event{ToolID: toolID, At: clock.Now()}
}

// apply records the event on s. LastUsed never moves backwards, even when a
// queued event is applied after a newer synchronous use.
func (e Event) apply(s usage.State) (usage.State, error) {
	at := e.At
	if rec, ok := s.Lookup(e.ToolID); ok && rec.LastUsed > at {
		at = rec.LastUsed
	}
	return usage.RecordUse(s, e.ToolID, usage.FixedClock(at))
}

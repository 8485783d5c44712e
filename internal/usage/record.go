/*
Package usage implements tool usage ranking with precomputed scores.

A State holds one Record per tool that has ever been used together with a
ranking of all tracked tool ids, sorted by a blended frequency/recency score.
All cost is paid on write: RecordUse rebuilds the ranking from scratch and
returns a new State, so TopIDs and Rank are plain reads.

States are immutable values. No operation in this package mutates a State it
receives, performs I/O, or blocks. Callers that share a State slot across
goroutines must serialize their writes (see package learning).
*/
package usage

import (
	"errors"
	"time"
)

// ErrEmptyToolID is returned by RecordUse when the tool id is empty or blank.
var ErrEmptyToolID = errors.New("usage: empty tool id")

// Record holds usage statistics for a single tool.
type Record struct {
	// ToolID is the stable identifier of the tool.
	ToolID string `json:"toolId"`

	// Count is the number of times the tool was used (always >= 1).
	Count int `json:"count"`

	// LastUsed is the time of the most recent use, in milliseconds since the epoch.
	LastUsed int64 `json:"lastUsed"`
}

// Clock returns the current wall-clock time in milliseconds since the epoch.
type Clock interface {
	Now() int64
}

// ClockFunc adapts an ordinary function to the Clock interface.
type ClockFunc func() int64

// Now calls f().
func (f ClockFunc) Now() int64 {
	return f()
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current time in milliseconds.
func (SystemClock) Now() int64 {
	return time.Now().UnixMilli()
}

// FixedClock always returns the same instant. Useful in tests.
type FixedClock int64

// Now returns c.
func (c FixedClock) Now() int64 {
	return int64(c)
}

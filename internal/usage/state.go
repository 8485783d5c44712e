package usage

import (
	"sort"
	"strings"
)

// DefaultTopLimit is the number of ids TopIDs callers usually ask for.
const DefaultTopLimit = 5

// State is an immutable snapshot of tool usage and its precomputed ranking.
//
// The zero value is an empty state. rankedIDs is always a permutation of the
// keys of records right after a write; a deserialized State may instead carry
// an empty ranking until the next RecordUse.
type State struct {
	records   map[string]Record
	rankedIDs []string
}

// NewState returns an empty state with no records and no ranking.
func NewState() State {
	return State{}
}

// Len returns the number of tracked tools.
func (s State) Len() int {
	return len(s.records)
}

// Lookup returns the record for toolID, if tracked.
func (s State) Lookup(toolID string) (Record, bool) {
	rec, ok := s.records[toolID]
	return rec, ok
}

// RankedIDs returns a copy of the ranking, best first.
func (s State) RankedIDs() []string {
	ids := make([]string, len(s.rankedIDs))
	copy(ids, s.rankedIDs)
	return ids
}

// Records returns all records in ranking order. Records missing from the
// ranking follow, sorted by tool id.
func (s State) Records() []Record {
	out := make([]Record, 0, len(s.records))
	seen := make(map[string]bool, len(s.records))

	for _, id := range s.rankedIDs {
		if rec, ok := s.records[id]; ok && !seen[id] {
			out = append(out, rec)
			seen[id] = true
		}
	}

	rest := make([]string, 0, len(s.records)-len(out))
	for id := range s.records {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		out = append(out, s.records[id])
	}

	return out
}

// RecordUse returns a new State with one more use of toolID at clock.Now().
//
// The ranking is rebuilt over every record: maxCount and now are sampled once
// per call and tools are sorted by Score descending, ties broken by tool id
// ascending. s itself is left untouched. A nil clock means SystemClock.
func RecordUse(s State, toolID string, clock Clock) (State, error) {
	if strings.TrimSpace(toolID) == "" {
		return s, ErrEmptyToolID
	}
	if clock == nil {
		clock = SystemClock{}
	}

	now := clock.Now()

	records := make(map[string]Record, len(s.records)+1)
	for id, rec := range s.records {
		records[id] = rec
	}

	rec := records[toolID]
	rec.ToolID = toolID
	rec.Count++
	rec.LastUsed = now
	records[toolID] = rec

	return State{
		records:   records,
		rankedIDs: rankIDs(records, now),
	}, nil
}

// TopIDs returns the first limit ids of the ranking. A negative limit is
// treated as zero. The returned slice is never shared with s.
func TopIDs(s State, limit int) []string {
	if limit < 0 {
		limit = 0
	}
	if limit > len(s.rankedIDs) {
		limit = len(s.rankedIDs)
	}

	ids := make([]string, limit)
	copy(ids, s.rankedIDs[:limit])
	return ids
}

// rankIDs sorts every record key by score (descending) then id (ascending).
func rankIDs(records map[string]Record, now int64) []string {
	highest := maxCount(records)

	scores := make(map[string]float64, len(records))
	ids := make([]string, 0, len(records))
	for id, rec := range records {
		scores[id] = Score(rec, highest, now)
		ids = append(ids, id)
	}

	sort.Slice(ids, func(i, j int) bool {
		si, sj := scores[ids[i]], scores[ids[j]]
		if si != sj {
			return si > sj
		}
		return ids[i] < ids[j]
	})

	return ids
}

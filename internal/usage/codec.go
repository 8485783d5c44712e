package usage

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// persistedState is the storage form of a State.
//
//	{"records":[{"toolId":"base64-encode","count":3,"lastUsed":1718000000000}],
//	 "rankedIds":["base64-encode"]}
type persistedState struct {
	Records   []Record `json:"records"`
	RankedIDs []string `json:"rankedIds"`
}

// The browser build of the toolkit stored {"usage":[...],"sorted":[...]} with
// the same record fields. Deserialize reads that layout when "records" is
// absent; Serialize always writes the current one.
const (
	legacyRecordsKey = "usage"
	legacyRankingKey = "sorted"
)

var (
	errMissingRecords  = errors.New("usage: persisted state has no records")
	errInvalidRanking  = errors.New("usage: persisted ranking is not a permutation of records")
	errMalformedRecord = errors.New("usage: persisted state has malformed records")
)

// Serialize encodes s as a JSON document holding its records and ranking.
func Serialize(s State) string {
	data, err := json.Marshal(persistedState{
		Records:   s.Records(),
		RankedIDs: s.RankedIDs(),
	})
	if err != nil {
		// Records and strings always marshal.
		panic(fmt.Sprintf("usage: serialize: %v", err))
	}
	return string(data)
}

// Deserialize decodes a document produced by Serialize.
//
// The legacy {"usage","sorted"} layout is also accepted. Broken data never
// fails: unparseable input or a missing records collection yields NewState(), and a missing or invalid ranking yields the
// records with an empty ranking.
func Deserialize(data string) State {
	s, _ := DeserializeWithError(data)
	return s
}

// DeserializeWithError is Deserialize that also reports what it recovered from.
// The returned State is always usable, even when err is non-nil.
func DeserializeWithError(data string) (State, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(data), &fields); err != nil {
		return NewState(), fmt.Errorf("usage: parse persisted state: %w", err)
	}

	recordsKey, rankingKey := "records", "rankedIds"
	if _, ok := fields[recordsKey]; !ok {
		if _, legacy := fields[legacyRecordsKey]; legacy {
			recordsKey, rankingKey = legacyRecordsKey, legacyRankingKey
		}
	}

	rawRecords, ok := fields[recordsKey]
	if !ok || isNull(rawRecords) {
		return NewState(), errMissingRecords
	}

	var list []Record
	if err := json.Unmarshal(rawRecords, &list); err != nil {
		return NewState(), fmt.Errorf("%w: %v", errMalformedRecord, err)
	}

	var recoverErr error
	records := make(map[string]Record, len(list))
	for _, rec := range list {
		if strings.TrimSpace(rec.ToolID) == "" || rec.Count < 1 {
			recoverErr = errMalformedRecord
			continue
		}
		if prev, dup := records[rec.ToolID]; dup {
			// Keep the entry that saw the most use.
			recoverErr = errMalformedRecord
			if prev.Count >= rec.Count {
				continue
			}
		}
		records[rec.ToolID] = rec
	}

	ranked, err := decodeRanking(fields[rankingKey], records)
	if err != nil {
		ranked = nil
		if recoverErr == nil {
			recoverErr = err
		}
	}

	return State{records: records, rankedIDs: ranked}, recoverErr
}

// decodeRanking accepts the ranking only if it lists every record exactly once.
func decodeRanking(raw json.RawMessage, records map[string]Record) ([]string, error) {
	if len(raw) == 0 || isNull(raw) {
		if len(records) == 0 {
			return nil, nil
		}
		return nil, errInvalidRanking
	}

	var ids []string
	if err := json.Unmarshal(raw, &ids); err != nil {
		return nil, fmt.Errorf("%w: %v", errInvalidRanking, err)
	}

	if len(ids) != len(records) {
		return nil, errInvalidRanking
	}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if _, ok := records[id]; !ok || seen[id] {
			return nil, errInvalidRanking
		}
		seen[id] = true
	}

	return ids, nil
}

func isNull(raw json.RawMessage) bool {
	return string(raw) == "null"
}

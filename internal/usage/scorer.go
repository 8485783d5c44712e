package usage

const (
	// frequencyWeight is the weight for normalized use count (0.7 = 70%).
	frequencyWeight = 0.7

	// recencyWeight is the weight for recency decay (0.3 = 30%).
	recencyWeight = 0.3

	// msPerDay converts millisecond deltas into days.
	msPerDay = 86_400_000.0
)

// Score calculates a tool's ranking score.
// Formula: 0.7*frequency + 0.3*recency
//
// maxCount is the highest Count across all tracked records and now is the
// instant the ranking is computed for. A LastUsed in the future yields a
// recency above 1; that is a clock anomaly and is not corrected here.
func Score(rec Record, maxCount int, now int64) float64 {
	return frequencyWeight*calculateFrequency(rec, maxCount) + recencyWeight*calculateRecency(rec, now)
}

// calculateFrequency normalizes the use count against the busiest tool (0-1).
func calculateFrequency(rec Record, maxCount int) float64 {
	if maxCount <= 0 {
		return 0.0
	}
	return float64(rec.Count) / float64(maxCount)
}

// calculateRecency decays hyperbolically with the days since last use.
// Used today: 1.0, yesterday: 0.5, a week ago: 0.125.
func calculateRecency(rec Record, now int64) float64 {
	daysSince := float64(now-rec.LastUsed) / msPerDay
	return 1.0 / (1.0 + daysSince)
}

// maxCount returns the highest use count in records.
func maxCount(records map[string]Record) int {
	highest := 0
	for _, rec := range records {
		if rec.Count > highest {
			highest = rec.Count
		}
	}
	return highest
}

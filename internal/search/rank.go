package search

import (
	"sort"

	"github.com/khanglvm/strapd/internal/usage"
)

// RelevanceTolerance is how far below the best hit of a bucket a score may
// fall and still count as equally relevant. Bleve scores of near-identical
// documents differ by small fractions, so exact equality almost never ties.
const RelevanceTolerance = 0.15

// RankResults reorders hits of similar relevance so that more used tools
// come first.
//
// Hits are walked best first; a bucket starts at its best hit and takes
// every following hit scoring at least (1-RelevanceTolerance) of it. Buckets
// keep their relevance order, and inside a bucket used tools come first in
// usage-rank order. Unused hits keep their relative order. The input is not
// modified.
func RankResults(results []Result, s usage.State) []Result {
	out := make([]Result, len(results))
	copy(out, results)
	sort.SliceStable(out, func(a, b int) bool { return out[a].Score > out[b].Score })

	ranked := s.RankedIDs()
	if len(ranked) == 0 {
		return out
	}

	position := make(map[string]int, len(ranked))
	for i, id := range ranked {
		position[id] = i
	}
	rankOf := func(id string) int {
		if p, ok := position[id]; ok {
			return p
		}
		return len(ranked)
	}

	for start := 0; start < len(out); {
		floor := out[start].Score * (1 - RelevanceTolerance)
		end := start + 1
		for end < len(out) && out[end].Score >= floor {
			end++
		}

		bucket := out[start:end]
		sort.SliceStable(bucket, func(a, b int) bool {
			return rankOf(bucket[a].ToolID) < rankOf(bucket[b].ToolID)
		})
		start = end
	}

	return out
}

// RankedSearch searches every matching tool, reorders the hits with
// RankResults and only then cuts them to limit, so a frequently used tool
// is not lost to truncation before usage is considered. An empty category
// searches the whole catalog.
func (i *Indexer) RankedSearch(text, category string, limit int, s usage.State) ([]Result, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	total, err := i.Count()
	if err != nil {
		return nil, err
	}
	pool := int(total)
	if pool < limit {
		pool = limit
	}

	var results []Result
	if category == "" {
		results, err = i.Search(text, pool)
	} else {
		results, err = i.SearchByCategory(text, category, pool)
	}
	if err != nil {
		return nil, err
	}

	results = RankResults(results, s)
	if len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

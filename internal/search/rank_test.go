package search

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/khanglvm/strapd/internal/usage"
)

func stateWith(t *testing.T, uses ...string) usage.State {
	t.Helper()

	s := usage.NewState()
	for _, id := range uses {
		var err error
		s, err = usage.RecordUse(s, id, usage.FixedClock(1_700_000_000_000))
		if err != nil {
			t.Fatalf("RecordUse(%q) failed: %v", id, err)
		}
	}
	return s
}

func TestRankResults(t *testing.T) {
	results := []Result{
		{ToolID: "a", Score: 2},
		{ToolID: "b", Score: 1},
		{ToolID: "c", Score: 1},
		{ToolID: "d", Score: 1},
		{ToolID: "e", Score: 0.5},
	}

	tests := []struct {
		name string
		uses []string
		want []string
	}{
		{
			name: "no usage keeps order",
			want: []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "usage breaks ties",
			uses: []string{"d", "d", "c"},
			want: []string{"a", "d", "c", "b", "e"},
		},
		{
			name: "usage never beats relevance",
			uses: []string{"e", "e", "e"},
			want: []string{"a", "b", "c", "d", "e"},
		},
		{
			name: "unknown tools ignored",
			uses: []string{"zzz", "c"},
			want: []string{"a", "c", "b", "d", "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resultIDs(RankResults(results, stateWith(t, tt.uses...)))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("RankResults() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	if results[1].ToolID != "b" {
		t.Error("RankResults modified its input")
	}
}

func TestSearchThenRank(t *testing.T) {
	indexer := newCatalogIndexer(t)

	results, err := indexer.Search("", 100)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	ranked := RankResults(results, stateWith(t, "uuid-v7", "uuid-v7", "json-minify"))
	want := []string{"uuid-v7", "json-minify"}
	if diff := cmp.Diff(want, resultIDs(ranked)[:2]); diff != "" {
		t.Errorf("ranked head mismatch (-want +got):\n%s", diff)
	}
	if len(ranked) != len(results) {
		t.Errorf("ranking changed result count: %d vs %d", len(ranked), len(results))
	}
}

func TestRankResultsWithinTolerance(t *testing.T) {
	results := []Result{
		{ToolID: "a", Score: 1.00},
		{ToolID: "b", Score: 0.95},
		{ToolID: "c", Score: 0.90},
		{ToolID: "d", Score: 0.60},
		{ToolID: "e", Score: 0.55},
	}

	tests := []struct {
		name string
		uses []string
		want []string
	}{
		{
			name: "close scores share a bucket",
			uses: []string{"c", "c", "b"},
			want: []string{"c", "b", "a", "d", "e"},
		},
		{
			name: "second bucket reordered on its own",
			uses: []string{"e"},
			want: []string{"a", "b", "c", "e", "d"},
		},
		{
			name: "distant scores never swap",
			uses: []string{"d", "d", "d"},
			want: []string{"a", "b", "c", "d", "e"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resultIDs(RankResults(results, stateWith(t, tt.uses...)))
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("RankResults() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRankResultsSortsUnorderedInput(t *testing.T) {
	results := []Result{
		{ToolID: "low", Score: 0.1},
		{ToolID: "high", Score: 3},
	}

	got := resultIDs(RankResults(results, usage.NewState()))
	if diff := cmp.Diff([]string{"high", "low"}, got); diff != "" {
		t.Errorf("RankResults() mismatch (-want +got):\n%s", diff)
	}
}

func TestRankedSearchRanksBeforeLimit(t *testing.T) {
	indexer := newCatalogIndexer(t)
	state := stateWith(t, "uuid-v7")

	plain, err := indexer.Search("", 1)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(plain) != 1 || plain[0].ToolID == "uuid-v7" {
		t.Fatalf("expected a different first hit without usage, got %v", resultIDs(plain))
	}

	got, err := indexer.RankedSearch("", "", 1, state)
	if err != nil {
		t.Fatalf("ranked search failed: %v", err)
	}
	if diff := cmp.Diff([]string{"uuid-v7"}, resultIDs(got)); diff != "" {
		t.Errorf("RankedSearch() mismatch (-want +got):\n%s", diff)
	}

	got, err = indexer.RankedSearch("", "identifiers", 5, state)
	if err != nil {
		t.Fatalf("ranked search failed: %v", err)
	}
	if len(got) == 0 || got[0].ToolID != "uuid-v7" {
		t.Errorf("expected uuid-v7 first in its category, got %v", resultIDs(got))
	}
	for _, r := range got {
		if r.Category != "identifiers" {
			t.Errorf("hit %s outside category", r.ToolID)
		}
	}
}

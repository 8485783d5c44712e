package search

import (
	"testing"

	"github.com/khanglvm/strapd/internal/toolkit"
)

func newCatalogIndexer(t *testing.T) *Indexer {
	t.Helper()

	indexer, err := NewIndexer(nil)
	if err != nil {
		t.Fatalf("failed to create indexer: %v", err)
	}
	t.Cleanup(func() { indexer.Close() })

	if err := indexer.IndexCatalog(toolkit.Default()); err != nil {
		t.Fatalf("failed to index catalog: %v", err)
	}
	return indexer
}

func resultIDs(results []Result) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ToolID
	}
	return ids
}

func containsID(results []Result, id string) bool {
	for _, r := range results {
		if r.ToolID == id {
			return true
		}
	}
	return false
}

func TestIndexCatalog(t *testing.T) {
	indexer := newCatalogIndexer(t)

	count, err := indexer.Count()
	if err != nil {
		t.Fatalf("failed to get count: %v", err)
	}

	if count != uint64(toolkit.Default().Len()) {
		t.Errorf("expected %d indexed tools, got %d", toolkit.Default().Len(), count)
	}

	// Re-indexing replaces documents rather than adding new ones.
	if err := indexer.IndexCatalog(toolkit.Default()); err != nil {
		t.Fatalf("failed to re-index catalog: %v", err)
	}
	if again, _ := indexer.Count(); again != count {
		t.Errorf("re-indexing changed count from %d to %d", count, again)
	}
}

func TestSearch(t *testing.T) {
	indexer := newCatalogIndexer(t)

	results, err := indexer.Search("uppercase", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) == 0 || results[0].ToolID != "string-uppercase" {
		t.Fatalf("expected string-uppercase first, got %v", resultIDs(results))
	}
	if results[0].Title != "Uppercase" || results[0].Category != "string" {
		t.Errorf("stored fields not returned: %+v", results[0])
	}

	results, err = indexer.Search("sha", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	for _, id := range []string{"hash-sha1", "hash-sha256", "hash-sha512"} {
		if !containsID(results, id) {
			t.Errorf("prefix search for 'sha' should find %s, got %v", id, resultIDs(results))
		}
	}

	results, err = indexer.Search("uppercse", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if !containsID(results, "string-uppercase") {
		t.Errorf("fuzzy search should find string-uppercase, got %v", resultIDs(results))
	}
}

func TestSearchNoResults(t *testing.T) {
	indexer := newCatalogIndexer(t)

	results, err := indexer.Search("zzqqxxvv", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}

	if len(results) != 0 {
		t.Errorf("expected 0 results for non-existent query, got %v", resultIDs(results))
	}
}

func TestSearchBlankQueryMatchesAll(t *testing.T) {
	indexer := newCatalogIndexer(t)

	results, err := indexer.Search("  ", 0)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != DefaultLimit {
		t.Errorf("expected %d results with default limit, got %d", DefaultLimit, len(results))
	}

	results, err = indexer.Search("", 100)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != toolkit.Default().Len() {
		t.Errorf("expected every tool, got %d", len(results))
	}
	for i := 1; i < len(results); i++ {
		if results[i-1].ToolID > results[i].ToolID {
			t.Fatalf("equal scores should be ordered by id, got %v", resultIDs(results))
		}
	}
}

func TestSearchByCategory(t *testing.T) {
	indexer := newCatalogIndexer(t)

	results, err := indexer.SearchByCategory("", "security", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) != 4 {
		t.Errorf("expected 4 security tools, got %v", resultIDs(results))
	}
	for _, r := range results {
		if r.Category != "security" {
			t.Errorf("unexpected category %q for %s", r.Category, r.ToolID)
		}
	}

	results, err = indexer.SearchByCategory("encode", "encoding", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if len(results) == 0 {
		t.Fatal("expected encoding results for 'encode'")
	}
	for _, r := range results {
		if r.Category != "encoding" {
			t.Errorf("unexpected category %q for %s", r.Category, r.ToolID)
		}
	}
}

func TestRemoveTool(t *testing.T) {
	indexer := newCatalogIndexer(t)

	if err := indexer.RemoveTool("string-uppercase"); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	count, _ := indexer.Count()
	if count != uint64(toolkit.Default().Len()-1) {
		t.Errorf("expected %d tools after removal, got %d", toolkit.Default().Len()-1, count)
	}

	results, err := indexer.Search("uppercase", 10)
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if containsID(results, "string-uppercase") {
		t.Error("removed tool should not be found")
	}
}

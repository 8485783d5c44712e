package search

import (
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// DefaultLimit is used when a non-positive limit is given.
const DefaultLimit = 10

var resultFields = []string{"title", "description", "category"}

// buildQuery combines a fuzzy match over all fields with a prefix match on
// each name token. A blank query matches every tool.
func buildQuery(text string) query.Query {
	text = strings.ToLower(strings.TrimSpace(text))
	if text == "" {
		return bleve.NewMatchAllQuery()
	}

	match := bleve.NewMatchQuery(text)
	match.SetFuzziness(1)

	exact := bleve.NewMatchQuery(text)
	exact.SetBoost(2)

	queries := []query.Query{match, exact}
	for _, term := range strings.Fields(text) {
		prefix := bleve.NewPrefixQuery(term)
		prefix.SetField("name")
		queries = append(queries, prefix)
	}

	return bleve.NewDisjunctionQuery(queries...)
}

// Search finds tools matching text, best first. Hits with equal scores are
// ordered by id.
func (i *Indexer) Search(text string, limit int) ([]Result, error) {
	return i.search(buildQuery(text), limit)
}

// SearchByCategory is Search restricted to one category.
func (i *Indexer) SearchByCategory(text, category string, limit int) ([]Result, error) {
	categoryQuery := bleve.NewTermQuery(category)
	categoryQuery.SetField("category")

	return i.search(bleve.NewConjunctionQuery(buildQuery(text), categoryQuery), limit)
}

func (i *Indexer) search(q query.Query, limit int) ([]Result, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	if limit <= 0 {
		limit = DefaultLimit
	}

	searchRequest := bleve.NewSearchRequestOptions(q, limit, 0, false)
	searchRequest.Fields = resultFields
	searchRequest.SortBy([]string{"-_score", "_id"})

	results, err := i.bleveIndex.Search(searchRequest)
	if err != nil {
		return nil, fmt.Errorf("bleve search failed: %w", err)
	}

	return convertBleveResults(results), nil
}

// convertBleveResults converts Bleve search results to our Result format.
func convertBleveResults(results *bleve.SearchResult) []Result {
	out := make([]Result, 0, len(results.Hits))

	for _, hit := range results.Hits {
		title, _ := hit.Fields["title"].(string)
		description, _ := hit.Fields["description"].(string)
		category, _ := hit.Fields["category"].(string)

		out = append(out, Result{
			ToolID:      hit.ID,
			Title:       title,
			Description: description,
			Category:    category,
			Score:       hit.Score,
		})
	}

	return out
}

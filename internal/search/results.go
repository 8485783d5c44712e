/*
Package search implements keyword search over the toolkit catalog.

Tools are indexed into an in-memory Bleve index. Queries combine a fuzzy
match on every text field with a prefix match on the tool name, so "sha"
finds every SHA digest and "uppercse" still finds string-uppercase. Usage
data only breaks ties between hits with equal relevance.
*/
package search

// Result represents a single search result with relevance score.
type Result struct {
	ToolID      string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Score       float64 `json:"score"`
}

// ID returns the tool id of the hit.
func (r Result) ID() string {
	return r.ToolID
}

// toolDocument is a tool as stored in the search index.
type toolDocument struct {
	Name        string `json:"name"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Inputs      string `json:"inputs"`
}

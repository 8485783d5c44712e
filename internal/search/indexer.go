package search

import (
	"fmt"
	"strings"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/mapping"
	"go.uber.org/zap"

	"github.com/khanglvm/strapd/internal/toolkit"
)

// Indexer manages the search index for all tools.
type Indexer struct {
	bleveIndex bleve.Index
	mu         sync.RWMutex
	logger     *zap.Logger
}

// NewIndexer creates a new search indexer with in-memory Bleve index.
func NewIndexer(logger *zap.Logger) (*Indexer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	index, err := bleve.NewMemOnly(buildIndexMapping())
	if err != nil {
		return nil, fmt.Errorf("failed to create bleve index: %w", err)
	}

	return &Indexer{
		bleveIndex: index,
		logger:     logger,
	}, nil
}

// buildIndexMapping creates the Bleve index mapping.
func buildIndexMapping() mapping.IndexMapping {
	toolMapping := bleve.NewDocumentMapping()

	// Tool ids split on '-' under the standard analyzer, so "hash-sha256"
	// is found by "hash" and "sha256".
	toolMapping.AddFieldMappingsAt("name", bleve.NewTextFieldMapping())
	toolMapping.AddFieldMappingsAt("title", bleve.NewTextFieldMapping())
	toolMapping.AddFieldMappingsAt("description", bleve.NewTextFieldMapping())

	// Category is matched exactly when filtering.
	categoryMapping := bleve.NewTextFieldMapping()
	categoryMapping.Analyzer = keyword.Name
	toolMapping.AddFieldMappingsAt("category", categoryMapping)

	// Input names are searchable but not returned.
	inputsMapping := bleve.NewTextFieldMapping()
	inputsMapping.Store = false
	toolMapping.AddFieldMappingsAt("inputs", inputsMapping)

	indexMapping := bleve.NewIndexMapping()
	indexMapping.AddDocumentMapping("_default", toolMapping)

	return indexMapping
}

func newToolDocument(tool *toolkit.Tool) toolDocument {
	inputs := make([]string, 0, len(tool.Inputs))
	for _, in := range tool.Inputs {
		inputs = append(inputs, in.Name)
	}

	return toolDocument{
		Name:        tool.Name,
		Title:       tool.Title,
		Description: tool.Description,
		Category:    string(tool.Category),
		Inputs:      strings.Join(inputs, " "),
	}
}

// IndexTools indexes tools in one batch, keyed by tool id. Re-indexing a
// tool replaces its document.
func (i *Indexer) IndexTools(tools []*toolkit.Tool) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	batch := i.bleveIndex.NewBatch()

	for _, tool := range tools {
		if err := batch.Index(tool.ID(), newToolDocument(tool)); err != nil {
			i.logger.Warn("failed to index tool", zap.String("tool", tool.ID()), zap.Error(err))
		}
	}

	if err := i.bleveIndex.Batch(batch); err != nil {
		return fmt.Errorf("failed to batch index tools: %w", err)
	}

	return nil
}

// IndexCatalog indexes every tool of c.
func (i *Indexer) IndexCatalog(c *toolkit.Catalog) error {
	return i.IndexTools(c.All())
}

// RemoveTool removes a tool from the index.
func (i *Indexer) RemoveTool(toolID string) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if err := i.bleveIndex.Delete(toolID); err != nil {
		return fmt.Errorf("failed to delete %s: %w", toolID, err)
	}
	return nil
}

// Count returns the total number of indexed tools.
func (i *Indexer) Count() (uint64, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()

	docCount, err := i.bleveIndex.DocCount()
	if err != nil {
		return 0, fmt.Errorf("failed to get doc count: %w", err)
	}

	return docCount, nil
}

// Close closes the index and releases resources.
func (i *Indexer) Close() error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.bleveIndex != nil {
		return i.bleveIndex.Close()
	}

	return nil
}

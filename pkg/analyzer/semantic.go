package analyzer

import (
	"context"
	"fmt"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"

	"github.com/safespace-labs/safespace/pkg/taxonomy"
)

// SemanticDetector finds taxonomy categories by embedding similarity. It
// catches paraphrases the keyword tables miss ("your pictures are going
// public" vs "i will share your photos"). Optional: the analyzer works
// without it.
type SemanticDetector struct {
	db         *chromem.DB
	collection *chromem.Collection
	threshold  float32
	mu         sync.RWMutex
	ready      bool
}

// SemanticMatch is one similarity hit against a taxonomy example.
type SemanticMatch struct {
	Category   string
	Example    string
	Similarity float32
}

// SemanticResult is the outcome of one similarity query.
type SemanticResult struct {
	Category   string
	Similarity float32
	IsRisk     bool
	TopMatches []SemanticMatch
}

// DefaultSemanticThreshold is the similarity above which a match counts
// as a risk signal.
const DefaultSemanticThreshold = 0.65

// NewSemanticDetector builds a detector over the given embedding source.
// Call SeedFromTaxonomy before Detect.
func NewSemanticDetector(embed chromem.EmbeddingFunc) (*SemanticDetector, error) {
	if embed == nil {
		return nil, fmt.Errorf("embedding function is nil")
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("risk_examples", nil, embed)
	if err != nil {
		return nil, fmt.Errorf("failed to create collection: %w", err)
	}

	return &SemanticDetector{
		db:         db,
		collection: collection,
		threshold:  DefaultSemanticThreshold,
	}, nil
}

// SeedFromTaxonomy embeds every taxonomy example as a reference document,
// tagged with its category and severity.
func (sd *SemanticDetector) SeedFromTaxonomy(ctx context.Context, tax *taxonomy.Taxonomy) error {
	sd.mu.Lock()
	defer sd.mu.Unlock()

	var docs []chromem.Document
	for _, entry := range tax.Entries() {
		for i, example := range entry.Examples {
			docs = append(docs, chromem.Document{
				ID:      fmt.Sprintf("%s_%d", entry.Category, i),
				Content: example,
				Metadata: map[string]string{
					"category": entry.Category,
					"severity": string(entry.Severity),
				},
			})
		}
	}
	if len(docs) == 0 {
		return fmt.Errorf("taxonomy has no examples to seed from")
	}

	// One worker: embedding providers rate-limit aggressively.
	if err := sd.collection.AddDocuments(ctx, docs, 1); err != nil {
		return fmt.Errorf("failed to add taxonomy examples: %w", err)
	}

	sd.ready = true
	return nil
}

// IsReady reports whether the detector has been seeded.
func (sd *SemanticDetector) IsReady() bool {
	sd.mu.RLock()
	defer sd.mu.RUnlock()
	return sd.ready
}

// SetThreshold overrides the similarity threshold.
func (sd *SemanticDetector) SetThreshold(t float32) {
	sd.mu.Lock()
	defer sd.mu.Unlock()
	sd.threshold = t
}

// Detect queries the nearest taxonomy examples for the text.
func (sd *SemanticDetector) Detect(ctx context.Context, text string) (*SemanticResult, error) {
	sd.mu.RLock()
	defer sd.mu.RUnlock()

	if !sd.ready {
		return nil, fmt.Errorf("semantic detector not seeded")
	}

	results, err := sd.collection.Query(ctx, strings.ToLower(text), 3, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if len(results) == 0 {
		return &SemanticResult{}, nil
	}

	top := make([]SemanticMatch, len(results))
	for i, r := range results {
		top[i] = SemanticMatch{
			Category:   r.Metadata["category"],
			Example:    r.Content,
			Similarity: r.Similarity,
		}
	}

	best := results[0]
	return &SemanticResult{
		Category:   best.Metadata["category"],
		Similarity: best.Similarity,
		IsRisk:     best.Similarity >= sd.threshold,
		TopMatches: top,
	}, nil
}

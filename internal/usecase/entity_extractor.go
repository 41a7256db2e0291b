package usecase

import (
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"

	"github.com/auroramart/personalization/internal/domain"
)

// DefaultEntityThreshold is the partial-match score an entry needs to count as mentioned
const DefaultEntityThreshold = 80.0

// EntityExtractor recognizes product, brand and category mentions in free text
type EntityExtractor struct {
	threshold float64
}

// NewEntityExtractor creates an extractor. A non-positive threshold uses DefaultEntityThreshold;
// configuration rejects one before it gets here.
func NewEntityExtractor(threshold float64) *EntityExtractor {
	if threshold <= 0 {
		threshold = DefaultEntityThreshold
	}
	return &EntityExtractor{threshold: threshold}
}

// Threshold returns the score an entry needs on the 0-100 scale
func (e *EntityExtractor) Threshold() float64 {
	return e.threshold
}

// Extract scores every catalog entry's name against text and collects the entries at or above the threshold.
// An empty catalog or empty text yields empty sets.
func (e *EntityExtractor) Extract(text string, catalog []domain.CatalogEntry) domain.Entities {
	entities := domain.NewEntities()

	normalized := normalizeText(text)
	if normalized == "" {
		return entities
	}

	for _, entry := range catalog {
		name := normalizeText(entry.Name)
		if name == "" {
			continue
		}
		if PartialRatio(name, normalized) < e.threshold {
			continue
		}

		entities.Products[entry.Name] = struct{}{}
		if brand := firstWord(entry.Brand, entry.Name); brand != "" {
			entities.Brands[brand] = struct{}{}
		}
		if entry.Category != "" {
			entities.Categories[entry.Category] = struct{}{}
		}
	}
	return entities
}

// firstWord returns the first word of the inferred brand, or of the name when no brand was inferred
func firstWord(brand, name string) string {
	source := brand
	if strings.TrimSpace(source) == "" {
		source = name
	}
	if words := strings.Fields(source); len(words) > 0 {
		return words[0]
	}
	return ""
}

// PartialRatio scores how well the shorter string appears somewhere inside the longer one, from 0 to 100.
// An exact substring scores 100; an empty side scores 0.
func PartialRatio(a, b string) float64 {
	if a == "" || b == "" {
		return 0
	}
	return float64(fuzzy.PartialRatio(a, b))
}

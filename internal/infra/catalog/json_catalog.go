package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"

	"shopify-store-builder/internal/domain/model"
	"shopify-store-builder/internal/domain/ports/repository"
)

var _ repository.ProductCatalog = (*JSONCatalog)(nil)

// nicheMappings maps common niche phrasings to catalog category keys.
var nicheMappings = map[string]string{
	"pet":             "pets",
	"pets":            "pets",
	"pet products":    "pets",
	"pet care":        "pets",
	"pet supplies":    "pets",
	"pet accessories": "pets",
	"dog":             "pets",
	"cat":             "pets",
	"animal":          "pets",
	"animals":         "pets",

	"kitchen":          "kitchenware",
	"kitchenware":      "kitchenware",
	"kitchen products": "kitchenware",
	"kitchen supplies": "kitchenware",
	"cooking":          "kitchenware",
	"cookware":         "kitchenware",

	"kids":              "kids",
	"kid":               "kids",
	"children":          "kids",
	"children products": "kids",
	"toys":              "kids",
	"toy":               "kids",
	"baby":              "kids",
	"babies":            "kids",

	"health":          "health_beauty",
	"beauty":          "health_beauty",
	"health beauty":   "health_beauty",
	"health & beauty": "health_beauty",
	"skincare":        "health_beauty",
	"cosmetics":       "health_beauty",
	"wellness":        "health_beauty",

	"fitness":  "fitness",
	"exercise": "fitness",
	"workout":  "fitness",
	"gym":      "fitness",
	"sports":   "fitness",
	"athletic": "fitness",
}

// MapNicheToCategory resolves a free-text niche to a catalog category key.
// Exact matches win; otherwise substring matching applies in both
// directions. Returns "" when nothing matches.
func MapNicheToCategory(niche string) string {
	nicheLower := strings.ToLower(strings.TrimSpace(niche))
	if nicheLower == "" {
		return ""
	}
	if category, ok := nicheMappings[nicheLower]; ok {
		return category
	}
	for key, category := range nicheMappings {
		if strings.Contains(nicheLower, key) || strings.Contains(key, nicheLower) {
			return category
		}
	}
	return ""
}

// JSONCatalog serves products from a category-keyed JSON file. The file is
// loaded once and held in memory; workflows snapshot the slice they get, so
// reloads are not needed mid-run.
type JSONCatalog struct {
	path string

	mu         sync.RWMutex
	categories map[string][]model.Product
}

func NewJSONCatalog(path string) (*JSONCatalog, error) {
	c := &JSONCatalog{path: path}
	if err := c.load(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *JSONCatalog) load() error {
	data, err := os.ReadFile(c.path)
	if err != nil {
		return fmt.Errorf("load product catalog: %w", err)
	}
	var categories map[string][]model.Product
	if err := json.Unmarshal(data, &categories); err != nil {
		return fmt.Errorf("parse product catalog %s: %w", c.path, err)
	}
	c.mu.Lock()
	c.categories = categories
	c.mu.Unlock()
	return nil
}

// Reload re-reads the catalog file. In-flight workflows keep their snapshot.
func (c *JSONCatalog) Reload() error {
	return c.load()
}

func (c *JSONCatalog) ProductsForNiche(ctx context.Context, niche string) ([]model.Product, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	category := MapNicheToCategory(niche)
	if category == "" {
		return nil, nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	products := c.categories[category]
	out := make([]model.Product, len(products))
	copy(out, products)
	return out, nil
}

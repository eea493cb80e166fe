package catalog

import (
	"sort"
	"strings"

	"github.com/kangoro5/leather-walk/internal/domain"
	"github.com/shopspring/decimal"
)

// Filter narrows a product listing. Zero fields do not filter.
type Filter struct {
	Name     string
	MaxPrice *decimal.Decimal
	Size     string
	Color    string
}

func (f Filter) Match(p domain.Product) bool {
	if f.Name != "" && !strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Name)) {
		return false
	}
	if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
		return false
	}
	if f.Size != "" && string(p.Size) != f.Size {
		return false
	}
	if f.Color != "" && p.Color != f.Color {
		return false
	}
	return true
}

func (f Filter) Apply(products []domain.Product) []domain.Product {
	out := make([]domain.Product, 0, len(products))
	for _, p := range products {
		if f.Match(p) {
			out = append(out, p)
		}
	}
	return out
}

// Facets are the values offered by the size and color dropdowns.
type Facets struct {
	Sizes  []string `json:"sizes"`
	Colors []string `json:"colors"`
}

func FacetsOf(products []domain.Product) Facets {
	sizes := map[string]struct{}{}
	colors := map[string]struct{}{}
	for _, p := range products {
		if p.Size != "" {
			sizes[string(p.Size)] = struct{}{}
		}
		if p.Color != "" {
			colors[p.Color] = struct{}{}
		}
	}
	return Facets{Sizes: sortedKeys(sizes), Colors: sortedKeys(colors)}
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

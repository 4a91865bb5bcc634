package derived

import (
	"strings"

	"github.com/tm-acme-shop/acme-shop-backoffice/internal/models"
)

// ActiveFilter is the tri-state active-status filter.
type ActiveFilter string

const (
	ActiveAll      ActiveFilter = "all"
	ActiveOnly     ActiveFilter = "active"
	ActiveInactive ActiveFilter = "inactive"
)

// ParseActiveFilter maps an unknown or empty value to ActiveAll.
func ParseActiveFilter(s string) ActiveFilter {
	switch ActiveFilter(strings.ToLower(s)) {
	case ActiveOnly:
		return ActiveOnly
	case ActiveInactive:
		return ActiveInactive
	default:
		return ActiveAll
	}
}

// ProductFilter holds the conjunctive product filters. Zero values disable
// each predicate.
type ProductFilter struct {
	Search        string          `form:"search" json:"search,omitempty"`
	Category      models.Category `form:"category" json:"category,omitempty"`
	AvailableOnly bool            `form:"available" json:"availableOnly,omitempty"`
	Active        ActiveFilter    `form:"active" json:"active,omitempty"`
}

// FilterProducts applies f to the full product list. It must be called with
// the unfiltered list each time the filter changes; the input is not modified
// and the result is never nil.
func FilterProducts(products []models.Product, f ProductFilter) []models.Product {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if needle != "" && !strings.Contains(strings.ToLower(p.Name), needle) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.AvailableOnly && p.Stock <= 0 {
			continue
		}
		if !matchesActive(p, f.Active) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func matchesActive(p models.Product, f ActiveFilter) bool {
	switch f {
	case ActiveOnly:
		return p.IsActive()
	case ActiveInactive:
		return !p.IsActive()
	default:
		return true
	}
}

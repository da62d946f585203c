package catalog

import (
	"strings"

	"github.com/example/tintura/internal/models"
)

// AllCategories is the category sentinel meaning "show all".
const AllCategories = "ALL"

// Selection is the pair of active filters. A zero Selection shows
// everything.
type Selection struct {
	Category string `json:"category"`
	Feature  string `json:"feature"`
}

// ParseSelection builds a selection from raw query input. Categories are
// stored upper-cased so the input is normalised the same way.
func ParseSelection(category, feature string) Selection {
	c := strings.ToUpper(strings.TrimSpace(category))
	if c == "" {
		c = AllCategories
	}
	return Selection{Category: c, Feature: strings.TrimSpace(feature)}
}

func (s Selection) ShowsAllCategories() bool {
	return s.Category == "" || s.Category == AllCategories
}

// WithCategory switches category and clears the feature filter.
func (s Selection) WithCategory(category string) Selection {
	return Selection{Category: category}
}

// WithFeature sets the feature filter; an empty tag clears it.
func (s Selection) WithFeature(feature string) Selection {
	s.Feature = feature
	return s
}

// ToggleFeature selects feature, or clears it when it is already active.
func (s Selection) ToggleFeature(feature string) Selection {
	if s.Feature == feature {
		s.Feature = ""
		return s
	}
	s.Feature = feature
	return s
}

// Filter returns the products matching every active predicate. It never
// mutates its input and always returns a fresh slice.
func Filter(products []models.Product, sel Selection) []models.Product {
	out := make([]models.Product, 0, len(products))
	for _, p := range products {
		if !sel.ShowsAllCategories() && p.Category != sel.Category {
			continue
		}
		if sel.Feature != "" && !p.HasFeature(sel.Feature) {
			continue
		}
		out = append(out, p)
	}
	return out
}

package catalog

import "github.com/example/tintura/internal/models"

// MaxDisplayFeatures caps the feature chips offered to shoppers.
const MaxDisplayFeatures = 10

// DeriveFeatureVocabulary returns every distinct feature tag across
// products in first-encountered order.
func DeriveFeatureVocabulary(products []models.Product) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range products {
		for _, f := range p.Features {
			if _, ok := seen[f]; ok {
				continue
			}
			seen[f] = struct{}{}
			out = append(out, f)
		}
	}
	return out
}

// DisplayFeatures truncates a vocabulary to MaxDisplayFeatures entries.
func DisplayFeatures(vocab []string) []string {
	n := len(vocab)
	if n > MaxDisplayFeatures {
		n = MaxDisplayFeatures
	}
	out := make([]string, n)
	copy(out, vocab[:n])
	return out
}

func distinct(products []models.Product, field func(models.Product) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range products {
		v := field(p)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

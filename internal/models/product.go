package models

import (
	"github.com/lib/pq"
)

// Product is a catalog style. ImageURLs is the ordered gallery (index 0 is
// the cover); ImageURL is the legacy single-image column and always
// mirrors the cover on write.
type Product struct {
	BaseModel
	StyleCode      string         `gorm:"index" json:"style_code"`
	Name           string         `json:"name"`
	Category       string         `gorm:"index" json:"category"`
	GarmentType    string         `json:"garment_type"`
	Description    string         `json:"description"`
	Features       pq.StringArray `gorm:"type:text[]" json:"features"`
	ImageURL       string         `json:"image_url"`
	ImageURLs      pq.StringArray `gorm:"type:text[]" json:"image_urls"`
	Color          string         `json:"color"`
	AvailableSizes string         `json:"available_sizes"`
	FabricType     string         `json:"fabric_type"`
}

// Clone returns a deep copy so callers never share slice backing arrays.
func (p Product) Clone() Product {
	out := p
	if p.Features != nil {
		out.Features = append(pq.StringArray{}, p.Features...)
	}
	if p.ImageURLs != nil {
		out.ImageURLs = append(pq.StringArray{}, p.ImageURLs...)
	}
	return out
}

// HasFeature reports whether tag is one of the product's features.
func (p Product) HasFeature(tag string) bool {
	for _, f := range p.Features {
		if f == tag {
			return true
		}
	}
	return false
}

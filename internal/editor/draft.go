package editor

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/example/tintura/internal/gallery"
	"github.com/example/tintura/internal/models"
)

const (
	DefaultName        = "Unnamed Style"
	DefaultCategory    = "CASUALS"
	DefaultGarmentType = "MENS"
)

var (
	DefaultCategories   = []string{"CASUALS", "LITE", "SPORTZ"}
	DefaultGarmentTypes = []string{"MENS", "BOYS"}
)

// Draft is a product under construction. It may be incomplete until it is
// reconciled on submit.
type Draft struct {
	ID             uuid.UUID `json:"id"`
	StyleCode      string    `json:"style_code"`
	Name           string    `json:"name"`
	Category       string    `json:"category"`
	GarmentType    string    `json:"garment_type"`
	Description    string    `json:"description"`
	Features       []string  `json:"features"`
	Images         []string  `json:"images"`
	Color          string    `json:"color"`
	AvailableSizes string    `json:"available_sizes"`
	FabricType     string    `json:"fabric_type"`
	CreatedAt      time.Time `json:"created_at"`

	// legacy is set while the images are the untouched single legacy image
	// of the record being edited.
	legacy bool
}

// DraftPatch sets the non-nil fields on a draft.
type DraftPatch struct {
	StyleCode      *string `json:"style_code"`
	Name           *string `json:"name"`
	Category       *string `json:"category"`
	GarmentType    *string `json:"garment_type"`
	Description    *string `json:"description"`
	Color          *string `json:"color"`
	AvailableSizes *string `json:"available_sizes"`
	FabricType     *string `json:"fabric_type"`
}

func newDraft() *Draft {
	return &Draft{
		Category:    DefaultCategory,
		GarmentType: DefaultGarmentType,
		Features:    []string{},
		Images:      []string{},
	}
}

func draftFrom(p models.Product) *Draft {
	g := gallery.FromRecord(p.ImageURLs, p.ImageURL)
	return &Draft{
		ID:             p.ID,
		StyleCode:      p.StyleCode,
		Name:           p.Name,
		Category:       p.Category,
		GarmentType:    p.GarmentType,
		Description:    p.Description,
		Features:       append([]string{}, p.Features...),
		Images:         g.Refs(),
		Color:          p.Color,
		AvailableSizes: p.AvailableSizes,
		FabricType:     p.FabricType,
		CreatedAt:      p.CreatedAt,
		legacy:         len(p.ImageURLs) == 0 && p.ImageURL != "",
	}
}

func (d *Draft) clone() *Draft {
	cp := *d
	cp.Features = append([]string{}, d.Features...)
	cp.Images = append([]string{}, d.Images...)
	return &cp
}

func (d *Draft) apply(p DraftPatch) {
	set := func(dst *string, v *string) {
		if v != nil {
			*dst = *v
		}
	}
	set(&d.StyleCode, p.StyleCode)
	set(&d.Name, p.Name)
	set(&d.Category, p.Category)
	set(&d.GarmentType, p.GarmentType)
	set(&d.Description, p.Description)
	set(&d.Color, p.Color)
	set(&d.AvailableSizes, p.AvailableSizes)
	set(&d.FabricType, p.FabricType)
}

// gallery runs op against the draft's images and stores the result.
func (d *Draft) gallery(op func(g *gallery.Gallery) bool) bool {
	g := gallery.New(d.Images...)
	if !op(g) {
		return false
	}
	d.Images = g.Refs()
	d.legacy = false
	return true
}

// normalizeOption is the stored form of a category or garment type. The
// storefront matches categories on this form.
func normalizeOption(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// Reconcile turns the draft into a fully populated record. Missing values
// fall back to fixed defaults so the store never receives a partial row.
func (d *Draft) Reconcile() models.Product {
	p := models.Product{
		StyleCode:      strings.TrimSpace(d.StyleCode),
		Name:           strings.TrimSpace(d.Name),
		Category:       normalizeOption(d.Category),
		GarmentType:    normalizeOption(d.GarmentType),
		Description:    d.Description,
		Features:       append([]string{}, d.Features...),
		ImageURLs:      append([]string{}, d.Images...),
		Color:          d.Color,
		AvailableSizes: d.AvailableSizes,
		FabricType:     d.FabricType,
	}
	p.ID = d.ID
	p.CreatedAt = d.CreatedAt
	if p.Name == "" {
		p.Name = DefaultName
	}
	if p.Category == "" {
		p.Category = DefaultCategory
	}
	if p.GarmentType == "" {
		p.GarmentType = DefaultGarmentType
	}
	if len(d.Images) > 0 {
		p.ImageURL = d.Images[0]
	}
	if d.legacy {
		p.ImageURLs = []string{}
	}
	return p
}

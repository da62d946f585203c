package catalog

import "github.com/example/tintura/internal/models"

// View is what a shopper sees for one selection.
type View struct {
	Selection Selection        `json:"selection"`
	Products  []models.Product `json:"products"`
	Count     int              `json:"count"`
	Features  []string         `json:"features"`
}

// Browser tracks one viewer's selection against the shared engine. Every
// View is computed from the engine's latest set.
type Browser struct {
	engine *Engine
	sel    Selection
}

func NewBrowser(engine *Engine, sel Selection) *Browser {
	return &Browser{engine: engine, sel: sel}
}

func (b *Browser) Selection() Selection { return b.sel }

func (b *Browser) SelectCategory(category string) {
	b.sel = b.sel.WithCategory(category)
}

func (b *Browser) SelectFeature(feature string) {
	b.sel = b.sel.WithFeature(feature)
}

func (b *Browser) ToggleFeature(feature string) {
	b.sel = b.sel.ToggleFeature(feature)
}

func (b *Browser) View() View {
	products := Filter(b.engine.Products(), b.sel)
	return View{
		Selection: b.sel,
		Products:  products,
		Count:     len(products),
		Features:  DisplayFeatures(b.engine.Vocabulary()),
	}
}

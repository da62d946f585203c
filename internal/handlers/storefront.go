package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tintura/internal/catalog"
	"github.com/example/tintura/internal/gallery"
	"github.com/example/tintura/internal/models"
)

// StorefrontHandler serves the public catalog.
type StorefrontHandler struct {
	engine *catalog.Engine
}

func NewStorefrontHandler(engine *catalog.Engine) *StorefrontHandler {
	return &StorefrontHandler{engine: engine}
}

// ensureLoaded loads the catalog on first use. Once a set is loaded a
// failed reload never hides it.
func ensureLoaded(c *fiber.Ctx, engine *catalog.Engine) error {
	if engine.Loaded() {
		return nil
	}
	_, err := engine.LoadAll(c.UserContext())
	return err
}

// ListProducts returns the filtered view for ?category=&feature=.
func (h *StorefrontHandler) ListProducts(c *fiber.Ctx) error {
	if err := ensureLoaded(c, h.engine); err != nil {
		return err
	}

	browser := catalog.NewBrowser(h.engine, catalog.ParseSelection(c.Query("category"), c.Query("feature")))
	view := browser.View()

	features := make([]catalog.Feature, 0, len(view.Features))
	for _, tag := range view.Features {
		features = append(features, featureFor(tag))
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"data":     view.Products,
		"count":    view.Count,
		"features": features,
		"filters":  view.Selection,
	})
}

type productDetail struct {
	Product models.Product `json:"product"`
	Images  []string       `json:"images"`
	Cover   string         `json:"cover"`
	Slide   slide          `json:"slide"`
	Labels  []string       `json:"feature_labels"`
}

type slide struct {
	Index int `json:"index"`
	Prev  int `json:"prev"`
	Next  int `json:"next"`
}

// GetProduct returns one product with its gallery. ?image= selects the
// slideshow position.
func (h *StorefrontHandler) GetProduct(c *fiber.Ctx) error {
	if err := ensureLoaded(c, h.engine); err != nil {
		return err
	}

	p, ok := h.engine.Find(c.Params("id"))
	if !ok {
		return fiber.NewError(fiber.StatusNotFound, "style not found")
	}

	g := gallery.FromRecord(p.ImageURLs, p.ImageURL)
	current, _ := strconv.Atoi(c.Query("image", "0"))
	current = gallery.Slide(g.Len(), current, 0)

	labels := make([]string, 0, len(p.Features))
	for _, tag := range p.Features {
		labels = append(labels, catalog.Label(tag))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data": productDetail{
			Product: p,
			Images:  g.Refs(),
			Cover:   g.Cover(),
			Slide: slide{
				Index: current,
				Prev:  gallery.Slide(g.Len(), current, -1),
				Next:  gallery.Slide(g.Len(), current, 1),
			},
			Labels: labels,
		},
	})
}

// ListFeatures returns the known feature catalog.
func (h *StorefrontHandler) ListFeatures(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true, "data": catalog.Features()})
}

func featureFor(tag string) catalog.Feature {
	if f, ok := catalog.LookupFeature(tag); ok {
		return f
	}
	return catalog.Feature{ID: tag, Name: tag}
}

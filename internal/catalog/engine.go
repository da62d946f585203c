package catalog

import (
	"context"
	"sync"

	"github.com/example/tintura/internal/apperr"
	"github.com/example/tintura/internal/models"
	"github.com/example/tintura/internal/platform/logger"
)

// Lister reads every product, newest first.
type Lister interface {
	List(ctx context.Context) ([]models.Product, error)
}

// Engine owns the loaded product set and its feature vocabulary.
type Engine struct {
	mu      sync.RWMutex
	lister  Lister
	log     *logger.Logger
	started uint64
	applied uint64

	products []models.Product
	vocab    []string
	loaded   bool
	lastErr  error
}

func NewEngine(lister Lister, log *logger.Logger) *Engine {
	if log == nil {
		log = logger.Nop()
	}
	return &Engine{
		lister: lister,
		log:    log.With("component", "CatalogEngine"),
		vocab:  []string{},
	}
}

// LoadAll replaces the product set with a fresh listing. On failure the
// previous set is kept and a fetch error is returned. A load that finishes
// after a newer load has already been applied is discarded and the current
// set is returned instead.
func (e *Engine) LoadAll(ctx context.Context) ([]models.Product, error) {
	e.mu.Lock()
	e.started++
	gen := e.started
	e.mu.Unlock()

	products, err := e.lister.List(ctx)

	e.mu.Lock()
	defer e.mu.Unlock()

	if err != nil {
		ferr := apperr.Fetch("Failed to load styles", err)
		if gen > e.applied {
			e.lastErr = ferr
		}
		e.log.Warn("catalog load failed", "generation", gen, "error", err)
		return nil, ferr
	}
	if gen < e.applied {
		e.log.Debug("dropping stale catalog load", "generation", gen, "applied", e.applied)
		return cloneAll(e.products), nil
	}

	e.applied = gen
	e.products = cloneAll(products)
	e.vocab = DeriveFeatureVocabulary(e.products)
	e.loaded = true
	e.lastErr = nil
	e.log.Info("catalog loaded", "products", len(e.products), "features", len(e.vocab))
	return cloneAll(e.products), nil
}

// Products returns a copy of the current set.
func (e *Engine) Products() []models.Product {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return cloneAll(e.products)
}

func (e *Engine) Vocabulary() []string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]string{}, e.vocab...)
}

func (e *Engine) Loaded() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.loaded
}

// LastError is the error of the most recent failed load, cleared by the
// next successful one.
func (e *Engine) LastError() error {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.lastErr
}

func (e *Engine) Find(id string) (models.Product, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	for _, p := range e.products {
		if p.ID.String() == id {
			return p.Clone(), true
		}
	}
	return models.Product{}, false
}

func (e *Engine) Categories() []string {
	return distinct(e.Products(), func(p models.Product) string { return p.Category })
}

func (e *Engine) GarmentTypes() []string {
	return distinct(e.Products(), func(p models.Product) string { return p.GarmentType })
}

func cloneAll(products []models.Product) []models.Product {
	out := make([]models.Product, len(products))
	for i, p := range products {
		out[i] = p.Clone()
	}
	return out
}

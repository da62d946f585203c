package catalog

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/tintura/internal/apperr"
	"github.com/example/tintura/internal/models"
)

type listerFunc func(ctx context.Context) ([]models.Product, error)

func (f listerFunc) List(ctx context.Context) ([]models.Product, error) { return f(ctx) }

func product(name, category string, features ...string) models.Product {
	return models.Product{
		BaseModel:   models.BaseModel{ID: uuid.New()},
		Name:        name,
		Category:    category,
		GarmentType: "MENS",
		Features:    pq.StringArray(features),
	}
}

func names(products []models.Product) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.Name)
	}
	return out
}

// ten products, five of them SPORTZ, two SPORTZ ones with dryfit.
func sampleCatalog() []models.Product {
	return []models.Product{
		product("Urban Knit Shorts", "SPORTZ", "frenchterry", "dryfit"),
		product("T-Shirts Printed", "CASUALS", "biowash"),
		product("Fashion Knit Shorts", "SPORTZ", "biowash"),
		product("T-Shirts Plain", "CASUALS", "biowash"),
		product("Joggers Pant", "SPORTZ", "frenchterry", "biowash", "dryfit"),
		product("Collar T-Shirt", "CASUALS", "biowash", "dryfit"),
		product("Urban Track Pant", "SPORTZ", "frenchterry"),
		product("Lite Tee", "LITE", "micropoly"),
		product("Fashion Track Pant", "SPORTZ", "biowash"),
		product("Boys Tee", "BOYS", "softfeel"),
	}
}

func TestFilterScopesByCategoryThenFeature(t *testing.T) {
	all := sampleCatalog()

	sel := Selection{}.WithCategory("SPORTZ")
	assert.Len(t, Filter(all, sel), 5)

	sel = sel.WithFeature("dryfit")
	assert.Equal(t, []string{"Urban Knit Shorts", "Joggers Pant"}, names(Filter(all, sel)))
}

func TestFilterShowsEverythingWithoutPredicates(t *testing.T) {
	all := sampleCatalog()
	assert.Len(t, Filter(all, Selection{}), len(all))
	assert.Len(t, Filter(all, Selection{Category: AllCategories}), len(all))
	assert.Len(t, Filter(all, Selection{Category: AllCategories, Feature: "biowash"}), 6)
}

func TestFilterIsPureAndIdempotent(t *testing.T) {
	all := sampleCatalog()
	before := names(all)

	selections := []Selection{
		{},
		{Category: "CASUALS"},
		{Category: "SPORTZ", Feature: "frenchterry"},
		{Feature: "dryfit"},
		{Category: "NOPE"},
		{Category: "LITE", Feature: "biowash"},
	}
	for _, sel := range selections {
		first := Filter(all, sel)
		second := Filter(all, sel)
		assert.Equal(t, first, second, "%+v", sel)

		for _, p := range first {
			if !sel.ShowsAllCategories() {
				assert.Equal(t, sel.Category, p.Category)
			}
			if sel.Feature != "" {
				assert.True(t, p.HasFeature(sel.Feature))
			}
			assert.Contains(t, before, p.Name)
		}
	}
	assert.Equal(t, before, names(all))
}

func TestCategoryChangeResetsFeature(t *testing.T) {
	all := sampleCatalog()
	sel := Selection{Category: "SPORTZ", Feature: "dryfit"}

	changed := sel.WithCategory("CASUALS")
	assert.Empty(t, changed.Feature)
	assert.Equal(t, Filter(all, Selection{Category: "CASUALS"}), Filter(all, changed))
}

func TestToggleFeature(t *testing.T) {
	sel := Selection{Category: "SPORTZ"}

	sel = sel.ToggleFeature("dryfit")
	assert.Equal(t, "dryfit", sel.Feature)
	sel = sel.ToggleFeature("biowash")
	assert.Equal(t, "biowash", sel.Feature)
	sel = sel.ToggleFeature("biowash")
	assert.Empty(t, sel.Feature)
	assert.Equal(t, "SPORTZ", sel.Category)
}

func TestParseSelection(t *testing.T) {
	assert.Equal(t, Selection{Category: AllCategories}, ParseSelection("", ""))
	assert.Equal(t, Selection{Category: "SPORTZ", Feature: "dryfit"}, ParseSelection(" sportz ", " dryfit"))
}

func TestDeriveFeatureVocabulary(t *testing.T) {
	vocab := DeriveFeatureVocabulary(sampleCatalog())
	assert.Equal(t, []string{"frenchterry", "dryfit", "biowash", "micropoly", "softfeel"}, vocab)
	assert.Empty(t, DeriveFeatureVocabulary(nil))
}

func TestDisplayFeaturesTruncates(t *testing.T) {
	vocab := make([]string, 0, 14)
	for i := 0; i < 14; i++ {
		vocab = append(vocab, string(rune('a'+i)))
	}
	shown := DisplayFeatures(vocab)
	assert.Len(t, shown, MaxDisplayFeatures)
	assert.Equal(t, vocab[:MaxDisplayFeatures], shown)
	assert.Equal(t, []string{"x"}, DisplayFeatures([]string{"x"}))
}

func TestFeatureLabels(t *testing.T) {
	assert.Equal(t, "Dry Fit", Label("dryfit"))
	assert.Equal(t, "graphene-x", Label("graphene-x"))
	assert.Len(t, Features(), 20)

	f, ok := LookupFeature("lycra")
	require.True(t, ok)
	assert.Equal(t, "stretch", f.IconType)
}

func TestEngineLoadAll(t *testing.T) {
	all := sampleCatalog()
	e := NewEngine(listerFunc(func(context.Context) ([]models.Product, error) { return all, nil }), nil)

	assert.False(t, e.Loaded())
	got, err := e.LoadAll(context.Background())
	require.NoError(t, err)

	assert.Len(t, got, len(all))
	assert.True(t, e.Loaded())
	assert.Equal(t, DeriveFeatureVocabulary(all), e.Vocabulary())
	assert.Equal(t, []string{"SPORTZ", "CASUALS", "LITE", "BOYS"}, e.Categories())
	assert.Equal(t, []string{"MENS"}, e.GarmentTypes())

	found, ok := e.Find(all[3].ID.String())
	require.True(t, ok)
	assert.Equal(t, "T-Shirts Plain", found.Name)
}

func TestEngineKeepsPriorSetOnFailure(t *testing.T) {
	all := sampleCatalog()
	fail := false
	e := NewEngine(listerFunc(func(context.Context) ([]models.Product, error) {
		if fail {
			return nil, errors.New("network down")
		}
		return all, nil
	}), nil)

	_, err := e.LoadAll(context.Background())
	require.NoError(t, err)

	fail = true
	got, err := e.LoadAll(context.Background())
	require.Error(t, err)
	assert.Nil(t, got)
	assert.True(t, apperr.Is(err, apperr.KindFetch))
	assert.True(t, apperr.Is(e.LastError(), apperr.KindFetch))
	assert.Len(t, e.Products(), len(all))

	fail = false
	_, err = e.LoadAll(context.Background())
	require.NoError(t, err)
	assert.NoError(t, e.LastError())
}

func TestEngineDropsLateLoad(t *testing.T) {
	stale := []models.Product{product("Old", "CASUALS")}
	fresh := sampleCatalog()

	entered := make(chan struct{})
	release := make(chan struct{})
	var calls int32
	e := NewEngine(listerFunc(func(context.Context) ([]models.Product, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			close(entered)
			<-release
			return stale, nil
		}
		return fresh, nil
	}), nil)

	type result struct {
		products []models.Product
		err      error
	}
	done := make(chan result, 1)
	go func() {
		p, err := e.LoadAll(context.Background())
		done <- result{p, err}
	}()

	<-entered
	_, err := e.LoadAll(context.Background())
	require.NoError(t, err)
	close(release)

	late := <-done
	require.NoError(t, late.err)
	assert.Equal(t, names(fresh), names(late.products))
	assert.Equal(t, names(fresh), names(e.Products()))
}

func TestEngineProductsAreCopies(t *testing.T) {
	all := sampleCatalog()
	e := NewEngine(listerFunc(func(context.Context) ([]models.Product, error) { return all, nil }), nil)
	_, err := e.LoadAll(context.Background())
	require.NoError(t, err)

	got := e.Products()
	got[0].Features[0] = "mutated"
	got[1].Name = "mutated"

	again := e.Products()
	assert.Equal(t, "frenchterry", again[0].Features[0])
	assert.Equal(t, "T-Shirts Printed", again[1].Name)
}

func TestBrowserFollowsLatestLoad(t *testing.T) {
	var set []models.Product
	e := NewEngine(listerFunc(func(context.Context) ([]models.Product, error) { return set, nil }), nil)

	b := NewBrowser(e, ParseSelection("", ""))
	b.SelectCategory("SPORTZ")
	assert.Equal(t, 0, b.View().Count)

	set = sampleCatalog()
	_, err := e.LoadAll(context.Background())
	require.NoError(t, err)

	v := b.View()
	assert.Equal(t, 5, v.Count)
	assert.Len(t, v.Products, 5)

	b.ToggleFeature("dryfit")
	assert.Equal(t, 2, b.View().Count)

	b.SelectCategory("CASUALS")
	assert.Empty(t, b.Selection().Feature)
	assert.Equal(t, 3, b.View().Count)
	assert.Equal(t, DisplayFeatures(e.Vocabulary()), b.View().Features)
}

func TestEmptyCatalog(t *testing.T) {
	engine := NewEngine(listerFunc(func(context.Context) ([]models.Product, error) {
		return nil, nil
	}), nil)

	loaded, err := engine.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, loaded)
	assert.True(t, engine.Loaded())
	assert.NotNil(t, engine.Vocabulary())
	assert.Empty(t, engine.Vocabulary())

	for _, sel := range []Selection{{}, ParseSelection("SPORTZ", ""), ParseSelection("", "dryfit")} {
		view := NewBrowser(engine, sel).View()
		assert.NotNil(t, view.Products)
		assert.Empty(t, view.Products)
		assert.Equal(t, 0, view.Count)
		assert.NotNil(t, view.Features)
		assert.Empty(t, view.Features)
	}
}

package editor

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/tintura/internal/apperr"
	"github.com/example/tintura/internal/blob"
	"github.com/example/tintura/internal/gallery"
	"github.com/example/tintura/internal/imaging"
	"github.com/example/tintura/internal/models"
	"github.com/example/tintura/internal/platform/logger"
	"github.com/example/tintura/internal/store"
)

type Mode string

const (
	ModeEmpty    Mode = "empty"
	ModeCreating Mode = "creating"
	ModeEditing  Mode = "editing"
)

type OptionKind string

const (
	OptionCategory    OptionKind = "category"
	OptionGarmentType OptionKind = "garment_type"
)

// ErrDraftReplaced is returned when an upload finishes after its draft
// was cancelled or swapped for another one.
var ErrDraftReplaced = errors.New("draft changed while the image was uploading")

// Writer is the write side of the catalog store.
type Writer interface {
	Insert(ctx context.Context, p *models.Product) error
	Update(ctx context.Context, id uuid.UUID, p *models.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// Reloader refreshes the shared catalog after a write.
type Reloader interface {
	LoadAll(ctx context.Context) ([]models.Product, error)
}

// OptionSource lists the values already used by persisted products.
type OptionSource interface {
	Categories() []string
	GarmentTypes() []string
}

type Deps struct {
	Store     Writer
	Blobs     blob.Store
	Catalog   Reloader
	Options   OptionSource
	Normalize func([]byte) ([]byte, error)
	Log       *logger.Logger
}

// Editor holds one admin's draft and the suggestion lists shown next to
// it. Network and image work runs without holding the lock; results are
// applied only if the draft they started from is still current.
type Editor struct {
	mu   sync.Mutex
	deps Deps
	log  *logger.Logger
	now  func() time.Time

	mode       Mode
	draft      *Draft
	token      uint64
	uploads    map[uint64]int
	submitting bool

	extraCategories   []string
	extraGarmentTypes []string
}

func New(deps Deps) *Editor {
	if deps.Normalize == nil {
		deps.Normalize = imaging.Normalize
	}
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	return &Editor{
		deps:    deps,
		log:     deps.Log.With("component", "DraftEditor"),
		now:     time.Now,
		mode:    ModeEmpty,
		uploads: map[uint64]int{},
	}
}

// Snapshot is a read-only view of the editor.
type Snapshot struct {
	Mode         Mode     `json:"mode"`
	Draft        *Draft   `json:"draft,omitempty"`
	Cover        string   `json:"cover,omitempty"`
	Uploading    bool     `json:"uploading"`
	CanSubmit    bool     `json:"can_submit"`
	Categories   []string `json:"categories"`
	GarmentTypes []string `json:"garment_types"`
}

func (e *Editor) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Snapshot{
		Mode:         e.mode,
		Uploading:    e.uploads[e.token] > 0,
		Categories:   e.suggestions(OptionCategory),
		GarmentTypes: e.suggestions(OptionGarmentType),
	}
	if e.draft != nil {
		s.Draft = e.draft.clone()
		s.Cover = gallery.New(e.draft.Images...).Cover()
		s.CanSubmit = e.blockedReason() == ""
	}
	return s
}

func (e *Editor) Mode() Mode {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.mode
}

// replace swaps the draft and invalidates anything in flight for the old one.
func (e *Editor) replace(mode Mode, d *Draft) {
	delete(e.uploads, e.token)
	e.token++
	e.mode = mode
	e.draft = d
}

// Create opens a new draft seeded with the default category and type.
func (e *Editor) Create() Snapshot {
	e.mu.Lock()
	e.replace(ModeCreating, newDraft())
	e.mu.Unlock()
	return e.Snapshot()
}

// Edit opens a draft holding a copy of every field of p.
func (e *Editor) Edit(p models.Product) Snapshot {
	e.mu.Lock()
	e.replace(ModeEditing, draftFrom(p))
	e.mu.Unlock()
	return e.Snapshot()
}

// Cancel discards the draft.
func (e *Editor) Cancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.replace(ModeEmpty, nil)
}

func (e *Editor) withDraft(fn func(d *Draft) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.draft == nil {
		return apperr.Validation("No style is being edited")
	}
	return fn(e.draft)
}

func (e *Editor) Patch(p DraftPatch) error {
	return e.withDraft(func(d *Draft) error {
		d.apply(p)
		return nil
	})
}

// AddFeature appends a trimmed tag unless it is empty or already present.
func (e *Editor) AddFeature(tag string) error {
	tag = strings.TrimSpace(tag)
	return e.withDraft(func(d *Draft) error {
		if tag == "" {
			return nil
		}
		for _, f := range d.Features {
			if f == tag {
				return nil
			}
		}
		d.Features = append(d.Features, tag)
		return nil
	})
}

func (e *Editor) RemoveFeature(i int) error {
	return e.withDraft(func(d *Draft) error {
		if i < 0 || i >= len(d.Features) {
			return nil
		}
		d.Features = append(d.Features[:i:i], d.Features[i+1:]...)
		return nil
	})
}

func (e *Editor) RemoveImage(i int) error {
	return e.withDraft(func(d *Draft) error {
		d.gallery(func(g *gallery.Gallery) bool { return g.RemoveAt(i) })
		return nil
	})
}

func (e *Editor) MoveImageUp(i int) error {
	return e.withDraft(func(d *Draft) error {
		d.gallery(func(g *gallery.Gallery) bool { return g.MoveUp(i) })
		return nil
	})
}

func (e *Editor) MoveImageDown(i int) error {
	return e.withDraft(func(d *Draft) error {
		d.gallery(func(g *gallery.Gallery) bool { return g.MoveDown(i) })
		return nil
	})
}

// AddOption adds an ad-hoc category or garment type to the suggestion list
// and selects it on the draft. Nothing is persisted until a product using
// it is saved.
func (e *Editor) AddOption(kind OptionKind, value string) (string, error) {
	v := normalizeOption(value)
	if v == "" {
		return "", apperr.Validation("Option name is required")
	}

	err := e.withDraft(func(d *Draft) error {
		switch kind {
		case OptionCategory:
			if !contains(e.suggestions(kind), v) {
				e.extraCategories = append(e.extraCategories, v)
			}
			d.Category = v
		case OptionGarmentType:
			if !contains(e.suggestions(kind), v) {
				e.extraGarmentTypes = append(e.extraGarmentTypes, v)
			}
			d.GarmentType = v
		default:
			return apperr.Validation(fmt.Sprintf("Unknown option kind %q", kind))
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return v, nil
}

// Suggestions merges the defaults, values found on persisted products and
// options added in this editor, in that order and without duplicates.
func (e *Editor) Suggestions(kind OptionKind) []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.suggestions(kind)
}

func (e *Editor) suggestions(kind OptionKind) []string {
	var lists [][]string
	switch kind {
	case OptionCategory:
		lists = append(lists, DefaultCategories)
		if e.deps.Options != nil {
			lists = append(lists, e.deps.Options.Categories())
		}
		lists = append(lists, e.extraCategories)
	case OptionGarmentType:
		lists = append(lists, DefaultGarmentTypes)
		if e.deps.Options != nil {
			lists = append(lists, e.deps.Options.GarmentTypes())
		}
		lists = append(lists, e.extraGarmentTypes)
	}
	return union(lists...)
}

// UploadImage normalises raw, stores it and appends its public URL to the
// draft gallery. On any failure the gallery is left untouched.
func (e *Editor) UploadImage(ctx context.Context, raw []byte) (string, error) {
	e.mu.Lock()
	if e.draft == nil {
		e.mu.Unlock()
		return "", apperr.Validation("No style is being edited")
	}
	token := e.token
	e.uploads[token]++
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		if e.uploads[token] > 1 {
			e.uploads[token]--
		} else {
			delete(e.uploads, token)
		}
		e.mu.Unlock()
	}()

	encoded, err := e.deps.Normalize(raw)
	if err != nil {
		e.log.Warn("image normalisation failed", "error", err)
		return "", apperr.Upload("Upload error", err)
	}

	path := e.objectPath()
	if err := e.deps.Blobs.Upload(ctx, path, encoded, imaging.ContentType); err != nil {
		e.log.Warn("image upload failed", "key", path, "error", err)
		return "", apperr.Upload("Upload error", err)
	}
	url := e.deps.Blobs.PublicURL(path)

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.token != token || e.draft == nil {
		e.log.Info("discarding upload for replaced draft", "key", path)
		return url, apperr.Upload("Upload finished after the draft changed; image not attached", ErrDraftReplaced)
	}
	e.draft.gallery(func(g *gallery.Gallery) bool {
		g.Append(url)
		return true
	})
	e.log.Info("image attached", "key", path, "images", len(e.draft.Images))
	return url, nil
}

func (e *Editor) objectPath() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("covers/%d-%s%s", e.now().UnixMilli(), suffix, imaging.Extension)
}

// blockedReason is empty when the draft may be submitted. Caller holds mu.
func (e *Editor) blockedReason() string {
	switch {
	case e.draft == nil:
		return "No style is being edited"
	case e.uploads[e.token] > 0:
		return "Wait for the image upload to finish"
	case e.submitting:
		return "Save already in progress"
	case len(e.draft.Images) == 0:
		return "Add at least one image before saving"
	default:
		return ""
	}
}

// Submit reconciles the draft and writes it: update when it carries an
// id, insert otherwise. On success the editor returns to Empty and the
// catalog is reloaded; on failure the draft is kept for a retry.
func (e *Editor) Submit(ctx context.Context) (models.Product, error) {
	e.mu.Lock()
	if reason := e.blockedReason(); reason != "" {
		e.mu.Unlock()
		return models.Product{}, apperr.Validation(reason)
	}
	record := e.draft.Reconcile()
	token := e.token
	e.submitting = true
	e.mu.Unlock()

	var err error
	if record.ID != uuid.Nil {
		err = e.deps.Store.Update(ctx, record.ID, &record)
	} else {
		err = e.deps.Store.Insert(ctx, &record)
	}

	e.mu.Lock()
	e.submitting = false
	if err != nil {
		e.mu.Unlock()
		e.log.Error("style save failed", "style_code", record.StyleCode, "error", err)
		return models.Product{}, saveError(err)
	}
	if e.token == token {
		e.replace(ModeEmpty, nil)
	}
	e.mu.Unlock()

	e.log.Info("style saved", "id", record.ID, "style_code", record.StyleCode)
	e.reload(ctx)
	return record, nil
}

// Delete removes a product for good. It refuses to run without explicit
// confirmation.
func (e *Editor) Delete(ctx context.Context, id uuid.UUID, confirmed bool) error {
	if !confirmed {
		return apperr.Validation("Delete this style permanently? Confirmation is required")
	}
	if err := e.deps.Store.Delete(ctx, id); err != nil {
		e.log.Error("style delete failed", "id", id, "error", err)
		return saveError(err)
	}

	e.mu.Lock()
	if e.draft != nil && e.draft.ID == id {
		e.replace(ModeEmpty, nil)
	}
	e.mu.Unlock()

	e.log.Info("style deleted", "id", id)
	e.reload(ctx)
	return nil
}

func (e *Editor) reload(ctx context.Context) {
	if e.deps.Catalog == nil {
		return
	}
	if _, err := e.deps.Catalog.LoadAll(ctx); err != nil {
		e.log.Warn("catalog reload after write failed", "error", err)
	}
}

func saveError(err error) error {
	switch {
	case errors.Is(err, store.ErrSchemaMismatch):
		return apperr.Save(store.ErrSchemaMismatch.Error(), err)
	case errors.Is(err, store.ErrNotFound):
		return apperr.Save("Style no longer exists", err)
	default:
		return apperr.Save("Database Error", err)
	}
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func union(lists ...[]string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, l := range lists {
		for _, v := range l {
			if v == "" {
				continue
			}
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

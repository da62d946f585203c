package handlers

import (
	"io"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/example/tintura/internal/apperr"
	"github.com/example/tintura/internal/editor"
)

type featureRequest struct {
	Feature string `json:"feature"`
}

type optionRequest struct {
	Kind  editor.OptionKind `json:"kind"`
	Value string            `json:"value"`
}

func (h *AdminHandler) snapshot(c *fiber.Ctx, ed *editor.Editor) error {
	return c.JSON(fiber.Map{"success": true, "data": ed.Snapshot()})
}

// draftAction runs fn against the caller's editor and answers with the
// resulting snapshot.
func (h *AdminHandler) draftAction(fn func(c *fiber.Ctx, ed *editor.Editor) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ed, err := h.editor(c)
		if err != nil {
			return err
		}
		if err := fn(c, ed); err != nil {
			return err
		}
		return h.snapshot(c, ed)
	}
}

func indexParam(c *fiber.Ctx) (int, error) {
	i, err := strconv.Atoi(c.Params("index"))
	if err != nil {
		return 0, apperr.Validation("invalid index")
	}
	return i, nil
}

// GetDraft returns the editor state.
func (h *AdminHandler) GetDraft(c *fiber.Ctx) error {
	return h.draftAction(func(*fiber.Ctx, *editor.Editor) error { return nil })(c)
}

// NewDraft starts a blank style.
func (h *AdminHandler) NewDraft(c *fiber.Ctx) error {
	return h.draftAction(func(_ *fiber.Ctx, ed *editor.Editor) error {
		ed.Create()
		return nil
	})(c)
}

// EditDraft loads an existing style into the editor.
func (h *AdminHandler) EditDraft(c *fiber.Ctx) error {
	return h.draftAction(func(c *fiber.Ctx, ed *editor.Editor) error {
		if err := ensureLoaded(c, h.engine); err != nil {
			return err
		}
		p, ok := h.engine.Find(c.Params("id"))
		if !ok {
			return fiber.NewError(fiber.StatusNotFound, "style not found")
		}
		ed.Edit(p)
		return nil
	})(c)
}

// CancelDraft discards the draft.
func (h *AdminHandler) CancelDraft(c *fiber.Ctx) error {
	return h.draftAction(func(_ *fiber.Ctx, ed *editor.Editor) error {
		ed.Cancel()
		return nil
	})(c)
}

// PatchDraft sets the fields present in the body.
func (h *AdminHandler) PatchDraft(c *fiber.Ctx) error {
	return h.draftAction(func(c *fiber.Ctx, ed *editor.Editor) error {
		var patch editor.DraftPatch
		if err := c.BodyParser(&patch); err != nil {
			return apperr.Validation("invalid request body")
		}
		return ed.Patch(patch)
	})(c)
}

func (h *AdminHandler) AddFeature(c *fiber.Ctx) error {
	return h.draftAction(func(c *fiber.Ctx, ed *editor.Editor) error {
		var req featureRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}
		return ed.AddFeature(req.Feature)
	})(c)
}

func (h *AdminHandler) RemoveFeature(c *fiber.Ctx) error {
	return h.draftAction(func(c *fiber.Ctx, ed *editor.Editor) error {
		i, err := indexParam(c)
		if err != nil {
			return err
		}
		return ed.RemoveFeature(i)
	})(c)
}

// AddOption adds and selects a new category or garment type.
func (h *AdminHandler) AddOption(c *fiber.Ctx) error {
	return h.draftAction(func(c *fiber.Ctx, ed *editor.Editor) error {
		var req optionRequest
		if err := c.BodyParser(&req); err != nil {
			return apperr.Validation("invalid request body")
		}
		_, err := ed.AddOption(req.Kind, req.Value)
		return err
	})(c)
}

// UploadImage accepts a multipart "file" and appends it to the gallery.
func (h *AdminHandler) UploadImage(c *fiber.Ctx) error {
	return h.draftAction(func(c *fiber.Ctx, ed *editor.Editor) error {
		header, err := c.FormFile("file")
		if err != nil {
			return apperr.Validation("image file is required")
		}
		f, err := header.Open()
		if err != nil {
			return apperr.Upload("Upload error", err)
		}
		defer f.Close()

		raw, err := io.ReadAll(f)
		if err != nil {
			return apperr.Upload("Upload error", err)
		}
		_, err = ed.UploadImage(c.UserContext(), raw)
		return err
	})(c)
}

func (h *AdminHandler) RemoveImage(c *fiber.Ctx) error {
	return h.draftAction(func(c *fiber.Ctx, ed *editor.Editor) error {
		i, err := indexParam(c)
		if err != nil {
			return err
		}
		return ed.RemoveImage(i)
	})(c)
}

func (h *AdminHandler) MoveImageUp(c *fiber.Ctx) error {
	return h.draftAction(func(c *fiber.Ctx, ed *editor.Editor) error {
		i, err := indexParam(c)
		if err != nil {
			return err
		}
		return ed.MoveImageUp(i)
	})(c)
}

func (h *AdminHandler) MoveImageDown(c *fiber.Ctx) error {
	return h.draftAction(func(c *fiber.Ctx, ed *editor.Editor) error {
		i, err := indexParam(c)
		if err != nil {
			return err
		}
		return ed.MoveImageDown(i)
	})(c)
}

// SubmitDraft saves the draft and returns the stored style.
func (h *AdminHandler) SubmitDraft(c *fiber.Ctx) error {
	ed, err := h.editor(c)
	if err != nil {
		return err
	}

	product, err := ed.Submit(c.UserContext())
	if err != nil {
		return err
	}

	h.notify(c.UserContext(), "saved", product)
	return c.JSON(fiber.Map{"success": true, "data": product})
}

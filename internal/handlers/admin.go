package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/example/tintura/internal/apperr"
	"github.com/example/tintura/internal/catalog"
	"github.com/example/tintura/internal/editor"
	"github.com/example/tintura/internal/export"
	"github.com/example/tintura/internal/gallery"
	"github.com/example/tintura/internal/middleware"
	"github.com/example/tintura/internal/models"
	"github.com/example/tintura/internal/platform/logger"
	"github.com/example/tintura/internal/services"
	"github.com/example/tintura/internal/utils"
)

// Notifier is told about every saved or deleted style.
type Notifier interface {
	NotifyStyleChange(ctx context.Context, n services.StyleNotification) error
}

// AdminHandler serves the admin inventory and the draft editor.
type AdminHandler struct {
	engine    *catalog.Engine
	workspace *editor.Workspace
	notifier  Notifier
	log       *logger.Logger
}

// NewAdminHandler constructs an AdminHandler. notifier may be nil.
func NewAdminHandler(engine *catalog.Engine, workspace *editor.Workspace, notifier Notifier, log *logger.Logger) *AdminHandler {
	if log == nil {
		log = logger.Nop()
	}
	return &AdminHandler{engine: engine, workspace: workspace, notifier: notifier, log: log.With("handler", "AdminHandler")}
}

// ListProducts returns the inventory table, newest first. ?refresh=true
// reloads from the store before answering.
func (h *AdminHandler) ListProducts(c *fiber.Ctx) error {
	if c.QueryBool("refresh") {
		if _, err := h.engine.LoadAll(c.UserContext()); err != nil {
			return err
		}
	} else if err := ensureLoaded(c, h.engine); err != nil {
		return err
	}

	pg := utils.ParsePagination(c)
	products := h.engine.Products()
	total := len(products)

	start, end := pg.Window(total)

	rows := make([]inventoryRow, 0, end-start)
	for _, p := range products[start:end] {
		rows = append(rows, newInventoryRow(p))
	}

	return c.JSON(fiber.Map{
		"success": true,
		"data":    rows,
		"pagination": fiber.Map{
			"page":  pg.Page,
			"limit": pg.Limit,
			"total": total,
			"pages": pg.Pages(total),
		},
	})
}

type inventoryRow struct {
	models.Product
	Cover  string `json:"cover"`
	Images int    `json:"image_count"`
}

func newInventoryRow(p models.Product) inventoryRow {
	g := gallery.FromRecord(p.ImageURLs, p.ImageURL)
	return inventoryRow{Product: p, Cover: g.Cover(), Images: g.Len()}
}

// Export downloads the inventory as an XLSX workbook.
func (h *AdminHandler) Export(c *fiber.Ctx) error {
	if err := ensureLoaded(c, h.engine); err != nil {
		return err
	}

	data, err := export.Inventory(h.engine.Products())
	if err != nil {
		h.log.Error("inventory export failed", "error", err)
		return fiber.NewError(fiber.StatusInternalServerError, "failed to build export")
	}

	name := fmt.Sprintf("tintura-styles-%s.xlsx", time.Now().UTC().Format("20060102"))
	c.Set(fiber.HeaderContentType, export.ContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(data)
}

// DeleteProduct removes a style. It requires ?confirm=true.
func (h *AdminHandler) DeleteProduct(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return apperr.Validation("invalid style id")
	}
	ed, err := h.editor(c)
	if err != nil {
		return err
	}

	if err := ensureLoaded(c, h.engine); err != nil {
		return err
	}
	existing, _ := h.engine.Find(id.String())
	if err := ed.Delete(c.UserContext(), id, c.QueryBool("confirm")); err != nil {
		return err
	}

	h.notify(c.UserContext(), "deleted", existing)
	return c.JSON(fiber.Map{"success": true})
}

func (h *AdminHandler) editor(c *fiber.Ctx) (*editor.Editor, error) {
	session, ok := middleware.CurrentSession(c)
	if !ok {
		return nil, apperr.Auth("not signed in", nil)
	}
	return h.workspace.For(session.Address), nil
}

func (h *AdminHandler) notify(ctx context.Context, action string, p models.Product) {
	if h.notifier == nil {
		return
	}
	n := services.StyleNotification{
		Action:    action,
		StyleCode: p.StyleCode,
		Name:      p.Name,
		Category:  p.Category,
		Images:    gallery.FromRecord(p.ImageURLs, p.ImageURL).Len(),
	}
	if err := h.notifier.NotifyStyleChange(ctx, n); err != nil {
		h.log.Warn("style notification failed", "action", action, "style_code", p.StyleCode, "error", err)
	}
}

package routes

import (
	"github.com/gofiber/fiber/v2"

	"github.com/example/tintura/internal/handlers"
	"github.com/example/tintura/internal/middleware"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Storefront *handlers.StorefrontHandler
	Auth       *handlers.AuthHandler
	Admin      *handlers.AdminHandler
	Sessions   middleware.Authenticator
}

// Register wires up all HTTP routes.
func Register(app *fiber.App, h Handlers) {
	api := app.Group("/api")

	// Storefront
	api.Get("/products", h.Storefront.ListProducts)
	api.Get("/products/:id", h.Storefront.GetProduct)
	api.Get("/features", h.Storefront.ListFeatures)

	// Passcode gate
	admin := api.Group("/admin")
	admin.Get("/session", h.Auth.State)
	admin.Post("/session", h.Auth.Start)
	admin.Post("/code", h.Auth.RequestCode)
	admin.Post("/verify", h.Auth.Verify)

	// Protected routes
	protected := admin.Group("", middleware.AuthMiddleware(h.Sessions))
	protected.Post("/sign-out", h.Auth.SignOut)

	protected.Get("/products", h.Admin.ListProducts)
	protected.Get("/products/export", h.Admin.Export)
	protected.Delete("/products/:id", h.Admin.DeleteProduct)

	draft := protected.Group("/draft")
	draft.Get("/", h.Admin.GetDraft)
	draft.Post("/", h.Admin.NewDraft)
	draft.Patch("/", h.Admin.PatchDraft)
	draft.Delete("/", h.Admin.CancelDraft)
	draft.Post("/edit/:id", h.Admin.EditDraft)
	draft.Post("/features", h.Admin.AddFeature)
	draft.Delete("/features/:index", h.Admin.RemoveFeature)
	draft.Post("/options", h.Admin.AddOption)
	draft.Post("/images", h.Admin.UploadImage)
	draft.Delete("/images/:index", h.Admin.RemoveImage)
	draft.Post("/images/:index/up", h.Admin.MoveImageUp)
	draft.Post("/images/:index/down", h.Admin.MoveImageDown)
	draft.Post("/submit", h.Admin.SubmitDraft)
}

package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/notascan-api/internal/application/review"
	"github.com/jhoicas/notascan-api/pkg/logger"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	Reviews   *review.Manager
	Logger    *logger.Logger
	JWTSecret string
	JWTIssuer string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	api := app.Group("/api")

	// CNPJ (público)
	cnpjHandler := NewCNPJHandler()
	api.Get("/cnpj/:value", cnpjHandler.Check)

	// Rutas protegidas (requieren Bearer Token)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret, deps.JWTIssuer))

	reviews := protected.Group("/reviews")
	reviewHandler := NewReviewHandler(deps.Reviews, deps.Logger)
	reviews.Post("/extractions/:processingId", reviewHandler.StartExtraction)
	reviews.Post("/invoices/:invoiceId", reviewHandler.StartEdit)
	reviews.Get("/:id", reviewHandler.Get)
	reviews.Delete("/:id", reviewHandler.Discard)
	reviews.Patch("/:id/header", reviewHandler.EditHeader)
	reviews.Post("/:id/items", reviewHandler.AddItem)
	reviews.Patch("/:id/items/:index", reviewHandler.EditItem)
	reviews.Delete("/:id/items/:index", reviewHandler.RemoveItem)
	reviews.Post("/:id/use-items-sum", reviewHandler.UseItemsSum)
	reviews.Post("/:id/enrich-cnpj", reviewHandler.EnrichCNPJ)
	reviews.Post("/:id/confirm", reviewHandler.Confirm)
	reviews.Delete("/:id/duplicate", reviewHandler.DismissDuplicate)
}

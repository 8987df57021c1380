package http

import (
	"github.com/gofiber/fiber/v2"
)

// RouterDeps dependencias para el router.
type RouterDeps struct {
	AppName   string
	Stamper   Stamper
	JWTSecret string
}

// Router registra las rutas de la API.
func Router(app *fiber.App, deps RouterDeps) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "service": deps.AppName})
	})

	api := app.Group("/api")

	// Rutas protegidas (requieren Bearer Token con tenant)
	protected := api.Group("/", AuthMiddleware(deps.JWTSecret))

	invoices := protected.Group("/invoices")
	stampHandler := NewStampHandler(deps.Stamper)
	invoices.Post("/:id/stamp", stampHandler.Stamp)
	invoices.Get("/:id/stamp", stampHandler.Status)
}

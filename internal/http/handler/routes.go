package handler

import (
	"database/sql"

	"github.com/gofiber/fiber/v2"

	"productapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Handlers stay minimal; business rules live in the service layer.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.ProductService) {
	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Get("/products", ListProducts(svc))
	app.Post("/products", CreateProduct(svc))
	app.Get("/products/:id", GetProduct(svc))
	app.Put("/products/:id", UpdateProduct(svc))
	app.Delete("/products/:id", DeleteProduct(svc))

	app.Post("/products/:id/image", UploadProductImage(svc))
	app.Get("/products/:id/image", ProductImageURL(svc))
}

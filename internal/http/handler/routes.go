package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"

	"doctrack/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, docSvc service.DocumentService) {
	// Health endpoint: checks DB connectivity only
	app.Get("/health", HealthCheck(db))

	// Simple liveness probe
	app.Get("/healthz", LivenessProbe())

	api := app.Group("/api")

	api.Post("/documents", CreateDocument(docSvc))
	api.Get("/documents", ListDocuments(docSvc))
	api.Get("/documents/:id", GetDocument(docSvc))
	api.Get("/documents/:id/content", GetDocumentContent(docSvc))
	api.Put("/documents/:id", UpdateDocument(docSvc))
	api.Patch("/documents/:id/status", UpdateDocumentStatus(docSvc))
	api.Delete("/documents/:id", DeleteDocument(docSvc))

	api.Get("/exports/daily", ExportDaily(docSvc))
}

// HealthCheck pings the database with a short timeout.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always reports OK while the process is up.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanjiru254/fundflow/handlers"
)

func WebhookRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/webhooks/payments", handlers.HandleProcessorWebhook)
}

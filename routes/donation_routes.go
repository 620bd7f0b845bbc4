package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanjiru254/fundflow/handlers"
	"github.com/wanjiru254/fundflow/ratelimit"
)

func DonationRoutes(app *fiber.App, limiter *ratelimit.Limiter) {
	api := app.Group("/api/v1")

	api.Post("/donations", limiter.Middleware(), handlers.CreateDonation)
}

package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanjiru254/fundflow/handlers"
	"github.com/wanjiru254/fundflow/middleware"
	"github.com/wanjiru254/fundflow/ratelimit"
)

func PayoutRoutes(app *fiber.App, limiter *ratelimit.Limiter) {
	api := app.Group("/api/v1")

	payoutGroup := api.Group("/payouts", middleware.Protected())
	payoutGroup.Post("/request", limiter.Middleware(), handlers.RequestPayoutHandler)
	payoutGroup.Get("/mine", handlers.ListMyPayoutRequests)
	payoutGroup.Get("/eligibility/:campaignId", handlers.GetPayoutEligibility)
}

package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/wanjiru254/fundflow/handlers"
	"github.com/wanjiru254/fundflow/middleware"
)

func CampaignRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	campaigns := api.Group("/campaigns")
	campaigns.Get("", handlers.ListCampaigns)

	campaigns.Get("/mine", middleware.Protected(), handlers.GetMyCampaigns)
	campaigns.Post("", middleware.Protected(), handlers.CreateCampaign)

	campaigns.Get("/:id", handlers.GetCampaign)
	campaigns.Put("/:id", middleware.Protected(), handlers.UpdateCampaign)
	campaigns.Post("/:id/cancel", middleware.Protected(), handlers.CancelCampaign)

	campaigns.Get("/:id/donations", handlers.ListCampaignDonations)

	campaigns.Use("/:id/ticker", func(c *fiber.Ctx) error {
		if !websocket.IsWebSocketUpgrade(c) {
			return fiber.ErrUpgradeRequired
		}
		return c.Next()
	})
	campaigns.Get("/:id/ticker", websocket.New(handlers.ServeFundingTicker))
}

package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanjiru254/fundflow/handlers"
	"github.com/wanjiru254/fundflow/middleware"
)

func ProfileRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	profile := api.Group("/profile", middleware.Protected())
	profile.Get("", handlers.GetProfile)
	profile.Put("", handlers.UpdateProfile)
	profile.Put("/payout-account", handlers.LinkPayoutAccount)
}

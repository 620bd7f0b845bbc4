package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/wanjiru254/fundflow/handlers"
	"github.com/wanjiru254/fundflow/middleware"
)

func AdminRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	admin := api.Group("/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/dashboard", handlers.AdminGetDashboard)
	admin.Get("/campaigns", handlers.AdminListCampaigns)
	admin.Get("/payouts", handlers.AdminListPayouts)
}

package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
	"github.com/wanjiru254/fundflow/database"
	"github.com/wanjiru254/fundflow/handlers"
	"github.com/wanjiru254/fundflow/jobs"
	"github.com/wanjiru254/fundflow/notifications"
	"github.com/wanjiru254/fundflow/payments"
	"github.com/wanjiru254/fundflow/payouts"
	"github.com/wanjiru254/fundflow/ratelimit"
	"github.com/wanjiru254/fundflow/routes"
	"github.com/wanjiru254/fundflow/websocket"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()
	notifications.InitEmailService()

	processor := payments.NewClient()
	store := payouts.NewGormStore(database.DB)
	orchestrator := payouts.NewOrchestrator(store, processor, payouts.DefaultPolicy)
	reconciler := payouts.NewReconciler(store)

	handlers.InitDonationHandlers(processor)
	handlers.InitPayoutHandlers(orchestrator)
	handlers.InitWebhookHandlers(reconciler)

	limiter := ratelimit.New(10, time.Minute)
	limiter.Start()
	defer limiter.Stop()

	c := cron.New()
	c.AddFunc("*/10 * * * *", jobs.RefreshPayoutStatuses)
	c.AddFunc("0 * * * *", jobs.FlagStalePayouts)
	go c.Start()
	log.Println("✅ Cron jobs for payout sweeps scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "FundFlow",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to FundFlow API",
		})
	})

	routes.AuthRoutes(app)
	routes.ProfileRoutes(app)
	routes.CampaignRoutes(app)
	routes.DonationRoutes(app, limiter)
	routes.PayoutRoutes(app, limiter)
	routes.WebhookRoutes(app)
	routes.UploadRoutes(app)
	routes.AdminRoutes(app)

	go websocket.RunHub()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
		<-quit
		log.Println("Shutting down...")
		limiter.Stop()
		_ = app.Shutdown()
	}()

	log.Println("✅ Server is running on port 8080")
	err := app.Listen(":8080")
	if err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}

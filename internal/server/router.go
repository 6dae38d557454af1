package server

import (
	"github.com/gofiber/fiber/v2"

	"github.com/cascadeslots/engine/internal/api/handler"
	"github.com/cascadeslots/engine/internal/api/middleware"
	"github.com/cascadeslots/engine/internal/pkg/logger"
)

// SetupRoutes sets up all application routes. There is no authentication
// layer in front of this API — player_id/session_id travel as request
// fields, not as a token-derived identity.
func SetupRoutes(
	app *fiber.App,
	log *logger.Logger,
	rateLimiter *middleware.RateLimiter,
	spinHandler *handler.SpinHandler,
	freeSpinsHandler *handler.FreeSpinsHandler,
	integrityHandler *handler.IntegrityHandler,
	syncHandler *handler.SyncHandler,
) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})

	v1 := app.Group("/v1")
	v1.Use(rateLimiter.Middleware())

	spins := v1.Group("/spins")
	spins.Post("/", spinHandler.ExecuteSpin)
	spins.Post("/buy-free-spins", spinHandler.BuyFreeSpins)
	spins.Get("/:id", spinHandler.GetSpinDetails)
	spins.Get("/player/:playerId/history", spinHandler.GetSpinHistory)

	freeSpins := v1.Group("/free-spins")
	freeSpins.Post("/trigger", freeSpinsHandler.TriggerFreeSpins)
	freeSpins.Get("/player/:playerId/active", freeSpinsHandler.GetActiveSession)
	freeSpins.Get("/:id/status", freeSpinsHandler.GetStatus)
	freeSpins.Post("/:id/spin", freeSpinsHandler.ExecuteFreeSpin)
	freeSpins.Post("/:id/retrigger", freeSpinsHandler.RetriggerFreeSpins)

	integ := v1.Group("/integrity")
	integ.Get("/:id/reveal", integrityHandler.Reveal)
	integ.Post("/:id/verify", integrityHandler.Verify)

	sync := v1.Group("/sync")
	sync.Get("/:id/status", syncHandler.GetStatus)
	sync.Use("/:id/stream", syncHandler.UpgradeMiddleware)
	sync.Get("/:id/stream", syncHandler.Stream())

	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "NOT_FOUND",
			"message": "route not found",
		})
	})
}

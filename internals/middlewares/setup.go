package middlewares

import (
	"github.com/gofiber/fiber/v2"

	loggerMw "kunskapsarvet_backend/internals/middlewares/logger"
)

// SetupMiddlewares wires the app-wide middleware stack.
func SetupMiddlewares(app *fiber.App) {
	app.Use(RecoveryMiddleware())
	app.Use(CorsMiddleware())
	app.Use(loggerMw.LoggerMiddleware())
	app.Use(GlobalRateLimiter())
}

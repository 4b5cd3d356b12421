// file: internals/features/users/auth/route/auth_route.go
package route

import (
	controller "kunskapsarvet_backend/internals/features/users/auth/controller"
	rateLimiter "kunskapsarvet_backend/internals/middlewares"
	authMw "kunskapsarvet_backend/internals/middlewares/auth"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Base: /api/auth
func AuthRoutes(app *fiber.App, db *gorm.DB) {
	authController := controller.NewAuthController(db)

	baseAuth := app.Group("/api/auth")

	baseAuth.Post("/refresh-token", authController.RefreshToken)

	baseAuth.Post("/login", rateLimiter.LoginRateLimiter(), authController.Login)
	baseAuth.Post("/register", rateLimiter.RegisterRateLimiter(), authController.Register)
	baseAuth.Post("/forgot-password", rateLimiter.ForgotPasswordRateLimiter(), authController.ForgotPassword)
	baseAuth.Post("/forgot-password/reset", authController.ResetPassword)

	protected := baseAuth.Group("", authMw.AuthMiddleware(db))
	protected.Post("/logout", authController.Logout)
	protected.Post("/change-password", authController.ChangePassword)
	protected.Put("/update-user-name", authController.UpdateUserName)
	protected.Get("/me", authController.Me)
}

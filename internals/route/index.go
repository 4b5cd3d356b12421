// file: internals/route/index.go
package routes

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	favoriteRoute "kunskapsarvet_backend/internals/features/topics/favorites/route"
	mediaRoute "kunskapsarvet_backend/internals/features/topics/topic_media/route"
	topicRoute "kunskapsarvet_backend/internals/features/topics/topics/route"
	authRoute "kunskapsarvet_backend/internals/features/users/auth/route"
	oss "kunskapsarvet_backend/internals/helpers/oss"
	authMw "kunskapsarvet_backend/internals/middlewares/auth"
)

func SetupRoutes(app *fiber.App, db *gorm.DB, store oss.ObjectStore, publicBucket, privateBucket string) {
	// ===================== AUTH =====================
	log.Println("[INFO] Setting up AuthRoutes...")
	authRoute.AuthRoutes(app, db)

	// ===================== PUBLIC =====================
	// JWT optional: owners see their own unpublished topics.
	log.Println("[INFO] Setting up PUBLIC group...")
	public := app.Group("/api/public", authMw.OptionalAuthMiddleware(db))
	topicRoute.TopicPublicRoutes(public, db, store, publicBucket)

	// ===================== PRIVATE (USER) =====================
	log.Println("[INFO] Setting up PRIVATE group...")
	private := app.Group("/api/u", authMw.AuthMiddleware(db))
	topicRoute.TopicUserRoutes(private, db, store, publicBucket)
	mediaRoute.TopicMediaRoutes(private, db, store, publicBucket, privateBucket)
	favoriteRoute.FavoriteRoutes(private, db)
}

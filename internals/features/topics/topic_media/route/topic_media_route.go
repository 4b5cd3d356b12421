// file: internals/features/topics/topic_media/route/topic_media_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "kunskapsarvet_backend/internals/features/topics/topic_media/controller"
	oss "kunskapsarvet_backend/internals/helpers/oss"
	rateLimiter "kunskapsarvet_backend/internals/middlewares"
)

// Base: /api/u/media (caller wires the auth middleware on the group)
func TopicMediaRoutes(r fiber.Router, db *gorm.DB, store oss.ObjectStore, publicBucket, privateBucket string) {
	mc := controller.NewTopicMediaController(db, store, publicBucket, privateBucket)

	media := r.Group("/media")
	media.Post("/upload", rateLimiter.UploadRateLimiter(), mc.UploadImage)
	media.Post("/youtube", mc.AddYouTube)
	media.Patch("/:id", mc.UpdateCaption)
	media.Delete("/:id", mc.DeleteMedia)
}

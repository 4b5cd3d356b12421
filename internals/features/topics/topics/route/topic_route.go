// file: internals/features/topics/topics/route/topic_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "kunskapsarvet_backend/internals/features/topics/topics/controller"
	oss "kunskapsarvet_backend/internals/helpers/oss"
)

// TopicPublicRoutes mounts the read-only surface under /api/public.
func TopicPublicRoutes(r fiber.Router, db *gorm.DB, store oss.ObjectStore, publicBucket string) {
	tc := controller.NewTopicController(db, store, publicBucket)

	topics := r.Group("/topics")
	topics.Get("/", tc.List)
	topics.Get("/categories", tc.Categories)
	topics.Get("/:slug", tc.GetBySlug)
}

// TopicUserRoutes mounts the authoring surface; the caller wires auth
// middleware on the group.
func TopicUserRoutes(r fiber.Router, db *gorm.DB, store oss.ObjectStore, publicBucket string) {
	tc := controller.NewTopicController(db, store, publicBucket)

	topics := r.Group("/topics")
	topics.Get("/", tc.ListMine)
	topics.Post("/", tc.Create)
	topics.Put("/:slug", tc.Update)
	topics.Delete("/:slug", tc.Delete)
}

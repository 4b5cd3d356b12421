// file: internals/features/topics/favorites/route/favorite_route.go
package route

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	controller "kunskapsarvet_backend/internals/features/topics/favorites/controller"
)

// Base: /api/u/favorites (caller wires the auth middleware on the group)
func FavoriteRoutes(r fiber.Router, db *gorm.DB) {
	fc := controller.NewFavoriteController(db)

	favorites := r.Group("/favorites")
	favorites.Get("/", fc.List)
	favorites.Post("/:topic_id", fc.Add)
	favorites.Delete("/:topic_id", fc.Remove)
}

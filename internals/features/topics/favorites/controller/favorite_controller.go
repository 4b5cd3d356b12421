// internals/features/topics/favorites/controller/favorite_controller.go
package controller

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	favModel "kunskapsarvet_backend/internals/features/topics/favorites/model"
	topicDTO "kunskapsarvet_backend/internals/features/topics/topics/dto"
	topicModel "kunskapsarvet_backend/internals/features/topics/topics/model"
	helper "kunskapsarvet_backend/internals/helpers"
)

type FavoriteController struct {
	DB *gorm.DB
}

func NewFavoriteController(db *gorm.DB) *FavoriteController {
	return &FavoriteController{DB: db}
}

func (fc *FavoriteController) userID(c *fiber.Ctx) (uuid.UUID, error) {
	s, ok := c.Locals("user_id").(string)
	if !ok || s == "" {
		return uuid.Nil, helper.NewAuthorizationError("inte inloggad")
	}
	return uuid.Parse(s)
}

// Add favorites a published topic. Favoriting the same topic twice is a
// conflict.
func (fc *FavoriteController) Add(c *fiber.Ctx) error {
	userID, err := fc.userID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	topicID, err := uuid.Parse(c.Params("topic_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Ogiltigt topic_id")
	}

	var topic topicModel.TopicModel
	if err := fc.DB.WithContext(c.Context()).
		Select("id", "is_published", "author_id").
		First(&topic, "id = ?", topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Ämnet finns inte")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte hämta ämnet")
	}
	if !topic.IsPublished && topic.AuthorID != userID {
		return helper.JsonError(c, fiber.StatusNotFound, "Ämnet finns inte")
	}

	fav := favModel.FavoriteModel{UserID: userID, TopicID: topicID}
	if err := fc.DB.WithContext(c.Context()).Create(&fav).Error; err != nil {
		if helper.IsUniqueViolation(err) {
			return helper.JsonFromError(c, helper.NewConflictError("ämnet är redan en favorit", err))
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte spara favoriten")
	}
	return helper.JsonCreated(c, "Tillagd som favorit", nil)
}

func (fc *FavoriteController) Remove(c *fiber.Ctx) error {
	userID, err := fc.userID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	topicID, err := uuid.Parse(c.Params("topic_id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Ogiltigt topic_id")
	}

	if err := fc.DB.WithContext(c.Context()).
		Delete(&favModel.FavoriteModel{}, "user_id = ? AND topic_id = ?", userID, topicID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte ta bort favoriten")
	}
	return helper.JsonDeleted(c, "Favoriten har tagits bort", nil)
}

// List returns the caller's favorited topics, newest favorite first.
func (fc *FavoriteController) List(c *fiber.Ctx) error {
	userID, err := fc.userID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)

	base := fc.DB.WithContext(c.Context()).
		Model(&topicModel.TopicModel{}).
		Joins("JOIN favorites ON favorites.topic_id = topics.id").
		Where("favorites.user_id = ?", userID)

	var total int64
	if err := base.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte hämta favoriter")
	}

	var topics []topicModel.TopicModel
	if err := base.Order("favorites.created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&topics).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte hämta favoriter")
	}

	out := make([]topicDTO.TopicResponse, 0, len(topics))
	for i := range topics {
		resp := topicDTO.ToTopicListResponse(&topics[i])
		resp.IsFavorite = true
		out = append(out, resp)
	}
	return helper.JsonList(c, "", out, helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

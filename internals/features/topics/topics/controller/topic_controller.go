// internals/features/topics/topics/controller/topic_controller.go
package controller

import (
	"errors"
	"log"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	favModel "kunskapsarvet_backend/internals/features/topics/favorites/model"
	mediaDTO "kunskapsarvet_backend/internals/features/topics/topic_media/dto"
	mediaModel "kunskapsarvet_backend/internals/features/topics/topic_media/model"
	mediaService "kunskapsarvet_backend/internals/features/topics/topic_media/service"
	topicDTO "kunskapsarvet_backend/internals/features/topics/topics/dto"
	topicModel "kunskapsarvet_backend/internals/features/topics/topics/model"
	topicService "kunskapsarvet_backend/internals/features/topics/topics/service"
	helper "kunskapsarvet_backend/internals/helpers"
	oss "kunskapsarvet_backend/internals/helpers/oss"
)

type TopicController struct {
	DB           *gorm.DB
	Store        oss.ObjectStore
	PublicBucket string
	Service      *topicService.TopicService
}

func NewTopicController(db *gorm.DB, store oss.ObjectStore, publicBucket string) *TopicController {
	return &TopicController{
		DB:           db,
		Store:        store,
		PublicBucket: publicBucket,
		Service:      topicService.NewTopicService(db, store),
	}
}

func viewerID(c *fiber.Ctx) uuid.UUID {
	if s, ok := c.Locals("user_id").(string); ok {
		if id, err := uuid.Parse(s); err == nil {
			return id
		}
	}
	return uuid.Nil
}

func mustUserID(c *fiber.Ctx) (uuid.UUID, error) {
	id := viewerID(c)
	if id == uuid.Nil {
		return uuid.Nil, helper.NewAuthorizationError("inte inloggad")
	}
	return id, nil
}

/* ====================== PUBLIC ====================== */

// List returns published topics, filterable by ?q= and ?category=.
func (tc *TopicController) List(c *fiber.Ctx) error {
	paging := helper.ResolvePaging(c, 20, 100)

	q := tc.DB.WithContext(c.Context()).
		Model(&topicModel.TopicModel{}).
		Where("is_published = ?", true)

	if category := strings.TrimSpace(c.Query("category")); category != "" {
		if cat, ok := topicModel.ToCategory(category); ok {
			q = q.Where("category = ?", cat)
		} else {
			return helper.JsonError(c, fiber.StatusBadRequest, "Ogiltig kategori")
		}
	}
	if search := strings.TrimSpace(c.Query("q")); search != "" {
		like := "%" + search + "%"
		q = q.Where("title ILIKE ? OR excerpt ILIKE ?", like, like)
	}

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte hämta ämnen")
	}

	var topics []topicModel.TopicModel
	if err := q.Order("created_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&topics).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte hämta ämnen")
	}

	out := make([]topicDTO.TopicResponse, 0, len(topics))
	for i := range topics {
		out = append(out, topicDTO.ToTopicListResponse(&topics[i]))
	}
	return helper.JsonList(c, "", out, helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// GetBySlug returns one topic with resolved media. Unpublished topics are
// only visible to their owner.
func (tc *TopicController) GetBySlug(c *fiber.Ctx) error {
	slug := c.Params("slug")

	var topic topicModel.TopicModel
	if err := tc.DB.WithContext(c.Context()).First(&topic, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return helper.JsonError(c, fiber.StatusNotFound, "Ämnet finns inte")
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte hämta ämnet")
	}

	viewer := viewerID(c)
	isOwner := viewer != uuid.Nil && viewer == topic.AuthorID
	if !topic.IsPublished && !isOwner {
		return helper.JsonError(c, fiber.StatusNotFound, "Ämnet finns inte")
	}

	resp := topicDTO.ToTopicResponse(&topic)
	resp.Media = tc.resolveTopicMedia(c, topic.ID, isOwner)

	if viewer != uuid.Nil {
		var n int64
		if err := tc.DB.WithContext(c.Context()).
			Model(&favModel.FavoriteModel{}).
			Where("user_id = ? AND topic_id = ?", viewer, topic.ID).
			Count(&n).Error; err == nil {
			resp.IsFavorite = n > 0
		}
	}

	return helper.JsonOK(c, "", resp)
}

func (tc *TopicController) resolveTopicMedia(c *fiber.Ctx, topicID uuid.UUID, viewerIsOwner bool) []mediaDTO.TopicMediaResponse {
	var rows []mediaModel.TopicMediaModel
	if err := tc.DB.WithContext(c.Context()).
		Where("topic_id = ?", topicID).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		log.Printf("[TOPIC] load media for %s: %v", topicID, err)
		return nil
	}

	out := make([]mediaDTO.TopicMediaResponse, 0, len(rows))
	for i := range rows {
		resolved, err := mediaService.ResolveMediaURL(c.Context(), tc.Store, tc.PublicBucket, &rows[i], viewerIsOwner)
		if err != nil {
			log.Printf("[TOPIC] resolve media %s: %v", rows[i].ID, err)
		}
		out = append(out, mediaDTO.ToTopicMediaResponse(&rows[i], resolved.URL, resolved.IsPrivate))
	}
	return out
}

/* ====================== PROTECTED ====================== */

func (tc *TopicController) Create(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var req topicDTO.CreateTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	topic, err := tc.Service.Create(c.Context(), userID, &req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonCreated(c, "Ämnet har skapats", topicDTO.ToTopicResponse(topic))
}

func (tc *TopicController) Update(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var req topicDTO.UpdateTopicRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	topic, err := tc.Service.Update(c.Context(), userID, c.Params("slug"), &req)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonUpdated(c, "Ämnet har uppdaterats", topicDTO.ToTopicResponse(topic))
}

func (tc *TopicController) Delete(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	if err := tc.Service.Delete(c.Context(), userID, c.Params("slug")); err != nil {
		return helper.JsonFromError(c, err)
	}
	return helper.JsonDeleted(c, "Ämnet har tagits bort", nil)
}

// ListMine returns the caller's topics, drafts included.
func (tc *TopicController) ListMine(c *fiber.Ctx) error {
	userID, err := mustUserID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	paging := helper.ResolvePaging(c, 20, 100)

	q := tc.DB.WithContext(c.Context()).
		Model(&topicModel.TopicModel{}).
		Where("author_id = ?", userID)

	var total int64
	if err := q.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte hämta dina ämnen")
	}

	var topics []topicModel.TopicModel
	if err := q.Order("updated_at DESC").
		Offset(paging.Offset).Limit(paging.Limit).
		Find(&topics).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte hämta dina ämnen")
	}

	out := make([]topicDTO.TopicResponse, 0, len(topics))
	for i := range topics {
		out = append(out, topicDTO.ToTopicListResponse(&topics[i]))
	}
	return helper.JsonList(c, "", out, helper.BuildPaginationFromPage(total, paging.Page, paging.PerPage))
}

// Categories exposes the fixed category list for form rendering.
func (tc *TopicController) Categories(c *fiber.Ctx) error {
	return helper.JsonOK(c, "", topicModel.Categories)
}

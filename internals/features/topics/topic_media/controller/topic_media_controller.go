// internals/features/topics/topic_media/controller/topic_media_controller.go
package controller

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"

	mediaDTO "kunskapsarvet_backend/internals/features/topics/topic_media/dto"
	mediaModel "kunskapsarvet_backend/internals/features/topics/topic_media/model"
	mediaService "kunskapsarvet_backend/internals/features/topics/topic_media/service"
	topicModel "kunskapsarvet_backend/internals/features/topics/topics/model"
	helper "kunskapsarvet_backend/internals/helpers"
	oss "kunskapsarvet_backend/internals/helpers/oss"
)

const maxUploadBytes = 12 * 1024 * 1024

type TopicMediaController struct {
	DB            *gorm.DB
	Store         oss.ObjectStore
	PublicBucket  string
	PrivateBucket string
}

func NewTopicMediaController(db *gorm.DB, store oss.ObjectStore, publicBucket, privateBucket string) *TopicMediaController {
	return &TopicMediaController{
		DB:            db,
		Store:         store,
		PublicBucket:  publicBucket,
		PrivateBucket: privateBucket,
	}
}

func currentUserID(c *fiber.Ctx) (uuid.UUID, error) {
	s, ok := c.Locals("user_id").(string)
	if !ok || s == "" {
		return uuid.Nil, helper.NewAuthorizationError("inte inloggad")
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, helper.NewAuthorizationError("ogiltigt användar-id")
	}
	return id, nil
}

func (mc *TopicMediaController) loadOwnedTopic(c *fiber.Ctx, topicID, userID uuid.UUID) (*topicModel.TopicModel, error) {
	var topic topicModel.TopicModel
	if err := mc.DB.WithContext(c.Context()).First(&topic, "id = ?", topicID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NewNotFoundError("ämnet finns inte")
		}
		return nil, err
	}
	if topic.AuthorID != userID {
		return nil, helper.NewAuthorizationError("du äger inte detta ämne")
	}
	return &topic, nil
}

// UploadImage accepts a multipart image, re-encodes it to WebP (max
// 1600x1600) and stores it either topic-scoped or draft-scoped. Published
// topics and drafts get the public bucket, unpublished topics the private
// one.
func (mc *TopicMediaController) UploadImage(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Ingen fil bifogad")
	}
	if fileHeader.Size > maxUploadBytes {
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, "Filen är för stor (max 12 MB)")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Kunde inte läsa filen")
	}
	raw, err := io.ReadAll(io.LimitReader(f, maxUploadBytes+1))
	_ = f.Close()
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Kunde inte läsa filen")
	}
	if int64(len(raw)) > maxUploadBytes {
		return helper.JsonError(c, fiber.StatusRequestEntityTooLarge, "Filen är för stor (max 12 MB)")
	}

	if !allowedImageType(raw) {
		return helper.JsonError(c, fiber.StatusUnsupportedMediaType, "Endast JPEG, PNG och WebP stöds")
	}

	data, width, height, err := oss.ConvertToWebP(raw, fileHeader.Filename)
	if err != nil {
		return helper.JsonError(c, fiber.StatusUnprocessableEntity, "Bilden kunde inte bearbetas")
	}

	topicIDStr := strings.TrimSpace(c.FormValue("topic_id"))
	draftKey := strings.TrimSpace(c.FormValue("draft_key"))
	if (topicIDStr == "") == (draftKey == "") {
		return helper.JsonError(c, fiber.StatusBadRequest, "Ange exakt en av topic_id eller draft_key")
	}

	filename := fmt.Sprintf("%d-%s.webp", time.Now().UnixMilli(), sanitizeFilename(fileHeader.Filename))
	row := mediaModel.TopicMediaModel{
		Kind:      mediaModel.KindImage,
		Alt:       strings.TrimSpace(c.FormValue("alt")),
		Width:     width,
		Height:    height,
		Bytes:     int64(len(data)),
		MimeType:  "image/webp",
		CreatedBy: userID,
	}

	if topicIDStr != "" {
		topicID, err := uuid.Parse(topicIDStr)
		if err != nil {
			return helper.JsonError(c, fiber.StatusBadRequest, "Ogiltigt topic_id")
		}
		topic, err := mc.loadOwnedTopic(c, topicID, userID)
		if err != nil {
			return helper.JsonFromError(c, err)
		}
		row.TopicID = &topic.ID
		row.Bucket = mc.PrivateBucket
		if topic.IsPublished {
			row.Bucket = mc.PublicBucket
		}
		row.Path = fmt.Sprintf("topics/%s/%s", topic.ID, filename)
	} else {
		// Drafts stage in the public bucket: promotion moves objects within
		// one bucket, so a draft image must already be readable once its
		// topic goes live.
		row.DraftKey = &draftKey
		row.Bucket = mc.PublicBucket
		row.Path = fmt.Sprintf("drafts/%s/%s/%s", userID, draftKey, filename)
	}

	if err := mc.Store.Upload(c.Context(), row.Bucket, row.Path, bytes.NewReader(data), "image/webp"); err != nil {
		log.Printf("[MEDIA] upload %s: %v", row.Path, err)
		return helper.JsonFromError(c, helper.NewStorageError("uppladdningen misslyckades", err))
	}

	if err := mc.DB.WithContext(c.Context()).Create(&row).Error; err != nil {
		// Keep storage tidy when the row never lands.
		if rmErr := mc.Store.Remove(c.Context(), row.Bucket, []string{row.Path}); rmErr != nil {
			log.Printf("[MEDIA] cleanup %s after failed insert: %v", row.Path, rmErr)
		}
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte spara mediaraden")
	}

	resolved, err := mediaService.ResolveMediaURL(c.Context(), mc.Store, mc.PublicBucket, &row, true)
	if err != nil {
		log.Printf("[MEDIA] resolve %s: %v", row.Path, err)
	}
	return helper.JsonCreated(c, "Bilden har laddats upp", mediaDTO.ToTopicMediaResponse(&row, resolved.URL, resolved.IsPrivate))
}

var (
	reUnsafeFilename  = regexp.MustCompile(`[^a-z0-9._-]+`)
	reFilenameHyphens = regexp.MustCompile(`-+`)
)

// sanitizeFilename keeps object keys operator-legible: the lowercased
// source name without its extension, unsafe runes collapsed to hyphens.
func sanitizeFilename(name string) string {
	base := filepath.Base(name)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.ToLower(base)
	base = reUnsafeFilename.ReplaceAllString(base, "-")
	base = reFilenameHyphens.ReplaceAllString(base, "-")
	base = strings.Trim(base, "-.")
	if base == "" {
		return "bild"
	}
	return base
}

func allowedImageType(raw []byte) bool {
	head := raw
	if len(head) > 512 {
		head = head[:512]
	}
	switch http.DetectContentType(head) {
	case "image/jpeg", "image/png", "image/webp":
		return true
	}
	return false
}

// AddYouTube attaches an embed-only media row. No storage interaction.
func (mc *TopicMediaController) AddYouTube(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	var req mediaDTO.AddYouTubeRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}
	if (req.TopicID == nil) == (req.DraftKey == nil || *req.DraftKey == "") {
		return helper.JsonError(c, fiber.StatusBadRequest, "Ange exakt en av topic_id eller draft_key")
	}

	videoID, ok := mediaService.ParseYouTubeID(req.URL)
	if !ok {
		return helper.JsonError(c, fiber.StatusBadRequest, "Ogiltig YouTube-länk")
	}

	row := mediaModel.TopicMediaModel{
		Kind:      mediaModel.KindYouTube,
		Bucket:    oss.BucketExternal,
		Path:      "youtube/" + videoID,
		Alt:       strings.TrimSpace(req.Alt),
		CreatedBy: userID,
	}
	if req.TopicID != nil {
		topic, err := mc.loadOwnedTopic(c, *req.TopicID, userID)
		if err != nil {
			return helper.JsonFromError(c, err)
		}
		row.TopicID = &topic.ID
	} else {
		row.DraftKey = req.DraftKey
	}

	if err := mc.DB.WithContext(c.Context()).Create(&row).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte spara mediaraden")
	}

	return helper.JsonCreated(c, "YouTube-klippet har lagts till",
		mediaDTO.ToTopicMediaResponse(&row, mediaService.YouTubeEmbedURL(videoID), false))
}

func (mc *TopicMediaController) loadOwnedMedia(c *fiber.Ctx, mediaID, userID uuid.UUID) (*mediaModel.TopicMediaModel, error) {
	var row mediaModel.TopicMediaModel
	if err := mc.DB.WithContext(c.Context()).First(&row, "id = ?", mediaID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, helper.NewNotFoundError("mediaobjektet finns inte")
		}
		return nil, err
	}
	if row.CreatedBy != userID {
		return nil, helper.NewAuthorizationError("du äger inte detta mediaobjekt")
	}
	return &row, nil
}

// UpdateCaption changes the alt text of a media row.
func (mc *TopicMediaController) UpdateCaption(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	mediaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Ogiltigt media-id")
	}

	var req mediaDTO.UpdateCaptionRequest
	if err := c.BodyParser(&req); err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Invalid request body")
	}

	row, err := mc.loadOwnedMedia(c, mediaID, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	if err := mc.DB.WithContext(c.Context()).
		Model(&mediaModel.TopicMediaModel{}).
		Where("id = ?", row.ID).
		Update("alt", strings.TrimSpace(req.Alt)).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte uppdatera bildtexten")
	}

	return helper.JsonUpdated(c, "Bildtexten har uppdaterats", nil)
}

// DeleteMedia removes the stored object first (best-effort), then the row.
func (mc *TopicMediaController) DeleteMedia(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return helper.JsonFromError(c, err)
	}
	mediaID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return helper.JsonError(c, fiber.StatusBadRequest, "Ogiltigt media-id")
	}

	row, err := mc.loadOwnedMedia(c, mediaID, userID)
	if err != nil {
		return helper.JsonFromError(c, err)
	}

	if row.Kind == mediaModel.KindImage && row.Bucket != oss.BucketExternal {
		if err := mc.Store.Remove(c.Context(), row.Bucket, []string{row.Path}); err != nil {
			log.Printf("[MEDIA] remove object %s: %v", row.Path, err)
		}
	}

	if err := mc.DB.WithContext(c.Context()).Delete(&mediaModel.TopicMediaModel{}, "id = ?", row.ID).Error; err != nil {
		return helper.JsonError(c, fiber.StatusInternalServerError, "Kunde inte ta bort mediaraden")
	}

	return helper.JsonDeleted(c, "Mediaobjektet har tagits bort", nil)
}

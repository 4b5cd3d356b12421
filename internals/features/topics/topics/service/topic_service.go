// internals/features/topics/topics/service/topic_service.go
package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kunskapsarvet_backend/internals/configs"
	mediaModel "kunskapsarvet_backend/internals/features/topics/topic_media/model"
	mediaService "kunskapsarvet_backend/internals/features/topics/topic_media/service"
	topicDTO "kunskapsarvet_backend/internals/features/topics/topics/dto"
	topicModel "kunskapsarvet_backend/internals/features/topics/topics/model"
	helper "kunskapsarvet_backend/internals/helpers"
	oss "kunskapsarvet_backend/internals/helpers/oss"
)

const slugMaxLen = 100

// TopicService orchestrates the topic lifecycle: slug resolution, the
// primary row write, draft media promotion and storage cleanup.
type TopicService struct {
	DB       *gorm.DB
	Store    oss.ObjectStore
	Promoter *mediaService.Promoter
}

func NewTopicService(db *gorm.DB, store oss.ObjectStore) *TopicService {
	return &TopicService{
		DB:       db,
		Store:    store,
		Promoter: mediaService.NewPromoter(db, store),
	}
}

/* ====================== CREATE ====================== */

func (s *TopicService) Create(ctx context.Context, userID uuid.UUID, req *topicDTO.CreateTopicRequest) (*topicModel.TopicModel, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.BodyMD = strings.TrimSpace(req.BodyMD)
	if req.Title == "" || req.BodyMD == "" {
		return nil, helper.NewValidationError("titel och innehåll krävs")
	}
	category, ok := topicModel.ToCategory(req.Category)
	if !ok {
		return nil, helper.NewValidationError("ogiltig kategori")
	}

	base := helper.Slugify(req.Title, slugMaxLen)
	slug, err := helper.ResolveUniqueSlug(ctx, s.DB, "topics", "slug", base, "")
	if err != nil {
		return nil, err
	}

	topic := topicModel.TopicModel{
		Slug:          slug,
		Title:         req.Title,
		Excerpt:       strings.TrimSpace(req.Excerpt),
		Category:      category,
		BodyMD:        req.BodyMD,
		AuthorDisplay: strings.TrimSpace(req.AuthorDisplay),
		AuthorID:      userID,
		IsPublished:   req.IsPublished,
	}

	if err := s.DB.WithContext(ctx).Create(&topic).Error; err != nil {
		if !helper.IsUniqueViolation(err) {
			return nil, err
		}
		// Lost the slug race: retry once with a timestamp suffix.
		topic.ID = uuid.Nil
		topic.Slug = helper.TimestampSlug(base)
		if err := s.DB.WithContext(ctx).Create(&topic).Error; err != nil {
			if helper.IsUniqueViolation(err) {
				return nil, helper.NewConflictError("kunde inte reservera en unik adress för ämnet", err)
			}
			return nil, err
		}
	}

	if req.DraftKey != "" {
		s.Promoter.ClaimDraftMedia(ctx, req.DraftKey, topic.ID)
	}

	return &topic, nil
}

/* ====================== UPDATE ====================== */

func (s *TopicService) Update(ctx context.Context, userID uuid.UUID, slug string, req *topicDTO.UpdateTopicRequest) (*topicModel.TopicModel, error) {
	topic, err := s.loadOwned(ctx, userID, slug)
	if err != nil {
		return nil, err
	}
	wasPublished := topic.IsPublished

	updates := map[string]interface{}{}

	if req.Title != nil {
		t := strings.TrimSpace(*req.Title)
		if t == "" {
			return nil, helper.NewValidationError("titeln får inte vara tom")
		}
		updates["title"] = t
	}
	if req.BodyMD != nil {
		b := strings.TrimSpace(*req.BodyMD)
		if b == "" {
			return nil, helper.NewValidationError("innehållet får inte vara tomt")
		}
		updates["body_md"] = b
	}
	if req.Category != nil {
		category, ok := topicModel.ToCategory(*req.Category)
		if !ok {
			return nil, helper.NewValidationError("ogiltig kategori")
		}
		updates["category"] = category
	}
	if req.Excerpt != nil {
		updates["excerpt"] = strings.TrimSpace(*req.Excerpt)
	}
	if req.AuthorDisplay != nil {
		updates["author_display"] = strings.TrimSpace(*req.AuthorDisplay)
	}
	if req.IsPublished != nil {
		updates["is_published"] = *req.IsPublished
	}

	// A supplied slug is re-resolved with the same algorithm, scoped away
	// from the topic's own current slug.
	if req.Slug != nil && strings.TrimSpace(*req.Slug) != "" {
		base := helper.Slugify(*req.Slug, slugMaxLen)
		newSlug, err := helper.ResolveUniqueSlug(ctx, s.DB, "topics", "slug", base, topic.Slug)
		if err != nil {
			return nil, err
		}
		if newSlug != topic.Slug {
			updates["slug"] = newSlug
		}
	}

	if len(updates) > 0 {
		err := s.DB.WithContext(ctx).Model(&topicModel.TopicModel{}).
			Where("id = ?", topic.ID).
			Updates(updates).Error
		if err != nil {
			if helper.IsUniqueViolation(err) {
				if slugVal, ok := updates["slug"].(string); ok {
					updates["slug"] = helper.TimestampSlug(slugVal)
					err = s.DB.WithContext(ctx).Model(&topicModel.TopicModel{}).
						Where("id = ?", topic.ID).
						Updates(updates).Error
				}
			}
			if err != nil {
				if helper.IsUniqueViolation(err) {
					return nil, helper.NewConflictError("adressen är redan upptagen", err)
				}
				return nil, err
			}
		}
	}

	if err := s.DB.WithContext(ctx).First(topic, "id = ?", topic.ID).Error; err != nil {
		return nil, err
	}

	if !wasPublished && topic.IsPublished {
		s.Promoter.PromoteRemainingForTopic(ctx, topic.ID)
	}
	if wasPublished && !topic.IsPublished && configs.GetEnv("MEDIA_DEMOTE_ON_UNPUBLISH", "false") == "true" {
		// Media visibility stays independent of publish state; the flag only
		// makes the choice visible to operators.
		log.Printf("[TOPIC] %s unpublished; media rows keep their current buckets", topic.ID)
	}

	return topic, nil
}

/* ====================== DELETE ====================== */

// Delete removes stored objects grouped per bucket (one batch call each,
// best-effort), then the media rows, then the topic row.
func (s *TopicService) Delete(ctx context.Context, userID uuid.UUID, slug string) error {
	topic, err := s.loadOwned(ctx, userID, slug)
	if err != nil {
		return err
	}

	var media []mediaModel.TopicMediaModel
	if err := s.DB.WithContext(ctx).Where("topic_id = ?", topic.ID).Find(&media).Error; err != nil {
		return err
	}

	keysByBucket := map[string][]string{}
	for _, m := range media {
		if m.Kind != mediaModel.KindImage || m.Bucket == oss.BucketExternal {
			continue
		}
		keysByBucket[m.Bucket] = append(keysByBucket[m.Bucket], m.Path)
	}
	for bucket, keys := range keysByBucket {
		if err := s.Store.Remove(ctx, bucket, keys); err != nil {
			log.Printf("[TOPIC] remove objects from %s for topic %s: %v", bucket, topic.ID, err)
		}
	}

	if err := s.DB.WithContext(ctx).Delete(&mediaModel.TopicMediaModel{}, "topic_id = ?", topic.ID).Error; err != nil {
		return err
	}
	return s.DB.WithContext(ctx).Delete(&topicModel.TopicModel{}, "id = ?", topic.ID).Error
}

/* ====================== SHARED ====================== */

func (s *TopicService) loadOwned(ctx context.Context, userID uuid.UUID, slug string) (*topicModel.TopicModel, error) {
	var topic topicModel.TopicModel
	if err := s.DB.WithContext(ctx).First(&topic, "slug = ?", slug).Error; err != nil {
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

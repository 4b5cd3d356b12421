package dto

import (
	"time"

	"github.com/google/uuid"

	mediaDTO "kunskapsarvet_backend/internals/features/topics/topic_media/dto"
	topicModel "kunskapsarvet_backend/internals/features/topics/topics/model"
)

type CreateTopicRequest struct {
	Title         string `json:"title" form:"title" validate:"required,max=200"`
	Excerpt       string `json:"excerpt" form:"excerpt" validate:"max=500"`
	Category      string `json:"category" form:"category" validate:"required"`
	BodyMD        string `json:"body_md" form:"body_md" validate:"required"`
	AuthorDisplay string `json:"author_display" form:"author_display" validate:"max=100"`
	IsPublished   bool   `json:"is_published" form:"is_published"`
	// DraftKey attaches media uploaded before the topic existed.
	DraftKey string `json:"draft_key,omitempty" form:"draft_key"`
}

// UpdateTopicRequest uses pointers so absent fields stay untouched.
type UpdateTopicRequest struct {
	Title         *string `json:"title,omitempty" form:"title"`
	Slug          *string `json:"slug,omitempty" form:"slug"`
	Excerpt       *string `json:"excerpt,omitempty" form:"excerpt"`
	Category      *string `json:"category,omitempty" form:"category"`
	BodyMD        *string `json:"body_md,omitempty" form:"body_md"`
	AuthorDisplay *string `json:"author_display,omitempty" form:"author_display"`
	IsPublished   *bool   `json:"is_published,omitempty" form:"is_published"`
}

type TopicResponse struct {
	ID            uuid.UUID                     `json:"id"`
	Slug          string                        `json:"slug"`
	Title         string                        `json:"title"`
	Excerpt       string                        `json:"excerpt"`
	Category      string                        `json:"category"`
	BodyMD        string                        `json:"body_md,omitempty"`
	AuthorDisplay string                        `json:"author_display"`
	AuthorID      uuid.UUID                     `json:"author_id"`
	IsPublished   bool                          `json:"is_published"`
	IsFavorite    bool                          `json:"is_favorite,omitempty"`
	Media         []mediaDTO.TopicMediaResponse `json:"media,omitempty"`
	CreatedAt     time.Time                     `json:"created_at"`
	UpdatedAt     time.Time                     `json:"updated_at"`
}

func ToTopicResponse(t *topicModel.TopicModel) TopicResponse {
	return TopicResponse{
		ID:            t.ID,
		Slug:          t.Slug,
		Title:         t.Title,
		Excerpt:       t.Excerpt,
		Category:      t.Category,
		BodyMD:        t.BodyMD,
		AuthorDisplay: t.AuthorDisplay,
		AuthorID:      t.AuthorID,
		IsPublished:   t.IsPublished,
		CreatedAt:     t.CreatedAt,
		UpdatedAt:     t.UpdatedAt,
	}
}

// ToTopicListResponse omits the body for listings.
func ToTopicListResponse(t *topicModel.TopicModel) TopicResponse {
	resp := ToTopicResponse(t)
	resp.BodyMD = ""
	return resp
}

package dto

import (
	"time"

	"github.com/google/uuid"

	mediaModel "kunskapsarvet_backend/internals/features/topics/topic_media/model"
)

type AddYouTubeRequest struct {
	TopicID  *uuid.UUID `json:"topic_id,omitempty" form:"topic_id"`
	DraftKey *string    `json:"draft_key,omitempty" form:"draft_key"`
	URL      string     `json:"url" form:"url" validate:"required"`
	Alt      string     `json:"alt" form:"alt" validate:"max=300"`
}

type UpdateCaptionRequest struct {
	Alt string `json:"alt" form:"alt" validate:"max=300"`
}

// TopicMediaResponse is a media row plus its resolved viewer URL.
type TopicMediaResponse struct {
	ID        uuid.UUID  `json:"id"`
	TopicID   *uuid.UUID `json:"topic_id,omitempty"`
	DraftKey  *string    `json:"draft_key,omitempty"`
	Kind      string     `json:"kind"`
	Alt       string     `json:"alt"`
	Width     int        `json:"width,omitempty"`
	Height    int        `json:"height,omitempty"`
	Bytes     int64      `json:"bytes,omitempty"`
	MimeType  string     `json:"mime_type,omitempty"`
	URL       string     `json:"url"`
	IsPrivate bool       `json:"is_private"`
	CreatedAt time.Time  `json:"created_at"`
}

func ToTopicMediaResponse(m *mediaModel.TopicMediaModel, url string, isPrivate bool) TopicMediaResponse {
	return TopicMediaResponse{
		ID:        m.ID,
		TopicID:   m.TopicID,
		DraftKey:  m.DraftKey,
		Kind:      m.Kind,
		Alt:       m.Alt,
		Width:     m.Width,
		Height:    m.Height,
		Bytes:     m.Bytes,
		MimeType:  m.MimeType,
		URL:       url,
		IsPrivate: isPrivate,
		CreatedAt: m.CreatedAt,
	}
}

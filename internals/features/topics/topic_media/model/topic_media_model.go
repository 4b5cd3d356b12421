package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KindImage   = "image"
	KindYouTube = "youtube"
)

// TopicMediaModel carries one attached media item. Draft rows have
// DraftKey set and TopicID null; promoted rows have the reverse.
type TopicMediaModel struct {
	ID       uuid.UUID  `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	TopicID  *uuid.UUID `gorm:"column:topic_id;type:uuid;index" json:"topic_id,omitempty"`
	DraftKey *string    `gorm:"column:draft_key;size:64;index" json:"draft_key,omitempty"`

	Kind   string `gorm:"column:kind;size:10;not null" json:"kind"`
	Bucket string `gorm:"column:bucket;size:80;not null" json:"bucket"`
	// storage object key, or youtube/<video-id> for embeds
	Path string `gorm:"column:path;size:500;not null" json:"path"`

	Alt      string `gorm:"column:alt;size:300" json:"alt"`
	Width    int    `gorm:"column:width" json:"width"`
	Height   int    `gorm:"column:height" json:"height"`
	Bytes    int64  `gorm:"column:bytes" json:"bytes"`
	MimeType string `gorm:"column:mime_type;size:100" json:"mime_type"`

	CreatedBy uuid.UUID `gorm:"column:created_by;type:uuid;not null;index" json:"created_by"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (TopicMediaModel) TableName() string {
	return "topic_media"
}

// BeforeCreate fills the id for databases without gen_random_uuid().
func (m *TopicMediaModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

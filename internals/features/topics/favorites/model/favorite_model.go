package model

import (
	"time"

	"github.com/google/uuid"
)

// FavoriteModel is the favorites join table, keyed (user_id, topic_id).
type FavoriteModel struct {
	UserID    uuid.UUID `gorm:"column:user_id;type:uuid;primaryKey" json:"user_id"`
	TopicID   uuid.UUID `gorm:"column:topic_id;type:uuid;primaryKey" json:"topic_id"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

func (FavoriteModel) TableName() string {
	return "favorites"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// The six fixed categories of the archive.
const (
	CategorySlojd   = "Slöjd & Hantverk"
	CategoryMat     = "Mat & Förvaring"
	CategoryLandet  = "Livet på Landet"
	CategoryFolktro = "Folktro & Berättelser"
	CategorySprak   = "Språk & Ord"
	CategoryHusHem  = "Hus & Hem"
)

var Categories = []string{
	CategorySlojd,
	CategoryMat,
	CategoryLandet,
	CategoryFolktro,
	CategorySprak,
	CategoryHusHem,
}

// ToCategory matches a raw form value against the fixed category list.
func ToCategory(s string) (string, bool) {
	for _, c := range Categories {
		if c == s {
			return c, true
		}
	}
	return "", false
}

type TopicModel struct {
	ID            uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Slug          string    `gorm:"column:slug;size:120;uniqueIndex;not null" json:"slug"`
	Title         string    `gorm:"column:title;size:200;not null" json:"title"`
	Excerpt       string    `gorm:"column:excerpt;size:500" json:"excerpt"`
	Category      string    `gorm:"column:category;size:50;not null;index" json:"category"`
	BodyMD        string    `gorm:"column:body_md;type:text;not null" json:"body_md"`
	AuthorDisplay string    `gorm:"column:author_display;size:100" json:"author_display"`
	AuthorID      uuid.UUID `gorm:"column:author_id;type:uuid;not null;index" json:"author_id"`
	IsPublished   bool      `gorm:"column:is_published;not null;default:false;index" json:"is_published"`
	CreatedAt     time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

func (TopicModel) TableName() string {
	return "topics"
}

// BeforeCreate fills the id for databases without gen_random_uuid().
func (t *TopicModel) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}

// internals/features/topics/topic_media/service/promoter.go
package service

import (
	"context"
	"fmt"
	"log"
	"path"

	"github.com/google/uuid"
	"gorm.io/gorm"

	mediaModel "kunskapsarvet_backend/internals/features/topics/topic_media/model"
	oss "kunskapsarvet_backend/internals/helpers/oss"
)

// Promoter relocates draft-scoped media into a topic's namespace once the
// topic exists. Failures are logged and swallowed: media promotion must
// never block the topic write itself.
type Promoter struct {
	DB    *gorm.DB
	Store oss.ObjectStore
}

func NewPromoter(db *gorm.DB, store oss.ObjectStore) *Promoter {
	return &Promoter{DB: db, Store: store}
}

func topicDestPath(topicID uuid.UUID, srcPath string) string {
	return fmt.Sprintf("topics/%s/%s", topicID, path.Base(srcPath))
}

// ClaimDraftMedia promotes every row carrying draftKey onto topicID.
// Idempotent: a second run finds no rows left to promote.
func (p *Promoter) ClaimDraftMedia(ctx context.Context, draftKey string, topicID uuid.UUID) {
	if draftKey == "" {
		return
	}
	var rows []mediaModel.TopicMediaModel
	if err := p.DB.WithContext(ctx).
		Where("draft_key = ? AND topic_id IS NULL", draftKey).
		Find(&rows).Error; err != nil {
		log.Printf("[PROMOTE] load draft rows for %s: %v", draftKey, err)
		return
	}
	for i := range rows {
		p.promoteRow(ctx, &rows[i], topicID)
	}
}

// PromoteRemainingForTopic sweeps up rows that still carry a draft_key but
// already point at the topic, used defensively when a topic flips to
// published after creation.
func (p *Promoter) PromoteRemainingForTopic(ctx context.Context, topicID uuid.UUID) {
	var rows []mediaModel.TopicMediaModel
	if err := p.DB.WithContext(ctx).
		Where("topic_id = ? AND draft_key IS NOT NULL", topicID).
		Find(&rows).Error; err != nil {
		log.Printf("[PROMOTE] load remaining rows for %s: %v", topicID, err)
		return
	}
	for i := range rows {
		p.promoteRow(ctx, &rows[i], topicID)
	}
}

// promoteRow handles one row, sequentially:
//   - youtube: no physical file, just flip topic_id / draft_key
//   - image: move draft path -> topics/{id}/{filename} keeping the filename;
//     if the move fails, copy then best-effort remove of the source;
//     if the copy fails too, leave the row untouched at its draft path
func (p *Promoter) promoteRow(ctx context.Context, row *mediaModel.TopicMediaModel, topicID uuid.UUID) {
	if row.Kind == mediaModel.KindYouTube {
		if err := p.updateRow(ctx, row.ID, topicID, row.Path); err != nil {
			log.Printf("[PROMOTE] youtube row %s: %v", row.ID, err)
		}
		return
	}

	dest := topicDestPath(topicID, row.Path)

	if err := p.Store.Move(ctx, row.Bucket, row.Path, dest); err != nil {
		log.Printf("[PROMOTE] move %s failed, trying copy: %v", row.Path, err)

		if err := p.Store.Copy(ctx, row.Bucket, row.Path, dest); err != nil {
			// Total failure: the row stays draft-scoped, the topic proceeds
			// without this item.
			log.Printf("[PROMOTE] copy %s failed, leaving row %s at draft path: %v", row.Path, row.ID, err)
			return
		}
		if err := p.Store.Remove(ctx, row.Bucket, []string{row.Path}); err != nil {
			log.Printf("[PROMOTE] remove source %s after copy: %v", row.Path, err)
		}
	}

	if err := p.updateRow(ctx, row.ID, topicID, dest); err != nil {
		log.Printf("[PROMOTE] update row %s: %v", row.ID, err)
	}
}

func (p *Promoter) updateRow(ctx context.Context, id, topicID uuid.UUID, newPath string) error {
	return p.DB.WithContext(ctx).
		Model(&mediaModel.TopicMediaModel{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"topic_id":  topicID,
			"draft_key": nil,
			"path":      newPath,
		}).Error
}

// internals/helpers/oss/draft_reaper.go
package helper

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Abandoned drafts never get promoted, so their staged objects and rows
// pile up. The reaper deletes draft-scoped media older than the retention
// window: objects first (best-effort, grouped per bucket), then rows.

type draftMediaRow struct {
	ID     string `gorm:"column:id"`
	Kind   string `gorm:"column:kind"`
	Bucket string `gorm:"column:bucket"`
	Path   string `gorm:"column:path"`
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func DraftRetention() time.Duration {
	days := getEnvInt("DRAFT_RETENTION_DAYS", 30)
	return time.Duration(days) * 24 * time.Hour
}

// StartDraftReaperCron runs ReapStaleDrafts on a schedule
// (env DRAFT_REAPER_CRON, default daily at 03:00).
func StartDraftReaperCron(db *gorm.DB, store ObjectStore) *cron.Cron {
	schedule := os.Getenv("DRAFT_REAPER_CRON")
	if schedule == "" {
		schedule = "0 3 * * *"
	}

	c := cron.New()
	if _, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		n, err := ReapStaleDrafts(ctx, db, store, DraftRetention())
		if err != nil {
			log.Printf("[REAPER] error: %v", err)
			return
		}
		if n > 0 {
			log.Printf("[REAPER] removed %d stale draft media rows", n)
		}
	}); err != nil {
		log.Printf("[REAPER] bad schedule %q: %v", schedule, err)
		return c
	}
	c.Start()
	return c
}

func ReapStaleDrafts(ctx context.Context, db *gorm.DB, store ObjectStore, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)

	var rows []draftMediaRow
	if err := db.WithContext(ctx).Table("topic_media").
		Select("id, kind, bucket, path").
		Where("draft_key IS NOT NULL AND topic_id IS NULL AND created_at < ?", cutoff).
		Find(&rows).Error; err != nil {
		return 0, err
	}
	if len(rows) == 0 {
		return 0, nil
	}

	keysByBucket := map[string][]string{}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.ID)
		if r.Kind != "image" || r.Bucket == BucketExternal {
			continue
		}
		keysByBucket[r.Bucket] = append(keysByBucket[r.Bucket], r.Path)
	}

	for bucket, keys := range keysByBucket {
		if err := store.Remove(ctx, bucket, keys); err != nil {
			log.Printf("[REAPER] remove from %s failed: %v", bucket, err)
		}
	}

	if err := db.WithContext(ctx).
		Exec(`DELETE FROM topic_media WHERE id IN ?`, ids).Error; err != nil {
		return 0, err
	}
	return len(rows), nil
}

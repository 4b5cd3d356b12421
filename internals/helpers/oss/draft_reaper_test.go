package helper

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type stubStore struct {
	removed map[string][]string
}

func (s *stubStore) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	return nil
}
func (s *stubStore) Move(ctx context.Context, bucket, src, dst string) error { return nil }
func (s *stubStore) Copy(ctx context.Context, bucket, src, dst string) error { return nil }
func (s *stubStore) Remove(ctx context.Context, bucket string, keys []string) error {
	if s.removed == nil {
		s.removed = map[string][]string{}
	}
	s.removed[bucket] = append(s.removed[bucket], keys...)
	return nil
}
func (s *stubStore) PublicURL(bucket, key string) string { return "" }
func (s *stubStore) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	return "", nil
}

func newReaperTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE topic_media (
		id TEXT PRIMARY KEY,
		topic_id TEXT,
		draft_key TEXT,
		kind TEXT NOT NULL,
		bucket TEXT NOT NULL,
		path TEXT NOT NULL,
		created_at DATETIME
	)`).Error)
	return db
}

func insertDraftRow(t *testing.T, db *gorm.DB, kind, bucket, path string, age time.Duration) string {
	t.Helper()
	id := uuid.NewString()
	require.NoError(t, db.Exec(
		`INSERT INTO topic_media (id, draft_key, kind, bucket, path, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		id, "stale-key", kind, bucket, path, time.Now().Add(-age),
	).Error)
	return id
}

func TestReapStaleDrafts(t *testing.T) {
	db := newReaperTestDB(t)
	store := &stubStore{}

	oldImage := insertDraftRow(t, db, "image", "priv", "drafts/u/k/a.webp", 40*24*time.Hour)
	oldYouTube := insertDraftRow(t, db, "youtube", BucketExternal, "youtube/dQw4w9WgXcQ", 40*24*time.Hour)
	freshImage := insertDraftRow(t, db, "image", "priv", "drafts/u/k/b.webp", time.Hour)

	n, err := ReapStaleDrafts(context.Background(), db, store, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	// Only the stale image hits storage; the youtube row has no object.
	assert.Equal(t, []string{"drafts/u/k/a.webp"}, store.removed["priv"])
	assert.Empty(t, store.removed[BucketExternal])

	var remaining []string
	require.NoError(t, db.Raw(`SELECT id FROM topic_media`).Scan(&remaining).Error)
	assert.Equal(t, []string{freshImage}, remaining)
	assert.NotContains(t, remaining, oldImage)
	assert.NotContains(t, remaining, oldYouTube)
}

func TestReapStaleDraftsNothingToDo(t *testing.T) {
	db := newReaperTestDB(t)
	store := &stubStore{}

	n, err := ReapStaleDrafts(context.Background(), db, store, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Empty(t, store.removed)
}

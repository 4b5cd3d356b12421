package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	mediaModel "kunskapsarvet_backend/internals/features/topics/topic_media/model"
	topicDTO "kunskapsarvet_backend/internals/features/topics/topics/dto"
	topicModel "kunskapsarvet_backend/internals/features/topics/topics/model"
	helper "kunskapsarvet_backend/internals/helpers"
)

type recordingStore struct {
	mu          sync.Mutex
	removeCalls []struct {
		bucket string
		keys   []string
	}
}

func (r *recordingStore) Upload(ctx context.Context, bucket, key string, rd io.Reader, contentType string) error {
	return nil
}

func (r *recordingStore) Move(ctx context.Context, bucket, src, dst string) error { return nil }

func (r *recordingStore) Copy(ctx context.Context, bucket, src, dst string) error { return nil }

func (r *recordingStore) Remove(ctx context.Context, bucket string, keys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removeCalls = append(r.removeCalls, struct {
		bucket string
		keys   []string
	}{bucket, append([]string(nil), keys...)})
	return nil
}

func (r *recordingStore) PublicURL(bucket, key string) string { return "https://x/" + key }

func (r *recordingStore) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	return "https://x/" + key + "?s=1", nil
}

func newTopicTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE topics (
		id TEXT PRIMARY KEY,
		slug TEXT NOT NULL UNIQUE,
		title TEXT NOT NULL,
		excerpt TEXT,
		category TEXT NOT NULL,
		body_md TEXT NOT NULL,
		author_display TEXT,
		author_id TEXT NOT NULL,
		is_published INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	require.NoError(t, db.Exec(`CREATE TABLE topic_media (
		id TEXT PRIMARY KEY,
		topic_id TEXT,
		draft_key TEXT,
		kind TEXT NOT NULL,
		bucket TEXT NOT NULL,
		path TEXT NOT NULL,
		alt TEXT,
		width INTEGER,
		height INTEGER,
		bytes INTEGER,
		mime_type TEXT,
		created_by TEXT NOT NULL,
		created_at DATETIME,
		updated_at DATETIME
	)`).Error)
	return db
}

func createReq(title string) *topicDTO.CreateTopicRequest {
	return &topicDTO.CreateTopicRequest{
		Title:    title,
		Category: topicModel.CategoryMat,
		BodyMD:   "## Så här gör man",
	}
}

func TestCreateResolvesUniqueSlugs(t *testing.T) {
	db := newTopicTestDB(t)
	s := NewTopicService(db, &recordingStore{})
	author := uuid.New()
	ctx := context.Background()

	first, err := s.Create(ctx, author, createReq("Torkning av strömming"))
	require.NoError(t, err)
	assert.Equal(t, "torkning-av-stromming", first.Slug)

	second, err := s.Create(ctx, author, createReq("Torkning av strömming"))
	require.NoError(t, err)
	assert.Equal(t, "torkning-av-stromming-2", second.Slug)
}

func TestCreateValidation(t *testing.T) {
	db := newTopicTestDB(t)
	s := NewTopicService(db, &recordingStore{})
	ctx := context.Background()

	_, err := s.Create(ctx, uuid.New(), createReq("   "))
	assert.Equal(t, helper.KindValidation, helper.KindOf(err))

	req := createReq("Surströmming")
	req.Category = "Okänd kategori"
	_, err = s.Create(ctx, uuid.New(), req)
	assert.Equal(t, helper.KindValidation, helper.KindOf(err))

	req = createReq("Surströmming")
	req.BodyMD = ""
	_, err = s.Create(ctx, uuid.New(), req)
	assert.Equal(t, helper.KindValidation, helper.KindOf(err))
}

func TestCreateClaimsDraftMedia(t *testing.T) {
	db := newTopicTestDB(t)
	s := NewTopicService(db, &recordingStore{})
	author := uuid.New()
	ctx := context.Background()

	draftKey := "d-123"
	row := mediaModel.TopicMediaModel{
		DraftKey:  &draftKey,
		Kind:      mediaModel.KindYouTube,
		Bucket:    "external",
		Path:      "youtube/dQw4w9WgXcQ",
		CreatedBy: author,
	}
	require.NoError(t, db.Create(&row).Error)

	req := createReq("Knäckebröd på gammalt vis")
	req.DraftKey = draftKey
	topic, err := s.Create(ctx, author, req)
	require.NoError(t, err)

	var got mediaModel.TopicMediaModel
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	require.NotNil(t, got.TopicID)
	assert.Equal(t, topic.ID, *got.TopicID)
	assert.Nil(t, got.DraftKey)
}

func TestUpdateOwnershipAndPublishTransition(t *testing.T) {
	db := newTopicTestDB(t)
	s := NewTopicService(db, &recordingStore{})
	author := uuid.New()
	ctx := context.Background()

	topic, err := s.Create(ctx, author, createReq("Saltlake"))
	require.NoError(t, err)

	// Non-owner is refused.
	published := true
	_, err = s.Update(ctx, uuid.New(), topic.Slug, &topicDTO.UpdateTopicRequest{IsPublished: &published})
	assert.Equal(t, helper.KindAuthorization, helper.KindOf(err))

	// Leftover draft-keyed row already attached to the topic.
	draftKey := "d-55"
	row := mediaModel.TopicMediaModel{
		TopicID:   &topic.ID,
		DraftKey:  &draftKey,
		Kind:      mediaModel.KindYouTube,
		Bucket:    "external",
		Path:      "youtube/dQw4w9WgXcQ",
		CreatedBy: author,
	}
	require.NoError(t, db.Create(&row).Error)

	updated, err := s.Update(ctx, author, topic.Slug, &topicDTO.UpdateTopicRequest{IsPublished: &published})
	require.NoError(t, err)
	assert.True(t, updated.IsPublished)

	var got mediaModel.TopicMediaModel
	require.NoError(t, db.First(&got, "id = ?", row.ID).Error)
	assert.Nil(t, got.DraftKey)
}

func TestUpdateRename(t *testing.T) {
	db := newTopicTestDB(t)
	s := NewTopicService(db, &recordingStore{})
	author := uuid.New()
	ctx := context.Background()

	topic, err := s.Create(ctx, author, createReq("Lutfisk"))
	require.NoError(t, err)
	_, err = s.Create(ctx, author, createReq("Gravlax"))
	require.NoError(t, err)

	// Renaming onto an occupied base probes to the next free suffix.
	newSlug := "gravlax"
	renamed, err := s.Update(ctx, author, topic.Slug, &topicDTO.UpdateTopicRequest{Slug: &newSlug})
	require.NoError(t, err)
	assert.Equal(t, "gravlax-2", renamed.Slug)

	// Re-submitting the current slug is a no-op.
	same := renamed.Slug
	again, err := s.Update(ctx, author, renamed.Slug, &topicDTO.UpdateTopicRequest{Slug: &same})
	require.NoError(t, err)
	assert.Equal(t, renamed.Slug, again.Slug)
}

func TestDeleteGroupsRemovalsPerBucket(t *testing.T) {
	db := newTopicTestDB(t)
	store := &recordingStore{}
	s := NewTopicService(db, store)
	author := uuid.New()
	ctx := context.Background()

	topic, err := s.Create(ctx, author, createReq("Falukorv"))
	require.NoError(t, err)

	mk := func(bucket, path, kind string) {
		row := mediaModel.TopicMediaModel{
			TopicID:   &topic.ID,
			Kind:      kind,
			Bucket:    bucket,
			Path:      path,
			CreatedBy: author,
		}
		require.NoError(t, db.Create(&row).Error)
	}
	mk("priv", fmt.Sprintf("topics/%s/a.webp", topic.ID), mediaModel.KindImage)
	mk("priv", fmt.Sprintf("topics/%s/b.webp", topic.ID), mediaModel.KindImage)
	mk("pub", fmt.Sprintf("topics/%s/c.webp", topic.ID), mediaModel.KindImage)
	mk("external", "youtube/dQw4w9WgXcQ", mediaModel.KindYouTube)

	require.NoError(t, s.Delete(ctx, author, topic.Slug))

	// One batch remove per distinct real bucket; youtube rows touch nothing.
	require.Len(t, store.removeCalls, 2)
	byBucket := map[string]int{}
	for _, call := range store.removeCalls {
		byBucket[call.bucket] = len(call.keys)
	}
	assert.Equal(t, 2, byBucket["priv"])
	assert.Equal(t, 1, byBucket["pub"])

	var mediaCount, topicCount int64
	require.NoError(t, db.Model(&mediaModel.TopicMediaModel{}).Where("topic_id = ?", topic.ID).Count(&mediaCount).Error)
	require.NoError(t, db.Model(&topicModel.TopicModel{}).Where("id = ?", topic.ID).Count(&topicCount).Error)
	assert.Zero(t, mediaCount)
	assert.Zero(t, topicCount)
}

func TestDeleteByNonOwner(t *testing.T) {
	db := newTopicTestDB(t)
	s := NewTopicService(db, &recordingStore{})
	author := uuid.New()
	ctx := context.Background()

	topic, err := s.Create(ctx, author, createReq("Messmör"))
	require.NoError(t, err)

	err = s.Delete(ctx, uuid.New(), topic.Slug)
	assert.Equal(t, helper.KindAuthorization, helper.KindOf(err))

	err = s.Delete(ctx, author, "finns-inte")
	assert.Equal(t, helper.KindNotFound, helper.KindOf(err))
}

package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	mediaModel "kunskapsarvet_backend/internals/features/topics/topic_media/model"
	oss "kunskapsarvet_backend/internals/helpers/oss"
)

func newMediaTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	// DDL spelled out: the production schema defaults to gen_random_uuid(),
	// which sqlite cannot parse via AutoMigrate.
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

func draftImageRow(t *testing.T, db *gorm.DB, store *fakeStore, draftKey, filename string) mediaModel.TopicMediaModel {
	t.Helper()
	userID := uuid.New()
	row := mediaModel.TopicMediaModel{
		DraftKey:  &draftKey,
		Kind:      mediaModel.KindImage,
		Bucket:    "priv",
		Path:      "drafts/" + userID.String() + "/" + draftKey + "/" + filename,
		CreatedBy: userID,
	}
	require.NoError(t, db.Create(&row).Error)
	store.put(row.Bucket, row.Path)
	return row
}

func reload(t *testing.T, db *gorm.DB, id uuid.UUID) mediaModel.TopicMediaModel {
	t.Helper()
	var row mediaModel.TopicMediaModel
	require.NoError(t, db.First(&row, "id = ?", id).Error)
	return row
}

func TestClaimDraftMediaMovesImages(t *testing.T) {
	db := newMediaTestDB(t)
	store := newFakeStore()
	p := NewPromoter(db, store)

	row := draftImageRow(t, db, store, "draft-1", "bild.webp")
	topicID := uuid.New()

	p.ClaimDraftMedia(context.Background(), "draft-1", topicID)

	got := reload(t, db, row.ID)
	require.NotNil(t, got.TopicID)
	assert.Equal(t, topicID, *got.TopicID)
	assert.Nil(t, got.DraftKey)
	// Path rewritten into the topic namespace, filename preserved.
	assert.Equal(t, "topics/"+topicID.String()+"/bild.webp", got.Path)
	assert.True(t, store.has("priv", got.Path))
	assert.False(t, store.has("priv", row.Path))
}

func TestClaimDraftMediaYouTubeOnlyFlipsColumns(t *testing.T) {
	db := newMediaTestDB(t)
	store := newFakeStore()
	p := NewPromoter(db, store)

	draftKey := "draft-yt"
	row := mediaModel.TopicMediaModel{
		DraftKey:  &draftKey,
		Kind:      mediaModel.KindYouTube,
		Bucket:    oss.BucketExternal,
		Path:      "youtube/dQw4w9WgXcQ",
		CreatedBy: uuid.New(),
	}
	require.NoError(t, db.Create(&row).Error)

	topicID := uuid.New()
	p.ClaimDraftMedia(context.Background(), draftKey, topicID)

	got := reload(t, db, row.ID)
	require.NotNil(t, got.TopicID)
	assert.Equal(t, topicID, *got.TopicID)
	assert.Nil(t, got.DraftKey)
	assert.Equal(t, "youtube/dQw4w9WgXcQ", got.Path)
	assert.Empty(t, store.moveCalls)
	assert.Empty(t, store.copyCalls)
}

func TestClaimDraftMediaFallsBackToCopyRemove(t *testing.T) {
	db := newMediaTestDB(t)
	store := newFakeStore()
	store.failMove = true
	p := NewPromoter(db, store)

	row := draftImageRow(t, db, store, "draft-2", "bild.webp")
	topicID := uuid.New()

	p.ClaimDraftMedia(context.Background(), "draft-2", topicID)

	got := reload(t, db, row.ID)
	require.NotNil(t, got.TopicID)
	assert.Equal(t, topicID, *got.TopicID)
	assert.True(t, strings.HasPrefix(got.Path, "topics/"+topicID.String()+"/"))
	assert.Len(t, store.copyCalls, 1)
	// Source removed after the copy.
	assert.False(t, store.has("priv", row.Path))
}

func TestClaimDraftMediaCopyRemoveFailedRemoveIsTolerated(t *testing.T) {
	db := newMediaTestDB(t)
	store := newFakeStore()
	store.failMove = true
	store.failRemove = true
	p := NewPromoter(db, store)

	row := draftImageRow(t, db, store, "draft-3", "bild.webp")
	topicID := uuid.New()

	p.ClaimDraftMedia(context.Background(), "draft-3", topicID)

	// Row promoted even though the source object lingers.
	got := reload(t, db, row.ID)
	require.NotNil(t, got.TopicID)
	assert.Nil(t, got.DraftKey)
	assert.True(t, store.has("priv", row.Path))
}

func TestClaimDraftMediaTotalFailureLeavesRowUntouched(t *testing.T) {
	db := newMediaTestDB(t)
	store := newFakeStore()
	store.failMove = true
	store.failCopy = true
	p := NewPromoter(db, store)

	row := draftImageRow(t, db, store, "draft-4", "bild.webp")
	topicID := uuid.New()

	p.ClaimDraftMedia(context.Background(), "draft-4", topicID)

	got := reload(t, db, row.ID)
	assert.Nil(t, got.TopicID)
	require.NotNil(t, got.DraftKey)
	assert.Equal(t, "draft-4", *got.DraftKey)
	assert.Equal(t, row.Path, got.Path)
}

func TestClaimDraftMediaIsIdempotent(t *testing.T) {
	db := newMediaTestDB(t)
	store := newFakeStore()
	p := NewPromoter(db, store)

	draftImageRow(t, db, store, "draft-5", "bild.webp")
	topicID := uuid.New()

	p.ClaimDraftMedia(context.Background(), "draft-5", topicID)
	require.Len(t, store.moveCalls, 1)

	// Second run finds nothing left to promote.
	p.ClaimDraftMedia(context.Background(), "draft-5", topicID)
	assert.Len(t, store.moveCalls, 1)
}

func TestPromoteRemainingForTopic(t *testing.T) {
	db := newMediaTestDB(t)
	store := newFakeStore()
	p := NewPromoter(db, store)

	topicID := uuid.New()
	draftKey := "draft-6"
	row := mediaModel.TopicMediaModel{
		TopicID:   &topicID,
		DraftKey:  &draftKey,
		Kind:      mediaModel.KindImage,
		Bucket:    "priv",
		Path:      "drafts/u/draft-6/bild.webp",
		CreatedBy: uuid.New(),
	}
	require.NoError(t, db.Create(&row).Error)
	store.put(row.Bucket, row.Path)

	p.PromoteRemainingForTopic(context.Background(), topicID)

	got := reload(t, db, row.ID)
	assert.Nil(t, got.DraftKey)
	assert.Equal(t, "topics/"+topicID.String()+"/bild.webp", got.Path)
}

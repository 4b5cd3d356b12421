package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	mediaModel "kunskapsarvet_backend/internals/features/topics/topic_media/model"
	oss "kunskapsarvet_backend/internals/helpers/oss"
)

func TestParseYouTubeID(t *testing.T) {
	cases := []struct {
		in   string
		want string
		ok   bool
	}{
		{"dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://youtube.com/watch?v=dQw4w9WgXcQ&t=42s", "dQw4w9WgXcQ", true},
		{"https://youtu.be/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/embed/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://www.youtube.com/shorts/dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://m.youtube.com/watch?v=dQw4w9WgXcQ", "dQw4w9WgXcQ", true},
		{"https://example.com/watch?v=dQw4w9WgXcQ", "", false},
		{"https://www.youtube.com/watch?v=tooshort", "", false},
		{"not a url", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ParseYouTubeID(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		assert.Equal(t, tc.want, got, "input %q", tc.in)
	}
}

func TestResolveMediaURLYouTube(t *testing.T) {
	store := newFakeStore()
	row := &mediaModel.TopicMediaModel{
		Kind:   mediaModel.KindYouTube,
		Bucket: oss.BucketExternal,
		Path:   "youtube/dQw4w9WgXcQ",
	}

	got, err := ResolveMediaURL(context.Background(), store, "pub", row, false)
	require.NoError(t, err)
	assert.Equal(t, "https://www.youtube-nocookie.com/embed/dQw4w9WgXcQ", got.URL)
	assert.False(t, got.IsPrivate)
	// No storage traffic for embeds.
	assert.Empty(t, store.removeCalls)
}

func TestResolveMediaURLMalformedYouTubePath(t *testing.T) {
	row := &mediaModel.TopicMediaModel{
		Kind:   mediaModel.KindYouTube,
		Bucket: oss.BucketExternal,
		Path:   "youtube/",
	}
	_, err := ResolveMediaURL(context.Background(), newFakeStore(), "pub", row, true)
	assert.Error(t, err)
}

func TestResolveMediaURLPublicImage(t *testing.T) {
	row := &mediaModel.TopicMediaModel{
		Kind:   mediaModel.KindImage,
		Bucket: "pub",
		Path:   "topics/abc/bild.webp",
	}

	got, err := ResolveMediaURL(context.Background(), newFakeStore(), "pub", row, false)
	require.NoError(t, err)
	assert.Equal(t, "https://pub.example.com/topics/abc/bild.webp", got.URL)
	assert.False(t, got.IsPrivate)
}

func TestResolveMediaURLPrivateImage(t *testing.T) {
	row := &mediaModel.TopicMediaModel{
		Kind:   mediaModel.KindImage,
		Bucket: "priv",
		Path:   "drafts/u/k/bild.webp",
	}

	// Owner gets a 60s signed URL.
	got, err := ResolveMediaURL(context.Background(), newFakeStore(), "pub", row, true)
	require.NoError(t, err)
	assert.Contains(t, got.URL, "signed=60")
	assert.True(t, got.IsPrivate)

	// Everyone else gets an empty URL.
	got, err = ResolveMediaURL(context.Background(), newFakeStore(), "pub", row, false)
	require.NoError(t, err)
	assert.Empty(t, got.URL)
	assert.True(t, got.IsPrivate)
}

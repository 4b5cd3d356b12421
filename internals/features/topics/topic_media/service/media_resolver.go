// internals/features/topics/topic_media/service/media_resolver.go
package service

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	mediaModel "kunskapsarvet_backend/internals/features/topics/topic_media/model"
	oss "kunskapsarvet_backend/internals/helpers/oss"
)

const signedURLTTL = 60 * time.Second

var reYouTubeID = regexp.MustCompile(`^[A-Za-z0-9_-]{11}$`)

// ResolvedMedia is what handlers hand to the client: a usable URL, or an
// empty one when the viewer may not see a private object.
type ResolvedMedia struct {
	URL       string `json:"url"`
	IsPrivate bool   `json:"is_private"`
}

// YouTubeEmbedURL builds the embed URL for a stored youtube/<id> path.
func YouTubeEmbedURL(videoID string) string {
	return fmt.Sprintf("https://www.youtube-nocookie.com/embed/%s", videoID)
}

// ParseYouTubeID extracts the 11-char video id from the usual URL shapes
// (watch?v=, youtu.be/, /embed/, /shorts/) or accepts a bare id.
func ParseYouTubeID(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if reYouTubeID.MatchString(raw) {
		return raw, true
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "", false
	}
	host := strings.TrimPrefix(strings.ToLower(u.Host), "www.")

	switch host {
	case "youtu.be":
		id := strings.Trim(strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 2)[0], "/")
		if reYouTubeID.MatchString(id) {
			return id, true
		}
	case "youtube.com", "m.youtube.com", "youtube-nocookie.com":
		if id := u.Query().Get("v"); reYouTubeID.MatchString(id) {
			return id, true
		}
		for _, prefix := range []string{"/embed/", "/shorts/", "/live/"} {
			if strings.HasPrefix(u.Path, prefix) {
				id := strings.SplitN(strings.TrimPrefix(u.Path, prefix), "/", 2)[0]
				if reYouTubeID.MatchString(id) {
					return id, true
				}
			}
		}
	}
	return "", false
}

// ResolveMediaURL computes the viewer-facing URL for one media row.
//   - youtube rows resolve to an embed URL without touching storage
//   - public-bucket images resolve to the permanent public URL
//   - private-bucket images resolve to a 60s signed URL for the owner,
//     and to an empty URL for everyone else
func ResolveMediaURL(ctx context.Context, store oss.ObjectStore, publicBucket string, row *mediaModel.TopicMediaModel, viewerIsOwner bool) (ResolvedMedia, error) {
	if row.Kind == mediaModel.KindYouTube {
		id := strings.TrimPrefix(row.Path, "youtube/")
		if !reYouTubeID.MatchString(id) {
			return ResolvedMedia{}, fmt.Errorf("malformed youtube path %q", row.Path)
		}
		return ResolvedMedia{URL: YouTubeEmbedURL(id)}, nil
	}

	if row.Bucket == publicBucket {
		return ResolvedMedia{URL: store.PublicURL(row.Bucket, row.Path)}, nil
	}

	if !viewerIsOwner {
		return ResolvedMedia{IsPrivate: true}, nil
	}
	signed, err := store.SignedURL(ctx, row.Bucket, row.Path, signedURLTTL)
	if err != nil {
		return ResolvedMedia{IsPrivate: true}, err
	}
	return ResolvedMedia{URL: signed, IsPrivate: true}, nil
}

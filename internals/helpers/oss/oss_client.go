// internals/helpers/oss/oss_client.go
package helper

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
)

func getEnv(k string) string { return strings.TrimSpace(os.Getenv(k)) }

// OSSService wraps the two real buckets: the public one for published-safe
// images and the private one for owner-only images.
type OSSService struct {
	Client        *oss.Client
	Endpoint      string
	PublicBucket  string
	PrivateBucket string

	buckets map[string]*oss.Bucket
}

func NewOSSServiceFromEnv() (*OSSService, error) {
	endpoint := getEnv("OSS_ENDPOINT")
	ak := getEnv("OSS_ACCESS_KEY")
	sk := getEnv("OSS_SECRET_KEY")
	pub := getEnv("OSS_PUBLIC_BUCKET")
	priv := getEnv("OSS_PRIVATE_BUCKET")
	if endpoint == "" || ak == "" || sk == "" || pub == "" || priv == "" {
		return nil, fmt.Errorf("missing env: OSS_ENDPOINT/OSS_ACCESS_KEY/OSS_SECRET_KEY/OSS_PUBLIC_BUCKET/OSS_PRIVATE_BUCKET")
	}

	client, err := oss.New(endpoint, ak, sk)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	s := &OSSService{
		Client:        client,
		Endpoint:      endpoint,
		PublicBucket:  pub,
		PrivateBucket: priv,
		buckets:       make(map[string]*oss.Bucket, 2),
	}
	for _, name := range []string{pub, priv} {
		bkt, err := client.Bucket(name)
		if err != nil {
			return nil, fmt.Errorf("client.Bucket(%s): %w", name, err)
		}
		s.buckets[name] = bkt
	}
	return s, nil
}

func (s *OSSService) bucket(name string) (*oss.Bucket, error) {
	if b, ok := s.buckets[name]; ok {
		return b, nil
	}
	return nil, fmt.Errorf("unknown bucket %q", name)
}

func (s *OSSService) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
		oss.CacheControl("public, max-age=31536000, immutable"),
	}
	return b.PutObject(key, r, opts...)
}

// Move is copy+delete: OSS has no server-side rename. A failed delete fails
// the move so the caller can fall back to its own copy/remove sequence.
func (s *OSSService) Move(ctx context.Context, bucket, src, dst string) error {
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	if _, err := b.CopyObject(src, dst, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("copy %q -> %q: %w", src, dst, err)
	}
	if err := b.DeleteObject(src, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("delete %q after copy: %w", src, err)
	}
	return nil
}

func (s *OSSService) Copy(ctx context.Context, bucket, src, dst string) error {
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	_, err = b.CopyObject(src, dst, oss.WithContext(ctx))
	return err
}

func (s *OSSService) Remove(ctx context.Context, bucket string, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	b, err := s.bucket(bucket)
	if err != nil {
		return err
	}
	_, err = b.DeleteObjects(keys, oss.WithContext(ctx))
	return err
}

func (s *OSSService) PublicURL(bucket, key string) string {
	if key == "" {
		return ""
	}
	if base := getEnv("OSS_PUBLIC_BASE"); base != "" && bucket == s.PublicBucket {
		return strings.TrimRight(base, "/") + "/" + key
	}
	end := s.Endpoint
	end = strings.TrimPrefix(end, "https://")
	end = strings.TrimPrefix(end, "http://")
	return fmt.Sprintf("https://%s.%s/%s", bucket, end, key)
}

func (s *OSSService) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	b, err := s.bucket(bucket)
	if err != nil {
		return "", err
	}
	secs := int64(ttl / time.Second)
	if secs <= 0 {
		secs = 60
	}
	return b.SignURL(key, oss.HTTPGet, secs)
}

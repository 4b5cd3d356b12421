// internals/helpers/oss/object_store.go
package helper

import (
	"context"
	"io"
	"time"
)

// BucketExternal is the virtual bucket carried by youtube rows; it never
// maps to a real storage bucket and must never reach the ObjectStore.
const BucketExternal = "external"

// ObjectStore is the storage surface the media lifecycle runs against.
// The production implementation is OSSService; tests substitute a fake.
type ObjectStore interface {
	Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error
	// Move relocates an object within one bucket. Implementations without a
	// native rename may implement it as copy+delete; callers treat any error
	// as "not moved" and fall back to Copy/Remove themselves.
	Move(ctx context.Context, bucket, src, dst string) error
	Copy(ctx context.Context, bucket, src, dst string) error
	// Remove deletes keys from one bucket in a single batch call.
	Remove(ctx context.Context, bucket string, keys []string) error
	PublicURL(bucket, key string) string
	SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error)
}

package service

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"
)

// fakeStore is an in-memory ObjectStore. Failure switches let tests drive
// the promoter down its fallback paths.
type fakeStore struct {
	mu      sync.Mutex
	objects map[string]map[string]bool // bucket -> key -> exists

	failMove   bool
	failCopy   bool
	failRemove bool

	moveCalls   []string
	copyCalls   []string
	removeCalls []removeCall
}

type removeCall struct {
	bucket string
	keys   []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{objects: map[string]map[string]bool{}}
}

func (f *fakeStore) put(bucket, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.objects[bucket] == nil {
		f.objects[bucket] = map[string]bool{}
	}
	f.objects[bucket][key] = true
}

func (f *fakeStore) has(bucket, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.objects[bucket][key]
}

func (f *fakeStore) Upload(ctx context.Context, bucket, key string, r io.Reader, contentType string) error {
	f.put(bucket, key)
	return nil
}

func (f *fakeStore) Move(ctx context.Context, bucket, src, dst string) error {
	f.mu.Lock()
	f.moveCalls = append(f.moveCalls, src+" -> "+dst)
	fail := f.failMove
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("move rejected")
	}
	if !f.has(bucket, src) {
		return fmt.Errorf("no such object %s/%s", bucket, src)
	}
	f.mu.Lock()
	delete(f.objects[bucket], src)
	f.objects[bucket][dst] = true
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) Copy(ctx context.Context, bucket, src, dst string) error {
	f.mu.Lock()
	f.copyCalls = append(f.copyCalls, src+" -> "+dst)
	fail := f.failCopy
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("copy rejected")
	}
	if !f.has(bucket, src) {
		return fmt.Errorf("no such object %s/%s", bucket, src)
	}
	f.put(bucket, dst)
	return nil
}

func (f *fakeStore) Remove(ctx context.Context, bucket string, keys []string) error {
	f.mu.Lock()
	f.removeCalls = append(f.removeCalls, removeCall{bucket: bucket, keys: append([]string(nil), keys...)})
	fail := f.failRemove
	f.mu.Unlock()
	if fail {
		return fmt.Errorf("remove rejected")
	}
	f.mu.Lock()
	for _, k := range keys {
		delete(f.objects[bucket], k)
	}
	f.mu.Unlock()
	return nil
}

func (f *fakeStore) PublicURL(bucket, key string) string {
	return fmt.Sprintf("https://%s.example.com/%s", bucket, key)
}

func (f *fakeStore) SignedURL(ctx context.Context, bucket, key string, ttl time.Duration) (string, error) {
	return fmt.Sprintf("https://%s.example.com/%s?signed=%d", bucket, key, int(ttl.Seconds())), nil
}

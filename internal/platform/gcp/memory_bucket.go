package gcp

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
)

type memoryObject struct {
	data    []byte
	updated time.Time
}

// MemoryBucketService is the in-process BucketService behind
// OBJECT_STORAGE_MODE=memory.
type MemoryBucketService struct {
	mu      sync.RWMutex
	objects map[BucketCategory]map[string]memoryObject
	cfg     ObjectStorageConfig
}

func NewMemoryBucketService(cfg ObjectStorageConfig) *MemoryBucketService {
	if cfg.Video.Name == "" {
		cfg.Video.Name = "videos"
	}
	if cfg.Thumbnail.Name == "" {
		cfg.Thumbnail.Name = "thumbnails"
	}
	return &MemoryBucketService{
		objects: map[BucketCategory]map[string]memoryObject{
			BucketCategoryVideo:     {},
			BucketCategoryThumbnail: {},
		},
		cfg: cfg,
	}
}

func (m *MemoryBucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error {
	if err := dbc.Context().Err(); err != nil {
		return err
	}
	data, err := io.ReadAll(file)
	if err != nil {
		return fmt.Errorf("read upload: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	objs, ok := m.objects[category]
	if !ok {
		return fmt.Errorf("unknown bucket category: %s", category)
	}
	objs[key] = memoryObject{data: data, updated: time.Now().UTC()}
	return nil
}

func (m *MemoryBucketService) DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	objs, ok := m.objects[category]
	if !ok {
		return fmt.Errorf("unknown bucket category: %s", category)
	}
	if _, ok := objs[key]; !ok {
		return fmt.Errorf("delete %q: %w", key, ErrObjectNotFound)
	}
	delete(objs, key)
	return nil
}

func (m *MemoryBucketService) GetObjectAttrs(ctx context.Context, category BucketCategory, key string) (*ObjectAttrs, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	obj, ok := m.objects[category][key]
	if !ok {
		return nil, fmt.Errorf("attrs %q: %w", key, ErrObjectNotFound)
	}
	return &ObjectAttrs{
		Size:        int64(len(obj.data)),
		ContentType: ContentTypeForKey(key),
		Updated:     obj.updated,
	}, nil
}

func (m *MemoryBucketService) GetPublicURL(category BucketCategory, key string) string {
	cfg := m.cfg.Video
	if category == BucketCategoryThumbnail {
		cfg = m.cfg.Thumbnail
	}
	base := m.cfg.PublicBaseURL
	if base == "" {
		base = "memory://local"
	}
	return publicURL(ObjectStorageModeMemory, cfg, base, key)
}

// Len reports how many objects a category holds.
func (m *MemoryBucketService) Len(category BucketCategory) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.objects[category])
}

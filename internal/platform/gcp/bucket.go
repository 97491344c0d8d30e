package gcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type BucketCategory string

const (
	BucketCategoryVideo     BucketCategory = "video"
	BucketCategoryThumbnail BucketCategory = "thumbnail"
)

var ErrObjectNotFound = errors.New("object not found")

type BucketService interface {
	UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error
	// DeleteFile returns ErrObjectNotFound when the key is absent.
	DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error
	GetObjectAttrs(ctx context.Context, category BucketCategory, key string) (*ObjectAttrs, error)
	GetPublicURL(category BucketCategory, key string) string
}

type ObjectAttrs struct {
	Size        int64
	ContentType string
	Updated     time.Time
	ETag        string
}

type bucketService struct {
	log           *logger.Logger
	storageClient *storage.Client
	storageMode   ObjectStorageMode
	buckets       map[BucketCategory]BucketConfig
	publicBaseURL string
	emulatorHost  string
}

// NewBucketService picks the implementation for cfg.Mode.
func NewBucketService(log *logger.Logger, cfg ObjectStorageConfig) (BucketService, error) {
	cfg, err := NormalizeObjectStorageConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("validate object storage config: %w", err)
	}
	serviceLog := log.With("service", "BucketService")

	if cfg.Mode == ObjectStorageModeMemory {
		serviceLog.Warn("Object storage running in memory; blobs are lost on restart")
		return NewMemoryBucketService(cfg), nil
	}

	stClient, err := newStorageClientForMode(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	publicBase := cfg.PublicBaseURL
	publicBaseSource := "object_storage_public_base_url"
	if publicBase == "" && cfg.IsEmulatorMode() {
		publicBase, publicBaseSource = cfg.EmulatorHost, "storage_emulator_host"
	} else if publicBase == "" {
		publicBaseSource = "gcs_default"
	}

	serviceLog.Info(
		"Object storage initialized",
		"mode", cfg.Mode,
		"mode_source", cfg.ModeSource(),
		"emulator_host", cfg.EmulatorHost,
		"public_base_source", publicBaseSource,
		"video_bucket", cfg.Video.Name,
		"thumbnail_bucket", cfg.Thumbnail.Name,
	)

	return &bucketService{
		log:           serviceLog,
		storageClient: stClient,
		storageMode:   cfg.Mode,
		buckets: map[BucketCategory]BucketConfig{
			BucketCategoryVideo:     cfg.Video,
			BucketCategoryThumbnail: cfg.Thumbnail,
		},
		publicBaseURL: publicBase,
		emulatorHost:  cfg.EmulatorHost,
	}, nil
}

func newStorageClientForMode(ctx context.Context, cfg ObjectStorageConfig) (*storage.Client, error) {
	switch cfg.Mode {
	case ObjectStorageModeGCS:
		opts := ClientOptions(cfg.Credentials)
		opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
		return storage.NewClient(ctx, opts...)
	case ObjectStorageModeGCSEmulator:
		// The storage client reads the emulator endpoint from the environment.
		_ = os.Setenv("STORAGE_EMULATOR_HOST", cfg.EmulatorHost)
		return storage.NewClient(ctx, option.WithoutAuthentication())
	default:
		return nil, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
}

func (bs *bucketService) bucket(category BucketCategory) (BucketConfig, error) {
	cfg, ok := bs.buckets[category]
	if !ok {
		return BucketConfig{}, fmt.Errorf("unknown bucket category: %s", category)
	}
	return cfg, nil
}

func (bs *bucketService) UploadFile(dbc dbctx.Context, category BucketCategory, key string, file io.Reader) error {
	cfg, err := bs.bucket(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(dbc.Context(), 10*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(cfg.Name).Object(key).NewWriter(ctx)
	if ct := ContentTypeForKey(key); ct != "" {
		w.ContentType = ct
	}
	if _, err := io.Copy(w, file); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (bs *bucketService) DeleteFile(dbc dbctx.Context, category BucketCategory, key string) error {
	cfg, err := bs.bucket(category)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(dbc.Context(), 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(cfg.Name).Object(key).Delete(ctx); err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return fmt.Errorf("delete %q: %w", key, ErrObjectNotFound)
		}
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, cfg.Name, err)
	}
	return nil
}

func (bs *bucketService) GetObjectAttrs(ctx context.Context, category BucketCategory, key string) (*ObjectAttrs, error) {
	cfg, err := bs.bucket(category)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	attrs, err := bs.storageClient.Bucket(cfg.Name).Object(key).Attrs(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("attrs %q: %w", key, ErrObjectNotFound)
		}
		return nil, fmt.Errorf("failed to fetch GCS object attrs: %w", err)
	}
	return &ObjectAttrs{
		Size:        attrs.Size,
		ContentType: attrs.ContentType,
		Updated:     attrs.Updated,
		ETag:        attrs.Etag,
	}, nil
}

func (bs *bucketService) GetPublicURL(category BucketCategory, key string) string {
	cfg, err := bs.bucket(category)
	if err != nil {
		return key
	}
	return publicURL(bs.storageMode, cfg, bs.publicBaseURL, key)
}

func publicURL(mode ObjectStorageMode, cfg BucketConfig, publicBase, key string) string {
	key = strings.TrimLeft(strings.TrimSpace(key), "/")
	if cfg.CDNDomain != "" {
		return fmt.Sprintf("https://%s/%s", cfg.CDNDomain, key)
	}
	base := strings.TrimRight(strings.TrimSpace(publicBase), "/")
	if mode == ObjectStorageModeGCSEmulator && base != "" {
		return fmt.Sprintf("%s/storage/v1/b/%s/o/%s?alt=media", base, url.PathEscape(cfg.Name), url.PathEscape(key))
	}
	if base != "" {
		return fmt.Sprintf("%s/%s/%s", base, cfg.Name, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", cfg.Name, key)
}

func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".mp4"), strings.HasSuffix(s, ".m4v"):
		return "video/mp4"
	case strings.HasSuffix(s, ".webm"):
		return "video/webm"
	case strings.HasSuffix(s, ".mov"):
		return "video/quicktime"
	case strings.HasSuffix(s, ".mkv"):
		return "video/x-matroska"
	default:
		return ""
	}
}

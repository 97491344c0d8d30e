package services

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/streamhub-backend/internal/domain/errs"
	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
	"github.com/yungbote/streamhub-backend/internal/platform/gcp"
	"github.com/yungbote/streamhub-backend/internal/platform/localmedia"
	"github.com/yungbote/streamhub-backend/internal/platform/logger"
)

type MediaKind string

const (
	MediaVideo     MediaKind = "video"
	MediaThumbnail MediaKind = "thumbnail"
)

type MediaUpload struct {
	Kind     MediaKind
	Filename string
	Body     io.Reader
}

type StoredMedia struct {
	Kind            MediaKind
	Key             string
	URL             string
	DurationSeconds float64
	Probe           *localmedia.ProbeResult
}

// MediaStore is the opaque blob store behind video and thumbnail files.
// Put failures are hard failures of the calling operation.
type MediaStore interface {
	Put(dbc dbctx.Context, up MediaUpload) (*StoredMedia, error)
	Delete(dbc dbctx.Context, kind MediaKind, key string) error
}

type mediaStore struct {
	bucket gcp.BucketService
	tools  localmedia.Tools
	log    *logger.Logger
}

// NewMediaStore probes uploaded videos with tools when it is non-nil; without
// it videos are stored with a zero duration.
func NewMediaStore(bucket gcp.BucketService, tools localmedia.Tools, log *logger.Logger) MediaStore {
	return &mediaStore{bucket: bucket, tools: tools, log: log.With("service", "MediaStore")}
}

func bucketFor(kind MediaKind) (gcp.BucketCategory, error) {
	switch kind {
	case MediaVideo:
		return gcp.BucketCategoryVideo, nil
	case MediaThumbnail:
		return gcp.BucketCategoryThumbnail, nil
	}
	return "", fmt.Errorf("unknown media kind %q", kind)
}

func objectKey(kind MediaKind, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return string(kind) + "s/" + uuid.NewString() + ext
}

func (m *mediaStore) Put(dbc dbctx.Context, up MediaUpload) (*StoredMedia, error) {
	const op = "MediaStore.Put"
	if up.Body == nil {
		return nil, errs.Newf(errs.InvalidArgument, op, "%s file is required", up.Kind)
	}
	cat, err := bucketFor(up.Kind)
	if err != nil {
		return nil, errs.Wrap(errs.InvalidArgument, op, err)
	}
	out := &StoredMedia{Kind: up.Kind, Key: objectKey(up.Kind, up.Filename)}

	body := up.Body
	if up.Kind == MediaVideo && m.tools != nil {
		path, _, cleanup, err := m.tools.Spool(dbc.Context(), up.Body, filepath.Ext(up.Filename))
		if err != nil {
			return nil, errs.Wrap(errs.DependencyFailure, op, err)
		}
		defer cleanup()
		probe, err := m.tools.Probe(dbc.Context(), path)
		if err != nil {
			return nil, &errs.Error{Code: errs.InvalidArgument, Op: op, Message: "video file could not be read", Cause: err}
		}
		out.Probe = probe
		out.DurationSeconds = probe.DurationSeconds
		f, err := os.Open(path)
		if err != nil {
			return nil, errs.Wrap(errs.Internal, op, err)
		}
		defer f.Close()
		body = f
	}

	if err := m.bucket.UploadFile(dbc, cat, out.Key, body); err != nil {
		return nil, &errs.Error{Code: errs.DependencyFailure, Op: op, Message: "media upload failed", Cause: err}
	}
	out.URL = m.bucket.GetPublicURL(cat, out.Key)
	m.log.Debug("media stored", "kind", up.Kind, "key", out.Key)
	return out, nil
}

// Delete treats a missing object as already deleted.
func (m *mediaStore) Delete(dbc dbctx.Context, kind MediaKind, key string) error {
	if strings.TrimSpace(key) == "" {
		return nil
	}
	cat, err := bucketFor(kind)
	if err != nil {
		return err
	}
	if err := m.bucket.DeleteFile(dbc, cat, key); err != nil && !errors.Is(err, gcp.ErrObjectNotFound) {
		return errs.Wrap(errs.DependencyFailure, "MediaStore.Delete", err)
	}
	return nil
}

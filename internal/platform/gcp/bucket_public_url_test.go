package gcp

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yungbote/streamhub-backend/internal/platform/dbctx"
)

func TestPublicURLGCSDefault(t *testing.T) {
	got := publicURL(ObjectStorageModeGCS, BucketConfig{Name: "sh-videos"}, "", "/videos/a.mp4")
	want := "https://storage.googleapis.com/sh-videos/videos/a.mp4"
	if got != want {
		t.Fatalf("publicURL: want=%q got=%q", want, got)
	}
}

func TestPublicURLUsesCDNDomain(t *testing.T) {
	got := publicURL(ObjectStorageModeGCS, BucketConfig{Name: "sh-videos", CDNDomain: "cdn.example.com"}, "http://ignored", "a.mp4")
	if got != "https://cdn.example.com/a.mp4" {
		t.Fatalf("publicURL: got=%q", got)
	}
}

func TestPublicURLUsesPublicBaseURL(t *testing.T) {
	got := publicURL(ObjectStorageModeGCS, BucketConfig{Name: "sh-thumbs"}, "http://localhost:4443/", "t/a.jpg")
	if got != "http://localhost:4443/sh-thumbs/t/a.jpg" {
		t.Fatalf("publicURL: got=%q", got)
	}
}

func TestPublicURLUsesEmulatorMediaEndpoint(t *testing.T) {
	got := publicURL(ObjectStorageModeGCSEmulator, BucketConfig{Name: "sh-videos"}, "http://fake-gcs:4443", "videos/a b.mp4")
	if !strings.HasPrefix(got, "http://fake-gcs:4443/storage/v1/b/sh-videos/o/") || !strings.HasSuffix(got, "?alt=media") {
		t.Fatalf("publicURL: got=%q", got)
	}
	if strings.Contains(got, " ") {
		t.Fatalf("publicURL should escape the key: %q", got)
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"a.MP4":        "video/mp4",
		"a.webm":       "video/webm",
		"thumb.jpeg?x": "image/jpeg",
		"thumb.png":    "image/png",
		"no-extension": "",
	}
	for key, want := range cases {
		if got := ContentTypeForKey(key); got != want {
			t.Fatalf("ContentTypeForKey(%q): want=%q got=%q", key, want, got)
		}
	}
}

func TestMemoryBucketServiceLifecycle(t *testing.T) {
	m := NewMemoryBucketService(ObjectStorageConfig{Mode: ObjectStorageModeMemory})
	dbc := dbctx.Context{Ctx: context.Background()}

	if err := m.UploadFile(dbc, BucketCategoryVideo, "v/a.mp4", bytes.NewReader([]byte("abc"))); err != nil {
		t.Fatalf("UploadFile: %v", err)
	}
	attrs, err := m.GetObjectAttrs(context.Background(), BucketCategoryVideo, "v/a.mp4")
	if err != nil {
		t.Fatalf("GetObjectAttrs: %v", err)
	}
	if attrs.Size != 3 || attrs.ContentType != "video/mp4" {
		t.Fatalf("attrs: %+v", attrs)
	}
	if got := m.GetPublicURL(BucketCategoryVideo, "v/a.mp4"); got != "memory://local/videos/v/a.mp4" {
		t.Fatalf("GetPublicURL: %q", got)
	}

	if err := m.DeleteFile(dbc, BucketCategoryVideo, "v/a.mp4"); err != nil {
		t.Fatalf("DeleteFile: %v", err)
	}
	if err := m.DeleteFile(dbc, BucketCategoryVideo, "v/a.mp4"); !errors.Is(err, ErrObjectNotFound) {
		t.Fatalf("second DeleteFile: want ErrObjectNotFound got %v", err)
	}
	if m.Len(BucketCategoryVideo) != 0 {
		t.Fatalf("bucket should be empty")
	}
	if err := m.UploadFile(dbc, "avatar", "x.png", strings.NewReader("x")); err == nil {
		t.Fatalf("unknown category should fail")
	}
}

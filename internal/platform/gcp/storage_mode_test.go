package gcp

import (
	"errors"
	"testing"
)

func buckets(cfg ObjectStorageConfig) ObjectStorageConfig {
	cfg.Video = BucketConfig{Name: "sh-videos"}
	cfg.Thumbnail = BucketConfig{Name: "sh-thumbs"}
	return cfg
}

func TestNormalizeObjectStorageConfigDefaultGCS(t *testing.T) {
	cfg, err := NormalizeObjectStorageConfig(buckets(ObjectStorageConfig{}))
	if err != nil {
		t.Fatalf("NormalizeObjectStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCS, cfg.Mode)
	}
	if cfg.CompatibilityFallback {
		t.Fatalf("compatibility fallback: want=false got=true")
	}
}

func TestNormalizeObjectStorageConfigExplicitGCSIgnoresEmulatorHost(t *testing.T) {
	cfg, err := NormalizeObjectStorageConfig(buckets(ObjectStorageConfig{
		Mode:         "GCS",
		EmulatorHost: "http://fake-gcs:4443",
	}))
	if err != nil {
		t.Fatalf("NormalizeObjectStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCS || cfg.CompatibilityFallback {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestNormalizeObjectStorageConfigCompatibilityFallback(t *testing.T) {
	cfg, err := NormalizeObjectStorageConfig(buckets(ObjectStorageConfig{EmulatorHost: "http://fake-gcs:4443/"}))
	if err != nil {
		t.Fatalf("NormalizeObjectStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeGCSEmulator {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeGCSEmulator, cfg.Mode)
	}
	if !cfg.CompatibilityFallback || cfg.ModeSource() != "compatibility_fallback" {
		t.Fatalf("compatibility fallback not recorded: %+v", cfg)
	}
	if cfg.EmulatorHost != "http://fake-gcs:4443" {
		t.Fatalf("emulator host not trimmed: %q", cfg.EmulatorHost)
	}
}

func TestNormalizeObjectStorageConfigMemoryNeedsNoBuckets(t *testing.T) {
	cfg, err := NormalizeObjectStorageConfig(ObjectStorageConfig{Mode: "memory"})
	if err != nil {
		t.Fatalf("NormalizeObjectStorageConfig: %v", err)
	}
	if cfg.Mode != ObjectStorageModeMemory {
		t.Fatalf("mode: want=%q got=%q", ObjectStorageModeMemory, cfg.Mode)
	}
}

func TestNormalizeObjectStorageConfigErrors(t *testing.T) {
	cases := []struct {
		name string
		cfg  ObjectStorageConfig
		code ObjectStorageConfigErrorCode
	}{
		{"invalid mode", buckets(ObjectStorageConfig{Mode: "local"}), ObjectStorageConfigErrorInvalidMode},
		{"missing emulator host", buckets(ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator}), ObjectStorageConfigErrorMissingEmulatorHost},
		{"relative emulator host", buckets(ObjectStorageConfig{Mode: ObjectStorageModeGCSEmulator, EmulatorHost: "fake-gcs:4443"}), ObjectStorageConfigErrorInvalidEmulatorHost},
		{"missing video bucket", ObjectStorageConfig{Mode: ObjectStorageModeGCS, Thumbnail: BucketConfig{Name: "t"}}, ObjectStorageConfigErrorMissingBucket},
		{"missing thumbnail bucket", ObjectStorageConfig{Mode: ObjectStorageModeGCS, Video: BucketConfig{Name: "v"}}, ObjectStorageConfigErrorMissingBucket},
		{"relative public base", buckets(ObjectStorageConfig{PublicBaseURL: "localhost:4443"}), ObjectStorageConfigErrorInvalidPublicBase},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NormalizeObjectStorageConfig(tc.cfg)
			var cfgErr *ObjectStorageConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("want *ObjectStorageConfigError, got %v", err)
			}
			if cfgErr.Code != tc.code {
				t.Fatalf("code: want=%q got=%q", tc.code, cfgErr.Code)
			}
			if cfgErr.Error() == "" {
				t.Fatalf("empty error message")
			}
		})
	}
}

package gcp

import (
	"fmt"
	"net/url"
	"strings"
)

type ObjectStorageMode string

const (
	ObjectStorageModeGCS         ObjectStorageMode = "gcs"
	ObjectStorageModeGCSEmulator ObjectStorageMode = "gcs_emulator"
	// ObjectStorageModeMemory keeps blobs in process memory. Local dev and tests only.
	ObjectStorageModeMemory ObjectStorageMode = "memory"
)

type BucketConfig struct {
	Name      string
	CDNDomain string
}

type ObjectStorageConfig struct {
	Mode          ObjectStorageMode
	EmulatorHost  string
	PublicBaseURL string
	// Credentials is a path to a service-account file or the JSON itself.
	Credentials string
	Video       BucketConfig
	Thumbnail   BucketConfig
	// CompatibilityFallback is set when the mode was inferred from an emulator host.
	CompatibilityFallback bool
}

func IsSupportedObjectStorageMode(mode ObjectStorageMode) bool {
	switch mode {
	case ObjectStorageModeGCS, ObjectStorageModeGCSEmulator, ObjectStorageModeMemory:
		return true
	default:
		return false
	}
}

func (cfg ObjectStorageConfig) IsEmulatorMode() bool {
	return cfg.Mode == ObjectStorageModeGCSEmulator
}

func (cfg ObjectStorageConfig) ModeSource() string {
	if cfg.CompatibilityFallback {
		return "compatibility_fallback"
	}
	return "explicit_or_default"
}

type ObjectStorageConfigErrorCode string

const (
	ObjectStorageConfigErrorInvalidMode         ObjectStorageConfigErrorCode = "invalid_mode"
	ObjectStorageConfigErrorMissingEmulatorHost ObjectStorageConfigErrorCode = "missing_emulator_host"
	ObjectStorageConfigErrorInvalidEmulatorHost ObjectStorageConfigErrorCode = "invalid_emulator_host"
	ObjectStorageConfigErrorMissingBucket       ObjectStorageConfigErrorCode = "missing_bucket"
	ObjectStorageConfigErrorInvalidPublicBase   ObjectStorageConfigErrorCode = "invalid_public_base_url"
)

type ObjectStorageConfigError struct {
	Code  ObjectStorageConfigErrorCode
	Mode  string
	Value string
	Cause error
}

func (e *ObjectStorageConfigError) Error() string {
	if e == nil {
		return "invalid object storage config"
	}
	switch e.Code {
	case ObjectStorageConfigErrorInvalidMode:
		return fmt.Sprintf("invalid OBJECT_STORAGE_MODE=%q (allowed: %q, %q, %q)",
			e.Mode, ObjectStorageModeGCS, ObjectStorageModeGCSEmulator, ObjectStorageModeMemory)
	case ObjectStorageConfigErrorMissingEmulatorHost:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires STORAGE_EMULATOR_HOST to be set", ObjectStorageModeGCSEmulator)
	case ObjectStorageConfigErrorInvalidEmulatorHost:
		return fmt.Sprintf("invalid STORAGE_EMULATOR_HOST=%q; expected absolute URL like http://fake-gcs:4443", e.Value)
	case ObjectStorageConfigErrorMissingBucket:
		return fmt.Sprintf("OBJECT_STORAGE_MODE=%q requires %s", e.Mode, e.Value)
	case ObjectStorageConfigErrorInvalidPublicBase:
		return fmt.Sprintf("invalid OBJECT_STORAGE_PUBLIC_BASE_URL=%q; expected absolute URL like http://localhost:4443", e.Value)
	default:
		return "invalid object storage config"
	}
}

func (e *ObjectStorageConfigError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Cause
}

// NormalizeObjectStorageConfig resolves the mode (an emulator host with no
// explicit mode selects the emulator) and validates the result.
func NormalizeObjectStorageConfig(cfg ObjectStorageConfig) (ObjectStorageConfig, error) {
	cfg.EmulatorHost = strings.TrimRight(strings.TrimSpace(cfg.EmulatorHost), "/")
	cfg.PublicBaseURL = strings.TrimRight(strings.TrimSpace(cfg.PublicBaseURL), "/")
	raw := strings.TrimSpace(string(cfg.Mode))
	switch mode := ObjectStorageMode(strings.ToLower(raw)); mode {
	case "":
		if cfg.EmulatorHost != "" {
			cfg.Mode = ObjectStorageModeGCSEmulator
			cfg.CompatibilityFallback = true
		} else {
			cfg.Mode = ObjectStorageModeGCS
		}
	default:
		if !IsSupportedObjectStorageMode(mode) {
			return cfg, &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: raw}
		}
		cfg.Mode = mode
	}
	return cfg, ValidateObjectStorageConfig(cfg)
}

func ValidateObjectStorageConfig(cfg ObjectStorageConfig) error {
	if !IsSupportedObjectStorageMode(cfg.Mode) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidMode, Mode: string(cfg.Mode)}
	}
	if cfg.PublicBaseURL != "" && !isAbsoluteURL(cfg.PublicBaseURL) {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorInvalidPublicBase, Mode: string(cfg.Mode), Value: cfg.PublicBaseURL}
	}
	if cfg.Mode == ObjectStorageModeMemory {
		return nil
	}
	if strings.TrimSpace(cfg.Video.Name) == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingBucket, Mode: string(cfg.Mode), Value: "VIDEO_GCS_BUCKET_NAME"}
	}
	if strings.TrimSpace(cfg.Thumbnail.Name) == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingBucket, Mode: string(cfg.Mode), Value: "THUMBNAIL_GCS_BUCKET_NAME"}
	}
	if !cfg.IsEmulatorMode() {
		return nil
	}
	if cfg.EmulatorHost == "" {
		return &ObjectStorageConfigError{Code: ObjectStorageConfigErrorMissingEmulatorHost, Mode: string(cfg.Mode)}
	}
	if !isAbsoluteURL(cfg.EmulatorHost) {
		_, err := url.Parse(cfg.EmulatorHost)
		return &ObjectStorageConfigError{
			Code:  ObjectStorageConfigErrorInvalidEmulatorHost,
			Mode:  string(cfg.Mode),
			Value: cfg.EmulatorHost,
			Cause: err,
		}
	}
	return nil
}

func isAbsoluteURL(raw string) bool {
	u, err := url.Parse(raw)
	return err == nil && strings.TrimSpace(u.Scheme) != "" && strings.TrimSpace(u.Host) != ""
}

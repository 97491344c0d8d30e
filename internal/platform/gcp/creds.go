package gcp

import (
	"strings"

	"google.golang.org/api/option"
)

// ClientOptions turns a credentials setting (file path or inline JSON) into
// client options. Empty falls back to application default credentials.
func ClientOptions(creds string) []option.ClientOption {
	creds = strings.TrimSpace(creds)
	if creds == "" {
		return nil
	}
	if strings.HasPrefix(creds, "{") {
		return []option.ClientOption{option.WithCredentialsJSON([]byte(creds))}
	}
	return []option.ClientOption{option.WithCredentialsFile(creds)}
}

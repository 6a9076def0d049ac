package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	// ErrInvalidKey is returned for empty keys or keys escaping the store root.
	ErrInvalidKey = errors.New("storage: invalid key")
	// ErrUnmappedField is returned when an entity records nothing for a field.
	ErrUnmappedField = errors.New("storage: entity does not map field")
	// ErrNotAddressable is returned when a tagged entity is passed by value to
	// an operation that needs to update it.
	ErrNotAddressable = errors.New("storage: entity must be a non-nil pointer")
)

// Store persists file bodies by key.
type Store interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Exists(ctx context.Context, key string) (bool, error)
	Delete(ctx context.Context, key string) error
	// Path returns the store-specific location of key (a filesystem path or
	// an s3:// URL).
	Path(key string) string
	// URL returns the public URI of key.
	URL(key string) string
}

// cleanKey normalises key to a slash separated relative path.
func cleanKey(key string) (string, error) {
	key = strings.TrimSpace(strings.ReplaceAll(key, "\\", "/"))
	if key == "" {
		return "", ErrInvalidKey
	}
	cleaned := path.Clean("/" + key)[1:]
	if cleaned == "" || cleaned != strings.TrimPrefix(key, "/") {
		return "", ErrInvalidKey
	}
	return cleaned, nil
}

func joinURL(base, key string) string {
	if base == "" {
		return "/" + key
	}
	return strings.TrimRight(base, "/") + "/" + key
}

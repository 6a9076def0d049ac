package storage

import (
	"context"
	"fmt"
)

// Resolver locates stored files for entity fields.
type Resolver struct {
	store Store
}

// NewResolver returns a resolver reading from store.
func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// ResolvePath returns the store location of the file recorded for field. It
// reports false when no name is recorded or the file is gone from the store.
func (r *Resolver) ResolvePath(ctx context.Context, entity any, field string) (string, bool, error) {
	name, ok, err := FileName(entity, field)
	if err != nil || !ok {
		return "", false, err
	}
	exists, err := r.store.Exists(ctx, name)
	if err != nil {
		return "", false, fmt.Errorf("storage: resolve %s: %w", field, err)
	}
	if !exists {
		return "", false, nil
	}
	return r.store.Path(name), true, nil
}

// ResolveURI returns the public URI of the file recorded for field without
// checking the store.
func (r *Resolver) ResolveURI(_ context.Context, entity any, field string) (string, bool, error) {
	name, ok, err := FileName(entity, field)
	if err != nil || !ok {
		return "", false, err
	}
	uri := r.store.URL(name)
	return uri, uri != "", nil
}

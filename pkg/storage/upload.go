package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"path"
	"strings"

	"github.com/google/uuid"
)

// UploadHandler writes new image files for entity fields and removes the
// stored ones.
type UploadHandler struct {
	store   Store
	prefix  string
	newName func() string
	logger  *slog.Logger
}

// HandlerOption configures an UploadHandler.
type HandlerOption func(*UploadHandler)

// WithDirectory stores new files below dir.
func WithDirectory(dir string) HandlerOption {
	return func(h *UploadHandler) {
		h.prefix = strings.Trim(dir, "/")
	}
}

// WithNameGenerator replaces the uuid based file names.
func WithNameGenerator(fn func() string) HandlerOption {
	return func(h *UploadHandler) {
		if fn != nil {
			h.newName = fn
		}
	}
}

// WithHandlerLogger attaches a logger for upload and removal events.
func WithHandlerLogger(logger *slog.Logger) HandlerOption {
	return func(h *UploadHandler) {
		if logger != nil {
			h.logger = logger
		}
	}
}

// NewUploadHandler returns a handler writing to store.
func NewUploadHandler(store Store, opts ...HandlerOption) *UploadHandler {
	h := &UploadHandler{
		store:   store,
		newName: func() string { return uuid.NewString() },
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(h)
		}
	}
	return h
}

// Upload stores data under a fresh name with extension ext (".png"), records
// the name on entity and deletes the file it replaces. It returns the new
// name.
func (h *UploadHandler) Upload(ctx context.Context, entity any, field string, data []byte, ext string) (string, error) {
	previous, hadPrevious, err := FileName(entity, field)
	if err != nil {
		return "", err
	}

	if ext != "" && !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	name := h.newName() + ext
	if h.prefix != "" {
		name = path.Join(h.prefix, name)
	}
	if err := h.store.Put(ctx, name, data, mime.TypeByExtension(ext)); err != nil {
		return "", err
	}
	if err := SetFileName(entity, field, name); err != nil {
		_ = h.store.Delete(ctx, name)
		return "", err
	}
	h.logger.Debug("image stored", "field", field, "name", name, "bytes", len(data))

	if hadPrevious && previous != name {
		if err := h.store.Delete(ctx, previous); err != nil {
			h.logger.Warn("replaced image not deleted", "field", field, "name", previous, "error", err)
		}
	}
	return name, nil
}

// Remove deletes the stored file for field and clears the entity's
// reference. Entities recording no file are left untouched.
func (h *UploadHandler) Remove(ctx context.Context, entity any, field string) error {
	name, ok, err := FileName(entity, field)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	if err := h.store.Delete(ctx, name); err != nil {
		return fmt.Errorf("storage: remove %s: %w", field, err)
	}
	if err := SetFileName(entity, field, ""); err != nil {
		return err
	}
	h.logger.Debug("image removed", "field", field, "name", name)
	return nil
}

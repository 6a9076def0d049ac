package tui

import "errors"

var (
	// ErrAborted signals the user aborted input (e.g., Ctrl+C).
	ErrAborted = errors.New("tui: aborted")
	// ErrNilContext is returned when Render is called without a context.
	ErrNilContext = errors.New("tui: context is required")
	// ErrNoDriver is returned when no prompt driver is configured.
	ErrNoDriver = errors.New("tui: prompt driver is nil")
	// ErrUnreadableImage wraps failures to decode a file picked for an image
	// field.
	ErrUnreadableImage = errors.New("tui: unreadable image")
)

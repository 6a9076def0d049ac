package imagecrop

import (
	"errors"
	"strings"
)

var (
	// ErrInvalidBase64 reports a submitted payload that is not base64 or not a
	// base64 data URI.
	ErrInvalidBase64 = errors.New("imagecrop: invalid base64 payload")
	// ErrUnsupportedImage reports decoded bytes that are not a known image format.
	ErrUnsupportedImage = errors.New("imagecrop: payload is not a supported image")
	// ErrPhaseRepeated is returned when a lifecycle hook runs twice for the same form.
	ErrPhaseRepeated = errors.New("imagecrop: lifecycle phase already ran")
	// ErrNilForm is returned by hooks invoked without a form.
	ErrNilForm = errors.New("imagecrop: form is nil")
)

// DecodeError is returned by the inward transform when a non-empty payload
// cannot be turned into an image. Field is set once the error is attached to
// a form.
type DecodeError struct {
	Field string
	Err   error
}

func (e *DecodeError) Error() string {
	if e == nil {
		return "<nil>"
	}
	var b strings.Builder
	b.WriteString("imagecrop: decode")
	if e.Field != "" {
		b.WriteString(" ")
		b.WriteString(e.Field)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(strings.TrimPrefix(e.Err.Error(), "imagecrop: "))
	}
	return b.String()
}

func (e *DecodeError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// Message returns the user-facing validation message for the error.
func (e *DecodeError) Message() string {
	switch {
	case e == nil:
		return ""
	case errors.Is(e.Err, ErrInvalidBase64):
		return "The uploaded image could not be read."
	default:
		return "The uploaded file is not a valid image."
	}
}

// IsDecodeError reports whether err is (or wraps) a DecodeError.
func IsDecodeError(err error) bool {
	var target *DecodeError
	return errors.As(err, &target)
}

package imagecrop

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// DataTransformer converts between the model value of a field and the string
// carried by its presentation.
type DataTransformer interface {
	Transform(value *Image) (string, error)
	ReverseTransform(value string) (*Image, error)
}

// Base64ImageTransformer maps images to base64 data URIs and back. It is the
// only place image content is validated.
type Base64ImageTransformer struct{}

var _ DataTransformer = Base64ImageTransformer{}

// Transform renders the image as a data URI; nil yields "".
func (Base64ImageTransformer) Transform(value *Image) (string, error) {
	if value == nil {
		return "", nil
	}
	return value.DataURI(), nil
}

// ReverseTransform decodes a data URI or bare base64 payload. An empty
// payload yields a nil image and no error.
func (Base64ImageTransformer) ReverseTransform(value string) (*Image, error) {
	payload := strings.TrimSpace(value)
	if payload == "" {
		return nil, nil
	}

	raw, err := decodePayload(payload)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	img, err := DecodeImage(raw)
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return img, nil
}

func decodePayload(payload string) ([]byte, error) {
	if strings.HasPrefix(strings.ToLower(payload), "data:") {
		comma := strings.IndexByte(payload, ',')
		if comma < 0 {
			return nil, fmt.Errorf("%w: data uri has no payload", ErrInvalidBase64)
		}
		header := strings.ToLower(payload[len("data:"):comma])
		if !strings.HasSuffix(header, ";base64") {
			return nil, fmt.Errorf("%w: data uri is not base64 encoded", ErrInvalidBase64)
		}
		payload = payload[comma+1:]
	}

	payload = strings.Join(strings.Fields(payload), "")
	if payload == "" {
		return nil, fmt.Errorf("%w: empty payload", ErrInvalidBase64)
	}

	for _, enc := range []*base64.Encoding{base64.StdEncoding, base64.RawStdEncoding, base64.URLEncoding, base64.RawURLEncoding} {
		if raw, err := enc.DecodeString(payload); err == nil {
			return raw, nil
		}
	}
	return nil, ErrInvalidBase64
}

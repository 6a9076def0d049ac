package imagecrop

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var mimeTypes = map[string]string{
	"png":  "image/png",
	"jpeg": "image/jpeg",
	"gif":  "image/gif",
	"webp": "image/webp",
	"bmp":  "image/bmp",
	"tiff": "image/tiff",
}

var extensions = map[string]string{
	"png":  ".png",
	"jpeg": ".jpg",
	"gif":  ".gif",
	"webp": ".webp",
	"bmp":  ".bmp",
	"tiff": ".tiff",
}

// Image is the model-side value of the field: the raw encoded bytes plus the
// format and dimensions detected while decoding them.
type Image struct {
	Data   []byte
	Format string
	Width  int
	Height int
}

// DecodeImage inspects data and returns an Image when it is a supported
// format. Only the header is decoded.
func DecodeImage(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty data", ErrUnsupportedImage)
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: zero dimensions", ErrUnsupportedImage)
	}
	return &Image{
		Data:   append([]byte(nil), data...),
		Format: format,
		Width:  cfg.Width,
		Height: cfg.Height,
	}, nil
}

// MimeType returns the media type for the detected format.
func (i *Image) MimeType() string {
	if i == nil {
		return ""
	}
	if mime, ok := mimeTypes[i.Format]; ok {
		return mime
	}
	return "application/octet-stream"
}

// Extension returns the file extension (with dot) for the detected format.
func (i *Image) Extension() string {
	if i == nil {
		return ""
	}
	if ext, ok := extensions[i.Format]; ok {
		return ext
	}
	return ".bin"
}

// Base64 returns the standard base64 encoding of the image bytes.
func (i *Image) Base64() string {
	if i == nil || len(i.Data) == 0 {
		return ""
	}
	return base64.StdEncoding.EncodeToString(i.Data)
}

// DataURI returns the image as a data: URI, the form the cropper runtime
// posts back.
func (i *Image) DataURI() string {
	if i == nil || len(i.Data) == 0 {
		return ""
	}
	return "data:" + i.MimeType() + ";base64," + i.Base64()
}

// Equal reports whether both images carry the same bytes.
func (i *Image) Equal(other *Image) bool {
	if i == nil || other == nil {
		return i == nil && other == nil
	}
	return i.Format == other.Format &&
		i.Width == other.Width &&
		i.Height == other.Height &&
		bytes.Equal(i.Data, other.Data)
}

// Preview scales the image down to fit within maxWidth x maxHeight, keeping
// its aspect ratio. Images already inside the box are returned unchanged.
// JPEG sources stay JPEG; everything else is re-encoded as PNG.
func (i *Image) Preview(maxWidth, maxHeight int) (*Image, error) {
	if i == nil {
		return nil, nil
	}
	if maxWidth <= 0 || maxHeight <= 0 {
		return nil, fmt.Errorf("imagecrop: preview bounds must be positive, got %dx%d", maxWidth, maxHeight)
	}
	if i.Width <= maxWidth && i.Height <= maxHeight {
		return i, nil
	}

	src, _, err := image.Decode(bytes.NewReader(i.Data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	scaled := imaging.Fit(src, maxWidth, maxHeight, imaging.Lanczos)

	format, name := imaging.PNG, "png"
	if i.Format == "jpeg" {
		format, name = imaging.JPEG, "jpeg"
	}
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, scaled, format); err != nil {
		return nil, fmt.Errorf("imagecrop: encode preview: %w", err)
	}
	bounds := scaled.Bounds()
	return &Image{
		Data:   buf.Bytes(),
		Format: name,
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

package tui

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	"math"
	"strconv"

	"github.com/disintegration/imaging"
	_ "golang.org/x/image/webp"
)

var imageMimeTypes = map[imaging.Format]string{
	imaging.JPEG: "image/jpeg",
	imaging.PNG:  "image/png",
	imaging.GIF:  "image/gif",
	imaging.TIFF: "image/tiff",
	imaging.BMP:  "image/bmp",
}

// cropRequest describes how a picked file is shaped before it is submitted,
// mirroring what the browser cropper does.
type cropRequest struct {
	Ratio     float64
	MaxWidth  int
	MaxHeight int
}

// parseRatio reads a ratio value as rendered for the widget ("1.78", "NaN").
// Unconstrained and unparsable values report zero.
func parseRatio(raw string) float64 {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v <= 0 {
		return 0
	}
	return v
}

// prepareImage crops data to the requested ratio around its center, fits it
// inside the maximum dimensions and returns it as a data URI. Images needing
// neither step keep their original bytes.
func prepareImage(data []byte, req cropRequest) (string, error) {
	img, name, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnreadableImage, err)
	}

	changed := false
	if req.Ratio > 0 {
		w, h := img.Bounds().Dx(), img.Bounds().Dy()
		cw, ch := cropSize(w, h, req.Ratio)
		if cw != w || ch != h {
			img = imaging.CropCenter(img, cw, ch)
			changed = true
		}
	}
	if req.MaxWidth > 0 && req.MaxHeight > 0 {
		b := img.Bounds()
		if b.Dx() > req.MaxWidth || b.Dy() > req.MaxHeight {
			img = imaging.Fit(img, req.MaxWidth, req.MaxHeight, imaging.Lanczos)
			changed = true
		}
	}

	format, err := imaging.FormatFromExtension(name)
	if err != nil {
		format = imaging.PNG
		changed = true
	}
	if changed {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, format); err != nil {
			return "", fmt.Errorf("tui: encode image: %w", err)
		}
		data = buf.Bytes()
	}
	return "data:" + imageMimeTypes[format] + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

func cropSize(w, h int, ratio float64) (int, int) {
	if float64(w)/float64(h) > ratio {
		cw := int(math.Round(float64(h) * ratio))
		if cw < 1 {
			cw = 1
		}
		return cw, h
	}
	ch := int(math.Round(float64(w) / ratio))
	if ch < 1 {
		ch = 1
	}
	return w, ch
}

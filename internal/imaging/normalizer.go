// Package imaging validates and conditions uploaded invoice images before they
// are sent to the vision model.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"

	"golang.org/x/image/draw"

	"invoicevision/internal/domain"
)

const jpegQuality = 85

// Normalizer decodes, bounds, and optionally downscales uploaded images.
type Normalizer struct {
	maxBytes    int64
	maxLongEdge int
}

// NewNormalizer creates a Normalizer with the given size limit in bytes and
// maximum long-edge dimension in pixels used when downscaling oversized
// uploads.
func NewNormalizer(maxBytes int64, maxLongEdge int) *Normalizer {
	return &Normalizer{maxBytes: maxBytes, maxLongEdge: maxLongEdge}
}

// Normalize validates the uploaded bytes against the declared MIME type and
// returns an ImagePayload. Oversized images are downscaled (aspect ratio
// preserved) and re-encoded; images still over the limit afterwards fail with
// ErrFileTooLarge. The image is never rotated or cropped.
func (n *Normalizer) Normalize(data []byte, declaredType string) (*domain.ImagePayload, error) {
	if len(data) == 0 {
		return nil, domain.ErrEmptyUpload
	}
	if _, ok := domain.AllowedContentTypes[declaredType]; !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnsupportedFileType, declaredType)
	}

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidImage, err)
	}
	// image.Decode registers only the formats imported below, so format is
	// "png" or "jpeg" here; trust the decoded format over the declared one.
	contentType := "image/" + format

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: degenerate dimensions %dx%d", domain.ErrInvalidImage, width, height)
	}

	out := data
	if int64(len(data)) > n.maxBytes {
		scaled := downscale(img, n.maxLongEdge)
		encoded, err := encode(scaled, format)
		if err != nil {
			return nil, fmt.Errorf("re-encoding downscaled image: %w", err)
		}
		if int64(len(encoded)) > n.maxBytes {
			return nil, fmt.Errorf("%w: %d bytes after downscaling (limit %d)",
				domain.ErrFileTooLarge, len(encoded), n.maxBytes)
		}
		out = encoded
		sb := scaled.Bounds()
		width, height = sb.Dx(), sb.Dy()
	}

	return &domain.ImagePayload{
		Bytes:       out,
		ContentType: contentType,
		Size:        int64(len(out)),
		Width:       width,
		Height:      height,
	}, nil
}

// downscale resizes img so its long edge is at most maxLongEdge, preserving
// aspect ratio. Images already within the bound are returned unchanged.
func downscale(img image.Image, maxLongEdge int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	long := w
	if h > long {
		long = h
	}
	if maxLongEdge <= 0 || long <= maxLongEdge {
		return img
	}

	scale := float64(maxLongEdge) / float64(long)
	dw := int(float64(w) * scale)
	dh := int(float64(h) * scale)
	if dw < 1 {
		dw = 1
	}
	if dh < 1 {
		dh = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func encode(img image.Image, format string) ([]byte, error) {
	var buf bytes.Buffer
	switch format {
	case "jpeg":
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
			return nil, err
		}
	default:
		if err := png.Encode(&buf, img); err != nil {
			return nil, err
		}
	}
	return buf.Bytes(), nil
}

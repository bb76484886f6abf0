// Package imaging normalizes uploaded catalog photos so the item list
// serves small, uniform thumbnails regardless of what was uploaded.
package imaging

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"

	"golang.org/x/image/draw"
)

// MaxDimension is the maximum width or height of a stored photo.
const MaxDimension = 512

// MaxUploadBytes caps how much of an upload is read before decoding.
const MaxUploadBytes = 8 << 20

const jpegQuality = 80

// Normalize validates an uploaded photo, scales it down to fit
// MaxDimension, and re-encodes it as JPEG. The format is sniffed from
// the bytes rather than taken from the request; only JPEG and PNG
// inputs are accepted.
func Normalize(r io.Reader) (data []byte, mime string, err error) {
	raw, err := io.ReadAll(io.LimitReader(r, MaxUploadBytes+1))
	if err != nil {
		return nil, "", fmt.Errorf("reading photo: %w", err)
	}
	if len(raw) > MaxUploadBytes {
		return nil, "", fmt.Errorf("photo exceeds %d byte limit", MaxUploadBytes)
	}

	switch detected := http.DetectContentType(raw); detected {
	case "image/jpeg", "image/png":
	default:
		return nil, "", fmt.Errorf("unsupported photo format %s, use JPEG or PNG", detected)
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, "", fmt.Errorf("decoding photo: %w", err)
	}

	img = fit(img, MaxDimension)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return nil, "", fmt.Errorf("encoding photo: %w", err)
	}
	return buf.Bytes(), "image/jpeg", nil
}

// fit scales img down so both dimensions fit within limit, preserving
// aspect ratio. Images already within bounds are returned unchanged.
func fit(img image.Image, limit int) image.Image {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= limit && h <= limit {
		return img
	}

	scale := float64(limit) / float64(w)
	if h > w {
		scale = float64(limit) / float64(h)
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
	return dst
}

func init() {
	image.RegisterFormat("jpeg", "\xff\xd8", jpeg.Decode, jpeg.DecodeConfig)
	image.RegisterFormat("png", "\x89PNG", png.Decode, png.DecodeConfig)
}

package imaging

import (
	"bytes"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func encodeTestImage(t *testing.T, format string, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{0, 128, 0, 255})
		}
	}
	var buf bytes.Buffer
	var err error
	switch format {
	case "jpeg":
		err = jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90})
	case "png":
		err = png.Encode(&buf, img)
	}
	if err != nil {
		t.Fatalf("encoding test image: %v", err)
	}
	return buf.Bytes()
}

func decodedSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decoding normalized photo: %v", err)
	}
	b := img.Bounds()
	return b.Dx(), b.Dy()
}

func TestNormalizeConvertsToJPEG(t *testing.T) {
	for _, format := range []string{"jpeg", "png"} {
		data, mime, err := Normalize(bytes.NewReader(encodeTestImage(t, format, 200, 200)))
		if err != nil {
			t.Fatalf("Normalize %s: %v", format, err)
		}
		if mime != "image/jpeg" {
			t.Errorf("%s input: expected image/jpeg output, got %s", format, mime)
		}
		if len(data) == 0 {
			t.Errorf("%s input: expected non-empty output", format)
		}
	}
}

func TestNormalizeScalesDown(t *testing.T) {
	data, _, err := Normalize(bytes.NewReader(encodeTestImage(t, "jpeg", 1600, 800)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	w, h := decodedSize(t, data)
	if w != MaxDimension || h != MaxDimension/2 {
		t.Errorf("expected %dx%d, got %dx%d", MaxDimension, MaxDimension/2, w, h)
	}
}

func TestNormalizeKeepsSmallImages(t *testing.T) {
	data, _, err := Normalize(bytes.NewReader(encodeTestImage(t, "png", 60, 40)))
	if err != nil {
		t.Fatalf("Normalize: %v", err)
	}
	if w, h := decodedSize(t, data); w != 60 || h != 40 {
		t.Errorf("small photo should keep its size, got %dx%d", w, h)
	}
}

func TestNormalizeRejectsOtherFormats(t *testing.T) {
	for _, payload := range []string{"GIF89a...", "plain text, not a photo"} {
		if _, _, err := Normalize(strings.NewReader(payload)); err == nil {
			t.Errorf("expected error for payload %q", payload)
		}
	}
}

func TestNormalizeRejectsOversizedUpload(t *testing.T) {
	// A JPEG header followed by enough padding to blow the limit.
	payload := append(encodeTestImage(t, "jpeg", 10, 10), make([]byte, MaxUploadBytes)...)
	_, _, err := Normalize(bytes.NewReader(payload))
	if err == nil || !strings.Contains(err.Error(), "limit") {
		t.Errorf("expected size limit error, got %v", err)
	}
}

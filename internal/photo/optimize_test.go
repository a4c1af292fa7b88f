package photo_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"testing"
	"time"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/photo"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{uint8(x), uint8(y), 120, 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestDetectType(t *testing.T) {
	ext, err := photo.DetectType(pngBytes(t, 4, 4))
	if err != nil {
		t.Fatalf("DetectType: %v", err)
	}
	if ext != "png" {
		t.Errorf("ext = %q, want png", ext)
	}

	_, err = photo.DetectType([]byte("just some text"))
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("text err = %v, want ErrInvalidInput", err)
	}
}

func TestOptimize_ScalesDown(t *testing.T) {
	out, err := photo.Optimize(pngBytes(t, 200, 100), photo.Options{MaxWidth: 50, Quality: 80})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if out.Width != 50 || out.Height != 25 {
		t.Errorf("size = %dx%d, want 50x25", out.Width, out.Height)
	}
	if out.Ext != "jpg" {
		t.Errorf("ext = %q, want jpg", out.Ext)
	}
	if _, format, err := image.DecodeConfig(bytes.NewReader(out.Data)); err != nil || format != "jpeg" {
		t.Errorf("output format = %q, err = %v", format, err)
	}
}

func TestOptimize_KeepsSmallImages(t *testing.T) {
	out, err := photo.Optimize(pngBytes(t, 40, 30), photo.Options{MaxWidth: 1920})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if out.Width != 40 || out.Height != 30 {
		t.Errorf("size = %dx%d, want 40x30", out.Width, out.Height)
	}
}

func TestOptimize_RejectsGarbage(t *testing.T) {
	_, err := photo.Optimize([]byte("not an image"), photo.Options{MaxWidth: 100})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestOptimizeAll_PreservesOrder(t *testing.T) {
	inputs := [][]byte{pngBytes(t, 30, 10), pngBytes(t, 20, 20), pngBytes(t, 10, 30)}
	out, err := photo.OptimizeAll(context.Background(), inputs, photo.Options{MaxWidth: 100}, 2)
	if err != nil {
		t.Fatalf("OptimizeAll: %v", err)
	}
	wantHeights := []int{10, 20, 30}
	for i, o := range out {
		if o.Height != wantHeights[i] {
			t.Errorf("result %d height = %d, want %d", i, o.Height, wantHeights[i])
		}
	}
}

func TestOptimizeAll_FailsOnBadInput(t *testing.T) {
	inputs := [][]byte{pngBytes(t, 10, 10), []byte("broken"), pngBytes(t, 10, 10)}
	_, err := photo.OptimizeAll(context.Background(), inputs, photo.Options{MaxWidth: 100}, 1)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("err = %v, want ErrInvalidInput", err)
	}
}

func TestUploadName(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	name, err := photo.UploadName(now, ".JPG")
	if err != nil {
		t.Fatalf("UploadName: %v", err)
	}
	if !regexp.MustCompile(`^photo_1700000000123_[0-9a-z]{9}\.jpg$`).MatchString(name) {
		t.Errorf("name = %q", name)
	}

	other, _ := photo.UploadName(now, "jpg")
	if other == name {
		t.Errorf("expected distinct names, both %q", name)
	}
}

func TestReadMetadata_NoExif(t *testing.T) {
	if _, err := photo.ReadMetadata(pngBytes(t, 4, 4)); err == nil {
		t.Error("expected error for image without EXIF")
	}
}

func TestMetadata_Labels(t *testing.T) {
	m := &photo.Metadata{
		TakenAt: time.Date(2019, 6, 1, 12, 0, 0, 0, time.UTC),
		Lat:     36.12345, Lng: -115.17,
		HasGPS: true,
	}
	if got := m.Year(); got != "2019" {
		t.Errorf("Year = %q", got)
	}
	if got := m.Location(); got != "GPS: 36.12345, -115.17000" {
		t.Errorf("Location = %q", got)
	}

	var none *photo.Metadata
	if none.Year() != "" || none.Location() != "" {
		t.Error("nil metadata should produce empty labels")
	}
}

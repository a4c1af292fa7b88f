package photo

import (
	"bytes"
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"net/http"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/msomdec/gallery-admin/internal/domain"
	"golang.org/x/sync/errgroup"
)

// AllowedTypes are the sniffed content types accepted for upload.
var AllowedTypes = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/gif":  "gif",
}

// Options control re-encoding.
type Options struct {
	MaxWidth int // Images wider than this are scaled down
	Quality  int // JPEG quality, 1-100
}

// Optimized is the output of Optimize.
type Optimized struct {
	Data   []byte
	Ext    string
	Width  int
	Height int
}

// DetectType sniffs data and returns the file extension for an accepted
// image type.
func DetectType(data []byte) (string, error) {
	contentType := http.DetectContentType(data)
	ext, ok := AllowedTypes[contentType]
	if !ok {
		return "", fmt.Errorf("%w: unsupported file type %s", domain.ErrInvalidInput, contentType)
	}
	return ext, nil
}

// Optimize applies EXIF orientation, scales the image down to MaxWidth
// and re-encodes it as JPEG.
func Optimize(data []byte, opts Options) (*Optimized, error) {
	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: decode image: %v", domain.ErrInvalidInput, err)
	}

	if opts.MaxWidth > 0 && img.Bounds().Dx() > opts.MaxWidth {
		img = imaging.Resize(img, opts.MaxWidth, 0, imaging.Lanczos)
	}

	quality := opts.Quality
	if quality <= 0 || quality > 100 {
		quality = 85
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("encode jpeg: %w", err)
	}

	b := img.Bounds()
	return &Optimized{Data: buf.Bytes(), Ext: "jpg", Width: b.Dx(), Height: b.Dy()}, nil
}

// OptimizeAll runs Optimize over inputs with at most workers in flight.
// Results are returned in input order. The first failure cancels the rest.
func OptimizeAll(ctx context.Context, inputs [][]byte, opts Options, workers int) ([]*Optimized, error) {
	if workers < 1 {
		workers = 1
	}
	results := make([]*Optimized, len(inputs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, data := range inputs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := Optimize(data, opts)
			if err != nil {
				return fmt.Errorf("image %d: %w", i+1, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

const nameAlphabet = "0123456789abcdefghijklmnopqrstuvwxyz"

// UploadName returns a fresh file name of the form photo_<unixmillis>_<random>.<ext>.
func UploadName(now time.Time, ext string) (string, error) {
	suffix, err := randomString(9)
	if err != nil {
		return "", fmt.Errorf("generate name: %w", err)
	}
	ext = strings.TrimPrefix(strings.ToLower(ext), ".")
	return fmt.Sprintf("photo_%d_%s.%s", now.UnixMilli(), suffix, ext), nil
}

func randomString(n int) (string, error) {
	max := big.NewInt(int64(len(nameAlphabet)))
	b := make([]byte, n)
	for i := range b {
		v, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		b[i] = nameAlphabet[v.Int64()]
	}
	return string(b), nil
}

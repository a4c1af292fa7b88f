package service

import (
	"context"
	"fmt"
	"path"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/photo"
)

// Upload is one image file submitted for publishing, with the details the
// admin filled in. Empty fields fall back to EXIF data, then defaults.
type Upload struct {
	Filename string
	Data     []byte
	Alt      string
	Location string
	Year     string
	Tags     []string
}

// PublishedPhoto is an uploaded image and what was learned from it.
type PublishedPhoto struct {
	Photo         domain.Photo
	Metadata      *photo.Metadata // nil when the file had no EXIF data
	OriginalSize  int
	PublishedSize int
}

// UploadResult describes a PublishUploads call.
type UploadResult struct {
	Photos []PublishedPhoto
	Commit *CommitResult
}

// PublishUploads optimizes the images with at most workers in parallel,
// stores each one under a fresh name in the image directory, adds them to
// the front of the gallery and commits. A failed commit leaves the new
// records pending so Commit or Retry can finish the job.
func (g *GallerySession) PublishUploads(ctx context.Context, uploads []Upload, workers int, message string) (*UploadResult, error) {
	if len(uploads) == 0 {
		return nil, fmt.Errorf("%w: no files", domain.ErrInvalidInput)
	}

	done, err := g.begin()
	if err != nil {
		return nil, err
	}
	defer done()

	exts := make([]string, len(uploads))
	for i, u := range uploads {
		ext, err := photo.DetectType(u.Data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", u.Filename, err)
		}
		exts[i] = ext
	}

	published := make([][]byte, len(uploads))
	for i, u := range uploads {
		published[i] = u.Data
	}
	if g.settings.AutoOptimize {
		opts := photo.Options{MaxWidth: g.settings.MaxWidth, Quality: g.settings.JPEGQuality}
		optimized, err := photo.OptimizeAll(ctx, published, opts, workers)
		if err != nil {
			return nil, fmt.Errorf("optimize images: %w", err)
		}
		for i, o := range optimized {
			published[i] = o.Data
			exts[i] = o.Ext
		}
	}

	result := &UploadResult{Photos: make([]PublishedPhoto, 0, len(uploads))}
	records := make([]domain.Photo, 0, len(uploads))
	for i, u := range uploads {
		now := g.now()
		name, err := photo.UploadName(now, exts[i])
		if err != nil {
			return nil, err
		}
		dest := path.Join(g.settings.ImageDir, name)
		if err := g.store.UploadBinary(ctx, dest, published[i], "Add photo "+name); err != nil {
			return nil, fmt.Errorf("upload %s: %w", u.Filename, err)
		}

		meta, _ := photo.ReadMetadata(u.Data)
		p := domain.Photo{
			ID:       fmt.Sprintf("upload_%d_%s", now.UnixMilli(), uuid.NewString()[:8]),
			Src:      dest,
			Alt:      orDefault(strings.TrimSpace(u.Alt), domain.DefaultAlt),
			Location: firstNonEmpty(strings.TrimSpace(u.Location), meta.Location(), domain.UnsetLocation),
			Year:     firstNonEmpty(strings.TrimSpace(u.Year), meta.Year(), strconv.Itoa(now.Year())),
			Tags:     dedupe(u.Tags),
		}
		records = append(records, p)
		result.Photos = append(result.Photos, PublishedPhoto{
			Photo:         p,
			Metadata:      meta,
			OriginalSize:  len(u.Data),
			PublishedSize: len(published[i]),
		})
	}

	g.AddUploads(records)
	if message == "" {
		message = fmt.Sprintf("Add %d photo(s) to gallery", len(records))
	}
	commit, err := g.commit(ctx, message)
	if err != nil {
		return result, err
	}
	result.Commit = commit
	return result, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// Package photo prepares uploaded images: EXIF metadata, resizing and
// re-encoding, and unique file names.
package photo

import (
	"bytes"
	"fmt"
	"strconv"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

// Metadata is the subset of EXIF tags the admin panel shows and uses.
type Metadata struct {
	Camera       string
	Lens         string
	FocalLength  string
	Aperture     string
	ISO          int
	ShutterSpeed string
	TakenAt      time.Time
	Lat          float64
	Lng          float64
	HasGPS       bool
}

// Year returns the four digit year the photo was taken, or "".
func (m *Metadata) Year() string {
	if m == nil || m.TakenAt.IsZero() {
		return ""
	}
	return strconv.Itoa(m.TakenAt.Year())
}

// Location returns a coordinate label when GPS data is present, or "".
func (m *Metadata) Location() string {
	if m == nil || !m.HasGPS {
		return ""
	}
	return fmt.Sprintf("GPS: %.5f, %.5f", m.Lat, m.Lng)
}

// ReadMetadata extracts EXIF metadata. Images without EXIF data return an error.
func ReadMetadata(data []byte) (*Metadata, error) {
	x, err := exif.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode exif: %w", err)
	}

	m := &Metadata{
		Camera: stringTag(x, exif.Model),
		Lens:   stringTag(x, exif.LensModel),
	}
	if t, err := x.DateTime(); err == nil {
		m.TakenAt = t
	}
	if lat, lng, err := x.LatLong(); err == nil {
		m.Lat, m.Lng, m.HasGPS = lat, lng, true
	}
	if f, ok := ratTag(x, exif.FocalLength); ok {
		m.FocalLength = fmt.Sprintf("%.0fmm", f)
	}
	if f, ok := ratTag(x, exif.FNumber); ok {
		m.Aperture = fmt.Sprintf("f/%.1f", f)
	}
	if tag, err := x.Get(exif.ISOSpeedRatings); err == nil {
		if iso, err := tag.Int(0); err == nil {
			m.ISO = iso
		}
	}
	if f, ok := ratTag(x, exif.ExposureTime); ok && f > 0 {
		if f < 1 {
			m.ShutterSpeed = fmt.Sprintf("1/%.0f", 1/f)
		} else {
			m.ShutterSpeed = fmt.Sprintf("%.1fs", f)
		}
	}
	return m, nil
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return s
}

func ratTag(x *exif.Exif, name exif.FieldName) (float64, bool) {
	tag, err := x.Get(name)
	if err != nil {
		return 0, false
	}
	r, err := tag.Rat(0)
	if err != nil {
		return 0, false
	}
	f, _ := r.Float64()
	return f, true
}

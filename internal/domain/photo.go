package domain

import "strings"

const (
	// DefaultAlt is used when a gallery image carries no alt text.
	DefaultAlt = "Photo"
	// UnsetLocation is the sentinel shown for photos whose location was never filled in.
	UnsetLocation = "Update location"
)

// Photo is one entry of the photo gallery.
type Photo struct {
	ID          string
	Src         string // Relative path, e.g. "images/photo_1700000000000_abc.jpg"
	Alt         string
	Location    string
	Year        string // Digits or empty
	Tags        []string
	Description string
}

// Filename returns the last path segment of Src.
func (p Photo) Filename() string {
	if i := strings.LastIndex(p.Src, "/"); i >= 0 {
		return p.Src[i+1:]
	}
	return p.Src
}

// HasLocation reports whether the location was set to something other than the sentinel.
func (p Photo) HasLocation() bool {
	return p.Location != "" && p.Location != UnsetLocation
}

// Clone returns a copy that shares no slices with p.
func (p Photo) Clone() Photo {
	if p.Tags != nil {
		p.Tags = append([]string(nil), p.Tags...)
	}
	return p
}

// PhotoPatch holds a batch edit. Empty fields leave the target unchanged.
type PhotoPatch struct {
	Location    string
	Year        string
	Tags        []string
	Description string
}

// IsEmpty reports whether applying the patch would change nothing.
func (p PhotoPatch) IsEmpty() bool {
	return p.Location == "" && p.Year == "" && len(p.Tags) == 0 && p.Description == ""
}

// ParseTags splits a comma separated tag list, trimming blanks.
func ParseTags(s string) []string {
	var tags []string
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

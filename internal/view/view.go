// Package view renders the admin pages and the fragments patched into them
// over server-sent events.
//
//go:generate templ generate
package view

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/service"
)

const datastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.6/bundles/datastar.js"

// Element ids targeted by fragment patches.
const (
	AppID     = "gallery-app"
	GridID    = "photo-grid"
	StatsID   = "gallery-stats"
	StatusID  = "commit-status"
	DeletedID = "deleted-photos"
)

// CardID returns the element id of a photo card.
func CardID(photoID string) string {
	return "photo-" + photoID
}

// Gallery is everything the admin page shows about a session.
type Gallery struct {
	Settings domain.Settings
	Photos   []service.PhotoState
	Deleted  []domain.Photo
	Stats    service.Stats
	Facets   service.Facets
	Query    service.Query
	State    service.CommitState
	Notice   string
	Commits  []domain.CommitRecord
}

// photoPath returns the endpoint of one photo. The id is path-escaped and
// kept free of quotes so it can sit inside a datastar expression.
func photoPath(id string) string {
	return "/admin/photos/" + strings.ReplaceAll(url.PathEscape(id), "'", "%27")
}

func photoAction(id, action string) string {
	return photoPath(id) + "/" + action
}

// post builds a datastar expression posting the enclosing form to path.
func post(path string) string {
	return "@post('" + path + "', {contentType: 'form'})"
}

// ImageURL returns where the admin page loads a gallery image from.
func ImageURL(owner, repo, branch, src string) string {
	if owner == "" || repo == "" || strings.Contains(src, "://") {
		return src
	}
	return "https://raw.githubusercontent.com/" + owner + "/" + repo + "/" + branch + "/" + strings.TrimPrefix(src, "/")
}

func imageURL(s domain.Settings, src string) string {
	return ImageURL(s.RepoOwner, s.RepoName, s.Branch, src)
}

func cardClass(p service.PhotoState) string {
	class := "card"
	if p.Edited {
		class += " edited"
	}
	if p.Added {
		class += " added"
	}
	return class
}

// locationValue hides the unset sentinel from the location inputs.
func locationValue(p domain.Photo) string {
	if !p.HasLocation() {
		return ""
	}
	return p.Location
}

func commitLabel(state service.CommitState) string {
	switch state {
	case service.StateClean:
		return "All changes published."
	case service.StateDirty:
		return "Unpublished changes."
	case service.StateCommitting:
		return "Publishing…"
	case service.StateFailed:
		return "Last commit failed."
	}
	return ""
}

func noticeClass(failed bool) string {
	if failed {
		return "status failed"
	}
	return "status clean"
}

func sizeNote(p service.PublishedPhoto) string {
	return strconv.Itoa(p.OriginalSize/1024) + " KB → " + strconv.Itoa(p.PublishedSize/1024) + " KB"
}

func shortSHA(sha string) string {
	if len(sha) > 7 {
		return sha[:7]
	}
	return sha
}

var sortOrders = []string{service.SortYearDesc, service.SortYearAsc, service.SortFilename, service.SortLocation}

var missingFilters = []string{service.MissingLocation, service.MissingYear}

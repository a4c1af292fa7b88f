package handler

import (
	"log/slog"
	"net/http"

	"github.com/msomdec/gallery-admin/internal/service"
)

// CatalogHandler serves the public lists read from Google Sheets.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// HandleRestaurants returns the food guide.
// GET /api/restaurants
// Response: {"cities": [...]}
func (h *CatalogHandler) HandleRestaurants(w http.ResponseWriter, r *http.Request) {
	cities, err := h.catalog.Cities(r.Context())
	if err != nil {
		catalogError(w, "load restaurants", err)
		return
	}
	publicHeaders(w)
	writeJSON(w, http.StatusOK, map[string]any{"cities": toCityDTOs(cities)})
}

// HandleBooks returns the reading list.
// GET /api/books
// Response: {"books": [...]}
func (h *CatalogHandler) HandleBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.catalog.Books(r.Context())
	if err != nil {
		catalogError(w, "load books", err)
		return
	}
	publicHeaders(w)
	writeJSON(w, http.StatusOK, map[string]any{"books": toBookDTOs(books)})
}

// HandleGear returns the gear list.
// GET /api/gear
// Response: {"sections": [...]}
func (h *CatalogHandler) HandleGear(w http.ResponseWriter, r *http.Request) {
	sections, err := h.catalog.Gear(r.Context())
	if err != nil {
		catalogError(w, "load gear", err)
		return
	}
	publicHeaders(w)
	writeJSON(w, http.StatusOK, map[string]any{"sections": toGearDTOs(sections)})
}

func publicHeaders(w http.ResponseWriter) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Cache-Control", "public, max-age=300")
}

func catalogError(w http.ResponseWriter, op string, err error) {
	status, _ := errorStatus(err)
	switch status {
	case http.StatusServiceUnavailable:
		writeError(w, status, "This list is not configured.")
	case http.StatusNotFound:
		writeError(w, status, "The spreadsheet was not found.")
	default:
		slog.Error(op, "error", err)
		writeError(w, http.StatusBadGateway, "Could not load the spreadsheet.")
	}
}

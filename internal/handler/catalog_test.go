package handler_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/service"
)

type stubSheets struct {
	titles map[string][]string
	values map[string][][]string
	err    error
}

func (s stubSheets) Values(_ context.Context, id, rng string) ([][]string, error) {
	return s.values[id+"/"+rng], s.err
}

func (s stubSheets) SheetTitles(_ context.Context, id string) ([]string, error) {
	return s.titles[id], s.err
}

func TestCatalog_Books(t *testing.T) {
	catalog := service.NewCatalogService(stubSheets{
		values: map[string][][]string{
			"books/Sheet1": {{"Dune", "Frank Herbert", "Sci-Fi", "5", "Read", "", "https://www.amazon.com/dp/0441013597"}},
		},
	}, service.CatalogConfig{BooksSpreadsheetID: "books"})
	env := newTestEnv(t, catalog)

	resp := env.get(t, http.DefaultClient, "/api/books", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "*" {
		t.Errorf("expected public CORS header, got %q", got)
	}
	var out struct {
		Books []struct {
			Title    string   `json:"title"`
			Rating   *float64 `json:"rating"`
			CoverURL string   `json:"coverUrl"`
		} `json:"books"`
	}
	decodeJSON(t, resp, &out)
	if len(out.Books) != 1 || out.Books[0].Title != "Dune" || out.Books[0].Rating == nil || *out.Books[0].Rating != 5 {
		t.Fatalf("books = %+v", out)
	}
	if out.Books[0].CoverURL != "https://covers.openlibrary.org/b/isbn/0441013597-M.jpg" {
		t.Errorf("cover = %q", out.Books[0].CoverURL)
	}
}

func TestCatalog_Restaurants(t *testing.T) {
	catalog := service.NewCatalogService(stubSheets{
		titles: map[string][]string{"food": {"Boston"}},
		values: map[string][][]string{"food/Boston": {{"Neptune Oyster", "Seafood"}}},
	}, service.CatalogConfig{FoodSpreadsheetID: "food"})
	env := newTestEnv(t, catalog)

	resp := env.get(t, http.DefaultClient, "/api/restaurants", nil)
	var out struct {
		Cities []struct {
			Name        string `json:"name"`
			Restaurants []struct {
				Name string `json:"name"`
			} `json:"restaurants"`
		} `json:"cities"`
	}
	decodeJSON(t, resp, &out)
	if len(out.Cities) != 1 || out.Cities[0].Name != "Boston" || out.Cities[0].Restaurants[0].Name != "Neptune Oyster" {
		t.Fatalf("cities = %+v", out)
	}
}

func TestCatalog_Errors(t *testing.T) {
	env := newTestEnv(t, nil)
	if resp := env.get(t, http.DefaultClient, "/api/gear", nil); resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("not configured: expected 503, got %d", resp.StatusCode)
	}

	broken := service.NewCatalogService(stubSheets{err: domain.ErrUnauthorized}, service.CatalogConfig{GearSpreadsheetID: "gear"})
	env = newTestEnv(t, broken)
	if resp := env.get(t, http.DefaultClient, "/api/gear", nil); resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("sheet error: expected 502, got %d", resp.StatusCode)
	}
}

package sheets_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/sheets"
)

func TestDataRows_SkipsHeaderAndBlankFirstCell(t *testing.T) {
	values := [][]any{
		{"Name", "Category"},
		{"Lucali", "Pizza"},
		{"", "Orphan"},
		{},
		{" Tatiana ", 4.5},
	}
	got := sheets.DataRows(values)
	want := [][]string{{"Lucali", "Pizza"}, {"Tatiana", "4.5"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("DataRows mismatch (-want +got):\n%s", diff)
	}

	if rows := sheets.DataRows([][]any{{"header only"}}); rows != nil {
		t.Errorf("header only = %v, want nil", rows)
	}
}

func TestEmojiTable_Lookup(t *testing.T) {
	if got := sheets.FoodEmoji.Lookup("  Pizza "); got != "🍕" {
		t.Errorf("pizza = %q", got)
	}
	if got := sheets.FoodEmoji.Lookup("Ethiopian"); got != sheets.FoodEmoji.Fallback {
		t.Errorf("unknown = %q, want fallback", got)
	}
	if got := sheets.BookEmoji.Lookup(""); got != "📚" {
		t.Errorf("empty = %q", got)
	}
}

func TestParseRestaurants(t *testing.T) {
	rows := [][]string{
		{"Lucali", "Pizza", "2024-05-01", "575 Henry St", "Calzone", "40.68", "-73.99", "", "4.7"},
		{"Corner Spot", "Coffee"},
	}
	got := sheets.ParseRestaurants(rows, sheets.FoodEmoji)
	if len(got) != 2 {
		t.Fatalf("got %d restaurants, want 2", len(got))
	}
	r := got[0]
	if r.Emoji != "🍕" || r.Address != "575 Henry St" {
		t.Errorf("first = %+v", r)
	}
	if r.Lat == nil || *r.Lat != 40.68 || r.GoogleRating == nil || *r.GoogleRating != 4.7 {
		t.Errorf("numbers = lat %v google %v", r.Lat, r.GoogleRating)
	}
	if r.YelpRating != nil {
		t.Errorf("empty yelp rating should be nil, got %v", *r.YelpRating)
	}
	if got[1].Lat != nil || got[1].Emoji != "☕" {
		t.Errorf("short row = %+v", got[1])
	}
}

func TestParseBooks(t *testing.T) {
	rows := [][]string{
		{"Dune", "Frank Herbert", "Sci-Fi", "5", "", "Classic", "https://www.amazon.com/Dune/dp/0441013597/ref=sr_1_1"},
		{"Notes", "Anon", "Unknown", "n/a", "Reading"},
	}
	got := sheets.ParseBooks(rows, sheets.BookEmoji)
	if len(got) != 2 {
		t.Fatalf("got %d books, want 2", len(got))
	}
	dune := got[0]
	if dune.ISBN != "0441013597" {
		t.Errorf("isbn = %q", dune.ISBN)
	}
	if dune.Status != "Read" {
		t.Errorf("status = %q, want default Read", dune.Status)
	}
	if dune.Rating == nil || *dune.Rating != 5 {
		t.Errorf("rating = %v", dune.Rating)
	}
	if dune.Emoji != "🚀" {
		t.Errorf("emoji = %q", dune.Emoji)
	}
	if want := "https://covers.openlibrary.org/b/isbn/0441013597-M.jpg"; dune.CoverURL() != want {
		t.Errorf("cover = %q", dune.CoverURL())
	}
	if got[1].Rating != nil || got[1].ISBN != "" || got[1].CoverURL() != "" {
		t.Errorf("second = %+v", got[1])
	}
}

func TestParseGear_GroupsInOrder(t *testing.T) {
	rows := [][]string{
		{"Camera", "X100V", "Daily carry", "https://example.com/x100v"},
		{"Bags", "Peak Design Everyday"},
		{"Camera", "Ricoh GR III"},
		{"Camera"},
	}
	got := sheets.ParseGear(rows)
	want := []domain.GearSection{
		{Category: "Camera", Items: []domain.GearItem{
			{Category: "Camera", Name: "X100V", Description: "Daily carry", URL: "https://example.com/x100v"},
			{Category: "Camera", Name: "Ricoh GR III"},
		}},
		{Category: "Bags", Items: []domain.GearItem{
			{Category: "Bags", Name: "Peak Design Everyday"},
		}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("ParseGear mismatch (-want +got):\n%s", diff)
	}
}

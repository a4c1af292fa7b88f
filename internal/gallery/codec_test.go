package gallery_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/msomdec/gallery-admin/internal/domain"
	"github.com/msomdec/gallery-admin/internal/gallery"
)

const singlePhotoGrid = `<div class="photos-grid"><div class="photo-item"><img src="images/a.jpg" alt="X"><div class="photo-overlay"><span class="photo-location">Paris</span><span class="photo-year">2020</span></div></div></div>`

const samplePage = `<!DOCTYPE html>
<html>
<head><title>Photos</title></head>
<body>
    <main>
        <section class="photos-section">
                <div class="photos-grid">
                    <div class="photo-item">
                        <img src="images/one.jpg" alt="Sunset" loading="lazy">
                        <div class="photo-overlay">
                            <span class="photo-location">Lisbon</span>
                            <span class="photo-year">2019</span>
                        </div>
                    </div>
                    <div class="photo-item">
                        <img loading="lazy" alt="" src="images/two.jpg">
                        <div class="photo-overlay">
                            <span class="photo-location"></span>
                        </div>
                    </div>
                    <div class="photo-item">
                        <img src="images/three.jpg" alt="Harbor &amp; boats" loading="lazy">
                        <div class="photo-overlay">
                            <span class="photo-location">Porto</span>
                            <span class="photo-year">2021</span>
                        </div>
                    </div>
                </div>
        </section>
    </main>
    <footer><div class="credits">made by hand</div></footer>
</body>
</html>
`

// comparable strips ids so records from different decodes can be compared.
func comparable(photos []domain.Photo) []domain.Photo {
	out := make([]domain.Photo, len(photos))
	for i, p := range photos {
		p.ID = ""
		out[i] = p
	}
	return out
}

func TestDecode_SingleBlock(t *testing.T) {
	photos := gallery.Decode(singlePhotoGrid)
	if len(photos) != 1 {
		t.Fatalf("expected 1 photo, got %d", len(photos))
	}

	want := domain.Photo{ID: "photo_0", Src: "images/a.jpg", Alt: "X", Location: "Paris", Year: "2020"}
	if diff := cmp.Diff(want, photos[0]); diff != "" {
		t.Fatalf("decoded photo mismatch (-want +got):\n%s", diff)
	}
}

func TestDecode_DefaultsAndOrder(t *testing.T) {
	photos := gallery.Decode(samplePage)
	if len(photos) != 3 {
		t.Fatalf("expected 3 photos, got %d", len(photos))
	}

	for i, p := range photos {
		if want := "photo_" + string(rune('0'+i)); p.ID != want {
			t.Fatalf("photo %d: expected id %s, got %s", i, want, p.ID)
		}
	}

	second := photos[1]
	if second.Alt != domain.DefaultAlt {
		t.Fatalf("expected default alt %q, got %q", domain.DefaultAlt, second.Alt)
	}
	if second.Location != domain.UnsetLocation {
		t.Fatalf("expected sentinel location, got %q", second.Location)
	}
	if second.Year != "" {
		t.Fatalf("expected empty year, got %q", second.Year)
	}

	if photos[2].Alt != "Harbor & boats" {
		t.Fatalf("expected entity to be unescaped, got %q", photos[2].Alt)
	}
}

func TestDecode_NoMatches(t *testing.T) {
	for _, doc := range []string{"", "<p>nothing here</p>", "<div class=\"photos-grid\"></div>", "<<<>>>"} {
		photos := gallery.Decode(doc)
		if len(photos) != 0 {
			t.Fatalf("Decode(%q): expected no photos, got %d", doc, len(photos))
		}
	}
}

func TestDecode_SkipsBlocksWithoutImage(t *testing.T) {
	doc := `<div class="photos-grid">
		<div class="photo-item"><div class="photo-overlay"><span class="photo-location">Nowhere</span></div></div>
		<div class="photo-item"><img src="images/b.jpg" alt="B"></div>
	</div>`

	photos := gallery.Decode(doc)
	if len(photos) != 1 {
		t.Fatalf("expected 1 photo, got %d", len(photos))
	}
	if photos[0].ID != "photo_0" || photos[0].Src != "images/b.jpg" {
		t.Fatalf("unexpected photo %+v", photos[0])
	}
}

func TestRoundTrip_Idempotent(t *testing.T) {
	first := gallery.Decode(samplePage)
	first[0].Tags = []string{"travel", "sea"}
	first[0].Description = `Evening "golden" hour`

	fragment := gallery.Encode(first, nil)
	second := gallery.Decode(`<div class="photos-grid">` + fragment + `</div>`)

	if diff := cmp.Diff(comparable(first), comparable(second)); diff != "" {
		t.Fatalf("round trip mismatch (-first +second):\n%s", diff)
	}

	third := gallery.Decode(`<div class="photos-grid">` + gallery.Encode(second, nil) + `</div>`)
	if diff := cmp.Diff(comparable(second), comparable(third)); diff != "" {
		t.Fatalf("second round trip mismatch (-second +third):\n%s", diff)
	}
}

func TestEncode_SkipsDeletedAndKeepsOrder(t *testing.T) {
	photos := []domain.Photo{
		{ID: "a", Src: "images/a.jpg", Alt: "A", Location: "One"},
		{ID: "b", Src: "images/b.jpg", Alt: "B", Location: "Two"},
		{ID: "c", Src: "images/c.jpg", Alt: "C", Location: "Three"},
		{ID: "d", Src: "images/d.jpg", Alt: "D", Location: "Four"},
	}
	deleted := map[string]bool{"b": true, "d": true, "missing": true}

	fragment := gallery.Encode(photos, deleted)
	if n := gallery.CountBlocks(fragment); n != 2 {
		t.Fatalf("expected 2 blocks, got %d", n)
	}

	ia := strings.Index(fragment, "images/a.jpg")
	ic := strings.Index(fragment, "images/c.jpg")
	if ia < 0 || ic < 0 || ia > ic {
		t.Fatalf("expected a before c in fragment:\n%s", fragment)
	}
	if strings.Contains(fragment, "images/b.jpg") || strings.Contains(fragment, "images/d.jpg") {
		t.Fatalf("deleted photos leaked into fragment:\n%s", fragment)
	}
}

func TestEncode_EmptyYearOmitsLabel(t *testing.T) {
	block := gallery.EncodeBlock(domain.Photo{Src: "images/x.jpg", Location: "Rome"})
	if strings.Contains(block, "photo-year") {
		t.Fatalf("expected no year label:\n%s", block)
	}
	if !strings.Contains(block, `alt="Photo"`) {
		t.Fatalf("expected default alt:\n%s", block)
	}
}

func TestEncode_EscapesMarkup(t *testing.T) {
	block := gallery.EncodeBlock(domain.Photo{
		Src:      "images/x.jpg",
		Alt:      `"><script>alert(1)</script>`,
		Location: "<b>Rome</b>",
	})
	if strings.Contains(block, "<script>") || strings.Contains(block, "<b>") {
		t.Fatalf("markup was not escaped:\n%s", block)
	}
}

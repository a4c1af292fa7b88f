package gallery

import "github.com/msomdec/gallery-admin/internal/domain"

// placeholderYear is what older pages used before years were known.
const placeholderYear = "TBD"

// ApplyYears fills in years from a filename -> year table. Photos that
// already carry a real year are left alone unless overwrite is set.
// It returns the number of photos changed.
func ApplyYears(photos []domain.Photo, years map[string]string, overwrite bool) int {
	changed := 0
	for i := range photos {
		year, ok := years[photos[i].Filename()]
		if !ok || year == "" || photos[i].Year == year {
			continue
		}
		if !overwrite && photos[i].Year != "" && photos[i].Year != placeholderYear {
			continue
		}
		photos[i].Year = year
		changed++
	}
	return changed
}

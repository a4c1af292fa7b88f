package domain

// Restaurant is one row of a city sheet in the food guide spreadsheet.
type Restaurant struct {
	Name         string
	Category     string
	DateVisited  string
	Address      string
	Dishes       string
	Lat          *float64
	Lng          *float64
	YelpRating   *float64
	GoogleRating *float64
	Emoji        string
}

// City groups the restaurants of one sheet, named by the sheet title.
type City struct {
	Name        string
	Restaurants []Restaurant
}

// Book is one row of the reading list spreadsheet.
type Book struct {
	Title      string
	Author     string
	Category   string
	Rating     *float64
	Status     string
	Notes      string
	AmazonLink string
	ISBN       string // From the Amazon /dp/ path, empty when absent
	Emoji      string
}

// CoverURL returns the Open Library cover for the book, or "".
func (b Book) CoverURL() string {
	if b.ISBN == "" {
		return ""
	}
	return "https://covers.openlibrary.org/b/isbn/" + b.ISBN + "-M.jpg"
}

// GearItem is one row of the gear spreadsheet.
type GearItem struct {
	Category    string
	Name        string
	Description string
	URL         string
}

// GearSection is the gear list grouped by category in sheet order.
type GearSection struct {
	Category string
	Items    []GearItem
}

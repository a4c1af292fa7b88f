package sheets

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/msomdec/gallery-admin/internal/domain"
)

// EmojiTable maps lower-case category names to an emoji.
type EmojiTable struct {
	ByCategory map[string]string
	Fallback   string
}

// Lookup returns the emoji for category, or the fallback.
func (t EmojiTable) Lookup(category string) string {
	if e, ok := t.ByCategory[strings.ToLower(strings.TrimSpace(category))]; ok {
		return e
	}
	return t.Fallback
}

// FoodEmoji is the category table for the food guide.
var FoodEmoji = EmojiTable{
	ByCategory: map[string]string{
		"pizza":          "🍕",
		"korean":         "🇰🇷",
		"japanese":       "🇯🇵",
		"sushi":          "🍣",
		"mexican":        "🌮",
		"thai":           "🇹🇭",
		"chinese":        "🇨🇳",
		"taiwanese":      "🇹🇼",
		"vietnamese":     "🇻🇳",
		"indian":         "🇮🇳",
		"italian":        "🇮🇹",
		"french":         "🇫🇷",
		"american":       "🇺🇸",
		"peruvian":       "🇵🇪",
		"caribbean":      "🌴",
		"haitian":        "🇭🇹",
		"mediterranean":  "🫒",
		"greek":          "🇬🇷",
		"middle eastern": "🧆",
		"seafood":        "🦞",
		"bbq":            "🍖",
		"ramen":          "🍜",
		"coffee":         "☕",
		"bakery":         "🥐",
		"dessert":        "🍰",
	},
	Fallback: "🍽️",
}

// BookEmoji is the category table for the reading list.
var BookEmoji = EmojiTable{
	ByCategory: map[string]string{
		"fiction":     "📖",
		"non-fiction": "📰",
		"sci-fi":      "🚀",
		"fantasy":     "🐉",
		"christian":   "✝️",
		"business":    "💼",
		"self-help":   "🧠",
		"biography":   "👤",
		"history":     "🏛️",
		"memoir":      "📝",
		"philosophy":  "🤔",
		"science":     "🔬",
		"psychology":  "🧩",
	},
	Fallback: "📚",
}

var asinPattern = regexp.MustCompile(`(?i)/dp/([A-Z0-9]+)`)

// ParseRestaurants maps rows with the columns Name, Category, Date Visited,
// Address, Dishes, Lat, Lng, Yelp rating and Google rating.
func ParseRestaurants(rows [][]string, emoji EmojiTable) []domain.Restaurant {
	out := make([]domain.Restaurant, 0, len(rows))
	for _, row := range rows {
		r := domain.Restaurant{
			Name:         cell(row, 0),
			Category:     cell(row, 1),
			DateVisited:  cell(row, 2),
			Address:      cell(row, 3),
			Dishes:       cell(row, 4),
			Lat:          number(cell(row, 5)),
			Lng:          number(cell(row, 6)),
			YelpRating:   number(cell(row, 7)),
			GoogleRating: number(cell(row, 8)),
		}
		r.Emoji = emoji.Lookup(r.Category)
		out = append(out, r)
	}
	return out
}

// ParseBooks maps rows with the columns Title, Author, Category, Rating,
// Status, Notes and Amazon Link. Status defaults to "Read".
func ParseBooks(rows [][]string, emoji EmojiTable) []domain.Book {
	out := make([]domain.Book, 0, len(rows))
	for _, row := range rows {
		b := domain.Book{
			Title:      cell(row, 0),
			Author:     cell(row, 1),
			Category:   cell(row, 2),
			Rating:     number(cell(row, 3)),
			Status:     cell(row, 4),
			Notes:      cell(row, 5),
			AmazonLink: cell(row, 6),
		}
		if b.Status == "" {
			b.Status = "Read"
		}
		if m := asinPattern.FindStringSubmatch(b.AmazonLink); m != nil {
			b.ISBN = m[1]
		}
		b.Emoji = emoji.Lookup(b.Category)
		out = append(out, b)
	}
	return out
}

// ParseGear groups rows (Category, Name, Description, URL) by category in
// first-seen order. Rows without a category or name are skipped.
func ParseGear(rows [][]string) []domain.GearSection {
	var sections []domain.GearSection
	index := make(map[string]int)
	for _, row := range rows {
		item := domain.GearItem{
			Category:    cell(row, 0),
			Name:        cell(row, 1),
			Description: cell(row, 2),
			URL:         cell(row, 3),
		}
		if item.Category == "" || item.Name == "" {
			continue
		}
		i, ok := index[item.Category]
		if !ok {
			i = len(sections)
			index[item.Category] = i
			sections = append(sections, domain.GearSection{Category: item.Category})
		}
		sections[i].Items = append(sections[i].Items, item)
	}
	return sections
}

func cell(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func number(s string) *float64 {
	if s == "" {
		return nil
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &f
}

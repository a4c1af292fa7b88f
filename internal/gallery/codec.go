// Package gallery converts between the photos page HTML and photo records.
//
// The page holds a single container element (class or id "photos-grid") whose
// children are blocks of the form
//
//	<div class="photo-item">
//	    <img src="images/a.jpg" alt="X" loading="lazy">
//	    <div class="photo-overlay">
//	        <span class="photo-location">Paris</span>
//	        <span class="photo-year">2020</span>
//	    </div>
//	</div>
//
// Decoding walks a parse tree, so attribute order and whitespace do not
// matter. Encoding always produces the canonical shape above.
package gallery

import (
	"fmt"
	"html"
	"strings"

	"github.com/msomdec/gallery-admin/internal/domain"
	nethtml "golang.org/x/net/html"
)

const (
	containerName = "photos-grid"
	itemClass     = "photo-item"
	locationClass = "photo-location"
	yearClass     = "photo-year"

	itemIndent  = "                    "
	closeIndent = "                "
)

// Decode returns the photos found in doc, in document order, with ids
// photo_0, photo_1, ... Malformed input yields a partial or empty list.
func Decode(doc string) []domain.Photo {
	root, err := nethtml.Parse(strings.NewReader(doc))
	if err != nil {
		return nil
	}

	scope := root
	if containers := findAll(root, isContainerNode); len(containers) == 1 {
		scope = containers[0]
	}

	var photos []domain.Photo
	for _, item := range findAll(scope, isItemNode) {
		p, ok := decodeItem(item)
		if !ok {
			continue
		}
		p.ID = fmt.Sprintf("photo_%d", len(photos))
		photos = append(photos, p)
	}
	return photos
}

func decodeItem(item *nethtml.Node) (domain.Photo, bool) {
	img := findFirst(item, func(n *nethtml.Node) bool {
		return n.Type == nethtml.ElementNode && n.Data == "img" && attr(n, "src") != ""
	})
	if img == nil {
		return domain.Photo{}, false
	}

	p := domain.Photo{
		Src:         attr(img, "src"),
		Alt:         attr(img, "alt"),
		Location:    domain.UnsetLocation,
		Tags:        domain.ParseTags(attr(item, "data-tags")),
		Description: attr(item, "data-description"),
	}
	if p.Alt == "" {
		p.Alt = domain.DefaultAlt
	}
	if n := findFirst(item, hasClassFunc(locationClass)); n != nil {
		if text := strings.TrimSpace(textContent(n)); text != "" {
			p.Location = text
		}
	}
	if n := findFirst(item, hasClassFunc(yearClass)); n != nil {
		p.Year = strings.TrimSpace(textContent(n))
	}
	return p, true
}

// Encode renders the gallery fragment for photos, skipping every id in
// deleted. The result is meant to replace the container's inner HTML.
func Encode(photos []domain.Photo, deleted map[string]bool) string {
	var blocks []string
	for _, p := range photos {
		if deleted[p.ID] {
			continue
		}
		blocks = append(blocks, EncodeBlock(p))
	}
	if len(blocks) == 0 {
		return "\n" + closeIndent
	}
	return "\n" + strings.Join(blocks, "\n") + "\n" + closeIndent
}

// EncodeBlock renders a single photo-item block.
func EncodeBlock(p domain.Photo) string {
	alt := p.Alt
	if alt == "" {
		alt = domain.DefaultAlt
	}
	location := p.Location
	if location == "" {
		location = domain.UnsetLocation
	}

	var sb strings.Builder
	sb.WriteString(itemIndent + `<div class="` + itemClass + `"`)
	if len(p.Tags) > 0 {
		fmt.Fprintf(&sb, ` data-tags="%s"`, html.EscapeString(strings.Join(p.Tags, ",")))
	}
	if p.Description != "" {
		fmt.Fprintf(&sb, ` data-description="%s"`, html.EscapeString(p.Description))
	}
	sb.WriteString(">\n")
	fmt.Fprintf(&sb, "%s    <img src=\"%s\" alt=\"%s\" loading=\"lazy\">\n", itemIndent, html.EscapeString(p.Src), html.EscapeString(alt))
	sb.WriteString(itemIndent + "    <div class=\"photo-overlay\">\n")
	fmt.Fprintf(&sb, "%s        <span class=\"%s\">%s</span>\n", itemIndent, locationClass, html.EscapeString(location))
	if p.Year != "" {
		fmt.Fprintf(&sb, "%s        <span class=\"%s\">%s</span>\n", itemIndent, yearClass, html.EscapeString(p.Year))
	}
	sb.WriteString(itemIndent + "    </div>\n")
	sb.WriteString(itemIndent + "</div>")
	return sb.String()
}

// CountBlocks returns the number of photo-item blocks in an encoded fragment.
func CountBlocks(fragment string) int {
	return strings.Count(fragment, `<div class="`+itemClass+`"`)
}

func isContainerNode(n *nethtml.Node) bool {
	return n.Type == nethtml.ElementNode && (hasClass(n, containerName) || attr(n, "id") == containerName)
}

func isItemNode(n *nethtml.Node) bool {
	return n.Type == nethtml.ElementNode && hasClass(n, itemClass)
}

// findAll collects matching nodes below n without descending into matches.
func findAll(n *nethtml.Node, match func(*nethtml.Node) bool) []*nethtml.Node {
	var out []*nethtml.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			out = append(out, c)
			continue
		}
		out = append(out, findAll(c, match)...)
	}
	return out
}

func findFirst(n *nethtml.Node, match func(*nethtml.Node) bool) *nethtml.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match(c) {
			return c
		}
		if found := findFirst(c, match); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *nethtml.Node) string {
	if n.Type == nethtml.TextNode {
		return n.Data
	}
	var sb strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		sb.WriteString(textContent(c))
	}
	return sb.String()
}

func attr(n *nethtml.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasClass(n *nethtml.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func hasClassFunc(class string) func(*nethtml.Node) bool {
	return func(n *nethtml.Node) bool {
		return n.Type == nethtml.ElementNode && hasClass(n, class)
	}
}

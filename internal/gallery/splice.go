package gallery

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/msomdec/gallery-admin/internal/domain"
	nethtml "golang.org/x/net/html"
)

// voidElements never have a closing tag.
var voidElements = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true,
	"hr": true, "img": true, "input": true, "link": true, "meta": true,
	"param": true, "source": true, "track": true, "wbr": true,
}

// Splice replaces the inner HTML of the gallery container in doc with
// fragment. Bytes outside the container are kept as they are.
func Splice(doc, fragment string) (string, error) {
	start, end, err := locate(doc)
	if err != nil {
		return "", err
	}
	return doc[:start] + fragment + doc[end:], nil
}

// Inner returns the current inner HTML of the gallery container.
func Inner(doc string) (string, error) {
	start, end, err := locate(doc)
	if err != nil {
		return "", err
	}
	return doc[start:end], nil
}

// locate returns the byte range between the end of the container's opening
// tag and the start of its matching closing tag. Nesting is tracked with a
// tag stack, so unclosed optional-end elements inside do not confuse it.
func locate(doc string) (start, end int, err error) {
	z := nethtml.NewTokenizer(strings.NewReader(doc))

	var (
		offset  int
		found   int
		stack   []string
		inside  bool
		closeAt = -1
	)
	start = -1

	for {
		tt := z.Next()
		if tt == nethtml.ErrorToken {
			if !errors.Is(z.Err(), io.EOF) {
				return 0, 0, fmt.Errorf("tokenize document: %w", z.Err())
			}
			break
		}
		tokenStart := offset
		offset += len(z.Raw())

		switch tt {
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			name, hasAttr := z.TagName()
			tag := string(name)
			container := hasAttr && tagIsContainer(z)
			if container {
				found++
				if found > 1 {
					return 0, 0, domain.ErrGalleryAmbiguous
				}
			}
			if tt == nethtml.SelfClosingTagToken || voidElements[tag] {
				if container {
					return 0, 0, fmt.Errorf("%w: container has no body", domain.ErrMalformedGallery)
				}
				continue
			}
			if container {
				start = offset
				inside = true
				stack = stack[:0]
			}
			if inside {
				stack = append(stack, tag)
			}
		case nethtml.EndTagToken:
			if !inside {
				continue
			}
			name, _ := z.TagName()
			tag := string(name)
			for i := len(stack) - 1; i >= 0; i-- {
				if stack[i] == tag {
					stack = stack[:i]
					break
				}
			}
			if len(stack) == 0 {
				closeAt = tokenStart
				inside = false
			}
		}
	}

	switch {
	case found == 0:
		return 0, 0, domain.ErrGalleryNotFound
	case closeAt < 0:
		return 0, 0, fmt.Errorf("%w: container is never closed", domain.ErrMalformedGallery)
	}
	return start, closeAt, nil
}

func tagIsContainer(z *nethtml.Tokenizer) bool {
	for {
		key, val, more := z.TagAttr()
		switch string(key) {
		case "class":
			for _, c := range strings.Fields(string(val)) {
				if c == containerName {
					return true
				}
			}
		case "id":
			if string(val) == containerName {
				return true
			}
		}
		if !more {
			return false
		}
	}
}

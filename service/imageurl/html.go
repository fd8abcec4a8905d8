package imageurl

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var unwrapSelectors = []struct{ selector, attr string }{
	{"img[src]", "src"},
	{"a[href]", "href"},
	{"[src]", "src"},
	{"[href]", "href"},
}

// UnwrapHTML extracts the src or href of a pasted <img>/<a> snippet. Values
// that are not markup are returned trimmed; markup without a link yields "".
func UnwrapHTML(raw string) string {
	value := strings.TrimSpace(raw)
	if !strings.Contains(value, "<") {
		return value
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(value))
	if err != nil {
		return value
	}
	for _, s := range unwrapSelectors {
		if attr, ok := doc.Find(s.selector).First().Attr(s.attr); ok && strings.TrimSpace(attr) != "" {
			return strings.TrimSpace(attr)
		}
	}
	if strings.HasPrefix(value, "<") {
		return ""
	}
	return value
}

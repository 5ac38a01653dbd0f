package parser

import (
	"net/url"
	"strings"

	"codeberg.org/readeck/go-readability/v2"
	"github.com/PuerkitoBio/goquery"
)

// readabilityContent runs go-readability over the page and returns its
// rendered article body as a goquery selection.
func readabilityContent(raw string, base *url.URL) (*goquery.Selection, bool) {
	article, err := readability.FromReader(strings.NewReader(raw), base)
	if err != nil {
		return nil, false
	}

	var buf strings.Builder
	if err := article.RenderHTML(&buf); err != nil {
		return nil, false
	}
	if strings.TrimSpace(buf.String()) == "" {
		return nil, false
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(buf.String()))
	if err != nil {
		return nil, false
	}
	return doc.Selection, true
}

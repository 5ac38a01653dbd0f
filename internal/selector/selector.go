// Package selector resolves a page field by trying named strategies in order.
package selector

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Strategy is one named way of locating a field; Find reports whether it matched.
type Strategy[T any] struct {
	Name string
	Find func(doc *goquery.Selection) (T, bool)
}

// Chain keeps strategies in priority order.
type Chain[T any] []Strategy[T]

// Resolve returns the value of the first strategy that matches, with its name.
func (c Chain[T]) Resolve(doc *goquery.Selection) (T, string, bool) {
	for _, s := range c {
		if s.Find == nil {
			continue
		}
		if v, ok := s.Find(doc); ok {
			return v, s.Name, true
		}
	}
	var zero T
	return zero, "", false
}

// Names lists the strategy names, mostly for log lines.
func (c Chain[T]) Names() []string {
	names := make([]string, 0, len(c))
	for _, s := range c {
		names = append(names, s.Name)
	}
	return names
}

// Element matches the first element for a CSS query.
func Element(name, query string) Strategy[*goquery.Selection] {
	return Strategy[*goquery.Selection]{
		Name: name,
		Find: func(doc *goquery.Selection) (*goquery.Selection, bool) {
			sel := doc.Find(query).First()
			return sel, sel.Length() > 0
		},
	}
}

// Text matches the trimmed text of the first element for query when non-empty.
func Text(name, query string) Strategy[string] {
	return Strategy[string]{
		Name: name,
		Find: func(doc *goquery.Selection) (string, bool) {
			v := strings.TrimSpace(doc.Find(query).First().Text())
			return v, v != ""
		},
	}
}

// Attr matches the trimmed attribute of the first element for query when non-empty.
func Attr(name, query, attr string) Strategy[string] {
	return Strategy[string]{
		Name: name,
		Find: func(doc *goquery.Selection) (string, bool) {
			v, ok := doc.Find(query).First().Attr(attr)
			v = strings.TrimSpace(v)
			return v, ok && v != ""
		},
	}
}

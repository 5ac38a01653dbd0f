package parser

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"ArticleArchiver/internal/domain"
)

const (
	paragraphQuery = "p, h1, h2, h3, h4, h5, h6"
	contentQuery   = paragraphQuery + ", img"
	signOffToken   = "审核"
	signOffSeps    = "|｜丨"
)

type content struct {
	blocks    []domain.Block
	images    []string
	truncated bool
}

// walkContent visits paragraphs and images of the container in document
// order and stops at the editorial sign-off line.
func walkContent(container *goquery.Selection, base *url.URL) content {
	var c content
	container.Find(contentQuery).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if goquery.NodeName(s) == "img" {
			if ref, ok := imageRef(s, base); ok {
				c.images = append(c.images, ref)
			}
			return true
		}
		// a heading wrapping paragraphs yields its paragraphs instead
		if goquery.NodeName(s) != "p" && s.Find("p").Length() > 0 {
			return true
		}

		block := decomposeBlock(s)
		if isSignOff(block.Text()) {
			c.truncated = true
			return false
		}
		c.blocks = append(c.blocks, block)
		return true
	})
	return c
}

// isSignOff matches lines such as "审核丨张三" or "审核|张三".
func isSignOff(text string) bool {
	return strings.Contains(text, signOffToken) && strings.ContainsAny(text, signOffSeps)
}

// imageRef prefers the lazy-load source and skips inline data URIs.
func imageRef(s *goquery.Selection, base *url.URL) (string, bool) {
	src := strings.TrimSpace(s.AttrOr("data-src", ""))
	if src == "" {
		src = strings.TrimSpace(s.AttrOr("src", ""))
	}
	if src == "" || strings.HasPrefix(strings.ToLower(src), "data:") {
		return "", false
	}
	return absoluteURL(src, base), true
}

func absoluteURL(ref string, base *url.URL) string {
	u, err := url.Parse(ref)
	if err != nil {
		return ref
	}
	if base != nil {
		return base.ResolveReference(u).String()
	}
	if u.Scheme == "" && u.Host != "" {
		u.Scheme = "https"
		return u.String()
	}
	return ref
}

type inlineFormat struct {
	bold  bool
	style string
}

func (f inlineFormat) kind() domain.InlineKind {
	switch {
	case f.style != "":
		return domain.InlineColored
	case f.bold:
		return domain.InlineBold
	default:
		return domain.InlineText
	}
}

// decomposeBlock flattens the inline tree of a paragraph into runs,
// inheriting bold and color from enclosing elements.
func decomposeBlock(s *goquery.Selection) domain.Block {
	var b domain.Block
	for _, n := range s.Nodes {
		collectInlines(n, formatOf(n, inlineFormat{}), &b.Inlines)
	}
	return b
}

func collectInlines(n *html.Node, f inlineFormat, out *[]domain.Inline) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		switch c.Type {
		case html.TextNode:
			appendInline(out, f, c.Data)
		case html.ElementNode:
			switch c.Data {
			case "img", "br", "script", "style":
				continue
			}
			collectInlines(c, formatOf(c, f), out)
		}
	}
}

// formatOf applies the element's own tag and inline style on top of parent.
func formatOf(n *html.Node, parent inlineFormat) inlineFormat {
	f := parent
	switch n.Data {
	case "strong", "b", "h1", "h2", "h3", "h4", "h5", "h6":
		f.bold = true
	}
	style := attr(n, "style")
	if domain.BoldStyle(style) {
		f.bold = true
	}
	if _, ok := domain.ColorValue(style); ok {
		f.style = style
	}
	return f
}

// appendInline merges text into the previous inline when the format matches.
func appendInline(out *[]domain.Inline, f inlineFormat, text string) {
	if text == "" {
		return
	}
	kind := f.kind()
	if n := len(*out); n > 0 {
		last := &(*out)[n-1]
		if last.Kind == kind && last.Style == f.style && last.Bold == (f.bold && kind == domain.InlineColored) {
			last.Text += text
			return
		}
	}
	in := domain.Inline{Kind: kind, Text: text}
	if kind == domain.InlineColored {
		in.Style = f.style
		in.Bold = f.bold
	}
	*out = append(*out, in)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

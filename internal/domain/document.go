package domain

import "strings"

// RGB is an explicit run color.
type RGB struct {
	R, G, B uint8
}

// Hex renders the color as RRGGBB without a leading '#'.
func (c RGB) Hex() string {
	const digits = "0123456789ABCDEF"
	b := []byte{
		digits[c.R>>4], digits[c.R&0x0f],
		digits[c.G>>4], digits[c.G&0x0f],
		digits[c.B>>4], digits[c.B&0x0f],
	}
	return string(b)
}

// Run is a styled stretch of text inside a paragraph.
type Run struct {
	Text  string
	Bold  bool
	Color *RGB
}

// Paragraph is an ordered list of runs.
type Paragraph struct {
	Runs []Run
}

// Text concatenates the visible text of all runs.
func (p Paragraph) Text() string {
	var sb strings.Builder
	for _, r := range p.Runs {
		sb.WriteString(r.Text)
	}
	return sb.String()
}

// Blank reports whether the paragraph has no visible text.
func (p Paragraph) Blank() bool {
	return strings.TrimSpace(p.Text()) == ""
}

// DocumentStyle is applied once to the base paragraph style.
type DocumentStyle struct {
	FontFace     string
	FontSizePt   float64
	SpaceAfterPt float64
}

// Document is the rendered, writer-independent form of an article.
type Document struct {
	Title      string
	Style      DocumentStyle
	Paragraphs []Paragraph
}

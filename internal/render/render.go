// Package render turns an extracted article into a writer-independent document.
package render

import (
	"fmt"
	"log/slog"
	"strings"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/ports"
)

// EmptyParagraphPolicy decides what happens to paragraphs without visible text.
type EmptyParagraphPolicy string

const (
	// DropEmpty never emits a blank paragraph.
	DropEmpty EmptyParagraphPolicy = "drop"
	// CollapseEmpty keeps at most one consecutive blank paragraph, matching
	// output produced by older versions of the tool.
	CollapseEmpty EmptyParagraphPolicy = "collapse"
)

// ParsePolicy maps a config value to a policy, defaulting to DropEmpty.
func ParsePolicy(v string) (EmptyParagraphPolicy, error) {
	switch EmptyParagraphPolicy(strings.ToLower(strings.TrimSpace(v))) {
	case "", DropEmpty:
		return DropEmpty, nil
	case CollapseEmpty:
		return CollapseEmpty, nil
	}
	return "", fmt.Errorf("unknown empty paragraph policy %q", v)
}

// DefaultStyle is a dense single-spaced 12pt SimSun layout.
func DefaultStyle() domain.DocumentStyle {
	return domain.DocumentStyle{FontFace: "宋体", FontSizePt: 12, SpaceAfterPt: 0}
}

// Renderer builds one paragraph per content block.
type Renderer struct {
	style  domain.DocumentStyle
	policy EmptyParagraphPolicy
	logger *slog.Logger
}

var _ ports.Renderer = (*Renderer)(nil)

// NewRenderer returns a renderer; a zero style falls back to DefaultStyle.
func NewRenderer(style domain.DocumentStyle, policy EmptyParagraphPolicy, logger *slog.Logger) *Renderer {
	def := DefaultStyle()
	if style.FontFace == "" {
		style.FontFace = def.FontFace
	}
	if style.FontSizePt <= 0 {
		style.FontSizePt = def.FontSizePt
	}
	if policy == "" {
		policy = DropEmpty
	}
	return &Renderer{style: style, policy: policy, logger: logger}
}

// Render applies the document style once and converts every block.
// Blocks with malformed inline markup are skipped.
func (r *Renderer) Render(article domain.Article) domain.Document {
	doc := domain.Document{Title: article.Title, Style: r.style}

	blankRun := false
	for i, block := range article.Blocks {
		p, err := renderBlock(block)
		if err != nil {
			r.warn("skipping paragraph", "index", i, "error", err)
			continue
		}

		if p.Blank() {
			if r.policy == DropEmpty || blankRun {
				continue
			}
			blankRun = true
			doc.Paragraphs = append(doc.Paragraphs, domain.Paragraph{})
			continue
		}
		blankRun = false
		doc.Paragraphs = append(doc.Paragraphs, p)
	}
	return doc
}

func renderBlock(block domain.Block) (domain.Paragraph, error) {
	var p domain.Paragraph
	for _, in := range block.Inlines {
		text := strings.TrimSpace(in.Text)

		var run domain.Run
		switch in.Kind {
		case domain.InlineText:
			run = domain.Run{Text: text}
		case domain.InlineBold:
			run = domain.Run{Text: text, Bold: true}
		case domain.InlineColored:
			c, err := styleColor(in.Style)
			if err != nil {
				return domain.Paragraph{}, fmt.Errorf("%w: %v", domain.ErrParagraph, err)
			}
			run = domain.Run{Text: text, Bold: in.Bold, Color: c}
		default:
			return domain.Paragraph{}, fmt.Errorf("%w: unknown inline kind %s", domain.ErrParagraph, in.Kind)
		}

		if run.Text == "" {
			continue
		}
		p.Runs = append(p.Runs, run)
	}
	return p, nil
}

func (r *Renderer) warn(msg string, args ...any) {
	if r.logger != nil {
		r.logger.Warn(msg, args...)
	}
}

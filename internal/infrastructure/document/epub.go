package document

import (
	"encoding/base64"
	"fmt"
	"html"
	"strings"

	epub "github.com/go-shiori/go-epub"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/ports"
)

// EPUBWriter writes the document as a single-section epub3 book.
type EPUBWriter struct {
	Lang string
}

var _ ports.DocumentWriter = EPUBWriter{}

func (EPUBWriter) Format() string    { return "epub" }
func (EPUBWriter) Extension() string { return ".epub" }

// WriteFile builds the book and writes it to path.
func (w EPUBWriter) WriteFile(path string, doc domain.Document) error {
	title := doc.Title
	if title == "" {
		title = domain.UntitledSentinel
	}

	e, err := epub.NewEpub(title)
	if err != nil {
		return fmt.Errorf("creating epub: %w", err)
	}
	lang := w.Lang
	if lang == "" {
		lang = "zh"
	}
	e.SetLang(lang)

	cssURI := "data:text/css;base64," + base64.StdEncoding.EncodeToString([]byte(epubCSS(doc.Style)))
	cssPath, err := e.AddCSS(cssURI, "styles.css")
	if err != nil {
		return fmt.Errorf("adding css: %w", err)
	}

	if _, err := e.AddSection(epubBody(doc), title, "article.xhtml", cssPath); err != nil {
		return fmt.Errorf("adding section: %w", err)
	}

	if err := e.Write(path); err != nil {
		return fmt.Errorf("writing epub: %w", err)
	}
	return nil
}

func epubCSS(style domain.DocumentStyle) string {
	return fmt.Sprintf("body { font-family: %q, serif; font-size: %gpt; }\np { margin: 0 0 %gpt 0; }\n",
		style.FontFace, style.FontSizePt, style.SpaceAfterPt)
}

func epubBody(doc domain.Document) string {
	var b strings.Builder
	for _, p := range doc.Paragraphs {
		b.WriteString("<p>")
		for _, r := range p.Runs {
			text := html.EscapeString(r.Text)
			if r.Color != nil {
				text = `<span style="color:#` + r.Color.Hex() + `">` + text + `</span>`
			}
			if r.Bold {
				text = "<strong>" + text + "</strong>"
			}
			b.WriteString(text)
		}
		b.WriteString("</p>\n")
	}
	return b.String()
}

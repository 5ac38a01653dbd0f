package document

import (
	"errors"
	"fmt"

	"github.com/jung-kurt/gofpdf"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/ports"
)

const pdfFontFamily = "body"

// PDFWriter lays the document out on A4 pages. CJK text needs a UTF-8
// TrueType font, so FontPath is required. Bold runs use BoldFontPath; without
// it they are set in the regular face.
type PDFWriter struct {
	FontPath     string
	BoldFontPath string
}

var _ ports.DocumentWriter = PDFWriter{}

func (PDFWriter) Format() string    { return "pdf" }
func (PDFWriter) Extension() string { return ".pdf" }

// WriteFile renders every paragraph as a flowing block of runs.
func (w PDFWriter) WriteFile(path string, doc domain.Document) error {
	if w.FontPath == "" {
		return errors.New("pdf output requires document.fontPath")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(doc.Title, true)
	pdf.AddUTF8Font(pdfFontFamily, "", w.FontPath)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("loading font %s: %w", w.FontPath, err)
	}
	bold := w.BoldFontPath
	if bold == "" {
		bold = w.FontPath
	}
	pdf.AddUTF8Font(pdfFontFamily, "B", bold)
	if err := pdf.Error(); err != nil {
		return fmt.Errorf("loading bold font %s: %w", bold, err)
	}

	size := doc.Style.FontSizePt
	if size <= 0 {
		size = 12
	}
	// line height in mm for single spacing
	lineHeight := size * 0.3528 * 1.2
	spaceAfter := doc.Style.SpaceAfterPt * 0.3528

	pdf.SetFont(pdfFontFamily, "", size)
	pdf.AddPage()

	for _, p := range doc.Paragraphs {
		for _, r := range p.Runs {
			styleStr := ""
			if r.Bold {
				styleStr = "B"
			}
			pdf.SetFont(pdfFontFamily, styleStr, size)
			if r.Color != nil {
				pdf.SetTextColor(int(r.Color.R), int(r.Color.G), int(r.Color.B))
			} else {
				pdf.SetTextColor(0, 0, 0)
			}
			pdf.Write(lineHeight, r.Text)
		}
		pdf.Ln(lineHeight + spaceAfter)
	}

	return pdf.OutputFileAndClose(path)
}

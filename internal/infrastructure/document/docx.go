package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"

	"ArticleArchiver/internal/domain"
	"ArticleArchiver/internal/ports"
)

const (
	docxContentTypes = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">
<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>
<Default Extension="xml" ContentType="application/xml"/>
<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>
<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>
<Override PartName="/docProps/core.xml" ContentType="application/vnd.openxmlformats-package.core-properties+xml"/>
</Types>`

	docxRootRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>
<Relationship Id="rId2" Type="http://schemas.openxmlformats.org/package/2006/relationships/metadata/core-properties" Target="docProps/core.xml"/>
</Relationships>`

	docxDocumentRels = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>
<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">
<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>
</Relationships>`

	wordNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`
)

// DOCXWriter writes a WordprocessingML package.
type DOCXWriter struct{}

var _ ports.DocumentWriter = DOCXWriter{}

func (DOCXWriter) Format() string    { return "docx" }
func (DOCXWriter) Extension() string { return ".docx" }

// WriteFile creates path and writes the document package into it.
func (w DOCXWriter) WriteFile(path string, doc domain.Document) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := w.Write(f, doc); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// Write streams the zip package to out.
func (DOCXWriter) Write(out io.Writer, doc domain.Document) error {
	zw := zip.NewWriter(out)
	parts := []struct {
		name string
		body []byte
	}{
		{"[Content_Types].xml", []byte(docxContentTypes)},
		{"_rels/.rels", []byte(docxRootRels)},
		{"word/_rels/document.xml.rels", []byte(docxDocumentRels)},
		{"docProps/core.xml", coreXML(doc.Title)},
		{"word/styles.xml", stylesXML(doc.Style)},
		{"word/document.xml", documentXML(doc)},
	}
	for _, part := range parts {
		fw, err := zw.Create(part.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", part.name, err)
		}
		if _, err := fw.Write(part.body); err != nil {
			return fmt.Errorf("write %s: %w", part.name, err)
		}
	}
	return zw.Close()
}

func coreXML(title string) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<cp:coreProperties xmlns:cp="http://schemas.openxmlformats.org/package/2006/metadata/core-properties" xmlns:dc="http://purl.org/dc/elements/1.1/">`)
	b.WriteString(`<dc:title>`)
	escape(&b, title)
	b.WriteString(`</dc:title></cp:coreProperties>`)
	return b.Bytes()
}

// stylesXML sets the Normal style font for latin and East Asian text.
// Word sizes are in half-points and spacing in twentieths of a point.
func stylesXML(style domain.DocumentStyle) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:styles ` + wordNS + `>`)
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/>`)
	fmt.Fprintf(&b, `<w:pPr><w:spacing w:after="%d"/></w:pPr>`, twips(style.SpaceAfterPt))
	b.WriteString(`<w:rPr><w:rFonts w:ascii="`)
	escape(&b, style.FontFace)
	b.WriteString(`" w:hAnsi="`)
	escape(&b, style.FontFace)
	b.WriteString(`" w:eastAsia="`)
	escape(&b, style.FontFace)
	half := strconv.Itoa(halfPoints(style.FontSizePt))
	b.WriteString(`"/><w:sz w:val="` + half + `"/><w:szCs w:val="` + half + `"/></w:rPr>`)
	b.WriteString(`</w:style></w:styles>`)
	return b.Bytes()
}

func documentXML(doc domain.Document) []byte {
	var b bytes.Buffer
	b.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>`)
	b.WriteString(`<w:document ` + wordNS + `><w:body>`)
	for _, p := range doc.Paragraphs {
		b.WriteString(`<w:p><w:pPr><w:pStyle w:val="Normal"/>`)
		fmt.Fprintf(&b, `<w:spacing w:after="%d"/></w:pPr>`, twips(doc.Style.SpaceAfterPt))
		for _, r := range p.Runs {
			b.WriteString(`<w:r>`)
			if r.Bold || r.Color != nil {
				b.WriteString(`<w:rPr>`)
				if r.Bold {
					b.WriteString(`<w:b/>`)
				}
				if r.Color != nil {
					b.WriteString(`<w:color w:val="` + r.Color.Hex() + `"/>`)
				}
				b.WriteString(`</w:rPr>`)
			}
			b.WriteString(`<w:t xml:space="preserve">`)
			escape(&b, r.Text)
			b.WriteString(`</w:t></w:r>`)
		}
		b.WriteString(`</w:p>`)
	}
	b.WriteString(`<w:sectPr/></w:body></w:document>`)
	return b.Bytes()
}

func escape(b *bytes.Buffer, s string) {
	_ = xml.EscapeText(b, []byte(s))
}

func halfPoints(pt float64) int {
	return int(pt*2 + 0.5)
}

func twips(pt float64) int {
	return int(pt*20 + 0.5)
}

package document

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"
)

// Paragraph styles
const (
	StyleTitle = "Title"
	StyleCode  = "" // code paragraphs carry direct run formatting only
)

// MaxHeadingLevel is the deepest heading style written to styles.xml
const MaxHeadingLevel = 9

const (
	partContentTypes = "[Content_Types].xml"
	partRels         = "_rels/.rels"
	partDocumentRels = "word/_rels/document.xml.rels"
	partStyles       = "word/styles.xml"
	partDocument     = "word/document.xml"

	nsMain = "http://schemas.openxmlformats.org/wordprocessingml/2006/main"
	xmlHdr = `<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n"
)

// Paragraph is one block of the document
type Paragraph struct {
	Style string // StyleTitle, HeadingStyle(n) or StyleCode
	Text  string // lines joined with \n, tabs kept as \t
	Font  string // code paragraphs only
	Size  int    // font size in points, code paragraphs only
}

// HeadingStyle returns the style id for a heading level, clamped to 1..9
func HeadingStyle(level int) string {
	level = min(max(level, 1), MaxHeadingLevel)
	return "Heading" + strconv.Itoa(level)
}

// HeadingLevel reports the level of a heading style, or 0
func HeadingLevel(style string) int {
	n, err := strconv.Atoi(strings.TrimPrefix(style, "Heading"))
	if err != nil || !strings.HasPrefix(style, "Heading") || n < 1 || n > MaxHeadingLevel {
		return 0
	}
	return n
}

// Document is an in-memory Word document
type Document struct {
	paragraphs []Paragraph
}

// New creates an empty document
func New() *Document {
	return &Document{}
}

func (d *Document) AddTitle(text string) {
	d.paragraphs = append(d.paragraphs, Paragraph{Style: StyleTitle, Text: text})
}

func (d *Document) AddHeading(text string, level int) {
	d.paragraphs = append(d.paragraphs, Paragraph{Style: HeadingStyle(level), Text: text})
}

// AddCode appends a monospace paragraph. Lines become soft breaks inside the
// one paragraph.
func (d *Document) AddCode(text, font string, size int) {
	d.paragraphs = append(d.paragraphs, Paragraph{Style: StyleCode, Text: text, Font: font, Size: size})
}

// Paragraphs returns a copy of the document's paragraphs
func (d *Document) Paragraphs() []Paragraph {
	return append([]Paragraph(nil), d.paragraphs...)
}

func (d *Document) Len() int {
	return len(d.paragraphs)
}

// WriteTo encodes the document as a .docx package
func (d *Document) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	zw := zip.NewWriter(cw)

	parts := []struct {
		name string
		body []byte
	}{
		{partContentTypes, []byte(contentTypesXML)},
		{partRels, []byte(relsXML)},
		{partDocumentRels, []byte(documentRelsXML)},
		{partStyles, stylesXML()},
		{partDocument, d.documentXML()},
	}

	for _, p := range parts {
		fw, err := zw.Create(p.name)
		if err != nil {
			return cw.n, fmt.Errorf("create part %s: %w", p.name, err)
		}
		if _, err := fw.Write(p.body); err != nil {
			return cw.n, fmt.Errorf("write part %s: %w", p.name, err)
		}
	}

	if err := zw.Close(); err != nil {
		return cw.n, err
	}
	return cw.n, nil
}

func (d *Document) documentXML() []byte {
	var b bytes.Buffer
	b.WriteString(xmlHdr)
	b.WriteString(`<w:document xmlns:w="` + nsMain + `"><w:body>`)
	for _, p := range d.paragraphs {
		writeParagraph(&b, p)
	}
	b.WriteString(`<w:sectPr><w:pgSz w:w="11906" w:h="16838"/>` +
		`<w:pgMar w:top="1440" w:right="1440" w:bottom="1440" w:left="1440" w:header="708" w:footer="708" w:gutter="0"/>` +
		`</w:sectPr></w:body></w:document>`)
	return b.Bytes()
}

func writeParagraph(b *bytes.Buffer, p Paragraph) {
	b.WriteString("<w:p>")
	if p.Style != StyleCode {
		b.WriteString(`<w:pPr><w:pStyle w:val="` + p.Style + `"/></w:pPr>`)
	}

	b.WriteString("<w:r>")
	if p.Font != "" || p.Size > 0 {
		b.WriteString("<w:rPr>")
		if p.Font != "" {
			font := escape(p.Font)
			fmt.Fprintf(b, `<w:rFonts w:ascii="%s" w:hAnsi="%s" w:cs="%s"/>`, font, font, font)
		}
		if p.Size > 0 {
			// sizes are stored in half-points
			fmt.Fprintf(b, `<w:sz w:val="%d"/><w:szCs w:val="%d"/>`, p.Size*2, p.Size*2)
		}
		b.WriteString("</w:rPr>")
	}

	for i, line := range strings.Split(p.Text, "\n") {
		if i > 0 {
			b.WriteString("<w:br/>")
		}
		line = strings.TrimSuffix(line, "\r")
		for j, seg := range strings.Split(line, "\t") {
			if j > 0 {
				b.WriteString("<w:tab/>")
			}
			if seg != "" {
				b.WriteString(`<w:t xml:space="preserve">`)
				b.WriteString(escape(seg))
				b.WriteString("</w:t>")
			}
		}
	}
	b.WriteString("</w:r></w:p>")
}

func escape(s string) string {
	var b strings.Builder
	_ = xml.EscapeText(&b, []byte(s))
	return b.String()
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

const contentTypesXML = xmlHdr +
	`<Types xmlns="http://schemas.openxmlformats.org/package/2006/content-types">` +
	`<Default Extension="rels" ContentType="application/vnd.openxmlformats-package.relationships+xml"/>` +
	`<Default Extension="xml" ContentType="application/xml"/>` +
	`<Override PartName="/word/document.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.document.main+xml"/>` +
	`<Override PartName="/word/styles.xml" ContentType="application/vnd.openxmlformats-officedocument.wordprocessingml.styles+xml"/>` +
	`</Types>`

const relsXML = xmlHdr +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/officeDocument" Target="word/document.xml"/>` +
	`</Relationships>`

const documentRelsXML = xmlHdr +
	`<Relationships xmlns="http://schemas.openxmlformats.org/package/2006/relationships">` +
	`<Relationship Id="rId1" Type="http://schemas.openxmlformats.org/officeDocument/2006/relationships/styles" Target="styles.xml"/>` +
	`</Relationships>`

func stylesXML() []byte {
	var b bytes.Buffer
	b.WriteString(xmlHdr)
	b.WriteString(`<w:styles xmlns:w="` + nsMain + `">`)
	b.WriteString(`<w:style w:type="paragraph" w:default="1" w:styleId="Normal"><w:name w:val="Normal"/>` +
		`<w:pPr><w:spacing w:after="160"/></w:pPr></w:style>`)
	b.WriteString(`<w:style w:type="paragraph" w:styleId="Title"><w:name w:val="Title"/>` +
		`<w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>` +
		`<w:rPr><w:sz w:val="56"/><w:szCs w:val="56"/></w:rPr></w:style>`)
	for level := 1; level <= MaxHeadingLevel; level++ {
		size := max(36-4*(level-1), 22)
		fmt.Fprintf(&b, `<w:style w:type="paragraph" w:styleId="Heading%d"><w:name w:val="heading %d"/>`+
			`<w:basedOn w:val="Normal"/><w:next w:val="Normal"/><w:qFormat/>`+
			`<w:pPr><w:keepNext/><w:spacing w:before="240" w:after="80"/><w:outlineLvl w:val="%d"/></w:pPr>`+
			`<w:rPr><w:b/><w:sz w:val="%d"/><w:szCs w:val="%d"/></w:rPr></w:style>`,
			level, level, level-1, size, size)
	}
	b.WriteString(`</w:styles>`)
	return b.Bytes()
}

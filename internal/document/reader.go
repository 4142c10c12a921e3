package document

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zip"
)

// ErrNoDocumentPart indicates the package has no word/document.xml
var ErrNoDocumentPart = errors.New("not a word document: missing " + partDocument)

// ReadParagraphs opens a .docx file and returns its paragraphs
func ReadParagraphs(path string) ([]Paragraph, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer zr.Close()

	return readParagraphs(&zr.Reader)
}

// Read decodes the paragraphs of a .docx package held in r
func Read(r io.ReaderAt, size int64) ([]Paragraph, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, err
	}
	return readParagraphs(zr)
}

func readParagraphs(zr *zip.Reader) ([]Paragraph, error) {
	for _, f := range zr.File {
		if f.Name != partDocument {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return decodeBody(rc)
	}
	return nil, ErrNoDocumentPart
}

// decodeBody walks the token stream of document.xml. Only the elements this
// package writes are interpreted; anything else is skipped.
func decodeBody(r io.Reader) ([]Paragraph, error) {
	dec := xml.NewDecoder(r)

	var (
		paragraphs []Paragraph
		current    *Paragraph
		text       strings.Builder
		inText     bool
	)

	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("decode %s: %w", partDocument, err)
		}

		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "p":
				current = &Paragraph{}
				text.Reset()
			case "pStyle":
				if current != nil {
					current.Style = attr(t, "val")
				}
			case "rFonts":
				if current != nil && current.Font == "" {
					current.Font = attr(t, "ascii")
				}
			case "sz":
				if current != nil {
					if halfPoints, err := strconv.Atoi(attr(t, "val")); err == nil {
						current.Size = halfPoints / 2
					}
				}
			case "t":
				inText = true
			case "br":
				text.WriteByte('\n')
			case "tab":
				// w:tab inside w:pPr/w:tabs is a tab stop, not a character
				if current != nil && !isTabStop(t) {
					text.WriteByte('\t')
				}
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if current != nil {
					current.Text = text.String()
					paragraphs = append(paragraphs, *current)
					current = nil
				}
			}
		case xml.CharData:
			if inText {
				text.Write(t)
			}
		}
	}

	return paragraphs, nil
}

func attr(el xml.StartElement, local string) string {
	for _, a := range el.Attr {
		if a.Name.Local == local {
			return a.Value
		}
	}
	return ""
}

func isTabStop(el xml.StartElement) bool {
	return attr(el, "pos") != ""
}

// Headings returns the text of every heading paragraph, in order
func Headings(paragraphs []Paragraph) []string {
	var out []string
	for _, p := range paragraphs {
		if HeadingLevel(p.Style) > 0 {
			out = append(out, p.Text)
		}
	}
	return out
}

package converter

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
)

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeText turns raw file bytes into UTF-8 text. It never fails:
//   - a UTF-8 BOM is stripped
//   - UTF-16 with a BOM is transcoded
//   - any remaining invalid byte sequences are dropped
//
// Charset declarations inside the content are ignored; see DecodeFile.
func DecodeText(content []byte) string {
	return decode(content, false)
}

// DecodeFile decodes like DecodeText. For markup and stylesheet files
// (see DeclaresCharset) that are not valid UTF-8, a declared charset
// (HTML meta, CSS @charset) is honoured too. Other sources are never
// transcoded from a declaration, since a charset= literal in code says
// nothing about the file itself.
func DecodeFile(name string, content []byte) string {
	return decode(content, DeclaresCharset(name))
}

// DeclaresCharset reports whether files named like name may carry an
// in-band charset declaration
func DeclaresCharset(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".html", ".htm", ".xhtml", ".css":
		return true
	}
	return false
}

func decode(content []byte, sniff bool) string {
	if bytes.HasPrefix(content, bomUTF8) {
		content = content[len(bomUTF8):]
	}

	if bytes.HasPrefix(content, bomUTF16LE) || bytes.HasPrefix(content, bomUTF16BE) {
		dec := unicode.UTF16(unicode.LittleEndian, unicode.ExpectBOM).NewDecoder()
		if out, err := dec.Bytes(content); err == nil {
			return strings.ToValidUTF8(string(out), "")
		}
	}

	if utf8.Valid(content) {
		return string(content)
	}

	if sniff {
		if name := DetectEncoding(content); !isUTF8(name) {
			if e, err := GetEncoding(name); err == nil {
				if out, err := e.NewDecoder().Bytes(content); err == nil {
					return strings.ToValidUTF8(string(out), "")
				}
			}
		}
	}

	return strings.ToValidUTF8(string(content), "")
}

// DetectEncoding returns the charset declared by the content, falling back to
// golang.org/x/net/html/charset sniffing. Returns "utf-8" when nothing is declared.
func DetectEncoding(content []byte) string {
	head := string(content[:min(1024, len(content))])

	if enc := extractDeclaredCharset(head); enc != "" {
		return enc
	}

	if _, name, certain := charset.DetermineEncoding(content, ""); certain && name != "" {
		return name
	}

	return "utf-8"
}

// extractDeclaredCharset finds charset=... (HTML meta) or @charset "..." (CSS)
func extractDeclaredCharset(s string) string {
	s = strings.ToLower(s)

	idx := strings.Index(s, "charset=")
	offset := len("charset=")
	if idx == -1 {
		idx = strings.Index(s, "@charset ")
		offset = len("@charset ")
	}
	if idx == -1 {
		return ""
	}

	start := idx + offset
	if start < len(s) && (s[start] == '"' || s[start] == '\'') {
		start++
	}

	end := start
	for ; end < len(s); end++ {
		c := s[end]
		if c == '"' || c == '\'' || c == ';' || c == '>' || c == ' ' || c == '\n' {
			break
		}
	}

	if end > start {
		return strings.TrimSpace(s[start:end])
	}
	return ""
}

// GetEncoding returns the encoding for a charset name
func GetEncoding(charsetName string) (encoding.Encoding, error) {
	return htmlindex.Get(charsetName)
}

func isUTF8(name string) bool {
	return name == "utf-8" || name == "utf8"
}

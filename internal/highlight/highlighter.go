// Package highlight tokenises source files with chroma and recovers the plain
// code text from the highlighted markup.
package highlight

import (
	"bytes"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"

	"github.com/quantmind-br/codedoc-go/internal/domain"
)

// PlainText is the grammar used for extensions with no table entry
const PlainText = "plaintext"

// Lexers maps file extensions onto chroma lexer names
var Lexers = map[string]string{
	".py":   "python",
	".cpp":  "c++",
	".cc":   "c++",
	".hpp":  "c++",
	".c":    "c",
	".h":    "c",
	".java": "java",
	".js":   "javascript",
	".mjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "tsx",
	".html": "html",
	".htm":  "html",
	".css":  "css",
	".php":  "php",
	".go":   "go",
	".rs":   "rust",
	".rb":   "ruby",
	".sh":   "bash",
}

// Ensure Highlighter implements domain.Highlighter
var _ domain.Highlighter = (*Highlighter)(nil)

// Highlighter renders code to classed HTML and strips it back to text
type Highlighter struct {
	formatter *html.Formatter
	style     *chroma.Style
}

// New creates a Highlighter
func New() *Highlighter {
	return &Highlighter{
		formatter: html.New(html.WithClasses(true), html.TabWidth(4)),
		style:     styles.Get("github"),
	}
}

// LexerFor returns the lexer for filename. Unknown extensions, and names the
// chroma registry does not know, get the plain-text lexer.
func LexerFor(filename string) chroma.Lexer {
	name, ok := Lexers[strings.ToLower(filepath.Ext(filename))]
	if !ok {
		name = PlainText
	}
	if lexer := lexers.Get(name); lexer != nil {
		return lexer
	}
	if lexer := lexers.Get(PlainText); lexer != nil {
		return lexer
	}
	return lexers.Fallback
}

// Highlight tokenises code with the grammar for filename, formats it as HTML
// and extracts the text of the <pre> block
func (h *Highlighter) Highlight(filename, code string) (*domain.Highlighted, error) {
	lexer := chroma.Coalesce(LexerFor(filename))

	tokens, err := chroma.Tokenise(lexer, nil, code)
	if err != nil {
		return nil, fmt.Errorf("tokenise %s: %w", filename, err)
	}

	var buf bytes.Buffer
	if err := h.formatter.Format(&buf, h.style, chroma.Literator(tokens...)); err != nil {
		return nil, fmt.Errorf("format %s: %w", filename, err)
	}
	markup := buf.String()

	text, err := StripMarkup(markup)
	if err != nil {
		return nil, fmt.Errorf("strip markup %s: %w", filename, err)
	}

	return &domain.Highlighted{
		Lexer:  lexer.Config().Name,
		Markup: markup,
		Text:   text,
		Tokens: len(tokens),
	}, nil
}

// StripMarkup returns the text content of every <pre> element in markup with
// trailing newlines removed
func StripMarkup(markup string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	doc.Find("pre").Each(func(_ int, s *goquery.Selection) {
		sb.WriteString(s.Text())
	})

	return strings.TrimRight(sb.String(), "\r\n"), nil
}

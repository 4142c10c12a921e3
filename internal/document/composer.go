package document

import (
	"context"
	"fmt"
	"os"

	"github.com/quantmind-br/codedoc-go/internal/converter"
	"github.com/quantmind-br/codedoc-go/internal/domain"
	"github.com/quantmind-br/codedoc-go/internal/highlight"
	"github.com/quantmind-br/codedoc-go/internal/output"
	"github.com/quantmind-br/codedoc-go/internal/utils"
	"github.com/quantmind-br/codedoc-go/internal/walker"
)

// Defaults applied by NewComposer
const (
	DefaultTitle    = "Source Code Export"
	DefaultFont     = "Courier New"
	DefaultFontSize = 10
	FileHeadingLvl  = 2
)

// ComposerOptions contains options for the composer
type ComposerOptions struct {
	Title           string
	Font            string
	FontSize        int // points
	CheckpointEvery int // save after every N files, 0 saves only on demand
	Writer          *output.Writer
	Highlighter     domain.Highlighter
	Logger          *utils.Logger
}

// Composer appends one section per source file to a document
type Composer struct {
	doc             *Document
	font            string
	fontSize        int
	checkpointEvery int
	writer          *output.Writer
	highlighter     domain.Highlighter
	logger          *utils.Logger
	files           []string
	saved           int // len(files) at the last save
}

// NewComposer creates a composer whose document starts with the title
func NewComposer(opts ComposerOptions) *Composer {
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	if opts.Font == "" {
		opts.Font = DefaultFont
	}
	if opts.FontSize <= 0 {
		opts.FontSize = DefaultFontSize
	}
	if opts.Highlighter == nil {
		opts.Highlighter = highlight.New()
	}
	if opts.Logger == nil {
		opts.Logger = utils.NewNopLogger()
	}

	doc := New()
	doc.AddTitle(opts.Title)

	return &Composer{
		doc:             doc,
		font:            opts.Font,
		fontSize:        opts.FontSize,
		checkpointEvery: max(opts.CheckpointEvery, 0),
		writer:          opts.Writer,
		highlighter:     opts.Highlighter,
		logger:          opts.Logger,
	}
}

// AddFile reads, decodes and highlights entry and appends a heading with its
// relative path followed by its code. Undecodable bytes are dropped rather
// than reported.
func (c *Composer) AddFile(ctx context.Context, entry walker.Entry) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	content, err := os.ReadFile(entry.Path)
	if err != nil {
		return &domain.ComposeError{Path: entry.RelPath, Err: err}
	}

	hl, err := c.highlighter.Highlight(entry.RelPath, converter.DecodeFile(entry.RelPath, content))
	if err != nil {
		return &domain.ComposeError{Path: entry.RelPath, Err: err}
	}

	c.doc.AddHeading(entry.RelPath, FileHeadingLvl)
	c.doc.AddCode(hl.Text, c.font, c.fontSize)
	c.files = append(c.files, entry.RelPath)

	c.logger.Debug().
		Str("file", entry.RelPath).
		Str("lexer", hl.Lexer).
		Int("tokens", hl.Tokens).
		Msg("Added file")

	if c.checkpointEvery > 0 && len(c.files)%c.checkpointEvery == 0 {
		if err := c.Save(); err != nil {
			return fmt.Errorf("checkpoint after %s: %w", entry.RelPath, err)
		}
		c.logger.Debug().Int("files", len(c.files)).Msg("Checkpoint saved")
	}

	return nil
}

// Save writes the document in its current state
func (c *Composer) Save() error {
	if c.writer == nil {
		return domain.NewValidationError("writer", "composer has no output writer")
	}
	if err := c.writer.Write(c.doc); err != nil {
		return fmt.Errorf("save document: %w", err)
	}
	c.saved = len(c.files)
	return nil
}

// Document returns the document being composed
func (c *Composer) Document() *Document {
	return c.doc
}

// Files returns the relative paths added so far, in order
func (c *Composer) Files() []string {
	return append([]string(nil), c.files...)
}

// Len returns the number of files added
func (c *Composer) Len() int {
	return len(c.files)
}

// Last returns the relative path of the most recently added file
func (c *Composer) Last() string {
	if len(c.files) == 0 {
		return ""
	}
	return c.files[len(c.files)-1]
}

// Unsaved reports how many files were added since the last save
func (c *Composer) Unsaved() int {
	return len(c.files) - c.saved
}

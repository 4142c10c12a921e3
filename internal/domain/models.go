package domain

import (
	"os"
)

// Acquisition methods
const (
	MethodLocal   = "local"
	MethodArchive = "archive"
	MethodClone   = "clone"
)

// Checkout is a source tree ready to be walked.
//
// Remote checkouts own Dir, a temporary directory that Close removes unless
// Keep is set. Local checkouts have an empty Dir and Close is a no-op.
type Checkout struct {
	Root       string // directory the walker starts from
	Dir        string // temporary directory owning Root, empty for local sources
	ArchiveURL string
	Ref        string
	Method     string
	Keep       bool
}

// Close releases the temporary directory backing the checkout
func (c *Checkout) Close() error {
	if c == nil || c.Dir == "" || c.Keep {
		return nil
	}
	return os.RemoveAll(c.Dir)
}

// Highlighted is the result of a highlighting pass over one file
type Highlighted struct {
	Lexer  string // grammar the file was tokenised with
	Markup string // highlighted HTML
	Text   string // code with all markup stripped
	Tokens int
}

// Summary describes a finished export
type Summary struct {
	Source   string   `json:"source" yaml:"source"`
	Root     string   `json:"root" yaml:"root"`
	Output   string   `json:"output" yaml:"output"`
	Method   string   `json:"method" yaml:"method"`
	Files    []string `json:"files" yaml:"files"`
	Partial  bool     `json:"partial" yaml:"partial"`
	FailedAt string   `json:"failed_at,omitempty" yaml:"failed_at,omitempty"`
}

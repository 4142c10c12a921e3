// Package walker enumerates the source files of a checkout that belong in the
// exported document.
package walker

import (
	"fmt"
	"io/fs"
	"iter"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quantmind-br/codedoc-go/internal/utils"
)

// DefaultExtensions is the allow-list used when Options.Extensions is empty
var DefaultExtensions = []string{
	".py", ".cpp", ".c", ".java", ".js", ".ts", ".html", ".css", ".php",
}

// Entry is one file selected for export
type Entry struct {
	Path    string // absolute or root-joined path on disk
	RelPath string // slash-separated path relative to the walk root
}

// Options configures a Walker
type Options struct {
	Extensions  []string
	ExcludeDirs []string
	Sort        bool
	Logger      *utils.Logger
}

// Walker finds files by extension under a root directory
type Walker struct {
	extensions  map[string]bool
	excludeDirs map[string]bool
	sort        bool
	logger      *utils.Logger
}

// New creates a Walker
func New(opts Options) *Walker {
	exts := opts.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}

	w := &Walker{
		extensions:  make(map[string]bool, len(exts)),
		excludeDirs: make(map[string]bool, len(opts.ExcludeDirs)),
		sort:        opts.Sort,
		logger:      opts.Logger,
	}
	for _, ext := range exts {
		w.extensions[strings.ToLower(ext)] = true
	}
	for _, dir := range opts.ExcludeDirs {
		w.excludeDirs[dir] = true
	}
	return w
}

// Matches reports whether a file name is on the extension allow-list
func (w *Walker) Matches(name string) bool {
	return w.extensions[strings.ToLower(filepath.Ext(name))]
}

// Files lazily yields matching files under root in filepath.WalkDir order
// (lexical within each directory). Symlinks and hidden files are skipped.
// A traversal error is yielded once and ends the sequence. When root is a
// regular file it is yielded alone, relative path being its base name.
func (w *Walker) Files(root string) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		stopped := false

		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}

			if d.IsDir() {
				if path != root && w.excludeDirs[d.Name()] {
					if w.logger != nil {
						w.logger.Debug().Str("dir", path).Msg("Skipping excluded directory")
					}
					return fs.SkipDir
				}
				return nil
			}

			if d.Type()&fs.ModeSymlink != 0 || !d.Type().IsRegular() {
				return nil
			}
			if utils.IsHidden(d.Name()) || !w.Matches(d.Name()) {
				return nil
			}

			// a file root is its own single entry
			rel := d.Name()
			if path != root {
				if rel, err = filepath.Rel(root, path); err != nil {
					return err
				}
			}

			if !yield(Entry{Path: path, RelPath: filepath.ToSlash(rel)}, nil) {
				stopped = true
				return fs.SkipAll
			}
			return nil
		})

		if err != nil && !stopped {
			yield(Entry{}, fmt.Errorf("walk %s: %w", root, err))
		}
	}
}

// Collect gathers every matching file, sorting by relative path when the
// walker was configured to
func (w *Walker) Collect(root string) ([]Entry, error) {
	var entries []Entry
	for entry, err := range w.Files(root) {
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if w.sort {
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].RelPath < entries[j].RelPath
		})
	}

	if w.logger != nil {
		w.logger.Debug().Int("count", len(entries)).Str("root", root).Msg("Collected source files")
	}
	return entries, nil
}

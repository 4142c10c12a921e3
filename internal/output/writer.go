package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/quantmind-br/codedoc-go/internal/domain"
	"github.com/quantmind-br/codedoc-go/internal/utils"
)

// Writer persists the exported document and its optional JSON summary
type Writer struct {
	path        string
	jsonSummary bool
	dryRun      bool
}

// WriterOptions contains options for the writer
type WriterOptions struct {
	Path        string
	JSONSummary bool // also write <name>.json next to the document, see SummaryPath
	DryRun      bool
}

// NewWriter creates a new output writer
func NewWriter(opts WriterOptions) *Writer {
	return &Writer{
		path:        opts.Path,
		jsonSummary: opts.JSONSummary,
		dryRun:      opts.DryRun,
	}
}

// Write encodes src to the output path, replacing any existing file. The
// previous file stays intact until the new one is complete.
func (w *Writer) Write(src io.WriterTo) error {
	if w.dryRun {
		return nil
	}
	if w.path == "" {
		return domain.NewValidationError("output", "output path is empty")
	}

	return utils.WriteFileAtomic(w.path, func(f *os.File) error {
		_, err := src.WriteTo(f)
		return err
	})
}

// WriteSummary writes the export summary as indented JSON when enabled
func (w *Writer) WriteSummary(summary *domain.Summary) error {
	if w.dryRun || !w.jsonSummary {
		return nil
	}

	data, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal summary: %w", err)
	}

	return utils.WriteFileAtomic(w.SummaryPath(), func(f *os.File) error {
		_, err := f.Write(append(data, '\n'))
		return err
	})
}

// Path returns the document path
func (w *Writer) Path() string {
	return w.path
}

// SummaryPath returns the path of the JSON summary. It never equals the
// document path: an output already ending in .json gets <name>.summary.json.
func (w *Writer) SummaryPath() string {
	ext := filepath.Ext(w.path)
	base := strings.TrimSuffix(w.path, ext)
	if strings.EqualFold(ext, ".json") {
		return base + ".summary.json"
	}
	return base + ".json"
}

// Exists reports whether the document has been written
func (w *Writer) Exists() bool {
	_, err := os.Stat(w.path)
	return err == nil
}

// Size returns the size of the written document in bytes
func (w *Writer) Size() (int64, error) {
	info, err := os.Stat(w.path)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

func (w *Writer) IsDryRun() bool {
	return w.dryRun
}

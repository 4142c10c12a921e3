package utils

import (
	"io"
	"os"

	"github.com/schollz/progressbar/v3"
)

// Standard progress bar descriptions
const (
	DescDownloading = "Downloading"
	DescExtracting  = "Extracting"
	DescComposing   = "Composing"
)

// ProgressOptions controls how a progress bar renders
type ProgressOptions struct {
	Output  io.Writer // defaults to stderr
	Enabled bool
}

// NewProgressBar creates a consistently styled progress bar.
//
// A negative total switches to spinner mode, used while the size of a download
// is unknown. A disabled bar still accepts Add calls but renders nothing.
//
//	bar := utils.NewProgressBar(len(files), utils.DescComposing, opts)
//	defer bar.Finish()
func NewProgressBar(total int, description string, opts ProgressOptions) *progressbar.ProgressBar {
	var out io.Writer = os.Stderr
	if opts.Output != nil {
		out = opts.Output
	}

	options := []progressbar.Option{
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(out),
		progressbar.OptionShowCount(),
		progressbar.OptionSetVisibility(opts.Enabled),
		progressbar.OptionClearOnFinish(),
	}

	if total < 0 {
		options = append(options,
			progressbar.OptionSpinnerType(14),
			progressbar.OptionSetRenderBlankState(true),
		)
	} else {
		options = append(options, progressbar.OptionShowIts())
	}

	return progressbar.NewOptions(total, options...)
}

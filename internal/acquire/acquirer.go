package acquire

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/quantmind-br/codedoc-go/internal/domain"
	gitclient "github.com/quantmind-br/codedoc-go/internal/git"
	"github.com/quantmind-br/codedoc-go/internal/utils"
)

// Fetcher fetches a parsed repository into a directory
type Fetcher interface {
	Fetch(ctx context.Context, ref *RepoRef, destDir string) (*FetchResult, error)
	Name() string
}

// Ensure Acquirer implements domain.Acquirer
var _ domain.Acquirer = (*Acquirer)(nil)

// Acquirer turns repository URLs into checkouts backed by a temporary
// directory
type Acquirer struct {
	defaultRef string
	keepTemp   bool
	tempBase   string
	fetcher    Fetcher
	logger     *utils.Logger
}

// Options contains options for creating an Acquirer
type Options struct {
	DefaultRef string
	Method     string // domain.MethodArchive (default) or domain.MethodClone
	KeepTemp   bool
	TempBase   string // parent of the temporary directory, os.TempDir() when empty

	HTTPClient *http.Client
	Timeout    time.Duration
	MaxRetries int
	UserAgent  string
	Cache      domain.Cache
	CacheTTL   time.Duration
	GitClient  gitclient.Client
	Progress   utils.ProgressOptions
	Logger     *utils.Logger
}

// New creates an Acquirer
func New(opts Options) *Acquirer {
	logger := opts.Logger
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	if opts.DefaultRef == "" {
		opts.DefaultRef = "main"
	}

	var fetcher Fetcher
	switch opts.Method {
	case domain.MethodClone:
		var progress io.Writer
		if opts.Progress.Enabled {
			progress = opts.Progress.Output
			if progress == nil {
				progress = os.Stderr
			}
		}
		fetcher = NewCloneFetcher(CloneFetcherOptions{
			Client:   opts.GitClient,
			Progress: progress,
			Logger:   logger,
		})
	default:
		client := opts.HTTPClient
		if client == nil {
			client = newHTTPClient(opts.Timeout)
		}
		fetcher = NewArchiveFetcher(ArchiveFetcherOptions{
			HTTPClient: client,
			Cache:      opts.Cache,
			CacheTTL:   opts.CacheTTL,
			Retrier:    NewRetrier(RetrierOptions{MaxRetries: opts.MaxRetries}),
			UserAgent:  opts.UserAgent,
			Progress:   opts.Progress,
			Logger:     logger,
		})
	}

	return &Acquirer{
		defaultRef: opts.DefaultRef,
		keepTemp:   opts.KeepTemp,
		tempBase:   opts.TempBase,
		fetcher:    fetcher,
		logger:     logger,
	}
}

// Acquire parses repoURL, fetches it into a fresh temporary directory and
// returns the checkout. The URL is validated before any directory is created
// or request sent. On failure the temporary directory is removed unless
// KeepTemp was requested.
func (a *Acquirer) Acquire(ctx context.Context, repoURL string) (*domain.Checkout, error) {
	ref, err := ParseRepoURL(repoURL, a.defaultRef)
	if err != nil {
		return nil, err
	}

	dir, err := os.MkdirTemp(a.tempBase, "codedoc-*")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp dir: %w", err)
	}

	checkout := &domain.Checkout{
		Dir:    dir,
		Keep:   a.keepTemp,
		Method: a.fetcher.Name(),
		Ref:    ref.Ref,
	}

	a.logger.Info().
		Str("platform", string(ref.Platform)).
		Str("repo", ref.Owner+"/"+ref.Repo).
		Str("ref", ref.Ref).
		Str("method", a.fetcher.Name()).
		Msg("Acquiring repository")

	result, err := a.fetcher.Fetch(ctx, ref, dir)
	if err != nil {
		if cerr := checkout.Close(); cerr != nil {
			a.logger.Warn().Err(cerr).Str("dir", dir).Msg("Failed to remove temp dir")
		}
		return nil, fmt.Errorf("failed to acquire repository: %w", err)
	}

	checkout.Root = result.Root
	checkout.Ref = result.Ref
	checkout.ArchiveURL = result.ArchiveURL

	a.logger.Info().
		Str("root", result.Root).
		Bool("from_cache", result.FromCache).
		Bool("keep_temp", a.keepTemp).
		Msg("Repository acquired")

	return checkout, nil
}

func newHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return fmt.Errorf("too many redirects")
			}
			return nil
		},
	}
}

package acquire

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/quantmind-br/codedoc-go/internal/cache"
	"github.com/quantmind-br/codedoc-go/internal/domain"
	"github.com/quantmind-br/codedoc-go/internal/utils"
)

// ArchiveFetcher downloads and unpacks forge zip archives
type ArchiveFetcher struct {
	httpClient *http.Client
	cache      domain.Cache
	cacheTTL   time.Duration
	retrier    *Retrier
	userAgent  string
	progress   utils.ProgressOptions
	logger     *utils.Logger
}

// ArchiveFetcherOptions contains options for the archive fetcher
type ArchiveFetcherOptions struct {
	HTTPClient *http.Client
	Cache      domain.Cache // optional
	CacheTTL   time.Duration
	Retrier    *Retrier
	UserAgent  string
	Progress   utils.ProgressOptions
	Logger     *utils.Logger
}

// NewArchiveFetcher creates an ArchiveFetcher
func NewArchiveFetcher(opts ArchiveFetcherOptions) *ArchiveFetcher {
	client := opts.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	retrier := opts.Retrier
	if retrier == nil {
		retrier = NewRetrier(RetrierOptions{})
	}
	return &ArchiveFetcher{
		httpClient: client,
		cache:      opts.Cache,
		cacheTTL:   opts.CacheTTL,
		retrier:    retrier,
		userAgent:  opts.UserAgent,
		progress:   opts.Progress,
		logger:     opts.Logger,
	}
}

func (f *ArchiveFetcher) Name() string {
	return domain.MethodArchive
}

// Fetch downloads the archive for ref into destDir, extracts it there, deletes
// the archive file and locates the repository root
func (f *ArchiveFetcher) Fetch(ctx context.Context, ref *RepoRef, destDir string) (*FetchResult, error) {
	archiveURL := ref.ArchiveURL()
	archivePath := filepath.Join(destDir, ArchiveFileName)

	if f.logger != nil {
		f.logger.Debug().Str("archive_url", archiveURL).Msg("Downloading archive")
	}

	fromCache, err := f.Download(ctx, archiveURL, archivePath)
	if err != nil {
		return nil, err
	}

	if err := Extract(archivePath, destDir); err != nil {
		return nil, fmt.Errorf("extract %s: %w", archiveURL, err)
	}
	if err := os.Remove(archivePath); err != nil {
		return nil, fmt.Errorf("remove archive: %w", err)
	}

	root, err := FindRoot(destDir)
	if err != nil {
		return nil, err
	}

	return &FetchResult{
		Root:       root,
		Ref:        ref.Ref,
		ArchiveURL: archiveURL,
		Method:     domain.MethodArchive,
		FromCache:  fromCache,
	}, nil
}

// Download stores the body of archiveURL at dest, serving it from the cache
// when possible. It reports whether the cache was hit.
func (f *ArchiveFetcher) Download(ctx context.Context, archiveURL, dest string) (bool, error) {
	key := cache.ArchiveKey(archiveURL)

	if f.cache != nil {
		data, err := f.cache.Get(ctx, key)
		switch {
		case err == nil:
			if f.logger != nil {
				f.logger.Debug().Str("archive_url", archiveURL).Int("bytes", len(data)).Msg("Archive cache hit")
			}
			return true, os.WriteFile(dest, data, 0644)
		case !errors.Is(err, domain.ErrCacheMiss) && f.logger != nil:
			f.logger.Warn().Err(err).Msg("Archive cache read failed")
		}
	}

	err := f.retrier.Retry(ctx, func() error {
		return f.downloadOnce(ctx, archiveURL, dest)
	})
	if err != nil {
		os.Remove(dest)
		return false, err
	}

	if f.cache != nil {
		data, err := os.ReadFile(dest)
		if err == nil {
			err = f.cache.Set(ctx, key, data, f.cacheTTL)
		}
		if err != nil && f.logger != nil {
			f.logger.Warn().Err(err).Msg("Archive cache write failed")
		}
	}

	return false, nil
}

func (f *ArchiveFetcher) downloadOnce(ctx context.Context, archiveURL, dest string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, archiveURL, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidRepoURL, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.NewFetchError(archiveURL, 0, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if f.logger != nil {
			f.logger.Debug().Int("status", resp.StatusCode).Str("archive_url", archiveURL).Msg("Download rejected")
		}
		return domain.NewFetchError(archiveURL, resp.StatusCode, domain.ErrDownloadFailed)
	}

	file, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create archive file: %w", err)
	}

	bar := utils.NewProgressBar(int(resp.ContentLength), utils.DescDownloading, f.progress)
	_, err = io.Copy(io.MultiWriter(file, bar), resp.Body)
	_ = bar.Finish()
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return domain.NewFetchError(archiveURL, 0, fmt.Errorf("read body: %w", err))
	}

	return nil
}

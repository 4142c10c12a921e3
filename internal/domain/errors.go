package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	// ErrUnsupportedHost indicates the repository URL is not on a supported forge
	ErrUnsupportedHost = errors.New("only GitHub and GitLab repositories are supported")

	// ErrInvalidRepoURL indicates the URL has no owner/repository path
	ErrInvalidRepoURL = errors.New("invalid repository URL")

	// ErrDownloadFailed indicates the archive could not be downloaded
	ErrDownloadFailed = errors.New("failed to download repository")

	// ErrUnsupportedArchive indicates the archive format could not be recognized
	ErrUnsupportedArchive = errors.New("unsupported archive format")

	// ErrUnsafeArchiveEntry indicates an archive entry would escape the extraction directory
	ErrUnsafeArchiveEntry = errors.New("archive entry escapes destination")

	// ErrCacheMiss indicates a cache miss
	ErrCacheMiss = errors.New("cache miss")

	// ErrNoFiles indicates the walk found nothing to export
	ErrNoFiles = errors.New("no matching source files found")
)

// FetchError represents a failed archive download
type FetchError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("fetch error for %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch error for %s: %v", e.URL, e.Err)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// NewFetchError creates a new FetchError
func NewFetchError(url string, statusCode int, err error) *FetchError {
	return &FetchError{
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

// IsRetryable reports whether a download error is worth another attempt
func IsRetryable(err error) bool {
	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		return false
	}
	switch fetchErr.StatusCode {
	case 0, 429, 502, 503, 504:
		// status 0 means the request itself failed (connection reset, DNS)
		return true
	}
	return false
}

// StatusCode extracts the HTTP status carried by err, or 0
func StatusCode(err error) int {
	var fetchErr *FetchError
	if errors.As(err, &fetchErr) {
		return fetchErr.StatusCode
	}
	return 0
}

// ValidationError represents an invalid configuration value
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for %s: %s", e.Field, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Message: message,
	}
}

// ComposeError reports the file a composition failed on
type ComposeError struct {
	Path string
	Err  error
}

func (e *ComposeError) Error() string {
	return fmt.Sprintf("compose %s: %v", e.Path, e.Err)
}

func (e *ComposeError) Unwrap() error {
	return e.Err
}

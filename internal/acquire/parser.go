package acquire

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/quantmind-br/codedoc-go/internal/domain"
)

const (
	treeMarker = "/tree/"
	blobMarker = "/blob/"
)

// ParseRepoURL parses a GitHub or GitLab repository URL.
//
// Ref resolution, in priority order:
//   - /tree/<ref>: everything after the marker is the ref
//   - /blob/<ref>/<path>: the URL is truncated and defaultRef is used; the
//     ref in a blob URL is ignored
//   - bare repository URL: defaultRef
//
// Any other host fails with domain.ErrUnsupportedHost.
func ParseRepoURL(rawURL, defaultRef string) (*RepoRef, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidRepoURL, err)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	platform, ok := Hosts[host]
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedHost, u.Host)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: unsupported scheme %q", domain.ErrInvalidRepoURL, u.Scheme)
	}

	path := strings.TrimRight(u.Path, "/")
	ref := defaultRef
	refInURL := false

	if i := strings.Index(path, treeMarker); i >= 0 {
		ref = path[i+len(treeMarker):]
		path = path[:i]
		refInURL = true
	} else if i := strings.Index(path, blobMarker); i >= 0 {
		path = path[:i]
	}

	// GitLab routes look like /group/repo/-/tree/<ref>
	path = strings.TrimSuffix(path, "/-")
	if i := strings.Index(path, "/-/"); i >= 0 {
		path = path[:i]
	}
	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")

	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return nil, fmt.Errorf("%w: missing owner/repository in %q", domain.ErrInvalidRepoURL, rawURL)
	}

	var owner, repo string
	switch platform {
	case PlatformGitLab:
		owner = strings.Join(parts[:len(parts)-1], "/")
		repo = parts[len(parts)-1]
	default:
		owner, repo = parts[0], parts[1]
	}

	if ref == "" {
		return nil, fmt.Errorf("%w: empty ref in %q", domain.ErrInvalidRepoURL, rawURL)
	}

	return &RepoRef{
		Platform: platform,
		Scheme:   scheme,
		Host:     host,
		Owner:    owner,
		Repo:     repo,
		Ref:      ref,
		RefInURL: refInURL,
		URL:      rawURL,
	}, nil
}

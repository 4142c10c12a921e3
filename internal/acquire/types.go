package acquire

import (
	"fmt"
	"strings"
)

// Platform represents a git hosting platform
type Platform string

const (
	PlatformGitHub Platform = "github"
	PlatformGitLab Platform = "gitlab"
)

// Hosts maps supported forge hostnames onto platforms
var Hosts = map[string]Platform{
	"github.com": PlatformGitHub,
	"gitlab.com": PlatformGitLab,
}

// ArchiveFileName is the fixed name the downloaded archive is stored under
const ArchiveFileName = "repo.zip"

// RepoRef is a parsed repository URL
type RepoRef struct {
	Platform Platform
	Scheme   string
	Host     string
	Owner    string // GitLab owners may contain subgroup slashes
	Repo     string
	Ref      string
	RefInURL bool   // Ref came from a /tree/<ref> segment
	URL      string // original URL
}

// RepoURL returns the canonical web URL of the repository
func (r *RepoRef) RepoURL() string {
	return fmt.Sprintf("%s://%s/%s/%s", r.Scheme, r.Host, r.Owner, r.Repo)
}

// CloneURL returns the HTTPS clone URL
func (r *RepoRef) CloneURL() string {
	return r.RepoURL() + ".git"
}

// ArchiveURL returns the forge's zip download URL for Ref
func (r *RepoRef) ArchiveURL() string {
	switch r.Platform {
	case PlatformGitLab:
		return fmt.Sprintf("%s/-/archive/%s/%s-%s.zip",
			r.RepoURL(), r.Ref, r.Repo, strings.ReplaceAll(r.Ref, "/", "-"))
	default:
		return fmt.Sprintf("%s/archive/refs/heads/%s.zip", r.RepoURL(), r.Ref)
	}
}

// FetchResult describes a fetched tree
type FetchResult struct {
	Root       string // repository root directory
	Ref        string
	ArchiveURL string
	Method     string
	FromCache  bool
}

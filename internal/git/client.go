package git

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
)

// RealClient implements Client using go-git
type RealClient struct{}

// NewClient creates a new RealClient
func NewClient() *RealClient {
	return &RealClient{}
}

// PlainCloneContext calls git.PlainCloneContext
func (c *RealClient) PlainCloneContext(ctx context.Context, path string, isBare bool, o *git.CloneOptions) (*git.Repository, error) {
	return git.PlainCloneContext(ctx, path, isBare, o)
}

// ShallowBranchOptions builds clone options for a depth-1 clone of a single
// branch
func ShallowBranchOptions(url, branch string, progress io.Writer) *git.CloneOptions {
	opts := &git.CloneOptions{
		URL:          url,
		Depth:        1,
		SingleBranch: true,
		Progress:     progress,
	}
	if branch != "" {
		opts.ReferenceName = plumbing.NewBranchReferenceName(branch)
	}
	return opts
}

// HeadBranch returns the short branch name HEAD points at, or fallback
func HeadBranch(repo *git.Repository, fallback string) string {
	if repo == nil {
		return fallback
	}
	head, err := repo.Head()
	if err != nil || !head.Name().IsBranch() {
		return fallback
	}
	return head.Name().Short()
}

// StripGitDir removes the .git directory below dir, leaving only the
// working tree
func StripGitDir(dir string) error {
	return os.RemoveAll(filepath.Join(dir, git.GitDirName))
}

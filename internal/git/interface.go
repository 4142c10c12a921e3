package git

import (
	"context"

	"github.com/go-git/go-git/v5"
)

// Client is the subset of go-git used to clone repositories
type Client interface {
	PlainCloneContext(ctx context.Context, path string, isBare bool, o *git.CloneOptions) (*git.Repository, error)
}

package acquire

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/quantmind-br/codedoc-go/internal/domain"
	gitclient "github.com/quantmind-br/codedoc-go/internal/git"
	"github.com/quantmind-br/codedoc-go/internal/utils"
)

// CloneFetcher shallow-clones a single branch with go-git
type CloneFetcher struct {
	client   gitclient.Client
	progress io.Writer
	logger   *utils.Logger
}

// CloneFetcherOptions contains options for the clone fetcher
type CloneFetcherOptions struct {
	Client   gitclient.Client // defaults to go-git
	Progress io.Writer        // clone progress sideband, nil to discard
	Logger   *utils.Logger
}

// NewCloneFetcher creates a CloneFetcher
func NewCloneFetcher(opts CloneFetcherOptions) *CloneFetcher {
	client := opts.Client
	if client == nil {
		client = gitclient.NewClient()
	}
	return &CloneFetcher{client: client, progress: opts.Progress, logger: opts.Logger}
}

func (f *CloneFetcher) Name() string {
	return domain.MethodClone
}

// Fetch clones ref into destDir/<repo> and drops the .git directory so only
// the working tree is exported
func (f *CloneFetcher) Fetch(ctx context.Context, ref *RepoRef, destDir string) (*FetchResult, error) {
	root := filepath.Join(destDir, ref.Repo)
	cloneURL := ref.CloneURL()

	if f.logger != nil {
		f.logger.Info().Str("url", cloneURL).Str("ref", ref.Ref).Msg("Cloning repository")
	}

	repo, err := f.client.PlainCloneContext(ctx, root, false,
		gitclient.ShallowBranchOptions(cloneURL, ref.Ref, f.progress))
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("clone %s: %w", cloneURL, err)
	}

	branch := gitclient.HeadBranch(repo, ref.Ref)

	if err := gitclient.StripGitDir(root); err != nil {
		return nil, fmt.Errorf("remove .git: %w", err)
	}

	return &FetchResult{
		Root:   root,
		Ref:    branch,
		Method: domain.MethodClone,
	}, nil
}

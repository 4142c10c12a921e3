package app

import (
	"context"
	"strings"

	"github.com/quantmind-br/codedoc-go/internal/domain"
	"github.com/quantmind-br/codedoc-go/internal/utils"
)

// SourceKind classifies a repository reference
type SourceKind string

const (
	SourceLocal  SourceKind = "local"
	SourceRemote SourceKind = "remote"
)

// IsRemote reports whether source starts with "http" in any case. Anything
// else, including "ftp://" or "git@" forms, is treated as a local path.
func IsRemote(source string) bool {
	return len(source) >= 4 && strings.EqualFold(source[:4], "http")
}

// DetectSource classifies source
func DetectSource(source string) SourceKind {
	if IsRemote(source) {
		return SourceRemote
	}
	return SourceLocal
}

// Resolver turns a path or URL into a checkout to walk
type Resolver struct {
	acquirer domain.Acquirer
	logger   *utils.Logger
}

// NewResolver creates a Resolver that hands remote sources to acquirer
func NewResolver(acquirer domain.Acquirer, logger *utils.Logger) *Resolver {
	if logger == nil {
		logger = utils.NewNopLogger()
	}
	return &Resolver{acquirer: acquirer, logger: logger}
}

// Resolve returns the checkout for source. Local paths are used unchanged
// and are not checked for existence here.
func (r *Resolver) Resolve(ctx context.Context, source string) (*domain.Checkout, error) {
	kind := DetectSource(source)
	r.logger.Debug().Str("source", source).Str("kind", string(kind)).Msg("Resolving source")

	if kind == SourceLocal {
		return &domain.Checkout{Root: source, Method: domain.MethodLocal}, nil
	}
	return r.acquirer.Acquire(ctx, source)
}

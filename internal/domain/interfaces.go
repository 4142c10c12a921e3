package domain

import (
	"context"
	"time"
)

// Acquirer materializes a remote repository on local disk
type Acquirer interface {
	Acquire(ctx context.Context, repoURL string) (*Checkout, error)
}

// Highlighter runs source text through a lexical highlighting pass
type Highlighter interface {
	Highlight(filename, code string) (*Highlighted, error)
}

// Cache stores downloaded archives
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Has(ctx context.Context, key string) bool
	Delete(ctx context.Context, key string) error
	Close() error
}

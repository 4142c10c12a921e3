// Package acquire materializes a remote GitHub or GitLab repository on local
// disk.
//
// Architecture:
//   - Parser: URL parsing, platform detection and archive URL derivation
//   - ArchiveFetcher: HTTP zip download, extraction and root discovery
//   - CloneFetcher: go-git shallow clone, used when method is "clone"
//   - Acquirer: owns the temporary directory and picks the fetcher
//
// Usage:
//
//	a := acquire.New(acquire.Options{DefaultRef: "main"})
//	checkout, err := a.Acquire(ctx, "https://github.com/org/repo/tree/dev")
//	if err != nil {
//	    return err
//	}
//	defer checkout.Close()
package acquire

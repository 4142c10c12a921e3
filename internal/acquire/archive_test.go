package acquire

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/quantmind-br/codedoc-go/internal/cache"
	"github.com/quantmind-br/codedoc-go/internal/domain"
	"github.com/quantmind-br/codedoc-go/internal/mocks"
)

func serveArchive(t *testing.T, data []byte, hits *int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(hits, 1)
		w.Header().Set("Content-Type", "application/zip")
		_, _ = w.Write(data)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func mustParse(t *testing.T, raw string) *RepoRef {
	t.Helper()
	ref, err := ParseRepoURL(raw, "main")
	require.NoError(t, err)
	return ref
}

func TestArchiveFetcher_Fetch(t *testing.T) {
	var hits int32
	srv := serveArchive(t, zipArchive(t, map[string]string{
		"repo-dev/a.py": "print('a')\n",
	}), &hits)
	client, rt := forgeClient(t, srv)

	f := NewArchiveFetcher(ArchiveFetcherOptions{HTTPClient: client})
	dest := t.TempDir()

	result, err := f.Fetch(context.Background(), mustParse(t, "https://github.com/org/repo/tree/dev"), dest)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dest, "repo-dev"), result.Root)
	assert.Equal(t, "dev", result.Ref)
	assert.Equal(t, "https://github.com/org/repo/archive/refs/heads/dev.zip", result.ArchiveURL)
	assert.Equal(t, domain.MethodArchive, result.Method)
	assert.False(t, result.FromCache)
	assert.Equal(t, []string{"github.com/org/repo/archive/refs/heads/dev.zip"}, rt.paths)

	assert.FileExists(t, filepath.Join(result.Root, "a.py"))
	assert.NoFileExists(t, filepath.Join(dest, ArchiveFileName))
}

func TestArchiveFetcher_Fetch_NotFound(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()
	client, _ := forgeClient(t, srv)

	f := NewArchiveFetcher(ArchiveFetcherOptions{HTTPClient: client})
	dest := t.TempDir()

	_, err := f.Fetch(context.Background(), mustParse(t, "https://github.com/org/missing"), dest)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrDownloadFailed)
	assert.Equal(t, http.StatusNotFound, domain.StatusCode(err))

	entries, err := os.ReadDir(dest)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestArchiveFetcher_Fetch_NotAnArchive(t *testing.T) {
	var hits int32
	srv := serveArchive(t, []byte("<html>sign in</html>"), &hits)
	client, _ := forgeClient(t, srv)

	f := NewArchiveFetcher(ArchiveFetcherOptions{HTTPClient: client})
	_, err := f.Fetch(context.Background(), mustParse(t, "https://github.com/org/repo"), t.TempDir())
	assert.ErrorIs(t, err, domain.ErrUnsupportedArchive)
}

func TestArchiveFetcher_UserAgent(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()
	client, _ := forgeClient(t, srv)

	f := NewArchiveFetcher(ArchiveFetcherOptions{HTTPClient: client, UserAgent: "codedoc/test"})
	_, _ = f.Download(context.Background(), "https://github.com/org/repo/archive/refs/heads/main.zip",
		filepath.Join(t.TempDir(), ArchiveFileName))

	assert.Equal(t, "codedoc/test", got)
}

func TestArchiveFetcher_Retry(t *testing.T) {
	data := zipArchive(t, map[string]string{"repo-main/a.py": "a"})

	t.Run("retries transient failures", func(t *testing.T) {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if atomic.AddInt32(&hits, 1) < 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write(data)
		}))
		defer srv.Close()
		client, _ := forgeClient(t, srv)

		f := NewArchiveFetcher(ArchiveFetcherOptions{
			HTTPClient: client,
			Retrier: NewRetrier(RetrierOptions{
				MaxRetries:      3,
				InitialInterval: time.Millisecond,
				MaxInterval:     5 * time.Millisecond,
			}),
		})

		_, err := f.Fetch(context.Background(), mustParse(t, "https://github.com/org/repo"), t.TempDir())
		require.NoError(t, err)
		assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
	})

	t.Run("does not retry client errors", func(t *testing.T) {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(http.StatusNotFound)
		}))
		defer srv.Close()
		client, _ := forgeClient(t, srv)

		f := NewArchiveFetcher(ArchiveFetcherOptions{
			HTTPClient: client,
			Retrier:    NewRetrier(RetrierOptions{MaxRetries: 3, InitialInterval: time.Millisecond}),
		})

		_, err := f.Fetch(context.Background(), mustParse(t, "https://github.com/org/repo"), t.TempDir())
		assert.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("single attempt by default", func(t *testing.T) {
		var hits int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			atomic.AddInt32(&hits, 1)
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()
		client, _ := forgeClient(t, srv)

		f := NewArchiveFetcher(ArchiveFetcherOptions{HTTPClient: client})
		_, err := f.Fetch(context.Background(), mustParse(t, "https://github.com/org/repo"), t.TempDir())
		assert.ErrorIs(t, err, domain.ErrDownloadFailed)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})
}

func TestArchiveFetcher_Cache(t *testing.T) {
	c, err := cache.NewBadgerCache(cache.Options{InMemory: true})
	require.NoError(t, err)
	defer c.Close()

	var hits int32
	srv := serveArchive(t, zipArchive(t, map[string]string{"repo-main/a.py": "a"}), &hits)
	client, _ := forgeClient(t, srv)

	f := NewArchiveFetcher(ArchiveFetcherOptions{HTTPClient: client, Cache: c, CacheTTL: time.Hour})
	ref := mustParse(t, "https://github.com/org/repo")

	first, err := f.Fetch(context.Background(), ref, t.TempDir())
	require.NoError(t, err)
	assert.False(t, first.FromCache)

	second, err := f.Fetch(context.Background(), ref, t.TempDir())
	require.NoError(t, err)
	assert.True(t, second.FromCache)
	assert.FileExists(t, filepath.Join(second.Root, "a.py"))

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	assert.True(t, c.Has(context.Background(), cache.ArchiveKey(ref.ArchiveURL())))
}

func TestArchiveFetcher_CacheBackend(t *testing.T) {
	archive := zipArchive(t, map[string]string{"repo-main/a.py": "a"})
	ref := mustParse(t, "https://github.com/org/repo")
	key := cache.ArchiveKey(ref.ArchiveURL())

	t.Run("hit skips the download", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c := mocks.NewMockCache(ctrl)
		c.EXPECT().Get(gomock.Any(), key).Return(archive, nil)

		var hits int32
		client, _ := forgeClient(t, serveArchive(t, archive, &hits))
		f := NewArchiveFetcher(ArchiveFetcherOptions{HTTPClient: client, Cache: c})

		result, err := f.Fetch(context.Background(), ref, t.TempDir())
		require.NoError(t, err)
		assert.True(t, result.FromCache)
		assert.FileExists(t, filepath.Join(result.Root, "a.py"))
		assert.Zero(t, atomic.LoadInt32(&hits))
	})

	t.Run("miss downloads and stores with ttl", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c := mocks.NewMockCache(ctrl)
		gomock.InOrder(
			c.EXPECT().Get(gomock.Any(), key).Return(nil, domain.ErrCacheMiss),
			c.EXPECT().Set(gomock.Any(), key, archive, 2*time.Hour).Return(nil),
		)

		var hits int32
		client, _ := forgeClient(t, serveArchive(t, archive, &hits))
		f := NewArchiveFetcher(ArchiveFetcherOptions{HTTPClient: client, Cache: c, CacheTTL: 2 * time.Hour})

		result, err := f.Fetch(context.Background(), ref, t.TempDir())
		require.NoError(t, err)
		assert.False(t, result.FromCache)
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("cache failures are not fatal", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c := mocks.NewMockCache(ctrl)
		c.EXPECT().Get(gomock.Any(), key).Return(nil, errors.New("value log corrupt"))
		c.EXPECT().Set(gomock.Any(), key, gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

		var hits int32
		client, _ := forgeClient(t, serveArchive(t, archive, &hits))
		f := NewArchiveFetcher(ArchiveFetcherOptions{HTTPClient: client, Cache: c})

		result, err := f.Fetch(context.Background(), ref, t.TempDir())
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(result.Root, "a.py"))
		assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
	})

	t.Run("failed download is not cached", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		c := mocks.NewMockCache(ctrl)
		c.EXPECT().Get(gomock.Any(), key).Return(nil, domain.ErrCacheMiss)

		srv := httptest.NewServer(http.NotFoundHandler())
		defer srv.Close()
		client, _ := forgeClient(t, srv)
		f := NewArchiveFetcher(ArchiveFetcherOptions{HTTPClient: client, Cache: c})

		_, err := f.Fetch(context.Background(), ref, t.TempDir())
		assert.ErrorIs(t, err, domain.ErrDownloadFailed)
	})
}

func TestArchiveFetcher_CancelledContext(t *testing.T) {
	var hits int32
	srv := serveArchive(t, zipArchive(t, map[string]string{"repo-main/a.py": "a"}), &hits)
	client, _ := forgeClient(t, srv)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := NewArchiveFetcher(ArchiveFetcherOptions{HTTPClient: client})
	_, err := f.Fetch(ctx, mustParse(t, "https://github.com/org/repo"), t.TempDir())
	assert.ErrorIs(t, err, context.Canceled)
}

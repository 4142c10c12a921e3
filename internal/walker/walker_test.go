package walker

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func relPaths(entries []Entry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.RelPath)
	}
	return out
}

func TestWalker_Collect(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.py":                "print(1)",
		"b.txt":               "notes",
		"c/d.js":              "let x",
		"README.md":           "# readme",
		"src/deep/main.cpp":   "int main(){}",
		"src/deep/util.H":     "header",
		"web/index.HTML":      "<p>",
		"web/site.css":        "p{}",
		".hidden.py":          "secret",
		"node_modules/lib.js": "dep",
		"vendor/x/y.php":      "<?php",
		"types/api.ts":        "type A = {}",
		"java/App.java":       "class App {}",
		"c/lib.c":             "int x;",
		"archive.python.bak":  "no",
		"noext":               "no",
	})

	w := New(Options{Sort: true})
	entries, err := w.Collect(root)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a.py",
		"c/d.js",
		"c/lib.c",
		"java/App.java",
		"node_modules/lib.js",
		"src/deep/main.cpp",
		"types/api.ts",
		"vendor/x/y.php",
		"web/index.HTML",
		"web/site.css",
	}, relPaths(entries))

	for _, e := range entries {
		assert.Equal(t, filepath.Join(root, filepath.FromSlash(e.RelPath)), e.Path)
	}
}

func TestWalker_ExcludeDirs(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.py":               "",
		"node_modules/lib.js":   "",
		"pkg/node_modules/x.js": "",
		"pkg/ok.js":             "",
	})

	w := New(Options{ExcludeDirs: []string{"node_modules"}, Sort: true})
	entries, err := w.Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.py", "pkg/ok.js"}, relPaths(entries))
}

func TestWalker_CustomExtensions(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"main.go": "package main",
		"a.py":    "",
	})

	w := New(Options{Extensions: []string{".go"}})
	entries, err := w.Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, relPaths(entries))
}

func TestWalker_SkipsSymlinks(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlinks need privileges on windows")
	}
	root := t.TempDir()
	writeTree(t, root, map[string]string{"real.py": "x"})
	require.NoError(t, os.Symlink(filepath.Join(root, "real.py"), filepath.Join(root, "link.py")))

	entries, err := New(Options{}).Collect(root)
	require.NoError(t, err)
	assert.Equal(t, []string{"real.py"}, relPaths(entries))
}

func TestWalker_MissingRoot(t *testing.T) {
	_, err := New(Options{}).Collect(filepath.Join(t.TempDir(), "absent"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestWalker_FilesStopsEarly(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.py": "", "b.py": "", "c.py": ""})

	var seen []string
	for entry, err := range New(Options{}).Files(root) {
		require.NoError(t, err)
		seen = append(seen, entry.RelPath)
		if len(seen) == 2 {
			break
		}
	}
	assert.Equal(t, []string{"a.py", "b.py"}, seen)
}

func TestWalker_DeterministicAcrossRuns(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"z.py": "", "a/b.js": "", "a.py": "", "m/n/o.css": ""})

	w := New(Options{Sort: true})
	first, err := w.Collect(root)
	require.NoError(t, err)
	second, err := w.Collect(root)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestWalker_Matches(t *testing.T) {
	w := New(Options{})
	assert.True(t, w.Matches("x.py"))
	assert.True(t, w.Matches("X.PY"))
	assert.True(t, w.Matches("index.html"))
	assert.False(t, w.Matches("x.pyc"))
	assert.False(t, w.Matches("x.txt"))
	assert.False(t, w.Matches("Makefile"))
}

func TestWalker_FileRoot(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.py": "print(1)", "b.txt": "notes"})

	entries, err := New(Options{}).Collect(filepath.Join(root, "a.py"))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "a.py", entries[0].RelPath)
	assert.Equal(t, filepath.Join(root, "a.py"), entries[0].Path)

	entries, err = New(Options{}).Collect(filepath.Join(root, "b.txt"))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

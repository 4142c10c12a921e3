package acquire

import (
	"archive/tar"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zip"

	"github.com/quantmind-br/codedoc-go/internal/domain"
	"github.com/quantmind-br/codedoc-go/internal/utils"
)

// ArchiveFormat identifies an archive by its leading bytes
type ArchiveFormat string

const (
	FormatZip     ArchiveFormat = "zip"
	FormatTarGz   ArchiveFormat = "tar.gz"
	FormatUnknown ArchiveFormat = ""
)

var (
	zipMagic      = []byte("PK\x03\x04")
	zipEmptyMagic = []byte("PK\x05\x06")
	gzipMagic     = []byte{0x1f, 0x8b}
)

// SniffFormat reads the signature of the file at path
func SniffFormat(path string) (ArchiveFormat, error) {
	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, err
	}
	defer f.Close()

	head := make([]byte, 4)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return FormatUnknown, err
	}
	head = head[:n]

	switch {
	case bytes.HasPrefix(head, zipMagic), bytes.HasPrefix(head, zipEmptyMagic):
		return FormatZip, nil
	case bytes.HasPrefix(head, gzipMagic):
		return FormatTarGz, nil
	default:
		return FormatUnknown, nil
	}
}

// Extract unpacks the archive at path into destDir, inferring the format from
// its signature. Directory structure, including the top-level folder forges
// wrap archives in, is preserved.
func Extract(path, destDir string) error {
	format, err := SniffFormat(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatZip:
		return ExtractZip(path, destDir)
	case FormatTarGz:
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return ExtractTarGz(f, destDir)
	default:
		return fmt.Errorf("%w: %s", domain.ErrUnsupportedArchive, filepath.Base(path))
	}
}

// ExtractZip unpacks a zip archive into destDir
func ExtractZip(path, destDir string) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("open zip: %w", err)
	}
	defer r.Close()

	for _, f := range r.File {
		target, err := entryPath(destDir, f.Name)
		if err != nil {
			return err
		}

		mode := f.Mode()
		switch {
		case mode.IsDir():
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("mkdir failed: %w", err)
			}
		case mode&os.ModeSymlink != 0:
			continue
		default:
			if err := writeZipEntry(f, target); err != nil {
				return err
			}
		}
	}

	return nil
}

func writeZipEntry(f *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("mkdir failed: %w", err)
	}

	src, err := f.Open()
	if err != nil {
		return fmt.Errorf("open entry %s: %w", f.Name, err)
	}
	defer src.Close()

	return writeFile(target, src, f.Mode().Perm())
}

// ExtractTarGz unpacks a gzip-compressed tarball into destDir
func ExtractTarGz(r io.Reader, destDir string) error {
	gzr, err := gzip.NewReader(r)
	if err != nil {
		return fmt.Errorf("gzip reader failed: %w", err)
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if errors.Is(err, tar.ErrInsecurePath) {
			return fmt.Errorf("%w: %s", domain.ErrUnsafeArchiveEntry, header.Name)
		}
		if err != nil {
			return fmt.Errorf("tar read failed: %w", err)
		}

		// GitHub tarballs carry a pax_global_header entry with the commit id
		if header.Typeflag == tar.TypeXGlobalHeader {
			continue
		}

		target, err := entryPath(destDir, header.Name)
		if err != nil {
			return err
		}

		switch header.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return fmt.Errorf("mkdir failed: %w", err)
			}
		case tar.TypeReg:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return fmt.Errorf("mkdir failed: %w", err)
			}
			if err := writeFile(target, tr, os.FileMode(header.Mode).Perm()); err != nil {
				return err
			}
		}
	}

	return nil
}

func entryPath(destDir, name string) (string, error) {
	target := filepath.Join(destDir, filepath.FromSlash(name))
	if !utils.IsWithin(destDir, target) {
		return "", fmt.Errorf("%w: %s", domain.ErrUnsafeArchiveEntry, name)
	}
	return target, nil
}

func writeFile(target string, r io.Reader, perm os.FileMode) error {
	// Owner must be able to read and later delete what we extract
	perm |= 0600

	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, perm)
	if err != nil {
		return fmt.Errorf("create file failed: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		return fmt.Errorf("copy failed: %w", err)
	}
	return file.Close()
}

// FindRoot returns the first directory entry inside dir (lexical order), or
// dir itself when extraction produced no subdirectory
func FindRoot(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}
	for _, e := range entries {
		if e.IsDir() {
			return filepath.Join(dir, e.Name()), nil
		}
	}
	return dir, nil
}

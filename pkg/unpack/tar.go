package unpack

import (
	"archive/tar"
	"compress/bzip2"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func extractTar(src io.Reader, format Format, dest, extract string) error {
	var reader io.Reader
	switch format {
	case FormatTar:
		reader = src
	case FormatTarGzip:
		gz, err := gzip.NewReader(src)
		if err != nil {
			return fmt.Errorf("opening gzip stream: %w", err)
		}
		defer func() {
			_ = gz.Close()
		}()
		reader = gz
	case FormatTarBzip2:
		reader = bzip2.NewReader(src)
	case FormatTarZstd:
		zr, err := zstd.NewReader(src)
		if err != nil {
			return fmt.Errorf("opening zstd stream: %w", err)
		}
		defer zr.Close()
		reader = zr
	}

	tr := tar.NewReader(reader)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		name, ok, err := entryName(hdr.Name, extract)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		target := filepath.Join(dest, filepath.FromSlash(name))

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
		case tar.TypeReg:
			if err := writeEntry(target, tr, fileMode(hdr.FileInfo().Mode().Perm())); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.Symlink(hdr.Linkname, target); err != nil {
				return err
			}
		case tar.TypeXGlobalHeader, tar.TypeXHeader:
			// pax metadata, nothing to materialize
		default:
			return fmt.Errorf("unsupported tar entry type %q for %q", hdr.Typeflag, hdr.Name)
		}
	}
}

// writeEntry creates the file and its parent directories
func writeEntry(target string, content io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return err
	}
	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, content); err != nil {
		_ = file.Close()
		return err
	}
	return file.Close()
}

// fileMode normalizes archive modes: owner-writable, world-readable, and the
// executable bit preserved. Archives built on other systems often carry modes
// that would make the tree unreadable or unwritable during teardown.
func fileMode(perm os.FileMode) os.FileMode {
	if perm&0111 != 0 {
		return 0755
	}
	return 0644
}

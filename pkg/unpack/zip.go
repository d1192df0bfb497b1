package unpack

import (
	"archive/zip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

func extractZip(src io.ReaderAt, size int64, dest, extract string) error {
	zr, err := zip.NewReader(src, size)
	if err != nil {
		return fmt.Errorf("opening zip archive: %w", err)
	}

	for _, entry := range zr.File {
		name, ok, err := entryName(entry.Name, extract)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}

		target := filepath.Join(dest, filepath.FromSlash(name))

		if strings.HasSuffix(entry.Name, "/") || entry.Mode().IsDir() {
			if err := os.MkdirAll(target, 0755); err != nil {
				return err
			}
			continue
		}

		if entry.Mode()&fs.ModeSymlink != 0 {
			linkTarget, err := readZipEntry(entry)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
				return err
			}
			if err := os.Symlink(linkTarget, target); err != nil {
				return err
			}
			continue
		}

		content, err := entry.Open()
		if err != nil {
			return err
		}
		err = writeEntry(target, content, fileMode(entry.Mode().Perm()))
		_ = content.Close()
		if err != nil {
			return err
		}
	}
	return nil
}

// readZipEntry returns the full content of a zip entry; symlink entries store
// their target as the file body.
func readZipEntry(entry *zip.File) (string, error) {
	rc, err := entry.Open()
	if err != nil {
		return "", err
	}
	defer func() {
		_ = rc.Close()
	}()
	data, err := io.ReadAll(rc)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

package digest

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/recookio/recook/pkg/errors"
)

// Manifest implements Algorithm. Regular files produce
// "F <hash> <size> <path>" lines, symlinks "S <hash> <targetlen> <path>",
// where <hash> is the algorithm's primitive over the file content (or link
// target), hex-encoded. Lines are ordered by relative slash-separated path
// so that the listing is independent of filesystem iteration order.
func (a *hashAlgorithm) Manifest(root string) ([]string, error) {
	var lines []string

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root || d.IsDir() {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := os.Readlink(path)
			if err != nil {
				return err
			}
			h := a.newHash()
			_, _ = h.Write([]byte(target))
			lines = append(lines, fmt.Sprintf("S %x %d %s", h.Sum(nil), len(target), rel))
			return nil
		}

		if !d.Type().IsRegular() {
			// Sockets, devices and the like have no manifest representation.
			return errors.Newf(errors.ErrInvalidInput, "unsupported file type in tree: %s", rel)
		}

		sum, size, err := a.hashFile(path)
		if err != nil {
			return err
		}
		lines = append(lines, fmt.Sprintf("F %x %d %s", sum, size, rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	// WalkDir is ordered per directory, not over the whole tree.
	sort.Slice(lines, func(i, j int) bool {
		return manifestPath(lines[i]) < manifestPath(lines[j])
	})
	return lines, nil
}

// hashFile streams the file through the algorithm's primitive
func (a *hashAlgorithm) hashFile(path string) ([]byte, int64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, err
	}
	defer func() {
		_ = file.Close()
	}()

	h := a.newHash()
	size, err := io.Copy(h, file)
	if err != nil {
		return nil, 0, err
	}
	return h.Sum(nil), size, nil
}

// manifestPath extracts the path column (everything after the third space,
// paths may themselves contain spaces)
func manifestPath(line string) string {
	fields := 0
	for i := 0; i < len(line); i++ {
		if line[i] == ' ' {
			fields++
			if fields == 3 {
				return line[i+1:]
			}
		}
	}
	return line
}

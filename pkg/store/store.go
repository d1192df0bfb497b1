// Package store resolves declared source URLs against the local archive
// store: a flat directory of previously downloaded files named by the final
// path segment of their URL. Nothing here touches the network.
package store

import (
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/recookio/recook/pkg/errors"
)

// Store is a local archive store rooted at Dir
type Store struct {
	Dir string
}

// Default returns the store under the XDG cache directory
func Default() Store {
	return Store{Dir: filepath.Join(xdg.CacheHome, "recook", "archives")}
}

// Lookup resolves a declared source URL to a path inside the store and
// verifies the file exists. Missing files are a SOURCE_MISSING condition.
func (s Store) Lookup(href string) (string, error) {
	name, err := Basename(href)
	if err != nil {
		return "", err
	}
	resolved := filepath.Join(s.Dir, name)
	if _, err := os.Stat(resolved); err != nil {
		return "", errors.Wrapf(err, errors.ErrSourceMissing,
			"source %q not found in local store", href).
			WithDetail("href", href).
			WithDetail("path", resolved)
	}
	return resolved, nil
}

// Contains reports whether the store holds the file for the given URL
func (s Store) Contains(href string) bool {
	_, err := s.Lookup(href)
	return err == nil
}

// Basename strips a URL down to its final path segment, dropping any query
// or fragment. Plain relative paths are accepted as-is.
func Basename(href string) (string, error) {
	trimmed := href
	if u, err := url.Parse(href); err == nil && u.Path != "" {
		trimmed = u.Path
	}
	name := path.Base(strings.ReplaceAll(trimmed, "\\", "/"))
	if name == "." || name == "/" || name == "" {
		return "", errors.Newf(errors.ErrInvalidInput, "cannot derive a file name from %q", href)
	}
	return name, nil
}

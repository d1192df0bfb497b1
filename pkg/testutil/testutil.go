// Package testutil provides fixture builders for feed and archive tests
package testutil

import (
	"archive/tar"
	"archive/zip"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/stretchr/testify/require"
)

// WriteFeed writes a feed document into dir and returns its path
func WriteFeed(t *testing.T, dir, content string) string {
	t.Helper()
	path := filepath.Join(dir, "feed.xml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// FeedXML wraps implementation elements in a minimal feed document
func FeedXML(implementations string) string {
	return "<?xml version=\"1.0\"?>\n<feed>\n" + implementations + "\n</feed>\n"
}

// sortedNames returns map keys in stable order so fixture archives are
// deterministic.
func sortedNames(entries map[string]string) []string {
	names := make([]string, 0, len(entries))
	for name := range entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// BuildTarGz writes a gzip-compressed tar archive at path. Entry names
// ending in "/" become directories; other entries are regular files with the
// given content.
func BuildTarGz(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, file.Close()) }()

	gz := gzip.NewWriter(file)
	writeTar(t, gz, entries)
	require.NoError(t, gz.Close())
}

// BuildGz writes a single-file gzip stream at path. headerName is recorded
// in the gzip header when non-empty.
func BuildGz(t *testing.T, path, headerName, content string) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, file.Close()) }()

	gz := gzip.NewWriter(file)
	gz.Name = headerName
	_, err = gz.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, gz.Close())
}

// BuildTarZst writes a zstd-compressed tar archive at path
func BuildTarZst(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, file.Close()) }()

	zw, err := zstd.NewWriter(file)
	require.NoError(t, err)
	writeTar(t, zw, entries)
	require.NoError(t, zw.Close())
}

func writeTar(t *testing.T, out interface{ Write([]byte) (int, error) }, entries map[string]string) {
	t.Helper()
	tw := tar.NewWriter(out)
	for _, name := range sortedNames(entries) {
		content := entries[name]
		if strings.HasSuffix(name, "/") {
			require.NoError(t, tw.WriteHeader(&tar.Header{
				Name:     name,
				Typeflag: tar.TypeDir,
				Mode:     0755,
			}))
			continue
		}
		require.NoError(t, tw.WriteHeader(&tar.Header{
			Name:     name,
			Typeflag: tar.TypeReg,
			Mode:     0644,
			Size:     int64(len(content)),
		}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
}

// BuildZip writes a zip archive at path with the given file entries
func BuildZip(t *testing.T, path string, entries map[string]string) {
	t.Helper()
	file, err := os.Create(path)
	require.NoError(t, err)
	defer func() { require.NoError(t, file.Close()) }()

	zw := zip.NewWriter(file)
	for _, name := range sortedNames(entries) {
		content := entries[name]
		if strings.HasSuffix(name, "/") {
			_, err := zw.Create(name)
			require.NoError(t, err)
			continue
		}
		w, err := zw.Create(name)
		require.NoError(t, err)
		_, err = w.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
}

// ReadTree returns every regular file under root as relative path to content
func ReadTree(t *testing.T, root string) map[string]string {
	t.Helper()
	tree := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || !info.Mode().IsRegular() {
			return err
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		tree[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	require.NoError(t, err)
	return tree
}

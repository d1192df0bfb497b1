// Test Type: Unit Test
// Description: Tests for archive format detection and extraction

package unpack_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/recookio/recook/pkg/errors"
	"github.com/recookio/recook/pkg/testutil"
	"github.com/recookio/recook/pkg/unpack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetect(t *testing.T) {
	tests := []struct {
		name         string
		fileName     string
		declaredType string
		expected     unpack.Format
		wantErr      bool
	}{
		{"zip_by_mime", "whatever.bin", "application/zip", unpack.FormatZip, false},
		{"targz_by_mime", "x", "application/x-compressed-tar", unpack.FormatTarGzip, false},
		{"zip_by_suffix", "pkg.zip", "", unpack.FormatZip, false},
		{"targz_by_suffix", "pkg.tar.gz", "", unpack.FormatTarGzip, false},
		{"tgz_by_suffix", "pkg.tgz", "", unpack.FormatTarGzip, false},
		{"tarbz2_by_suffix", "pkg.tar.bz2", "", unpack.FormatTarBzip2, false},
		{"tarzst_by_suffix", "pkg.tar.zst", "", unpack.FormatTarZstd, false},
		{"plain_tar_by_suffix", "pkg.tar", "", unpack.FormatTar, false},
		{"gz_by_suffix", "data.gz", "", unpack.FormatGzip, false},
		{"gz_by_mime", "blob", "application/gzip", unpack.FormatGzip, false},
		{"uppercase_suffix", "PKG.ZIP", "", unpack.FormatZip, false},
		{"unknown_mime", "pkg.tar.gz", "application/x-rar", unpack.FormatUnknown, true},
		{"unknown_suffix", "pkg.rar", "", unpack.FormatUnknown, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, err := unpack.Detect(tt.fileName, tt.declaredType)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedType))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, format)
		})
	}
}

func unpackFile(t *testing.T, archive string, format unpack.Format, dest string, offset int64, extract string) error {
	t.Helper()
	file, err := os.Open(archive)
	require.NoError(t, err)
	defer func() { require.NoError(t, file.Close()) }()
	info, err := file.Stat()
	require.NoError(t, err)

	return unpack.New().Unpack(unpack.Request{
		Source:      file,
		Size:        info.Size(),
		Format:      format,
		Name:        filepath.Base(archive),
		Dest:        dest,
		StartOffset: offset,
		Extract:     extract,
	})
}

func TestUnpackTarGz(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.tar.gz")
	testutil.BuildTarGz(t, archive, map[string]string{
		"a.txt":   "alpha",
		"b/":      "",
		"b/c.txt": "charlie",
	})

	dest := t.TempDir()
	require.NoError(t, unpackFile(t, archive, unpack.FormatTarGzip, dest, 0, ""))

	assert.Equal(t, map[string]string{
		"a.txt":   "alpha",
		"b/c.txt": "charlie",
	}, testutil.ReadTree(t, dest))
}

func TestUnpackZip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.zip")
	testutil.BuildZip(t, archive, map[string]string{
		"readme.md":    "hello",
		"sub/file.txt": "content",
	})

	dest := t.TempDir()
	require.NoError(t, unpackFile(t, archive, unpack.FormatZip, dest, 0, ""))

	assert.Equal(t, map[string]string{
		"readme.md":    "hello",
		"sub/file.txt": "content",
	}, testutil.ReadTree(t, dest))
}

func TestUnpackTarZst(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.tar.zst")
	testutil.BuildTarZst(t, archive, map[string]string{"data.bin": "zstd content"})

	dest := t.TempDir()
	require.NoError(t, unpackFile(t, archive, unpack.FormatTarZstd, dest, 0, ""))
	assert.Equal(t, map[string]string{"data.bin": "zstd content"}, testutil.ReadTree(t, dest))
}

func TestUnpackPlainGzip(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "notes.txt.gz")
	testutil.BuildGz(t, archive, "", "hello gzip")

	dest := t.TempDir()
	require.NoError(t, unpackFile(t, archive, unpack.FormatGzip, dest, 0, ""))
	assert.Equal(t, map[string]string{"notes.txt": "hello gzip"}, testutil.ReadTree(t, dest))
}

func TestUnpackPlainGzipHeaderName(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "download.gz")
	testutil.BuildGz(t, archive, "original.dat", "payload")

	dest := t.TempDir()
	require.NoError(t, unpackFile(t, archive, unpack.FormatGzip, dest, 0, ""))
	assert.Equal(t, map[string]string{"original.dat": "payload"}, testutil.ReadTree(t, dest))
}

func TestUnpackPlainGzipRejectsExtract(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "notes.txt.gz")
	testutil.BuildGz(t, archive, "", "hello")

	err := unpackFile(t, archive, unpack.FormatGzip, t.TempDir(), 0, "sub")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnsupportedType))
}

func TestUnpackExtractSubdir(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "pkg.tar.gz")
	testutil.BuildTarGz(t, archive, map[string]string{
		"pkg-1.0/":         "",
		"pkg-1.0/main.txt": "wanted",
		"other/skip.txt":   "unwanted",
	})

	dest := t.TempDir()
	require.NoError(t, unpackFile(t, archive, unpack.FormatTarGzip, dest, 0, "pkg-1.0"))

	assert.Equal(t, map[string]string{"main.txt": "wanted"}, testutil.ReadTree(t, dest))
}

func TestUnpackStartOffset(t *testing.T) {
	dir := t.TempDir()
	inner := filepath.Join(dir, "inner.tar.gz")
	testutil.BuildTarGz(t, inner, map[string]string{"a.txt": "alpha"})

	// Prepend padding, as a self-extracting header would.
	padded := filepath.Join(dir, "padded.bin")
	innerBytes, err := os.ReadFile(inner)
	require.NoError(t, err)
	padding := []byte("#!/bin/sh\nexit 0\n")
	require.NoError(t, os.WriteFile(padded, append(padding, innerBytes...), 0644))

	dest := t.TempDir()
	require.NoError(t, unpackFile(t, padded, unpack.FormatTarGzip, dest, int64(len(padding)), ""))
	assert.Equal(t, map[string]string{"a.txt": "alpha"}, testutil.ReadTree(t, dest))
}

func TestUnpackRejectsEscapingEntries(t *testing.T) {
	dir := t.TempDir()
	archive := filepath.Join(dir, "evil.tar.gz")
	testutil.BuildTarGz(t, archive, map[string]string{"../evil.txt": "nope"})

	dest := t.TempDir()
	err := unpackFile(t, archive, unpack.FormatTarGzip, dest, 0, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escapes")

	_, statErr := os.Stat(filepath.Join(filepath.Dir(dest), "evil.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

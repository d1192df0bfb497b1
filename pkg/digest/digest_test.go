// Test Type: Unit Test
// Description: Tests for the digest package - manifest generation, digest stability and pair encoding

package digest_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/recookio/recook/pkg/digest"
	"github.com/recookio/recook/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(root, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
}

func TestManifestDeterministic(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"a.txt":     "alpha",
		"b/c.txt":   "charlie",
		"b/d/e.txt": "echo",
	})

	alg, err := digest.Resolve("sha256")
	require.NoError(t, err)

	first, err := alg.Manifest(root)
	require.NoError(t, err)
	second, err := alg.Manifest(root)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, alg.Digest(first), alg.Digest(second))
}

func TestIdenticalTreesSameDigest(t *testing.T) {
	files := map[string]string{
		"a.txt":   "alpha",
		"b/c.txt": "charlie",
	}

	rootOne := t.TempDir()
	rootTwo := t.TempDir()
	writeTree(t, rootOne, files)
	writeTree(t, rootTwo, files)

	one, err := digest.Tree(rootOne, "sha256new")
	require.NoError(t, err)
	two, err := digest.Tree(rootTwo, "sha256new")
	require.NoError(t, err)
	assert.Equal(t, one, two)
}

func TestManifestOrderedByPath(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{
		"zz.txt":    "last",
		"aa.txt":    "first",
		"mm/nn.txt": "middle",
	})

	alg, err := digest.Resolve("sha1")
	require.NoError(t, err)
	lines, err := alg.Manifest(root)
	require.NoError(t, err)

	require.Len(t, lines, 3)
	assert.True(t, strings.HasSuffix(lines[0], " aa.txt"))
	assert.True(t, strings.HasSuffix(lines[1], " mm/nn.txt"))
	assert.True(t, strings.HasSuffix(lines[2], " zz.txt"))
}

func TestManifestContentChangesDigest(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "one"})

	before, err := digest.Tree(root, "sha256")
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("two"), 0644))
	after, err := digest.Tree(root, "sha256")
	require.NoError(t, err)

	assert.NotEqual(t, before, after)
}

func TestEmptyTreeDigest(t *testing.T) {
	// No files means an empty manifest; sha256 of the empty string.
	value, err := digest.Tree(t.TempDir(), "sha256")
	require.NoError(t, err)
	assert.Equal(t, "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855", value)
}

func TestSymlinkLines(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"target.txt": "content"})
	require.NoError(t, os.Symlink("target.txt", filepath.Join(root, "link")))

	alg, err := digest.Resolve("sha256")
	require.NoError(t, err)
	lines, err := alg.Manifest(root)
	require.NoError(t, err)

	require.Len(t, lines, 2)
	assert.True(t, strings.HasPrefix(lines[0], "S "), "symlink line: %s", lines[0])
	assert.True(t, strings.HasSuffix(lines[0], " link"))
	assert.True(t, strings.HasPrefix(lines[1], "F "))
}

func TestAlgorithmEncodingsDiffer(t *testing.T) {
	root := t.TempDir()
	writeTree(t, root, map[string]string{"a.txt": "alpha"})

	hexDigest, err := digest.Tree(root, "sha256")
	require.NoError(t, err)
	base32Digest, err := digest.Tree(root, "sha256new")
	require.NoError(t, err)

	// Same primitive, different textual encoding.
	assert.NotEqual(t, hexDigest, base32Digest)
	assert.NotEmpty(t, base32Digest)
}

func TestResolveUnknownAlgorithm(t *testing.T) {
	_, err := digest.Resolve("md5")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownAlgorithm))
}

func TestPairRoundTrip(t *testing.T) {
	for _, name := range digest.Names() {
		pair := digest.FormatPair(name, "SOMEDIGEST")
		gotName, gotDigest, err := digest.ParsePair(pair)
		require.NoError(t, err, "algorithm %s", name)
		assert.Equal(t, name, gotName)
		assert.Equal(t, "SOMEDIGEST", gotDigest)
	}
}

func TestParsePairRejectsMalformed(t *testing.T) {
	tests := []string{
		"",
		"noseparator",
		"=digestonly",
		"sha256=",
		"unknownalg=abc",
	}
	for _, id := range tests {
		t.Run(id, func(t *testing.T) {
			_, _, err := digest.ParsePair(id)
			require.Error(t, err)
			assert.True(t, errors.IsErrorCode(err, errors.ErrMalformedDigestID))
		})
	}
}

// Test Type: Unit Test
// Description: Tests for digest verification - new records, corrections, id rewriting and idempotence

package verify_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/recookio/recook/pkg/digest"
	"github.com/recookio/recook/pkg/errors"
	"github.com/recookio/recook/pkg/feed"
	"github.com/recookio/recook/pkg/recipe"
	"github.com/recookio/recook/pkg/verify"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookedTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), []byte("alpha"), 0644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "b"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "b", "c.txt"), []byte("charlie"), 0644))
	return root
}

func TestVerifyRecordsNewDigest(t *testing.T) {
	root := cookedTree(t)
	rec := &recipe.Recipe{ID: "impl-1"}

	result, err := verify.Tree(root, rec, []string{"sha256new"})
	require.NoError(t, err)

	expected, err := digest.Tree(root, "sha256new")
	require.NoError(t, err)

	require.Len(t, result.Patches, 1)
	assert.Equal(t, feed.Patch{
		Element: "manifest-digest",
		Attr:    "sha256new",
		Value:   expected,
	}, result.Patches[0])
	assert.Equal(t, expected, result.Digests["sha256new"])
}

func TestVerifyUsesRecordedAlgorithms(t *testing.T) {
	root := cookedTree(t)
	// The feed records sha1; the default list must be ignored.
	rec := &recipe.Recipe{
		ID:      "impl-1",
		Digests: map[string]string{"sha1": "stale"},
	}

	result, err := verify.Tree(root, rec, []string{"sha256new"})
	require.NoError(t, err)

	require.Len(t, result.Patches, 1)
	assert.Equal(t, "sha1", result.Patches[0].Attr)
	assert.NotContains(t, result.Digests, "sha256new")
}

func TestVerifyMatchingDigestNoPatches(t *testing.T) {
	root := cookedTree(t)
	current, err := digest.Tree(root, "sha256new")
	require.NoError(t, err)

	rec := &recipe.Recipe{
		ID:      "impl-1",
		Digests: map[string]string{"sha256new": current},
	}
	result, err := verify.Tree(root, rec, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Patches)
}

func TestVerifyIdempotent(t *testing.T) {
	root := cookedTree(t)
	rec := &recipe.Recipe{ID: "impl-1"}

	first, err := verify.Tree(root, rec, []string{"sha256new", "sha1"})
	require.NoError(t, err)
	require.NotEmpty(t, first.Patches)

	// Apply the corrections to the recipe and verify again: nothing left to fix.
	rec.Digests = map[string]string{}
	for _, p := range first.Patches {
		rec.Digests[p.Attr] = p.Value
	}
	second, err := verify.Tree(root, rec, []string{"sha256new", "sha1"})
	require.NoError(t, err)
	assert.Empty(t, second.Patches)
}

func TestVerifyRewritesDigestID(t *testing.T) {
	root := cookedTree(t)
	rec := &recipe.Recipe{ID: "sha256new=OLDDIGEST"}

	result, err := verify.Tree(root, rec, []string{"sha256new"})
	require.NoError(t, err)

	expected, err := digest.Tree(root, "sha256new")
	require.NoError(t, err)

	var idPatch *feed.Patch
	for i := range result.Patches {
		if result.Patches[i].Attr == "id" {
			idPatch = &result.Patches[i]
		}
	}
	require.NotNil(t, idPatch, "expected an id rewrite patch")
	assert.Empty(t, idPatch.Element)
	assert.Equal(t, digest.FormatPair("sha256new", expected), idPatch.Value)
}

func TestVerifyMatchingDigestIDUntouched(t *testing.T) {
	root := cookedTree(t)
	current, err := digest.Tree(root, "sha256new")
	require.NoError(t, err)

	rec := &recipe.Recipe{
		ID:      digest.FormatPair("sha256new", current),
		Digests: map[string]string{"sha256new": current},
	}
	result, err := verify.Tree(root, rec, nil)
	require.NoError(t, err)
	assert.Empty(t, result.Patches)
}

func TestVerifyOpaqueIDSkipped(t *testing.T) {
	root := cookedTree(t)
	current, err := digest.Tree(root, "sha256new")
	require.NoError(t, err)

	// Neither "impl-1" nor "weird=thing" with an unknown algorithm is a
	// digest pair; both are opaque.
	for _, id := range []string{"impl-1", "weird=thing"} {
		rec := &recipe.Recipe{
			ID:      id,
			Digests: map[string]string{"sha256new": current},
		}
		result, err := verify.Tree(root, rec, nil)
		require.NoError(t, err)
		assert.Empty(t, result.Patches, "id %q must be treated as opaque", id)
	}
}

func TestVerifyUnknownRecordedAlgorithm(t *testing.T) {
	root := cookedTree(t)
	rec := &recipe.Recipe{
		ID:      "impl-1",
		Digests: map[string]string{"md5": "whatever"},
	}
	_, err := verify.Tree(root, rec, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrUnknownAlgorithm))
}

func TestVerifyNoAlgorithms(t *testing.T) {
	_, err := verify.Tree(cookedTree(t), &recipe.Recipe{ID: "impl-1"}, nil)
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidInput))
}

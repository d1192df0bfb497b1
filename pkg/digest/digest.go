// Package digest implements the manifest digest algorithms used to give a
// cooked file tree a single verifiable identity. An algorithm defines a
// canonical per-file listing over a directory tree and a digest function over
// that listing; identical trees always produce identical digests.
package digest

import (
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base32"
	"encoding/hex"
	"hash"
	"sort"
	"strings"

	"github.com/recookio/recook/pkg/errors"
)

// Algorithm describes one registered manifest digest algorithm.
type Algorithm interface {
	// Name returns the registered algorithm name, e.g. "sha256new".
	Name() string

	// Manifest walks the tree rooted at root and returns the canonical
	// per-file listing, one line per file, ordered by relative path.
	Manifest(root string) ([]string, error)

	// Digest hashes the newline-joined manifest into a textual digest.
	Digest(lines []string) string
}

// hashAlgorithm is the single Algorithm implementation: a hash primitive
// plus a digest encoding.
type hashAlgorithm struct {
	name    string
	newHash func() hash.Hash
	encode  func(sum []byte) string
}

func (a *hashAlgorithm) Name() string { return a.name }

func (a *hashAlgorithm) Digest(lines []string) string {
	h := a.newHash()
	_, _ = h.Write([]byte(strings.Join(lines, "\n")))
	return a.encode(h.Sum(nil))
}

// base32NoPad encodes a digest the way sha256new identifiers are written:
// standard base32 alphabet, no padding.
var base32NoPad = base32.StdEncoding.WithPadding(base32.NoPadding)

var registry = map[string]*hashAlgorithm{
	"sha1": {
		name:    "sha1",
		newHash: sha1.New,
		encode:  func(sum []byte) string { return hex.EncodeToString(sum) },
	},
	"sha256": {
		name:    "sha256",
		newHash: sha256.New,
		encode:  func(sum []byte) string { return hex.EncodeToString(sum) },
	},
	"sha256new": {
		name:    "sha256new",
		newHash: sha256.New,
		encode:  func(sum []byte) string { return base32NoPad.EncodeToString(sum) },
	},
}

// Resolve returns the registered algorithm with the given name
func Resolve(name string) (Algorithm, error) {
	alg, ok := registry[name]
	if !ok {
		return nil, errors.Newf(errors.ErrUnknownAlgorithm, "unknown digest algorithm %q", name).
			WithDetail("algorithm", name)
	}
	return alg, nil
}

// Names returns all registered algorithm names, sorted
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Tree computes the manifest digest of the tree rooted at root using the
// named algorithm.
func Tree(root, name string) (string, error) {
	alg, err := Resolve(name)
	if err != nil {
		return "", err
	}
	lines, err := alg.Manifest(root)
	if err != nil {
		return "", err
	}
	return alg.Digest(lines), nil
}

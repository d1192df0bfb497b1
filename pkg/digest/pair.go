package digest

import (
	"fmt"
	"strings"

	"github.com/recookio/recook/pkg/errors"
)

// FormatPair renders the canonical textual encoding of an algorithm/digest
// pair, used both as a feed attribute value and as an implementation id.
func FormatPair(name, digest string) string {
	return fmt.Sprintf("%s=%s", name, digest)
}

// ParsePair splits an "algorithm=digest" identifier into its components.
// It fails with MALFORMED_DIGEST_ID if the string does not match that shape
// or the algorithm is not registered.
func ParsePair(id string) (name, digest string, err error) {
	name, digest, ok := strings.Cut(id, "=")
	if !ok || name == "" || digest == "" {
		return "", "", errors.Newf(errors.ErrMalformedDigestID, "not an algorithm=digest pair: %q", id)
	}
	if _, ok := registry[name]; !ok {
		return "", "", errors.Newf(errors.ErrMalformedDigestID, "unknown algorithm in digest id %q", id).
			WithDetail("algorithm", name)
	}
	return name, digest, nil
}

// Package verify compares a cooked tree's manifest digests against the
// identity the feed records for the implementation and accumulates the
// attribute patches needed to correct it. Nothing here mutates the feed;
// corrections are applied in one place by the caller.
package verify

import (
	"sort"

	"github.com/recookio/recook/pkg/digest"
	"github.com/recookio/recook/pkg/errors"
	"github.com/recookio/recook/pkg/feed"
	"github.com/recookio/recook/pkg/logging"
	"github.com/recookio/recook/pkg/recipe"
)

// Result describes the outcome of verifying one cooked tree
type Result struct {
	// Patches are the corrections the feed needs. Empty means the recorded
	// identity already matches the tree.
	Patches []feed.Patch

	// Digests holds every digest computed during verification, by algorithm.
	Digests map[string]string
}

// Tree verifies the cooked tree at root against the recipe's recorded
// digests. When the feed already records a manifest digest, exactly those
// algorithms are checked; otherwise defaults is used and a new record is
// produced. If the implementation id itself parses as an algorithm=digest
// pair it is re-derived too; an id that does not parse is opaque and left
// alone.
func Tree(root string, rec *recipe.Recipe, defaults []string) (*Result, error) {
	logger := logging.GetLogger("verify")

	algorithms := defaults
	if len(rec.Digests) > 0 {
		algorithms = make([]string, 0, len(rec.Digests))
		for name := range rec.Digests {
			algorithms = append(algorithms, name)
		}
		sort.Strings(algorithms)
	}
	if len(algorithms) == 0 {
		return nil, errors.New(errors.ErrInvalidInput, "no digest algorithms to verify with")
	}

	result := &Result{Digests: make(map[string]string, len(algorithms))}

	for _, name := range algorithms {
		computed, err := digest.Tree(root, name)
		if err != nil {
			return nil, err
		}
		result.Digests[name] = computed

		recorded, ok := rec.Digests[name]
		if ok && recorded == computed {
			logger.Debug().Str("id", rec.ID).Str("algorithm", name).Msg("Digest matches")
			continue
		}
		// Absent counts as changed; this also records a first-seen value.
		logger.Info().
			Str("id", rec.ID).
			Str("algorithm", name).
			Str("recorded", recorded).
			Str("computed", computed).
			Msg("Recording manifest digest")
		result.Patches = append(result.Patches, feed.Patch{
			Element: "manifest-digest",
			Attr:    name,
			Value:   computed,
		})
	}

	// The id may itself encode an algorithm=digest pair; re-derive it over
	// the same tree. A non-parsing id is opaque and never an error.
	name, recorded, err := digest.ParsePair(rec.ID)
	if err != nil {
		logger.Debug().Str("id", rec.ID).Msg("Implementation id is opaque, skipping id verification")
		return result, nil
	}

	computed, ok := result.Digests[name]
	if !ok {
		if computed, err = digest.Tree(root, name); err != nil {
			return nil, err
		}
		result.Digests[name] = computed
	}
	if computed != recorded {
		newID := digest.FormatPair(name, computed)
		logger.Info().
			Str("old", rec.ID).
			Str("new", newID).
			Msg("Rewriting implementation id")
		result.Patches = append(result.Patches, feed.Patch{
			Attr:  "id",
			Value: newID,
		})
	}

	return result, nil
}

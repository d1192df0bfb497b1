// Package cooker materializes a recipe into an ephemeral build root: every
// step is prepared before any filesystem mutation begins, steps then apply
// strictly in declaration order, and the build root is removed on every exit
// path. Execution is synchronous throughout; all sources are local files, so
// there is nothing to suspend on.
package cooker

import (
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/recookio/recook/pkg/errors"
	"github.com/recookio/recook/pkg/logging"
	"github.com/recookio/recook/pkg/recipe"
	"github.com/recookio/recook/pkg/store"
	"github.com/recookio/recook/pkg/unpack"
	"github.com/rs/zerolog"
)

// Cooker executes recipes inside ephemeral build roots
type Cooker struct {
	Store    store.Store
	Unpacker unpack.Unpacker

	// Pause, when set, is invoked with the build root after a successful
	// cook and inspection, before teardown. Debugging aid only.
	Pause func(root string)

	logger zerolog.Logger
}

// New creates a Cooker over the given store and unpacker
func New(st store.Store, up unpack.Unpacker) *Cooker {
	return &Cooker{
		Store:    st,
		Unpacker: up,
		logger:   logging.GetLogger("cooker"),
	}
}

// Cook materializes the recipe's tree in a fresh build root and hands the
// root to fn for inspection. The root is exclusively owned by this call and
// is removed before Cook returns, whatever happens.
func (c *Cooker) Cook(rec *recipe.Recipe, fn func(root string) error) error {
	root := filepath.Join(os.TempDir(), "recook-"+uuid.NewString())
	if err := os.MkdirAll(root, 0700); err != nil {
		return errors.Wrap(err, errors.ErrInternal, "creating build root")
	}
	defer func() {
		if err := os.RemoveAll(root); err != nil {
			c.logger.Error().Err(err).Str("root", root).Msg("Failed to remove build root")
		}
	}()

	c.logger.Debug().Str("id", rec.ID).Str("root", root).Int("steps", len(rec.Steps)).Msg("Cooking recipe")

	runners := make([]stepRunner, 0, len(rec.Steps))
	defer func() {
		// Best effort: a racy close must not abort an otherwise-successful
		// cook, so release errors are logged inside the runners.
		for _, r := range runners {
			r.release(c.logger)
		}
	}()

	// Prepare everything before mutating anything, so a missing source or an
	// undeterminable archive type is caught while the root is still empty.
	for i, step := range rec.Steps {
		runner, err := newRunner(step)
		if err != nil {
			return err
		}
		if err := runner.prepare(c); err != nil {
			return err
		}
		runners = append(runners, runner)
		c.logger.Trace().Int("step", i).Str("kind", step.Kind()).Msg("Step prepared")
	}

	for i, runner := range runners {
		if err := runner.apply(root); err != nil {
			if errors.IsErrorCode(err, errors.ErrPathNotFound) {
				return err
			}
			return errors.Wrapf(err, errors.ErrStepExecution,
				"step %d (%s) failed", i, rec.Steps[i].Kind()).
				WithDetail("step", i).
				WithDetail("kind", rec.Steps[i].Kind())
		}
		c.logger.Trace().Int("step", i).Str("kind", rec.Steps[i].Kind()).Msg("Step applied")
	}

	if err := fn(root); err != nil {
		return err
	}

	if c.Pause != nil {
		c.Pause(root)
	}
	return nil
}

// insideRoot joins a recipe-declared relative path onto the build root,
// rejecting anything that would escape it.
func insideRoot(root, rel string) (string, error) {
	if rel == "" {
		return root, nil
	}
	joined := filepath.Join(root, filepath.FromSlash(rel))
	if joined != root && !filepath.IsLocal(filepath.FromSlash(rel)) {
		return "", errors.Newf(errors.ErrInvalidRecipe, "path %q escapes the build root", rel)
	}
	return joined, nil
}

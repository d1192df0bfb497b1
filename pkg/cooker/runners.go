package cooker

import (
	"io"
	"os"
	"path/filepath"

	"github.com/recookio/recook/pkg/errors"
	"github.com/recookio/recook/pkg/recipe"
	"github.com/recookio/recook/pkg/store"
	"github.com/recookio/recook/pkg/unpack"
	"github.com/rs/zerolog"
)

// stepRunner is the execution side of a recipe step: prepare resolves
// external resources without touching the build root, apply performs the
// mutation, release drops any held handles.
type stepRunner interface {
	prepare(c *Cooker) error
	apply(root string) error
	release(logger zerolog.Logger)
}

// runnerConstructors maps a step kind to its runner constructor
var runnerConstructors = map[string]func(recipe.Step) stepRunner{
	"archive": func(s recipe.Step) stepRunner { return &archiveRunner{step: s.(recipe.FetchArchive)} },
	"file":    func(s recipe.Step) stepRunner { return &fileRunner{step: s.(recipe.FetchFile)} },
	"rename":  func(s recipe.Step) stepRunner { return &renameRunner{step: s.(recipe.Rename)} },
	"remove":  func(s recipe.Step) stepRunner { return &removeRunner{step: s.(recipe.Remove)} },
}

func newRunner(step recipe.Step) (stepRunner, error) {
	construct, ok := runnerConstructors[step.Kind()]
	if !ok {
		return nil, errors.Newf(errors.ErrInternal, "no runner for step kind %q", step.Kind())
	}
	return construct(step), nil
}

// archiveRunner unpacks a locally stored archive into the build root
type archiveRunner struct {
	step     recipe.FetchArchive
	unpacker unpack.Unpacker
	file     *os.File
	size     int64
	format   unpack.Format
	name     string
}

func (r *archiveRunner) prepare(c *Cooker) error {
	path, err := c.Store.Lookup(r.step.Href)
	if err != nil {
		return err
	}

	name, err := store.Basename(r.step.Href)
	if err != nil {
		return err
	}
	r.format, err = unpack.Detect(name, r.step.Type)
	if err != nil {
		return err
	}
	r.name = name

	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceMissing, "opening %q", path)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return errors.Wrapf(err, errors.ErrSourceMissing, "stat %q", path)
	}

	r.file = file
	r.size = info.Size()
	r.unpacker = c.Unpacker
	return nil
}

func (r *archiveRunner) apply(root string) error {
	dest, err := insideRoot(root, r.step.Dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dest, 0755); err != nil {
		return err
	}
	return r.unpacker.Unpack(unpack.Request{
		Source:      r.file,
		Size:        r.size,
		Format:      r.format,
		Name:        r.name,
		Dest:        dest,
		StartOffset: r.step.StartOffset,
		Extract:     r.step.Extract,
	})
}

func (r *archiveRunner) release(logger zerolog.Logger) {
	if r.file == nil {
		return
	}
	if err := r.file.Close(); err != nil {
		logger.Warn().Err(err).Str("href", r.step.Href).Msg("Failed to close archive handle")
	}
	r.file = nil
}

// fileRunner copies a single locally stored file into the build root
type fileRunner struct {
	step recipe.FetchFile
	file *os.File
	mode os.FileMode
}

func (r *fileRunner) prepare(c *Cooker) error {
	path, err := c.Store.Lookup(r.step.Href)
	if err != nil {
		return err
	}
	file, err := os.Open(path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrSourceMissing, "opening %q", path)
	}
	info, err := file.Stat()
	if err != nil {
		_ = file.Close()
		return errors.Wrapf(err, errors.ErrSourceMissing, "stat %q", path)
	}

	r.file = file
	r.mode = 0644
	if info.Mode()&0111 != 0 {
		r.mode = 0755
	}
	return nil
}

func (r *fileRunner) apply(root string) error {
	dest, err := insideRoot(root, r.step.Dest)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, r.mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, r.file); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}

func (r *fileRunner) release(logger zerolog.Logger) {
	if r.file == nil {
		return
	}
	if err := r.file.Close(); err != nil {
		logger.Warn().Err(err).Str("href", r.step.Href).Msg("Failed to close file handle")
	}
	r.file = nil
}

// renameRunner moves an existing path within the build root
type renameRunner struct {
	step recipe.Rename
}

func (r *renameRunner) prepare(*Cooker) error { return nil }

func (r *renameRunner) apply(root string) error {
	source, err := insideRoot(root, r.step.Source)
	if err != nil {
		return err
	}
	dest, err := insideRoot(root, r.step.Dest)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(source); err != nil {
		return errors.Wrapf(err, errors.ErrPathNotFound,
			"rename source %q does not exist in the build tree", r.step.Source).
			WithDetail("source", r.step.Source)
	}
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return err
	}
	return os.Rename(source, dest)
}

func (r *renameRunner) release(zerolog.Logger) {}

// removeRunner deletes a path within the build root
type removeRunner struct {
	step recipe.Remove
}

func (r *removeRunner) prepare(*Cooker) error { return nil }

func (r *removeRunner) apply(root string) error {
	path, err := insideRoot(root, r.step.Path)
	if err != nil {
		return err
	}
	if _, err := os.Lstat(path); err != nil {
		return errors.Wrapf(err, errors.ErrPathNotFound,
			"remove path %q does not exist in the build tree", r.step.Path).
			WithDetail("path", r.step.Path)
	}
	return os.RemoveAll(path)
}

func (r *removeRunner) release(zerolog.Logger) {}

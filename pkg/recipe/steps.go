// Package recipe models the declarative build steps an implementation
// declares in a feed: an ordered list of archive unpacks, file copies,
// renames and removals that reconstruct the implementation's file tree.
package recipe

// Step is the closed set of recipe step kinds. Steps execute strictly in
// declaration order; later steps may reference paths created by earlier ones.
type Step interface {
	// Kind returns the feed tag name for the step ("archive", "file",
	// "rename", "remove").
	Kind() string

	sealed()
}

// FetchArchive unpacks a locally stored archive into the build root, or a
// subdirectory of it when Dest is set.
type FetchArchive struct {
	// Href is the declared source URL; only its final path segment is used
	// to locate the archive in the local store.
	Href string

	// Size is the declared archive size in bytes. Advisory feed metadata,
	// not enforced during execution.
	Size int64

	// Extract optionally names a single top-level directory of the archive
	// whose contents are unpacked instead of the whole archive.
	Extract string

	// StartOffset is the number of leading bytes to skip before the archive
	// data begins.
	StartOffset int64

	// Type is the declared MIME type; when empty the type is guessed from
	// the Href suffix.
	Type string

	// Dest is the build-root-relative directory to unpack into; empty means
	// the build root itself.
	Dest string
}

// FetchFile copies a single locally stored file into the build root.
type FetchFile struct {
	Href string
	Dest string
	Size int64
}

// Rename moves an existing path within the build root.
type Rename struct {
	Source string
	Dest   string
}

// Remove deletes a path within the build root.
type Remove struct {
	Path string
}

func (FetchArchive) Kind() string { return "archive" }
func (FetchFile) Kind() string    { return "file" }
func (Rename) Kind() string       { return "rename" }
func (Remove) Kind() string       { return "remove" }

func (FetchArchive) sealed() {}
func (FetchFile) sealed()    {}
func (Rename) sealed()       {}
func (Remove) sealed()       {}

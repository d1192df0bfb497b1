// Package feed wraps the XML feed document: loading, locating
// implementation records, applying attribute patches accumulated during
// verification, and persisting the corrected document with a backup of the
// original. Whether the feed needs persisting is derived from the applied
// patch count, not tracked separately.
package feed

import (
	"os"

	"github.com/beevik/etree"
	"github.com/recookio/recook/pkg/errors"
	"github.com/recookio/recook/pkg/logging"
)

// DefaultBackupSuffix is appended to the feed path for the pre-save copy
const DefaultBackupSuffix = ".bak"

// Document is a loaded feed
type Document struct {
	doc  *etree.Document
	path string

	// BackupSuffix names the sibling copy written before saving
	BackupSuffix string

	applied int
}

// Implementation is one implementation record within a feed
type Implementation struct {
	elem *etree.Element
}

// Load parses the feed file at path
func Load(path string) (*Document, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromFile(path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrFeedLoad, "cannot read feed %q", path)
	}
	if doc.Root() == nil {
		return nil, errors.Newf(errors.ErrFeedLoad, "feed %q has no root element", path)
	}
	return &Document{doc: doc, path: path, BackupSuffix: DefaultBackupSuffix}, nil
}

// Path returns the file the document was loaded from
func (d *Document) Path() string {
	return d.path
}

// Implementations returns every implementation record in document order
func (d *Document) Implementations() []*Implementation {
	var impls []*Implementation
	for _, elem := range d.doc.Root().FindElements("//implementation") {
		impls = append(impls, &Implementation{elem: elem})
	}
	return impls
}

// ID returns the implementation's declared identifier
func (i *Implementation) ID() string {
	return i.elem.SelectAttrValue("id", "")
}

// Version returns the implementation's opaque version string
func (i *Implementation) Version() string {
	return i.elem.SelectAttrValue("version", "")
}

// Element exposes the underlying XML element for recipe parsing
func (i *Implementation) Element() *etree.Element {
	return i.elem
}

// Patch is one attribute correction produced by verification. An empty
// Element targets the implementation element itself; otherwise the named
// child element is targeted and created if missing.
type Patch struct {
	Element string
	Attr    string
	Value   string
}

// Apply writes the patches onto the implementation's element. The document
// counts applied patches; Modified derives from that count.
func (d *Document) Apply(impl *Implementation, patches []Patch) {
	logger := logging.GetLogger("feed")
	for _, p := range patches {
		target := impl.elem
		if p.Element != "" {
			target = impl.elem.SelectElement(p.Element)
			if target == nil {
				target = impl.elem.CreateElement(p.Element)
			}
		}
		target.CreateAttr(p.Attr, p.Value)
		d.applied++
		logger.Info().
			Str("impl", impl.ID()).
			Str("element", p.Element).
			Str("attr", p.Attr).
			Str("value", p.Value).
			Msg("Feed attribute corrected")
	}
}

// Modified reports whether any patch has been applied
func (d *Document) Modified() bool {
	return d.applied > 0
}

// Save persists the document back to its original path, first copying the
// original file to a backup sibling. A document with no applied patches is
// left untouched.
func (d *Document) Save() error {
	if !d.Modified() {
		return nil
	}

	original, err := os.ReadFile(d.path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFeedSave, "cannot back up feed %q", d.path)
	}
	backup := d.path + d.BackupSuffix
	if err := os.WriteFile(backup, original, 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFeedSave, "cannot write backup %q", backup)
	}

	if err := d.doc.WriteToFile(d.path); err != nil {
		return errors.Wrapf(err, errors.ErrFeedSave, "cannot write feed %q", d.path)
	}
	logger := logging.GetLogger("feed")
	logger.Info().
		Str("path", d.path).
		Str("backup", backup).
		Int("patches", d.applied).
		Msg("Feed rewritten")
	return nil
}

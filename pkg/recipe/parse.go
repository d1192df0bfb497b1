package recipe

import (
	"strconv"

	"github.com/beevik/etree"
	"github.com/recookio/recook/pkg/errors"
)

// stepParsers maps a feed tag name to its step constructor. Parsing is a
// table lookup, not dynamic dispatch on the tag.
var stepParsers = map[string]func(*etree.Element) (Step, error){
	"archive": parseArchive,
	"file":    parseFile,
	"rename":  parseRename,
	"remove":  parseRemove,
}

// FromImplementation builds a Recipe from a feed implementation element.
// A <recipe> child contributes its steps in document order; a bare <archive>
// or <file> child is treated as a one-step recipe. An implementation with
// neither yields a non-actionable empty recipe.
func FromImplementation(impl *etree.Element) (*Recipe, error) {
	rec := &Recipe{
		ID:      impl.SelectAttrValue("id", ""),
		Version: impl.SelectAttrValue("version", ""),
	}

	if digests := impl.SelectElement("manifest-digest"); digests != nil {
		rec.Digests = make(map[string]string, len(digests.Attr))
		for _, attr := range digests.Attr {
			rec.Digests[attr.Key] = attr.Value
		}
	}

	if recipeElem := impl.SelectElement("recipe"); recipeElem != nil {
		for _, child := range recipeElem.ChildElements() {
			parse, ok := stepParsers[child.Tag]
			if !ok {
				return nil, errors.Newf(errors.ErrInvalidRecipe,
					"unknown step <%s> in recipe of %q", child.Tag, rec.ID)
			}
			step, err := parse(child)
			if err != nil {
				return nil, err
			}
			rec.Steps = append(rec.Steps, step)
		}
		return rec, nil
	}

	// A top-level archive or file is shorthand for a one-step recipe.
	for _, tag := range []string{"archive", "file"} {
		if child := impl.SelectElement(tag); child != nil {
			step, err := stepParsers[tag](child)
			if err != nil {
				return nil, err
			}
			rec.Steps = append(rec.Steps, step)
			break
		}
	}
	return rec, nil
}

func parseArchive(elem *etree.Element) (Step, error) {
	href, err := requireAttr(elem, "href")
	if err != nil {
		return nil, err
	}
	size, err := sizeAttr(elem)
	if err != nil {
		return nil, err
	}
	offset, err := int64Attr(elem, "start-offset")
	if err != nil {
		return nil, err
	}
	return FetchArchive{
		Href:        href,
		Size:        size,
		Extract:     elem.SelectAttrValue("extract", ""),
		StartOffset: offset,
		Type:        elem.SelectAttrValue("type", ""),
		Dest:        elem.SelectAttrValue("dest", ""),
	}, nil
}

func parseFile(elem *etree.Element) (Step, error) {
	href, err := requireAttr(elem, "href")
	if err != nil {
		return nil, err
	}
	dest, err := requireAttr(elem, "dest")
	if err != nil {
		return nil, err
	}
	size, err := sizeAttr(elem)
	if err != nil {
		return nil, err
	}
	return FetchFile{Href: href, Dest: dest, Size: size}, nil
}

func parseRename(elem *etree.Element) (Step, error) {
	source, err := requireAttr(elem, "source")
	if err != nil {
		return nil, err
	}
	dest, err := requireAttr(elem, "dest")
	if err != nil {
		return nil, err
	}
	return Rename{Source: source, Dest: dest}, nil
}

func parseRemove(elem *etree.Element) (Step, error) {
	path, err := requireAttr(elem, "path")
	if err != nil {
		return nil, err
	}
	return Remove{Path: path}, nil
}

func requireAttr(elem *etree.Element, name string) (string, error) {
	value := elem.SelectAttrValue(name, "")
	if value == "" {
		return "", errors.Newf(errors.ErrInvalidRecipe,
			"<%s> step is missing required attribute %q", elem.Tag, name).
			WithDetail("tag", elem.Tag).
			WithDetail("attribute", name)
	}
	return value, nil
}

func sizeAttr(elem *etree.Element) (int64, error) {
	return int64Attr(elem, "size")
}

func int64Attr(elem *etree.Element, name string) (int64, error) {
	value := elem.SelectAttrValue(name, "")
	if value == "" {
		return 0, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, errors.ErrInvalidRecipe,
			"<%s> attribute %q is not a number", elem.Tag, name)
	}
	return n, nil
}

package unpack

import (
	"fmt"
	"path"
	"strings"
)

// entryName normalizes an archive member name and applies the extract
// filter. It returns the destination-relative name, whether the entry should
// be materialized at all, and an error for names escaping the destination.
func entryName(raw, extract string) (string, bool, error) {
	name := path.Clean(strings.TrimPrefix(raw, "./"))
	if name == "." || name == "" {
		return "", false, nil
	}
	if path.IsAbs(name) || name == ".." || strings.HasPrefix(name, "../") {
		return "", false, fmt.Errorf("archive entry %q escapes the extraction root", raw)
	}

	if extract != "" {
		if name == extract {
			// The selected directory itself; its contents land at dest.
			return "", false, nil
		}
		rest, ok := strings.CutPrefix(name, extract+"/")
		if !ok {
			return "", false, nil
		}
		name = rest
	}
	return name, true, nil
}

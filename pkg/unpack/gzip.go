package unpack

import (
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"

	"github.com/recookio/recook/pkg/errors"
)

// extractGzip decompresses a single-file gzip source into dest. The output
// file name comes from the gzip header when one is recorded, otherwise from
// the source name with its .gz suffix stripped.
func extractGzip(src io.Reader, dest, name, extract string) error {
	if extract != "" {
		return errors.Newf(errors.ErrUnsupportedType,
			"extract attribute is not applicable to a plain gzip source")
	}

	gz, err := gzip.NewReader(src)
	if err != nil {
		return fmt.Errorf("opening gzip stream: %w", err)
	}
	defer func() {
		_ = gz.Close()
	}()

	outName, err := gzipOutputName(gz.Name, name)
	if err != nil {
		return err
	}
	return writeEntry(filepath.Join(dest, outName), gz, 0644)
}

// gzipOutputName picks the decompressed file's name. Header names may carry
// path separators from the compressing system, so only the base is kept.
func gzipOutputName(headerName, sourceName string) (string, error) {
	if headerName != "" {
		base := path.Base(strings.ReplaceAll(headerName, `\`, "/"))
		if base != "." && base != "/" {
			return base, nil
		}
	}
	if stripped := strings.TrimSuffix(strings.ToLower(sourceName), ".gz"); stripped != "" && len(stripped) < len(sourceName) {
		return sourceName[:len(stripped)], nil
	}
	return "", errors.Newf(errors.ErrUnsupportedType,
		"cannot derive an output name for gzip source %q", sourceName)
}

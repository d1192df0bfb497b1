// Package unpack provides the archive extraction capability consumed by
// fetch-archive steps: format detection from a declared MIME type or URL
// suffix, and extraction of zip, tar family and single-file gzip sources
// into a target directory.
package unpack

import (
	"io"
	"strings"

	"github.com/recookio/recook/pkg/errors"
)

// Format identifies a supported archive format
type Format int

const (
	FormatUnknown Format = iota
	FormatZip
	FormatTar
	FormatTarGzip
	FormatTarBzip2
	FormatTarZstd
	FormatGzip
)

func (f Format) String() string {
	switch f {
	case FormatZip:
		return "zip"
	case FormatTar:
		return "tar"
	case FormatTarGzip:
		return "tar.gz"
	case FormatTarBzip2:
		return "tar.bz2"
	case FormatTarZstd:
		return "tar.zst"
	case FormatGzip:
		return "gz"
	default:
		return "unknown"
	}
}

var mimeFormats = map[string]Format{
	"application/zip":                   FormatZip,
	"application/x-tar":                 FormatTar,
	"application/x-compressed-tar":      FormatTarGzip,
	"application/x-bzip-compressed-tar": FormatTarBzip2,
	"application/x-zstd-compressed-tar": FormatTarZstd,
	"application/gzip":                  FormatGzip,
}

// suffixFormats is checked in order; longer suffixes first so .tar.gz wins
// over plain .gz.
var suffixFormats = []struct {
	suffix string
	format Format
}{
	{".tar.gz", FormatTarGzip},
	{".tgz", FormatTarGzip},
	{".tar.bz2", FormatTarBzip2},
	{".tar.zst", FormatTarZstd},
	{".tar", FormatTar},
	{".zip", FormatZip},
	{".gz", FormatGzip},
}

// Detect determines the archive format from the declared MIME type when
// present, otherwise from the file name suffix. An undeterminable type is an
// UNSUPPORTED_TYPE condition.
func Detect(name, declaredType string) (Format, error) {
	if declaredType != "" {
		if format, ok := mimeFormats[declaredType]; ok {
			return format, nil
		}
		return FormatUnknown, errors.Newf(errors.ErrUnsupportedType,
			"unsupported archive type %q", declaredType).
			WithDetail("type", declaredType)
	}

	lower := strings.ToLower(name)
	for _, entry := range suffixFormats {
		if strings.HasSuffix(lower, entry.suffix) {
			return entry.format, nil
		}
	}
	return FormatUnknown, errors.Newf(errors.ErrUnsupportedType,
		"cannot determine archive type of %q", name).
		WithDetail("name", name)
}

// Request describes one extraction
type Request struct {
	// Source provides the archive bytes; Size is the total number of bytes
	// available, including any leading padding.
	Source io.ReaderAt
	Size   int64

	// Format selects the decoder, as returned by Detect.
	Format Format

	// Name is the source file's base name. Single-file compression formats
	// derive the output file name from it.
	Name string

	// Dest is the directory to extract into. It must already exist.
	Dest string

	// StartOffset is the number of leading bytes to skip before the archive
	// data begins.
	StartOffset int64

	// Extract optionally names one top-level directory of the archive; only
	// entries under it are extracted, with the prefix stripped.
	Extract string
}

// Unpacker extracts archives. It is the capability boundary fetch-archive
// steps consume; tests substitute their own.
type Unpacker interface {
	Unpack(req Request) error
}

// New returns the default Unpacker backed by the standard tar/zip decoders
func New() Unpacker {
	return extractor{}
}

type extractor struct{}

func (e extractor) Unpack(req Request) error {
	section := io.NewSectionReader(req.Source, req.StartOffset, req.Size-req.StartOffset)
	switch req.Format {
	case FormatZip:
		return extractZip(section, section.Size(), req.Dest, req.Extract)
	case FormatTar, FormatTarGzip, FormatTarBzip2, FormatTarZstd:
		return extractTar(section, req.Format, req.Dest, req.Extract)
	case FormatGzip:
		return extractGzip(section, req.Dest, req.Name, req.Extract)
	default:
		return errors.Newf(errors.ErrUnsupportedType, "no decoder for archive format %q", req.Format)
	}
}

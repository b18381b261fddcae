package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"walflow/internal/domain"
)

// ErrUnsupportedFormat is returned for format names without a codec.
var ErrUnsupportedFormat = errors.New("unsupported plan format")

// Importer interface for reading plan documents from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.Plan, error)
	Format() string
}

// Exporter interface for writing plan documents to various formats
type Exporter interface {
	Export(plan *domain.Plan, w io.Writer) error
	Format() string
}

// Codec reads and writes one plan format.
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec registered under a format name.
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	}
	return nil, fmt.Errorf("%w %q", ErrUnsupportedFormat, format)
}

// ForPath picks a codec from a file extension. Files without a known
// extension are read as JSON.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return NewYAMLCodec()
	}
	return NewJSONCodec()
}

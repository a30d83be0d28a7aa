package codec

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/lattice/pkg/schema"
)

// Supported format identifiers.
const (
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatCompact = "compact"
)

// Codec converts network documents to and from a byte encoding.
type Codec interface {
	Encode(doc *schema.Document, w io.Writer) error
	Decode(r io.Reader) (*schema.Document, error)
	Format() string
}

// ByFormat returns the codec registered for format.
func ByFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case FormatJSON:
		return NewJSONCodec(), nil
	case FormatYAML, "yml":
		return NewYAMLCodec(), nil
	case FormatCompact:
		return NewCompactCodec(), nil
	default:
		return nil, fmt.Errorf("unsupported format: %q", format)
	}
}

// ForPath picks a codec from a file extension: .cjson is compact, .yaml and
// .yml are YAML, everything else is JSON.
func ForPath(path string) Codec {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".cjson":
		return NewCompactCodec()
	case ".yaml", ".yml":
		return NewYAMLCodec()
	default:
		return NewJSONCodec()
	}
}

// Marshal encodes doc with c into a byte slice.
func Marshal(c Codec, doc *schema.Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.Encode(doc, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Unmarshal decodes data with c.
func Unmarshal(c Codec, data []byte) (*schema.Document, error) {
	return c.Decode(bytes.NewReader(data))
}

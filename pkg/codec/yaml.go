package codec

import (
	"fmt"
	"io"

	"github.com/aretw0/lattice/pkg/schema"

	"gopkg.in/yaml.v3"
)

// YAMLCodec handles the verbose YAML encoding
type YAMLCodec struct{}

// NewYAMLCodec creates a new YAML codec
func NewYAMLCodec() *YAMLCodec {
	return &YAMLCodec{}
}

// Format returns the codec format identifier
func (c *YAMLCodec) Format() string {
	return FormatYAML
}

// Decode parses a document from YAML
func (c *YAMLCodec) Decode(r io.Reader) (*schema.Document, error) {
	var doc schema.Document
	decoder := yaml.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	return &doc, nil
}

// Encode writes a document as YAML
func (c *YAMLCodec) Encode(doc *schema.Document, w io.Writer) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode YAML: %w", err)
	}

	return nil
}

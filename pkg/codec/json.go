package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/lattice/pkg/schema"
)

// JSONCodec handles the verbose, self-describing JSON encoding.
type JSONCodec struct{}

// NewJSONCodec creates a new JSON codec
func NewJSONCodec() *JSONCodec {
	return &JSONCodec{}
}

// Format returns the codec format identifier
func (c *JSONCodec) Format() string {
	return FormatJSON
}

// Decode parses a document from JSON
func (c *JSONCodec) Decode(r io.Reader) (*schema.Document, error) {
	var doc schema.Document
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse JSON: %w", err)
	}

	return &doc, nil
}

// Encode writes a document as indented JSON
func (c *JSONCodec) Encode(doc *schema.Document, w io.Writer) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")

	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}

	return nil
}

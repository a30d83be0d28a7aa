package lattice

import (
	"fmt"
	"os"

	"github.com/aretw0/lattice/pkg/codec"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/model"
	"github.com/aretw0/lattice/pkg/network"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
)

// Version is the release of the lattice module. Overridden at build time with
// -ldflags "-X github.com/aretw0/lattice.Version=...".
var Version = "0.1.0"

// DefaultKinds returns a kind registry holding every built-in component kind.
func DefaultKinds() *registry.Registry {
	r := registry.NewRegistry()
	model.RegisterKinds(r)
	network.RegisterKinds(r)
	return r
}

// Marshal encodes the component tree rooted at root in format.
func Marshal(root domain.Component, format string) ([]byte, error) {
	c, err := codec.ByFormat(format)
	if err != nil {
		return nil, err
	}
	doc, err := schema.Encode(root)
	if err != nil {
		return nil, err
	}
	return codec.Marshal(c, doc)
}

// Unmarshal decodes a network encoded in format, materializing components
// through kinds. A nil kinds uses DefaultKinds.
func Unmarshal(data []byte, format string, kinds *registry.Registry) (*network.Digraph, error) {
	c, err := codec.ByFormat(format)
	if err != nil {
		return nil, err
	}
	doc, err := codec.Unmarshal(c, data)
	if err != nil {
		return nil, err
	}
	if kinds == nil {
		kinds = DefaultKinds()
	}
	return network.Unmarshal(doc, kinds)
}

// ReadDocument reads the document at path, choosing the codec by extension.
func ReadDocument(path string) (*schema.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	doc, err := codec.Unmarshal(codec.ForPath(path), data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

// ReadFile loads the network stored at path.
func ReadFile(path string, kinds *registry.Registry) (*network.Digraph, error) {
	doc, err := ReadDocument(path)
	if err != nil {
		return nil, err
	}
	if kinds == nil {
		kinds = DefaultKinds()
	}
	return network.Unmarshal(doc, kinds)
}

// WriteFile stores root at path, choosing the codec by extension.
func WriteFile(path string, root domain.Component) error {
	doc, err := schema.Encode(root)
	if err != nil {
		return err
	}
	data, err := codec.Marshal(codec.ForPath(path), doc)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

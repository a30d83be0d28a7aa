package schema

import (
	"fmt"
	"reflect"
	"time"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/mitchellh/mapstructure"
)

// Persistent is the capability every serializable level chain implements.
// MarshalChain must emit the ancestor levels first and then its own level;
// UnmarshalChain must consume them in the same order.
type Persistent interface {
	domain.Component
	MarshalChain(w *Writer) error
	UnmarshalChain(r *Reader) error
}

type encoder struct {
	refs map[domain.Component]int
	next int
}

// Writer collects the level chain of one component and shares reference
// tracking with every other Writer of the same document.
type Writer struct {
	enc    *encoder
	layers []Layer
}

// NewWriter creates a Writer with its own reference table.
func NewWriter() *Writer {
	return &Writer{enc: &encoder{refs: make(map[domain.Component]int)}}
}

// Level appends a level carrying only plain fields. fields may be nil.
func (w *Writer) Level(name string, fields any) {
	w.layers = append(w.layers, Layer{Level: name, Fields: fields})
}

// Append appends a fully built level.
func (w *Writer) Append(l Layer) {
	w.layers = append(w.layers, l)
}

// Layers returns the levels written so far.
func (w *Writer) Layers() []Layer {
	return w.layers
}

// Component emits c: a definition the first time the identity is seen in this
// document, a back-reference afterwards.
func (w *Writer) Component(c domain.Component) (ComponentRecord, error) {
	if c == nil {
		return ComponentRecord{}, fmt.Errorf("%w: nil component", domain.ErrNotPersistent)
	}
	if reflect.TypeOf(c).Kind() != reflect.Pointer {
		return ComponentRecord{}, fmt.Errorf("%w: %s is not a pointer", domain.ErrNotPersistent, c.Kind())
	}
	if ref, ok := w.enc.refs[c]; ok {
		return ComponentRecord{Ref: ref}, nil
	}

	p, ok := c.(Persistent)
	if !ok {
		return ComponentRecord{}, fmt.Errorf("%w: %s", domain.ErrNotPersistent, c.Kind())
	}

	// The ref is bound before the chain is written so that cycles back-reference.
	w.enc.next++
	ref := w.enc.next
	w.enc.refs[c] = ref

	child := &Writer{enc: w.enc}
	if err := p.MarshalChain(child); err != nil {
		return ComponentRecord{}, fmt.Errorf("failed to marshal %s (ref %d): %w", c.Kind(), ref, err)
	}

	return ComponentRecord{Ref: ref, Kind: c.Kind(), Chain: child.layers}, nil
}

type decoder struct {
	kinds *registry.Registry
	table map[int]domain.Component
}

// Reader walks the level chain of one component and shares materialized
// instances with every other Reader of the same document.
type Reader struct {
	dec    *decoder
	layers []Layer
	pos    int
}

// NewReader creates a Reader resolving kinds through the given registry.
func NewReader(kinds *registry.Registry) *Reader {
	return &Reader{dec: &decoder{kinds: kinds, table: make(map[int]domain.Component)}}
}

// Level consumes the next level, which must be named name, and decodes its
// fields into out when both are present.
func (r *Reader) Level(name string, out any) (Layer, error) {
	if r.pos >= len(r.layers) {
		return Layer{}, fmt.Errorf("%w: expected level %q, chain ended", domain.ErrChainMismatch, name)
	}
	l := r.layers[r.pos]
	if l.Level != name {
		return Layer{}, fmt.Errorf("%w: expected level %q, found %q", domain.ErrChainMismatch, name, l.Level)
	}
	r.pos++

	if out != nil && l.Fields != nil {
		if err := DecodeFields(l.Fields, out); err != nil {
			return Layer{}, fmt.Errorf("level %q: %w", name, err)
		}
	}
	return l, nil
}

// Component resolves rec. A definition is materialized through the kind
// registry and reported as fresh; a back-reference returns the instance bound
// to its ref earlier in the document.
func (r *Reader) Component(rec ComponentRecord) (domain.Component, bool, error) {
	if rec.Ref <= 0 {
		return nil, false, &domain.CorruptGraphError{Ref: rec.Ref, Reason: "missing component reference"}
	}

	if rec.IsBackRef() {
		c, ok := r.dec.table[rec.Ref]
		if !ok {
			return nil, false, &domain.CorruptGraphError{Ref: rec.Ref, Reason: "unresolved back-reference"}
		}
		return c, false, nil
	}

	if _, dup := r.dec.table[rec.Ref]; dup {
		return nil, false, &domain.CorruptGraphError{Ref: rec.Ref, Reason: "duplicate definition"}
	}

	c, err := r.dec.kinds.New(rec.Kind)
	if err != nil {
		return nil, false, err
	}
	p, ok := c.(Persistent)
	if !ok {
		return nil, false, fmt.Errorf("%w: %s", domain.ErrNotPersistent, rec.Kind)
	}

	r.dec.table[rec.Ref] = c

	child := &Reader{dec: r.dec, layers: rec.Chain}
	if err := p.UnmarshalChain(child); err != nil {
		return nil, false, fmt.Errorf("failed to unmarshal %s (ref %d): %w", rec.Kind, rec.Ref, err)
	}
	if child.pos != len(child.layers) {
		return nil, false, fmt.Errorf("%w: %s (ref %d) left %d unread levels",
			domain.ErrChainMismatch, rec.Kind, rec.Ref, len(child.layers)-child.pos)
	}

	return c, true, nil
}

// DecodeFields decodes loosely typed level fields (as produced by the JSON and
// YAML decoders) into out, using json tag names.
func DecodeFields(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// Encode writes the document rooted at root.
func Encode(root domain.Component) (*Document, error) {
	rec, err := NewWriter().Component(root)
	if err != nil {
		return nil, err
	}
	return &Document{Version: Version, Root: rec}, nil
}

// Decode materializes the document's root component.
func Decode(doc *Document, kinds *registry.Registry) (domain.Component, error) {
	if doc == nil {
		return nil, fmt.Errorf("nil document")
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	if doc.Root.IsBackRef() {
		return nil, &domain.CorruptGraphError{Ref: doc.Root.Ref, Reason: "root is a back-reference"}
	}

	c, _, err := NewReader(kinds).Component(doc.Root)
	return c, err
}

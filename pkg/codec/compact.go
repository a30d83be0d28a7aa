package codec

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/schema"
)

// CompactCodec handles a positional JSON encoding without field names.
//
//	document  = [version, component]
//	component = [ref] | [ref, kind, [layer...]]
//	layer     = [level, fields?, [component...]?, [coupling...]?]
//	coupling  = [node, [node...]]
//	node      = [ref | "self", port]
//
// Trailing empty layer slots are omitted.
type CompactCodec struct{}

// NewCompactCodec creates a new compact codec
func NewCompactCodec() *CompactCodec {
	return &CompactCodec{}
}

// Format returns the codec format identifier
func (c *CompactCodec) Format() string {
	return FormatCompact
}

// Encode writes doc as a single line of positional JSON.
func (c *CompactCodec) Encode(doc *schema.Document, w io.Writer) error {
	if doc == nil {
		return fmt.Errorf("failed to encode compact: nil document")
	}
	root, err := compactComponent(doc.Root)
	if err != nil {
		return fmt.Errorf("failed to encode compact: %w", err)
	}
	if err := json.NewEncoder(w).Encode([]any{doc.Version, root}); err != nil {
		return fmt.Errorf("failed to encode compact: %w", err)
	}
	return nil
}

// Decode parses a positional JSON document.
func (c *CompactCodec) Decode(r io.Reader) (*schema.Document, error) {
	var top []json.RawMessage
	if err := json.NewDecoder(r).Decode(&top); err != nil {
		return nil, fmt.Errorf("failed to parse compact: %w", err)
	}
	if len(top) != 2 {
		return nil, fmt.Errorf("failed to parse compact: document needs 2 elements, got %d", len(top))
	}

	doc := &schema.Document{}
	if err := json.Unmarshal(top[0], &doc.Version); err != nil {
		return nil, fmt.Errorf("failed to parse compact version: %w", err)
	}
	root, err := expandComponent(top[1])
	if err != nil {
		return nil, fmt.Errorf("failed to parse compact: %w", err)
	}
	doc.Root = root
	return doc, nil
}

func compactComponent(rec schema.ComponentRecord) ([]any, error) {
	if rec.IsBackRef() {
		return []any{rec.Ref}, nil
	}
	layers := make([]any, 0, len(rec.Chain))
	for _, l := range rec.Chain {
		cl, err := compactLayer(l)
		if err != nil {
			return nil, err
		}
		layers = append(layers, cl)
	}
	return []any{rec.Ref, rec.Kind, layers}, nil
}

func compactLayer(l schema.Layer) ([]any, error) {
	comps := make([]any, 0, len(l.Components))
	for _, child := range l.Components {
		cc, err := compactComponent(child)
		if err != nil {
			return nil, err
		}
		comps = append(comps, cc)
	}

	graph := make([]any, 0, len(l.Graph))
	for _, cr := range l.Graph {
		to := make([]any, 0, len(cr.To))
		for _, n := range cr.To {
			to = append(to, compactNode(n))
		}
		graph = append(graph, []any{compactNode(cr.From), to})
	}

	out := []any{l.Level, l.Fields, comps, graph}
	switch {
	case len(graph) > 0:
	case len(comps) > 0:
		out = out[:3]
	case l.Fields != nil:
		out = out[:2]
	default:
		out = out[:1]
	}
	return out, nil
}

func compactNode(n schema.NodeRecord) []any {
	return []any{n.Component, n.Port}
}

func expandComponent(raw json.RawMessage) (schema.ComponentRecord, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return schema.ComponentRecord{}, fmt.Errorf("component: %w", err)
	}

	var rec schema.ComponentRecord
	switch len(parts) {
	case 1, 3:
	default:
		return rec, fmt.Errorf("component: expected 1 or 3 elements, got %d", len(parts))
	}
	if err := unmarshalNullable(parts[0], &rec.Ref); err != nil {
		return rec, fmt.Errorf("component ref: %w", err)
	}
	if len(parts) == 1 {
		return rec, nil
	}

	if err := json.Unmarshal(parts[1], &rec.Kind); err != nil {
		return rec, fmt.Errorf("component %d kind: %w", rec.Ref, err)
	}
	var layers []json.RawMessage
	if err := json.Unmarshal(parts[2], &layers); err != nil {
		return rec, fmt.Errorf("component %d chain: %w", rec.Ref, err)
	}
	for _, lr := range layers {
		l, err := expandLayer(lr)
		if err != nil {
			return rec, fmt.Errorf("component %d: %w", rec.Ref, err)
		}
		rec.Chain = append(rec.Chain, l)
	}
	return rec, nil
}

func expandLayer(raw json.RawMessage) (schema.Layer, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(raw, &parts); err != nil {
		return schema.Layer{}, fmt.Errorf("layer: %w", err)
	}

	var l schema.Layer
	if len(parts) == 0 || len(parts) > 4 {
		return l, fmt.Errorf("layer: expected 1 to 4 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &l.Level); err != nil {
		return l, fmt.Errorf("layer level: %w", err)
	}

	if len(parts) > 1 {
		if err := json.Unmarshal(parts[1], &l.Fields); err != nil {
			return l, fmt.Errorf("layer %q fields: %w", l.Level, err)
		}
	}

	if len(parts) > 2 {
		var comps []json.RawMessage
		if err := unmarshalNullable(parts[2], &comps); err != nil {
			return l, fmt.Errorf("layer %q components: %w", l.Level, err)
		}
		for _, cr := range comps {
			child, err := expandComponent(cr)
			if err != nil {
				return l, err
			}
			l.Components = append(l.Components, child)
		}
	}

	if len(parts) > 3 {
		var graph [][]json.RawMessage
		if err := unmarshalNullable(parts[3], &graph); err != nil {
			return l, fmt.Errorf("layer %q graph: %w", l.Level, err)
		}
		for _, entry := range graph {
			cr, err := expandCoupling(entry)
			if err != nil {
				return l, fmt.Errorf("layer %q: %w", l.Level, err)
			}
			l.Graph = append(l.Graph, cr)
		}
	}
	return l, nil
}

func expandCoupling(parts []json.RawMessage) (schema.CouplingRecord, error) {
	var cr schema.CouplingRecord
	if len(parts) != 2 {
		return cr, fmt.Errorf("coupling: expected 2 elements, got %d", len(parts))
	}
	from, err := expandNode(parts[0])
	if err != nil {
		return cr, err
	}
	cr.From = from

	var to []json.RawMessage
	if err := unmarshalNullable(parts[1], &to); err != nil {
		return cr, fmt.Errorf("coupling destinations: %w", err)
	}
	for _, raw := range to {
		n, err := expandNode(raw)
		if err != nil {
			return cr, err
		}
		cr.To = append(cr.To, n)
	}
	return cr, nil
}

func expandNode(raw json.RawMessage) (schema.NodeRecord, error) {
	var parts []json.RawMessage
	var n schema.NodeRecord
	if err := json.Unmarshal(raw, &parts); err != nil {
		return n, fmt.Errorf("node: %w", err)
	}
	if len(parts) != 2 {
		return n, fmt.Errorf("node: expected 2 elements, got %d", len(parts))
	}
	if err := json.Unmarshal(parts[0], &n.Component); err != nil {
		return n, fmt.Errorf("node component: %w", err)
	}
	var port int
	if err := json.Unmarshal(parts[1], &port); err != nil {
		return n, fmt.Errorf("node port: %w", err)
	}
	n.Port = domain.Port(port)
	return n, nil
}

// unmarshalNullable leaves out untouched when raw is null.
func unmarshalNullable(raw json.RawMessage, out any) error {
	if string(raw) == "null" {
		return nil
	}
	return json.Unmarshal(raw, out)
}

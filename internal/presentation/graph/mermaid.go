package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/model"
	"github.com/aretw0/lattice/pkg/network"
)

// Overlay highlights components on the rendered graph.
type Overlay struct {
	// Active lists the labels of components to highlight.
	Active []string
}

const boundaryID = "self"

// GenerateMermaid produces a Mermaid flowchart of the network's couplings.
// It applies semantic styling:
// - Boundary: ((Circle))
// - Nested network: [[Subroutine]]
// - Wrapper: [/Parallelogram/]
// - Default: [Rectangle]
// Repeated couplings collapse into one edge labeled with their multiplicity.
func GenerateMermaid(d *network.Digraph, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")
	fmt.Fprintf(&sb, "    %s((\"self\"))\n", boundaryID)

	ids := make(map[domain.Component]string)
	for _, c := range d.Components() {
		h, _ := d.Lookup(c)
		id := fmt.Sprintf("c%d", h)
		ids[c] = id

		opener, closer := "[", "]"
		switch c.Kind() {
		case network.KindDigraph, network.KindSimple:
			opener, closer = "[[", "]]"
		case model.KindWrapper:
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", id, opener, escape(label(c)), closer)
	}

	node := func(e network.Endpoint) string {
		if e.Boundary {
			return boundaryID
		}
		if id, ok := ids[e.Component]; ok {
			return id
		}
		return "missing"
	}

	for _, cp := range d.Graph() {
		from := node(cp.From)
		for _, edge := range collapse(cp.To) {
			text := fmt.Sprintf("%d→%d", cp.From.Port, edge.to.Port)
			if edge.times > 1 {
				text += fmt.Sprintf(" ×%d", edge.times)
			}
			fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, text, node(edge.to))
		}
	}

	if overlay != nil && len(overlay.Active) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		sb.WriteString("    classDef active fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")

		want := make(map[string]bool, len(overlay.Active))
		for _, name := range overlay.Active {
			want[name] = true
		}
		for _, c := range d.Components() {
			if want[label(c)] {
				fmt.Fprintf(&sb, "    class %s active;\n", ids[c])
			}
		}
	}

	return sb.String()
}

type edge struct {
	to    network.Endpoint
	times int
}

// collapse merges equal destinations, keeping first-seen order.
func collapse(to []network.Endpoint) []edge {
	var out []edge
	for _, e := range to {
		merged := false
		for i := range out {
			if out[i].to == e {
				out[i].times++
				merged = true
				break
			}
		}
		if !merged {
			out = append(out, edge{to: e, times: 1})
		}
	}
	return out
}

func label(c domain.Component) string {
	if l, ok := c.(domain.Labeled); ok && l.Label() != "" {
		return l.Label()
	}
	return c.Kind()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

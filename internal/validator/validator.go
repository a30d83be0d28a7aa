package validator

import (
	"errors"
	"fmt"

	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/registry"
	"github.com/aretw0/lattice/pkg/schema"
)

// Report summarizes a document checked without materializing it.
type Report struct {
	Definitions int
	BackRefs    int
	Couplings   int
	Deliveries  int
	// Kinds counts definitions per kind.
	Kinds  map[string]int
	Issues []error
}

// Err joins every issue, or returns nil for a sound document.
func (r *Report) Err() error {
	if len(r.Issues) == 0 {
		return nil
	}
	return errors.Join(r.Issues...)
}

type walker struct {
	kinds   *registry.Registry
	defined map[int]string
	report  *Report
}

// ValidateDocument checks the reference structure of doc: every definition
// carries a unique positive ref, back-references and graph nodes point at
// components already defined, and graph nodes stay within the component set
// of their network. Unlike a load it does not stop at the first problem.
// When kinds is non-nil, unregistered kinds are reported too.
func ValidateDocument(doc *schema.Document, kinds *registry.Registry) *Report {
	w := &walker{
		kinds:   kinds,
		defined: make(map[int]string),
		report:  &Report{Kinds: make(map[string]int)},
	}
	if doc == nil {
		w.issue(errors.New("nil document"))
		return w.report
	}
	if doc.Version != schema.Version {
		w.issue(fmt.Errorf("unsupported document version %d", doc.Version))
	}
	if doc.Root.IsBackRef() {
		w.issue(&domain.CorruptGraphError{Ref: doc.Root.Ref, Reason: "root is a back-reference"})
		return w.report
	}
	w.record(doc.Root)
	return w.report
}

func (w *walker) issue(err error) {
	w.report.Issues = append(w.report.Issues, err)
}

func (w *walker) record(rec schema.ComponentRecord) {
	if rec.Ref <= 0 {
		w.issue(&domain.CorruptGraphError{Ref: rec.Ref, Reason: "missing component reference"})
		return
	}

	if rec.IsBackRef() {
		w.report.BackRefs++
		if _, ok := w.defined[rec.Ref]; !ok {
			w.issue(&domain.CorruptGraphError{Ref: rec.Ref, Reason: "unresolved back-reference"})
		}
		return
	}

	if _, dup := w.defined[rec.Ref]; dup {
		w.issue(&domain.CorruptGraphError{Ref: rec.Ref, Reason: "duplicate definition"})
		return
	}
	w.defined[rec.Ref] = rec.Kind
	w.report.Definitions++
	w.report.Kinds[rec.Kind]++

	if w.kinds != nil && !w.kinds.Has(rec.Kind) {
		w.issue(fmt.Errorf("ref %d: %w: %s", rec.Ref, domain.ErrUnknownKind, rec.Kind))
	}

	for _, layer := range rec.Chain {
		w.layer(rec.Ref, layer)
	}
}

func (w *walker) layer(owner int, l schema.Layer) {
	local := make(map[int]bool, len(l.Components))
	for _, child := range l.Components {
		if child.Ref == owner {
			w.issue(&domain.CorruptGraphError{Ref: owner, Reason: "network lists itself as a component"})
			continue
		}
		if local[child.Ref] {
			w.issue(&domain.CorruptGraphError{Ref: child.Ref, Reason: "listed twice in component set"})
			continue
		}
		local[child.Ref] = true
		w.record(child)
	}

	node := func(n schema.NodeRecord) {
		switch {
		case !n.Component.Valid():
			w.issue(&domain.CorruptGraphError{Ref: n.Component.Ref(), Reason: "missing component reference"})
		case n.Component.IsSelf():
		case !local[n.Component.Ref()]:
			w.issue(&domain.CorruptGraphError{Ref: n.Component.Ref(), Reason: "not in the loaded component set"})
		}
	}
	for _, cp := range l.Graph {
		w.report.Couplings++
		node(cp.From)
		if len(cp.To) == 0 {
			w.issue(fmt.Errorf("ref %d: coupling from %s:%d has no destination", owner, cp.From.Component, cp.From.Port))
		}
		for _, to := range cp.To {
			w.report.Deliveries++
			node(to)
		}
	}
}

// Package schema defines the external, reference-stable representation of a
// network document and the archive that produces and consumes it.
//
// A Document holds a single root ComponentRecord. Every component record carries
// the ordered chain of levels of its type hierarchy, ancestor first. A level
// belonging to a network holds the network's component records (emitted before
// the graph) and its coupling graph, whose nodes reference components by ref or
// by the "self" sentinel.
//
// The Writer assigns one ref per component identity across the whole document and
// emits back-references for every later occurrence. The Reader materializes each
// definition exactly once through a kind registry and binds every back-reference
// to that instance:
//
//	doc, err := schema.Encode(net)
//	...
//	loaded, err := schema.Decode(doc, kinds)
package schema

/*
Package dsl provides a fluent builder for lattice networks.

Components are declared by name and coupled by (name, port). The reserved name
Self stands for the boundary of the network being built.

Example usage:

	net, err := dsl.New().
		Atomic("gen").
		Atomic("proc").
		Wrap("legacy", "proc").
		Connect(dsl.Self, 0).To("gen", 0).
		Connect("gen", 0).To("proc", 0).Times(2).
		Connect("proc", 1).To(dsl.Self, 1).
		Build()

Nested networks are declared with Network, which takes a function that
populates the inner builder.
*/
package dsl

/*
Package network implements coupled networks: a component registry, the coupling
graph and the one-hop router, plus their persistence.

A Digraph couples (component, output port) nodes to a multiset of (component,
input port) nodes. Coupling the same pair twice yields two deliveries per event.
The network itself stands for its boundary: passing the Digraph as source or
destination of Couple wires the network's external interface.

	net := network.New()
	a, b := model.NewAtomic("a"), model.NewAtomic("b")
	_ = net.Couple(a, 0, b, 0)
	events := net.Route(domain.NewPortValue(0, 5), a) // one delivery to b on port 0

Route never recurses; propagating across chains of networks, including self
loops, is left to the simulation kernel that calls it.
*/
package network

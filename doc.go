/*
Package lattice composes discrete-event models into networks and persists them.

Components exchange values through numbered ports. A network records its
couplings as a multiset of (component, port) to (component, port) edges and
answers one-hop routing queries: given a value leaving a source port, which
destinations receive it, and how many times. The network's own boundary takes
part in couplings as a sentinel, so values can enter and leave a network.

# Persistence

Networks are saved as documents that keep the object graph intact:

  - a component referenced from several places is written once and restored
    as a single shared instance;
  - a coupling added n times is restored n times;
  - boundary couplings use the explicit "self" reference, never null;
  - every component writes its level chain ancestor first, and a network
    lists its components before the graph that references them.

Documents can be encoded as indented JSON, YAML or a compact positional JSON
layout. Corrupt documents fail with a *domain.CorruptGraphError.

# Usage

	d := network.New()
	gen, proc := model.NewAtomic("gen"), model.NewAtomic("proc")
	d.Couple(d, 0, gen, 0)
	d.Couple(gen, 0, proc, 0)

	data, err := lattice.Marshal(d, "yaml")
	if err != nil {
		log.Fatal(err)
	}
	loaded, err := lattice.Unmarshal(data, "yaml", nil)

For networks declared by name see package dsl; for stored snapshots see
package snapshot and the adapters under pkg/adapters.
*/
package lattice

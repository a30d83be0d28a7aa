/*
Package snapshot persists networks in snapshot stores.

A Manager encodes a network with a codec, wraps the bytes in a domain.Snapshot
and hands it to a ports.SnapshotStore. Loading reverses the path and
materializes the components through a kind registry.

Networks are not safe for concurrent use, so the Manager serializes access per
snapshot ID: an in-process lock for each ID plus, optionally, a distributed
lock shared by every replica.

	mgr := snapshot.NewManager(memory.NewStore(), lattice.DefaultKinds())
	err := mgr.Update(ctx, "plant", func(d *network.Digraph) error {
		return d.Couple(src, 0, dst, 0)
	})
*/
package snapshot

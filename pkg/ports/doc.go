/*
Package ports defines the driven ports (interfaces) of lattice.

These interfaces decouple network persistence from the backends that hold the
encoded documents.

# Key Interfaces

  - SnapshotStore: persists encoded network documents under an ID.
  - DistributedLocker: coordinates access to a snapshot across processes.
*/
package ports

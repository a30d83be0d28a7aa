/*
Package domain contains the core types shared by every layer of Lattice.

It defines the vocabulary of a coupled network: ports, the values that flow across
them, the components that own ports, the references a coupling graph stores and the
delivery events produced when an output is routed. The package is kept free of I/O
and persistence concerns, following Hexagonal Architecture principles.

# Key Entities

  - Port / PortValue: the attachment point and the unit of data crossing a coupling.
  - Component: a polymorphic network participant (atomic model or nested network).
  - Handle / Ref / Node: arena handles, the {Boundary | Owned} tagged reference and a (ref, port) pair.
  - Event: a one-hop delivery produced by a router.
  - Snapshot: an encoded network document as held by a snapshot store.
*/
package domain

/*
Package observability provides tools for monitoring lattice networks.

It turns network hooks into Prometheus metrics and structured log records, and
exposes the instruments used by the snapshot store middleware.
*/
package observability

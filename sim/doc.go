// Package sim provides an in-memory Connection for the nodetree package.
//
// A sim.Connection serves a node listing from a static definition set and
// keeps the current values in memory. It implements every optional
// capability of the transport contract (complex reads, sample reads,
// vector and synchronous writes) and records all writes, which makes it
// the test double for the core package and the backend of the nodectl
// simulation mode.
package sim

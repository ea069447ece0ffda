// Package nodetree provides lazy, schema-driven access to the hierarchical
// parameter store exposed by a remote instrument or software module.
//
// # Overview
//
// A remote target publishes a flat listing of absolute parameter paths
// (e.g. /dev8000/demods/0/rate), each with a metadata descriptor: value
// kind, unit, access rights, optional enumerated options and optional
// value parsers. This package turns that listing into a chainable tree:
//
//	tree, err := nodetree.New(ctx, conn, nodetree.WithPrefixHide("dev8000"))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	rate := tree.Child("demods").Index(0).Child("rate")
//	v, err := rate.Get(ctx)
//
// Chaining never validates: a Node is a pure (tree, path) value and only
// consults the registry when a value is read or written. Errors for bogus
// paths therefore surface on use, not on construction.
//
// # Key Types
//
//   - Tree: the path registry. Owns the descriptor mapping, the hidden
//     prefix, path conversions and the transaction buffer.
//   - Node: an immutable path builder bound to a Tree. Implements the
//     get/set/subscribe/wait protocol.
//   - Descriptor: per-path metadata (kind, unit, access, options, parsers).
//   - Connection: the transport capability the registry consumes. This
//     package never implements a real transport; see the sim package for
//     an in-memory one.
//   - Transaction: a buffer that batches set operations into a single
//     transport round trip.
//
// # Wildcards and partial nodes
//
// Paths may contain shell-style wildcards (*, ?, [...]). A wildcard get
// fans out over every matching concrete path in one batched deep read. A
// get on a partial node (a strict ancestor of one or more leaves) behaves
// like a wildcard get on path + "/*". A wildcard set fans out
// transactionally so all matched writes commit as one batch.
//
// # Concurrency
//
// A Tree and its Nodes are not safe for concurrent use. Every get/set is
// a blocking call into the Connection; the only suspension points are
// transport I/O and the polling loop in WaitForStateChange.
package nodetree

package nodetree

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Transaction buffers set operations so they flush as a single batched
// write call — one network round trip for N writes. Only one transaction
// can be open per Tree; a second Begin fails with ErrTransactionMisuse.
//
// A finished transaction (committed or rolled back) rejects further use.
// Writes buffered into a rolled-back transaction are discarded, never
// partially applied, and a failed flush is not retried.
type Transaction struct {
	tree    *Tree
	id      uuid.UUID
	pending []pendingWrite
	done    bool
}

type pendingWrite struct {
	node  Node
	value any
}

// BeginTransaction opens a transaction and installs its buffer on the
// registry. Every Node write goes into the buffer until Commit or
// Rollback removes it.
func (t *Tree) BeginTransaction() (*Transaction, error) {
	if t.txn != nil {
		return nil, fmt.Errorf("%w: a transaction is already in progress", ErrTransactionMisuse)
	}
	txn := &Transaction{tree: t, id: uuid.New()}
	t.txn = txn
	t.logger.Debug("transaction started", "txn", txn.id)
	return txn, nil
}

// InTransaction reports whether a transaction buffer is installed.
func (t *Tree) InTransaction() bool { return t.txn != nil }

// WithTransaction runs fn inside a transaction. The buffer flushes as one
// batched write when fn returns nil and is discarded when fn returns an
// error or panics.
func (t *Tree) WithTransaction(ctx context.Context, fn func() error) error {
	txn, err := t.BeginTransaction()
	if err != nil {
		return err
	}
	defer txn.Rollback()
	if err := fn(); err != nil {
		return err
	}
	return txn.Commit(ctx)
}

// ID returns the transaction's identity, used in log output.
func (x *Transaction) ID() uuid.UUID { return x.id }

// Len returns the number of buffered writes.
func (x *Transaction) Len() int { return len(x.pending) }

// Add buffers a raw (node, value) pair, bypassing the node's parse and
// enum handling. Node.Set inside an open transaction is the usual entry
// point; Add exists for pre-translated values.
func (x *Transaction) Add(n Node, value any) error { return x.add(n, value) }

func (x *Transaction) add(n Node, value any) error {
	if x.done || x.tree.txn != x {
		return fmt.Errorf("%w: no transaction in progress", ErrTransactionMisuse)
	}
	x.pending = append(x.pending, pendingWrite{node: n, value: value})
	return nil
}

// Commit flushes the buffer as one batched write, in issue order, and
// removes it from the registry. An empty buffer commits without a
// transport call.
func (x *Transaction) Commit(ctx context.Context) error {
	if x.done {
		return fmt.Errorf("%w: transaction already finished", ErrTransactionMisuse)
	}
	x.done = true
	x.tree.txn = nil

	if len(x.pending) == 0 {
		x.tree.logger.Debug("transaction committed empty", "txn", x.id)
		return nil
	}
	entries := make([]SetEntry, len(x.pending))
	for i, pw := range x.pending {
		entries[i] = SetEntry{Path: x.tree.RawPath(pw.node), Value: pw.value}
	}
	if err := x.tree.conn.SetBatch(ctx, entries); err != nil {
		return fmt.Errorf("nodetree: transaction flush: %w", err)
	}
	x.tree.logger.Debug("transaction committed", "txn", x.id, "writes", len(entries))
	return nil
}

// Rollback discards the buffer and removes it from the registry. Calling
// Rollback after Commit is a no-op, which makes it safe to defer.
func (x *Transaction) Rollback() {
	if x.done {
		return
	}
	x.done = true
	x.tree.txn = nil
	x.tree.logger.Debug("transaction rolled back", "txn", x.id, "discarded", len(x.pending))
	x.pending = nil
}

package nodetree

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// WaitResult is the outcome of one node of a WaitForStateChange.
type WaitResult struct {
	Node    Node
	Matched bool
}

// WaitForStateChange polls the node's cached value every interval until
// it equals value or the timeout elapses, and reports whether it matched
// at exit. An integer expectation on a node with options is translated to
// its label before comparing, matching what Get returns.
//
// A wildcard node fans the wait out over every concrete match
// sequentially with a shared budget: only the first match waits the full
// timeout, subsequent matches get a single immediate check. One WaitResult
// is returned per polled node.
//
// Budget exhaustion without a match is not an error; context cancellation
// or deadline expiry is, wrapped in ErrTimeout.
func (n Node) WaitForStateChange(ctx context.Context, value any, timeout, interval time.Duration) ([]WaitResult, error) {
	info, err := n.Info()
	if err != nil {
		if errors.Is(err, ErrUnknownPath) && n.ContainsWildcard() {
			matches := n.tree.matchKeys(n.tree.RawPath(n))
			if len(matches) == 0 {
				return nil, err
			}
			results := make([]WaitResult, 0, len(matches))
			budget := timeout
			for _, key := range matches {
				sub, err := n.tree.NodeFromRaw(key).WaitForStateChange(ctx, value, budget, interval)
				if err != nil {
					return nil, err
				}
				results = append(results, sub...)
				// The first node already waited; the rest only get an
				// immediate check.
				budget = 0
			}
			return results, nil
		}
		return nil, err
	}

	expected := value
	if len(info.Options) > 0 {
		if code, ok := asInt64(value); ok {
			_, rev := n.tree.state(n).optionMaps(info)
			if label, ok := rev[code]; ok {
				expected = label
			}
		}
	}

	deadline := time.Now().Add(timeout)
	for {
		v, err := n.Get(ctx)
		if err != nil {
			return nil, err
		}
		if valuesEqual(v.Data, expected) {
			return []WaitResult{{Node: n, Matched: true}}, nil
		}
		if !time.Now().Before(deadline) {
			return []WaitResult{{Node: n, Matched: false}}, nil
		}
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %v", ErrTimeout, ctx.Err())
		case <-time.After(interval):
		}
	}
}

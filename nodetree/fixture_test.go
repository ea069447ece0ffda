package nodetree_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kvasirlab/nodekit/nodetree"
	"github.com/kvasirlab/nodekit/sim"
)

// testDefs is a small but representative listing: scalar settings, an
// enumerated integer, a sample node, a stream node, a vector node, a
// complex node, a read-only and a write-only node, a segment colliding
// with a reserved word, and a path outside the hidden device prefix.
func testDefs() map[string]nodetree.NodeDef {
	enable := nodetree.NodeDef{
		Type:       "Integer (enumerated)",
		Properties: "Read, Write, Setting",
		Options: map[string]string{
			"0": `"off": Output disabled.`,
			"1": `"on": Output enabled.`,
		},
	}
	return map[string]nodetree.NodeDef{
		"/dev8000/demods/0/rate": {
			Description: "Demodulator sampling rate.",
			Type:        "Double",
			Properties:  "Read, Write, Setting",
			Unit:        "Hz",
		},
		"/dev8000/demods/1/rate": {
			Type:       "Double",
			Properties: "Read, Write, Setting",
			Unit:       "Hz",
		},
		"/dev8000/demods/0/enable": enable,
		"/dev8000/demods/1/enable": enable,
		"/dev8000/demods/0/z": {
			Type:       "Complex Double",
			Properties: "Read",
		},
		"/dev8000/demods/0/sample": {
			Type:       "Demodulator Sample",
			Properties: "Read",
		},
		"/dev8000/scopes/0/wave": {
			Type:       "Scope Wave",
			Properties: "Read",
		},
		"/dev8000/dios/0/input": {
			Type:       "DIO Sample",
			Properties: "Read",
		},
		"/dev8000/awgs/0/waveform/data": {
			Type:       "Vector Data",
			Properties: "Read, Write",
		},
		"/dev8000/sigins/0/range": {
			Type:       "Double",
			Properties: "Read, Write, Setting",
			Unit:       "V",
		},
		"/dev8000/features/serial": {
			Type:       "String",
			Properties: "Read",
		},
		"/dev8000/status/time": {
			Type:       "Integer (64 bit)",
			Properties: "Read",
		},
		"/dev8000/system/ctl": {
			Type:       "Integer (64 bit)",
			Properties: "Write",
		},
		"/zi/config/port": {
			Type:       "Integer (64 bit)",
			Properties: "Read, Write",
		},
	}
}

func testValues() map[string]any {
	return map[string]any{
		"/dev8000/demods/0/rate":   1674.0,
		"/dev8000/demods/1/rate":   104.6,
		"/dev8000/demods/0/enable": int64(1),
		"/dev8000/demods/1/enable": int64(0),
		"/dev8000/demods/0/z":      complex(3.0, 4.0),
		"/dev8000/sigins/0/range":  1.5,
		"/dev8000/features/serial": "s2400",
		"/dev8000/status/time":     int64(1234),
		"/zi/config/port":          int64(8004),
	}
}

func testSamples() map[string]map[string]any {
	return map[string]map[string]any{
		"/dev8000/demods/0/sample": {"x": 0.5, "y": -0.25},
		"/dev8000/dios/0/input":    {"bits": int64(5)},
	}
}

// newTestTree builds a registry over a fresh sim connection.
func newTestTree(t *testing.T, opts ...nodetree.Option) (*nodetree.Tree, *sim.Connection) {
	t.Helper()

	conn := sim.New(testDefs(),
		sim.WithValues(testValues()),
		sim.WithSamples(testSamples()),
	)
	opts = append([]nodetree.Option{nodetree.WithPrefixHide("dev8000")}, opts...)
	tree, err := nodetree.New(context.Background(), conn, opts...)
	require.NoError(t, err)
	return tree, conn
}

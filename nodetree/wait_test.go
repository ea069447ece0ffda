package nodetree_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kvasirlab/nodekit/nodetree"
)

const pollInterval = time.Millisecond

func TestWait_ImmediateMatch(t *testing.T) {
	tree, _ := newTestTree(t)

	start := time.Now()
	results, err := tree.Path("demods/0/rate").WaitForStateChange(
		context.Background(), 1674.0, time.Second, pollInterval)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.True(t, results[0].Matched)
	assert.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestWait_Timeout(t *testing.T) {
	tree, _ := newTestTree(t)

	start := time.Now()
	results, err := tree.Path("demods/0/rate").WaitForStateChange(
		context.Background(), 9999.0, 30*time.Millisecond, pollInterval)
	require.NoError(t, err)

	require.Len(t, results, 1)
	assert.False(t, results[0].Matched)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
}

func TestWait_ValueArrives(t *testing.T) {
	tree, conn := newTestTree(t)

	go func() {
		time.Sleep(10 * time.Millisecond)
		conn.SetValue("/dev8000/demods/0/rate", 42.0)
	}()

	results, err := tree.Path("demods/0/rate").WaitForStateChange(
		context.Background(), 42.0, 2*time.Second, pollInterval)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Matched)
}

func TestWait_IntegerWidening(t *testing.T) {
	tree, _ := newTestTree(t)

	// An untyped int expectation matches the transport's int64.
	results, err := tree.Path("status/time").WaitForStateChange(
		context.Background(), 1234, 10*time.Millisecond, pollInterval)
	require.NoError(t, err)
	assert.True(t, results[0].Matched)
}

func TestWait_EnumTranslation(t *testing.T) {
	tree, _ := newTestTree(t)

	// Get returns the label "on"; an integer expectation of 1 is
	// translated before comparing.
	results, err := tree.Path("demods/0/enable").WaitForStateChange(
		context.Background(), 1, 10*time.Millisecond, pollInterval)
	require.NoError(t, err)
	assert.True(t, results[0].Matched)

	results, err = tree.Path("demods/0/enable").WaitForStateChange(
		context.Background(), "on", 10*time.Millisecond, pollInterval)
	require.NoError(t, err)
	assert.True(t, results[0].Matched)
}

func TestWait_Wildcard(t *testing.T) {
	tree, _ := newTestTree(t)

	// demods/0/enable is "on", demods/1/enable is "off": the first match
	// gets the full budget, the second a single immediate check.
	start := time.Now()
	results, err := tree.Path("demods/*/enable").WaitForStateChange(
		context.Background(), "on", 30*time.Millisecond, pollInterval)
	require.NoError(t, err)

	require.Len(t, results, 2)
	assert.True(t, results[0].Node.Equal(tree.Path("demods/0/enable")))
	assert.True(t, results[0].Matched)
	assert.True(t, results[1].Node.Equal(tree.Path("demods/1/enable")))
	assert.False(t, results[1].Matched)
	assert.Less(t, time.Since(start), time.Second)
}

func TestWait_Wildcard_NoMatch(t *testing.T) {
	tree, _ := newTestTree(t)

	_, err := tree.Path("demods/*/bogus").WaitForStateChange(
		context.Background(), 1, 10*time.Millisecond, pollInterval)
	require.ErrorIs(t, err, nodetree.ErrUnknownPath)
}

func TestWait_Unknown(t *testing.T) {
	tree, _ := newTestTree(t)

	_, err := tree.Path("demods/0/bogus").WaitForStateChange(
		context.Background(), 1, 10*time.Millisecond, pollInterval)
	require.ErrorIs(t, err, nodetree.ErrUnknownPath)
}

func TestWait_ContextCanceled(t *testing.T) {
	tree, _ := newTestTree(t)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(5 * time.Millisecond)
		cancel()
	}()

	// Cancellation is an error, unlike plain budget exhaustion.
	_, err := tree.Path("demods/0/rate").WaitForStateChange(
		ctx, 9999.0, 10*time.Second, pollInterval)
	require.ErrorIs(t, err, nodetree.ErrTimeout)
}

package console

import (
	"strings"
	"testing"

	"github.com/rivo/uniseg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSinkFormatsValues(t *testing.T) {
	host := &fakeHost{}
	s := NewSink(host, zap.NewNop())

	s.Values([]string{"3", "(1 2 3)"})

	assert.Equal(t, []string{
		"Result 1: 3",
		"Result 2: (1 2 3)",
	}, host.lines)
	assert.Empty(t, host.errLines)
}

func TestSinkFormatsErrors(t *testing.T) {
	host := &fakeHost{}
	s := NewSink(host, zap.NewNop())

	s.Error(&EvalError{Kind: "Runtime", Message: "unbound symbol: x", Diagnostic: "trace"})

	require.Len(t, host.errLines, 1)
	assert.Equal(t, "Runtime Error: unbound symbol: x", host.errLines[0])
	assert.Empty(t, host.lines)
}

func TestSinkPreservesOrderAcrossCalls(t *testing.T) {
	host := &fakeHost{}
	s := NewSink(host, zap.NewNop())

	s.Values([]string{"1"})
	s.Values([]string{"2"})

	assert.Equal(t, []string{"Result 1: 1", "Result 1: 2"}, host.lines)
}

func TestSinkClipsLongLines(t *testing.T) {
	host := &fakeHost{}
	s := NewSink(host, zap.NewNop())
	s.budget = 20

	s.Values([]string{strings.Repeat("a", 100)})

	require.Len(t, host.lines, 1)
	assert.Equal(t, 20, uniseg.GraphemeClusterCount(host.lines[0]))
	assert.True(t, strings.HasSuffix(host.lines[0], "…"))
}

package extension

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestInhibitor(interval time.Duration) (*Inhibitor, *atomic.Int64) {
	var runs atomic.Int64
	inhibitor := NewInhibitor("true", interval, zap.NewNop())
	inhibitor.runCmd = func(string) error {
		runs.Add(1)
		return nil
	}
	return inhibitor, &runs
}

func waitForRuns(t *testing.T, runs *atomic.Int64, want int64) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for runs.Load() < want {
		select {
		case <-deadline:
			t.Fatalf("expected at least %d command runs, got %d", want, runs.Load())
		case <-time.After(time.Millisecond):
		}
	}
}

func TestInhibitRunsCommandImmediately(t *testing.T) {
	inhibitor, runs := newTestInhibitor(time.Hour)
	defer inhibitor.Close()

	inhibitor.Inhibit()
	waitForRuns(t, runs, 1)
	assert.True(t, inhibitor.IsInhibited())
}

func TestInhibitRunsCommandPeriodically(t *testing.T) {
	inhibitor, runs := newTestInhibitor(5 * time.Millisecond)
	defer inhibitor.Close()

	inhibitor.Inhibit()
	waitForRuns(t, runs, 3)
}

func TestUninhibitStopsTheLoop(t *testing.T) {
	inhibitor, runs := newTestInhibitor(5 * time.Millisecond)
	defer inhibitor.Close()

	inhibitor.Inhibit()
	waitForRuns(t, runs, 1)
	inhibitor.Uninhibit()
	require.False(t, inhibitor.IsInhibited())

	count := runs.Load()
	time.Sleep(30 * time.Millisecond)
	// at most one tick could have been in flight when the loop stopped
	assert.LessOrEqual(t, runs.Load(), count+1)
}

func TestInhibitIsRefcounted(t *testing.T) {
	inhibitor, _ := newTestInhibitor(time.Hour)
	defer inhibitor.Close()

	inhibitor.Inhibit()
	inhibitor.Inhibit()
	inhibitor.Uninhibit()
	assert.True(t, inhibitor.IsInhibited())
	inhibitor.Uninhibit()
	assert.False(t, inhibitor.IsInhibited())
}

func TestUninhibitWithoutInhibitIsANoOp(t *testing.T) {
	inhibitor, _ := newTestInhibitor(time.Hour)
	inhibitor.Uninhibit()
	assert.False(t, inhibitor.IsInhibited())
}

func TestCloseReleasesAllInhibitions(t *testing.T) {
	inhibitor, _ := newTestInhibitor(time.Hour)

	inhibitor.Inhibit()
	inhibitor.Inhibit()
	inhibitor.Close()
	assert.False(t, inhibitor.IsInhibited())
}

package extension

import (
	"os/exec"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Inhibitor keeps the system screensaver from engaging during playback by
// periodically running a reset command. It is refcounted: multiple Inhibit
// calls require matching Uninhibit calls before inhibition is released.
type Inhibitor struct {
	command  string
	interval time.Duration
	logger   *zap.Logger

	// runCmd is swapped out in tests
	runCmd func(command string) error

	mu    sync.Mutex
	count int
	stop  chan struct{}
}

// NewInhibitor creates an inhibitor running command every interval while
// inhibited.
func NewInhibitor(command string, interval time.Duration, logger *zap.Logger) *Inhibitor {
	return &Inhibitor{
		command:  command,
		interval: interval,
		logger:   logger,
		runCmd:   runCommand,
	}
}

// Inhibit increments the inhibit refcount. The first call starts the reset
// loop.
func (i *Inhibitor) Inhibit() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.count++
	if i.count > 1 {
		return
	}

	stop := make(chan struct{})
	i.stop = stop
	go i.loop(stop)
}

// Uninhibit decrements the refcount. When it reaches zero the reset loop
// stops. Calling it while not inhibited is a no-op.
func (i *Inhibitor) Uninhibit() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.count == 0 {
		return
	}
	i.count--
	if i.count == 0 {
		close(i.stop)
		i.stop = nil
	}
}

// IsInhibited reports whether the reset loop is currently running.
func (i *Inhibitor) IsInhibited() bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.count > 0
}

// Close releases inhibition unconditionally.
func (i *Inhibitor) Close() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.count = 0
	if i.stop != nil {
		close(i.stop)
		i.stop = nil
	}
}

func (i *Inhibitor) loop(stop chan struct{}) {
	ticker := time.NewTicker(i.interval)
	defer ticker.Stop()

	for {
		if err := i.runCmd(i.command); err != nil {
			i.logger.Warn("screensaver reset command failed", zap.Error(err))
		}
		select {
		case <-ticker.C:
		case <-stop:
			return
		}
	}
}

func runCommand(command string) error {
	parts := strings.Fields(command)
	if len(parts) == 0 {
		return nil
	}
	return exec.Command(parts[0], parts[1:]...).Run()
}

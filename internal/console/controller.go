package console

import (
	"go.uber.org/zap"
)

// Prompt texts for the two open states.
const (
	PromptFresh = "Eval: "
	PromptMore  = "... : "
)

// Controller owns the console lifecycle and wires the host input widget's
// submit and close events to the accumulator and the evaluation bridge.
//
// States: Closed -> Open(fresh) <-> Open(more) -> Closed. The bridge (and
// with it the evaluation environment) outlives the controller's sessions;
// closing and reopening the console keeps every binding defined before.
type Controller struct {
	host   Host
	bridge *Bridge
	sink   *Sink
	acc    Accumulator
	logger *zap.Logger

	running      bool
	awaitingMore bool
}

// NewController creates a controller in the Closed state.
func NewController(host Host, bridge *Bridge, sink *Sink, logger *zap.Logger) *Controller {
	return &Controller{
		host:   host,
		bridge: bridge,
		sink:   sink,
		logger: logger,
	}
}

// Running reports whether the console is open.
func (c *Controller) Running() bool {
	return c.running
}

// AwaitingMore reports whether the console is in the middle of a multi-line
// form.
func (c *Controller) AwaitingMore() bool {
	return c.awaitingMore
}

// Open starts a console session: it registers the host text input with the
// fresh-input prompt. Opening an already-open console is a no-op. A
// continuation left paused by a previous session closing mid-form is
// abandoned; the environment itself is kept.
func (c *Controller) Open() error {
	if c.running {
		return nil
	}

	c.bridge.Reset()
	c.acc = Accumulator{}
	c.awaitingMore = false

	if err := c.host.RegisterTextInput(PromptFresh, c.handleSubmit, c.handleClose); err != nil {
		return err
	}
	c.running = true
	c.logger.Debug("console opened")
	return nil
}

// Close stops the console session programmatically, as if the host had
// dismissed the input affordance.
func (c *Controller) Close() {
	c.handleClose()
}

// handleSubmit receives one submitted line from the host. It appends the
// line to the accumulator, hands the flushed buffer to the bridge, and
// updates the prompt according to the verdict. The accumulator is emptied
// by the flush itself, before the resumption; the bridge remembers any
// incomplete prefix.
func (c *Controller) handleSubmit(line string) {
	if !c.running {
		return
	}

	c.acc.Append(line)
	outcome := c.bridge.Resume(c.acc.Flush())

	switch outcome.Status {
	case StatusCompleted:
		c.sink.Values(outcome.Values)
		c.setAwaitingMore(false)
	case StatusFailed:
		c.sink.Error(outcome.Err)
		c.setAwaitingMore(false)
	case StatusNeedsMore:
		c.setAwaitingMore(true)
	}
}

// handleClose receives the close event from the host input widget. The
// bridge's continuation is deliberately left as it is; Open abandons a
// paused mid-form continuation the next time the console starts.
func (c *Controller) handleClose() {
	if !c.running {
		return
	}
	c.running = false
	c.awaitingMore = false
	if err := c.host.DeregisterTextInput(); err != nil {
		c.logger.Warn("console: failed to deregister text input", zap.Error(err))
	}
	c.logger.Debug("console closed")
}

// setAwaitingMore tracks the multi-line state and re-registers the input to
// switch the prompt when the state changes.
func (c *Controller) setAwaitingMore(more bool) {
	if more == c.awaitingMore {
		return
	}
	c.awaitingMore = more

	prompt := PromptFresh
	if more {
		prompt = PromptMore
	}
	if err := c.host.RegisterTextInput(prompt, c.handleSubmit, c.handleClose); err != nil {
		c.logger.Warn("console: failed to update prompt", zap.Error(err))
	}
}

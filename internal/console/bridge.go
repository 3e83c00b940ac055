// Package console implements the interactive evaluation console: a
// read-eval-print loop fed one line at a time by the host's asynchronous
// text input, bridged to a cooperative, resumable evaluator that can report
// that it needs more input before it can finish a form.
package console

import (
	"errors"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/defaultxr/multiplicative/internal/lisp"
)

// Status reports how a resumption of the evaluator ended.
type Status int

const (
	// StatusCompleted means every form submitted since the last completion
	// was evaluated; the continuation is ready for a fresh top-level form.
	StatusCompleted Status = iota
	// StatusNeedsMore means the source text ended in the middle of a form;
	// the continuation is paused waiting for more text.
	StatusNeedsMore
	// StatusFailed means reading or evaluation failed; the continuation was
	// reset and is ready for a fresh top-level form.
	StatusFailed
)

// EvalError classifies a failure surfaced by a resumption.
type EvalError struct {
	// Kind is the error classification, "Compile" or "Runtime".
	Kind string
	// Message is the user-facing description.
	Message string
	// Diagnostic carries lower-level detail. It is kept on the record for
	// structured display but is not currently rendered.
	Diagnostic string
}

// Outcome is the result of one resumption.
type Outcome struct {
	Status Status
	// Values holds the display strings of the produced results, in order.
	// Only populated on StatusCompleted.
	Values []string
	// Err describes the failure. Only populated on StatusFailed.
	Err *EvalError
}

// errAbandoned unwinds a paused read when the pending continuation is
// abandoned via Reset.
var errAbandoned = errors.New("console: continuation abandoned")

// Bridge drives the evaluator as a cooperative continuation. A dedicated
// goroutine runs the evaluator's read-eval loop; the reader's request for
// more source text is a blocking channel receive, which is the single
// suspension point. Resume hands the goroutine one chunk of text and waits
// for it to either finish every buffered form, pause mid-form, or fail.
//
// The environment handed to NewBridge persists for the bridge's lifetime,
// so bindings defined in one console session stay visible in later ones.
type Bridge struct {
	chunks   chan string
	outcomes chan Outcome
	resets   chan struct{}
	inFlight atomic.Bool
	logger   *zap.Logger
}

// NewBridge creates a bridge evaluating in env and starts its evaluator
// goroutine. The goroutine lives for the life of the process.
func NewBridge(env *lisp.Env, logger *zap.Logger) *Bridge {
	b := &Bridge{
		chunks:   make(chan string),
		outcomes: make(chan Outcome),
		resets:   make(chan struct{}),
		logger:   logger,
	}
	go b.run(env)
	return b
}

// Resume hands the evaluator one more chunk of source text and blocks until
// it completes a top-level unit, pauses for more text, or fails.
//
// Exactly one resumption may be outstanding; the host's single-threaded
// event delivery guarantees this in practice, and a second concurrent call
// is a programming error that panics.
func (b *Bridge) Resume(source string) Outcome {
	b.acquire()
	defer b.inFlight.Store(false)

	b.chunks <- source
	return <-b.outcomes
}

// Reset abandons a continuation paused in the middle of a form, discarding
// the partial text it holds. Environment state is untouched. It is a no-op
// when the evaluator is already at a form boundary.
func (b *Bridge) Reset() {
	b.acquire()
	defer b.inFlight.Store(false)

	b.resets <- struct{}{}
}

func (b *Bridge) acquire() {
	if !b.inFlight.CompareAndSwap(false, true) {
		panic("console: resumption started while another is in flight")
	}
}

// run is the evaluator goroutine. It alternates between waiting for a chunk
// at a form boundary and consuming buffered forms; when the reader runs out
// of text mid-form it reports needs-more-input and suspends inside the fill
// callback until the next chunk (or a reset) arrives.
func (b *Bridge) run(env *lisp.Env) {
	reader := lisp.NewReader(func() (string, error) {
		b.outcomes <- Outcome{Status: StatusNeedsMore}
		select {
		case chunk := <-b.chunks:
			return chunk, nil
		case <-b.resets:
			return "", errAbandoned
		}
	})

	// values produced since the last completion, across needs-more pauses
	var pending []string

	for {
		select {
		case chunk := <-b.chunks:
			reader.Append(chunk)
		case <-b.resets:
			// already at a form boundary; nothing to abandon
			continue
		}

		for {
			if reader.Drained() {
				b.outcomes <- Outcome{Status: StatusCompleted, Values: pending}
				pending = nil
				break
			}

			form, err := reader.ReadForm()
			if err != nil {
				pending = nil
				reader.Reset()
				if errors.Is(err, errAbandoned) {
					b.logger.Warn("console: abandoned unfinished multi-line input")
					break
				}
				b.outcomes <- Outcome{Status: StatusFailed, Err: classify(err)}
				break
			}

			result, err := lisp.Eval(form, env)
			if err != nil {
				pending = nil
				reader.Reset()
				b.outcomes <- Outcome{Status: StatusFailed, Err: classify(err)}
				break
			}
			if result.Type() != lisp.ValueTypeUnspecified {
				pending = append(pending, result.String())
			}
		}
	}
}

// classify maps evaluator errors onto the console's error taxonomy.
func classify(err error) *EvalError {
	var syntaxErr *lisp.SyntaxError
	if errors.As(err, &syntaxErr) {
		return &EvalError{Kind: "Compile", Message: syntaxErr.Message, Diagnostic: err.Error()}
	}
	var evalErr *lisp.EvalError
	if errors.As(err, &evalErr) {
		return &EvalError{Kind: "Runtime", Message: evalErr.Message, Diagnostic: err.Error()}
	}
	return &EvalError{Kind: "Runtime", Message: err.Error(), Diagnostic: err.Error()}
}

package console

import (
	"fmt"

	"github.com/rivo/uniseg"
	"go.uber.org/zap"
)

// defaultLineBudget is the maximum number of grapheme clusters forwarded to
// the host display per line. The host's OSD log renders a single line; very
// long values are clipped rather than wrapped.
const defaultLineBudget = 500

// Sink forwards evaluation results and errors to the host's on-screen log,
// mirroring every line to the process-local debug log. The mirror never
// fails and never blocks the forwarding.
type Sink struct {
	host   Host
	logger *zap.Logger
	budget int
}

// NewSink creates a sink writing to host with the default line budget.
func NewSink(host Host, logger *zap.Logger) *Sink {
	return &Sink{host: host, logger: logger, budget: defaultLineBudget}
}

// Values forwards each produced value as one log line of the form
// "Result <i>: <value>" with 1-based positions, in order, never batched.
func (s *Sink) Values(values []string) {
	for i, value := range values {
		line := s.clip(fmt.Sprintf("Result %d: %s", i+1, value))
		s.host.LogLine(line)
		s.logger.Debug("console result", zap.String("line", line))
	}
}

// Error forwards a failure as one error-styled log line of the form
// "<Kind> Error: <message>". The diagnostic is mirrored to the debug log
// but not rendered.
func (s *Sink) Error(evalErr *EvalError) {
	line := s.clip(fmt.Sprintf("%s Error: %s", evalErr.Kind, evalErr.Message))
	s.host.LogErrorLine(line)
	s.logger.Debug("console error",
		zap.String("line", line),
		zap.String("diagnostic", evalErr.Diagnostic),
	)
}

// clip truncates a line to the display budget, counted in grapheme clusters
// so multi-rune characters are never split.
func (s *Sink) clip(line string) string {
	if s.budget <= 0 || uniseg.GraphemeClusterCount(line) <= s.budget {
		return line
	}
	g := uniseg.NewGraphemes(line)
	clipped := make([]byte, 0, len(line))
	for i := 0; i < s.budget-1 && g.Next(); i++ {
		clipped = append(clipped, g.Bytes()...)
	}
	return string(clipped) + "…"
}

// Package hooks runs user-configured shell snippets in response to player
// events. Snippets are parsed and executed with mvdan.cc/sh rather than an
// external shell, so they behave the same on every platform with a POSIX
// environment.
package hooks

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"go.uber.org/zap"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"
)

// Runner executes hook snippets.
type Runner struct {
	logger *zap.Logger
	hooks  map[string]string
}

// NewRunner creates a runner for the given event-name-to-snippet table.
func NewRunner(hooks map[string]string, logger *zap.Logger) *Runner {
	return &Runner{
		logger: logger,
		hooks:  hooks,
	}
}

// Has reports whether a hook is configured for the event.
func (r *Runner) Has(event string) bool {
	_, ok := r.hooks[event]
	return ok
}

// Events returns the event names with configured hooks, sorted.
func (r *Runner) Events() []string {
	events := make([]string, 0, len(r.hooks))
	for event := range r.hooks {
		events = append(events, event)
	}
	sort.Strings(events)
	return events
}

// Run executes the hook configured for event, if any. Fields are exported
// to the snippet as MP_<NAME> environment variables. Hook failures are
// logged, never propagated: a broken hook must not break playback handling.
func (r *Runner) Run(ctx context.Context, event string, fields map[string]string) {
	snippet, ok := r.hooks[event]
	if !ok {
		return
	}

	if err := r.runSnippet(ctx, event, snippet, fields); err != nil {
		r.logger.Warn("hook failed",
			zap.String("event", event),
			zap.Error(err),
		)
	}
}

func (r *Runner) runSnippet(ctx context.Context, name, snippet string, fields map[string]string) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(snippet), name)
	if err != nil {
		return fmt.Errorf("failed to parse hook: %w", err)
	}

	environ := os.Environ()
	for key, value := range fields {
		environ = append(environ, "MP_"+strings.ToUpper(strings.ReplaceAll(key, "-", "_"))+"="+value)
	}

	runner, err := interp.New(
		interp.Env(expand.ListEnviron(environ...)),
		interp.StdIO(nil, os.Stdout, os.Stderr),
	)
	if err != nil {
		return fmt.Errorf("failed to create hook interpreter: %w", err)
	}

	return runner.Run(ctx, prog)
}

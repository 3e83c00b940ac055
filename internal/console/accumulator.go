package console

import "strings"

// Accumulator collects submitted lines that have not yet been handed to the
// evaluator as one unit. The evaluator keeps its own continuation state, so
// the accumulator is emptied on every flush regardless of whether the
// flushed text formed a complete expression.
type Accumulator struct {
	lines []string
}

// Append adds a line to the end of the pending buffer.
func (a *Accumulator) Append(line string) {
	a.lines = append(a.lines, line)
}

// Flush returns all buffered lines joined with a line terminator, with one
// trailing terminator after the last line, and empties the buffer. Flushing
// an empty buffer yields just the terminator.
func (a *Accumulator) Flush() string {
	text := strings.Join(a.lines, "\n") + "\n"
	a.lines = a.lines[:0]
	return text
}

// Len returns the number of buffered lines.
func (a *Accumulator) Len() int {
	return len(a.lines)
}

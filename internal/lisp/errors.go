package lisp

import "fmt"

// SyntaxError reports source text that can never be read into a form,
// no matter how much further input is appended.
type SyntaxError struct {
	Message string
}

func (e *SyntaxError) Error() string {
	return e.Message
}

// NewSyntaxError creates a new syntax error with a formatted message
func NewSyntaxError(format string, args ...interface{}) *SyntaxError {
	return &SyntaxError{Message: fmt.Sprintf(format, args...)}
}

// EvalError reports a fault raised while evaluating an otherwise
// well-formed expression.
type EvalError struct {
	Message string
}

func (e *EvalError) Error() string {
	return e.Message
}

// NewEvalError creates a new evaluation error with a formatted message
func NewEvalError(format string, args ...interface{}) *EvalError {
	return &EvalError{Message: fmt.Sprintf(format, args...)}
}

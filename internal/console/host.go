package console

// Host is the surface the console needs from the media player: one
// asynchronous single-line text input affordance and an on-screen log.
//
// All callbacks are delivered serially from the host's event loop; the
// console never receives overlapping submit or close events.
type Host interface {
	// RegisterTextInput opens the input affordance with the given prompt.
	// Calling it while an input is already active replaces the prompt and
	// keeps the affordance open.
	RegisterTextInput(prompt string, onSubmit func(line string), onClose func()) error

	// DeregisterTextInput closes the input affordance. It is a no-op when
	// no input is active.
	DeregisterTextInput() error

	// LogLine appends one line to the host's persistent on-screen log.
	LogLine(text string)

	// LogErrorLine appends one error-styled line to the on-screen log.
	LogErrorLine(text string)
}

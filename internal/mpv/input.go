package mpv

import (
	"go.uber.org/zap"
)

// inputEventMessage is the script message name the host's console script
// uses to deliver input events back to this client.
const inputEventMessage = ClientName + "-input-event"

// TextInput drives the player's single-line text input affordance and
// on-screen log. The affordance itself is rendered by the host's console
// script; this adapter opens and closes it with script messages and
// receives submit/close notifications as input events. It implements the
// console's Host interface.
type TextInput struct {
	client *Client
	logger *zap.Logger
}

// NewTextInput creates the adapter over an established client.
func NewTextInput(client *Client, logger *zap.Logger) *TextInput {
	return &TextInput{client: client, logger: logger}
}

// RegisterTextInput opens the input affordance with the given prompt. When
// an input is already active, the host replaces the prompt and keeps the
// affordance open.
func (t *TextInput) RegisterTextInput(prompt string, onSubmit func(line string), onClose func()) error {
	t.client.RegisterMessage(inputEventMessage, func(args []string) {
		if len(args) == 0 {
			return
		}
		switch args[0] {
		case "submit":
			line := ""
			if len(args) > 1 {
				line = args[1]
			}
			onSubmit(line)
		case "close":
			onClose()
		}
	})

	_, err := t.client.Command("script-message-to", "console", "get-input", inputEventMessage, prompt)
	return err
}

// DeregisterTextInput closes the input affordance.
func (t *TextInput) DeregisterTextInput() error {
	t.client.UnregisterMessage(inputEventMessage)
	_, err := t.client.Command("script-message-to", "console", "hide-input", inputEventMessage)
	return err
}

// LogLine appends one line to the host's on-screen log.
func (t *TextInput) LogLine(text string) {
	if _, err := t.client.Command("script-message-to", "console", "log-line", text); err != nil {
		t.logger.Warn("mpv: failed to forward log line", zap.Error(err))
	}
}

// LogErrorLine appends one error-styled line to the host's on-screen log.
func (t *TextInput) LogErrorLine(text string) {
	if _, err := t.client.Command("script-message-to", "console", "log-line-error", text); err != nil {
		t.logger.Warn("mpv: failed to forward error line", zap.Error(err))
	}
}

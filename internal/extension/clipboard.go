package extension

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/atotto/clipboard"
)

// copyText copies text to the system clipboard, preferring the native
// clipboard and falling back to the configured external command, which
// receives the text on stdin.
func copyText(text string, fallbackCommand string) error {
	err := clipboard.WriteAll(text)
	if err == nil {
		return nil
	}

	if fallbackCommand == "" {
		return fmt.Errorf("clipboard unavailable: %w", err)
	}

	parts := strings.Fields(fallbackCommand)
	cmd := exec.Command(parts[0], parts[1:]...)
	cmd.Stdin = strings.NewReader(text)
	if out, cmdErr := cmd.CombinedOutput(); cmdErr != nil {
		return fmt.Errorf("clipboard command failed: %w (%s)", cmdErr, strings.TrimSpace(string(out)))
	}
	return nil
}

// formatPosition renders a playback position in seconds as H:MM:SS.
func formatPosition(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	total := int(seconds)
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%d:%02d:%02d", h, m, s)
}

package clipboard

import (
	"fmt"
	"io"
	"os"

	"github.com/atotto/clipboard"
	"github.com/aymanbagabas/go-osc52/v2"
)

// Copy places text on the system clipboard. When no clipboard utility is
// available (headless box, ssh session) it falls back to emitting an OSC52
// escape sequence so the user's terminal can capture the same string.
func Copy(text string) error {
	if err := clipboard.WriteAll(text); err == nil {
		return nil
	}
	return copyOSC52(os.Stderr, text)
}

func copyOSC52(w io.Writer, text string) error {
	if _, err := osc52.New(text).WriteTo(w); err != nil {
		return fmt.Errorf("clipboard fallback: %w", err)
	}
	return nil
}

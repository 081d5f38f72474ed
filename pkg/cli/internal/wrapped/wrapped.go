package wrapped

import (
	"os"

	"github.com/muesli/reflow/indent"
	"github.com/muesli/reflow/wordwrap"
	"golang.org/x/term"
)

var (
	// LineLength is the maximum length allowed of a printed line of text. It
	// defaults to the smaller of the current terminal width (detected at init
	// time) and MaxLineLength.
	LineLength = initialLineLength

	// MaxLineLength sets the upper bound for how long a line can be. It
	// defaults to 120 (for readability).
	MaxLineLength = 120
)

// Sprint wraps the given message using LineLength and returns it as a string.
func Sprint(msg string) string {
	return wordwrap.String(msg, LineLength)
}

// Indented wraps msg to fit LineLength once indented by n columns, then
// indents every resulting line.
func Indented(msg string, n int) string {
	width := LineLength - n
	if width < 20 {
		width = 20
	}
	return indent.String(wordwrap.String(msg, width), uint(n))
}

const (
	// This is only used if we can't detect the terminal width.
	fallbackLineLength = 80
)

var (
	initialLineLength = func() int {
		// Defer to smaller-width terminal screens, but don't go bigger than
		// MaxLineLength.
		if terminalWidth < MaxLineLength {
			return terminalWidth
		}

		return MaxLineLength
	}()

	terminalWidth = getTerminalWidth()
)

func getTerminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return fallbackLineLength
	}
	return w
}

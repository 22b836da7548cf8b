package progress

import (
	"os"

	"golang.org/x/term"
)

// DetectTerminalCapabilities reports what f can render. A nil or non-terminal
// file yields plain ASCII output with no spinner.
func DetectTerminalCapabilities(f *os.File) TerminalCapabilities {
	if f == nil {
		return TerminalCapabilities{}
	}

	fd := int(f.Fd())
	isTTY := term.IsTerminal(fd)
	width := 0
	if isTTY {
		if w, _, err := term.GetSize(fd); err == nil {
			width = w
		}
	}
	return capabilities(isTTY, width, os.Getenv)
}

// capabilities applies NO_COLOR and LOCKSTEP_ASCII on top of the raw terminal state.
func capabilities(isTTY bool, width int, getenv func(string) string) TerminalCapabilities {
	if !isTTY {
		return TerminalCapabilities{}
	}
	return TerminalCapabilities{
		IsTTY:           true,
		SupportsColor:   getenv("NO_COLOR") == "",
		SupportsUnicode: getenv("LOCKSTEP_ASCII") != "1",
		Width:           width,
	}
}

var (
	unicodeSymbols = ProgressSymbols{Checkmark: "✓", Failure: "✗", SpinnerSet: 14}
	asciiSymbols   = ProgressSymbols{Checkmark: "[OK]", Failure: "[FAIL]", SpinnerSet: 9}
)

// SelectSymbols picks Unicode marks and the braille spinner when the terminal
// supports them, ASCII marks and a bar spinner otherwise.
func SelectSymbols(caps TerminalCapabilities) ProgressSymbols {
	if caps.SupportsUnicode {
		return unicodeSymbols
	}
	return asciiSymbols
}

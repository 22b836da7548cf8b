package progress

import (
	"fmt"
	"io"
	"time"

	"github.com/briandowns/spinner"
)

// spinnerDelay is the frame interval of the spinner animation.
const spinnerDelay = 100 * time.Millisecond

// Spinner shows activity on a terminal while an operation runs. On a
// non-terminal writer it stays silent until Stop prints the final status.
type Spinner struct {
	out     io.Writer
	caps    TerminalCapabilities
	symbols ProgressSymbols
	s       *spinner.Spinner
}

// NewSpinner returns a spinner writing to out.
func NewSpinner(out io.Writer, caps TerminalCapabilities) *Spinner {
	return &Spinner{out: out, caps: caps, symbols: SelectSymbols(caps)}
}

// Start begins animating with message.
func (sp *Spinner) Start(message string) {
	if !sp.caps.IsTTY {
		return
	}

	sp.s = spinner.New(spinner.CharSets[sp.symbols.SpinnerSet], spinnerDelay, spinner.WithWriter(sp.out))
	sp.s.Suffix = " " + message
	sp.s.Start()
}

// Stop ends the animation and prints message with a success or failure symbol.
// An empty message prints nothing.
func (sp *Spinner) Stop(success bool, message string) {
	if sp.s != nil {
		sp.s.Stop()
		sp.s = nil
	}
	if message == "" {
		return
	}

	symbol := sp.symbols.Checkmark
	if !success {
		symbol = sp.symbols.Failure
	}
	fmt.Fprintf(sp.out, "%s %s\n", symbol, message)
}

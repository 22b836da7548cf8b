// Package progress provides terminal capability detection and a spinner for
// long-running lockstep operations such as walking git history.
package progress

// TerminalCapabilities describes what the attached terminal supports.
type TerminalCapabilities struct {
	IsTTY           bool
	SupportsColor   bool
	SupportsUnicode bool
	// Width is the terminal width in columns, 0 when unknown.
	Width int
}

// ProgressSymbols holds the symbols used for status output.
type ProgressSymbols struct {
	Checkmark  string
	Failure    string
	SpinnerSet int
}

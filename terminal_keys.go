package main

import (
	"os"

	"golang.org/x/term"
)

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1B
)

// stdinIsTerminal reports whether key handling is possible at all
func stdinIsTerminal() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func isQuitKey(b byte) bool {
	switch b {
	case 'q', 'Q', keyCtrlC, keyEscape:
		return true
	}
	return false
}

// Package protocol implements the text console framing shared by the
// firmware and the host tools
package protocol

// Version is reported by the console "version" command
const Version = "scjingle 0.1.0"

// Console framing constants
const (
	MessageMax = 512 // Output scratch buffer size, flushed once per command
	LineMax    = 128 // Longest accepted command line

	// Bytes that terminate a command line
	CR = '\r'
	LF = '\n'

	// Bytes that erase the previous character
	BS  = 0x08
	DEL = 0x7f

	// Prompt printed when the console is ready for the next line
	Prompt = "> "
)

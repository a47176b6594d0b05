// Package ioport provides the standard Input/Output capability presets.
//
// A preset bundles one engine.Input and one engine.Output that agree on how
// cell values map to text:
//
//	ascii    one character per cell (code point, UTF-8 on output)
//	decimal  one base-10 literal per cell
//	latin1   one ISO-8859-1 byte per cell
//
// Presets are selected by name with Lookup. Unknown names fail with a
// *FormatError; there is no fallback preset.
//
// Inputs read from a Source. NewStreamSource adapts any io.Reader (a file,
// a pipe, stdin); LineSource prompts for one line per value, which is what
// the interactive shell uses.
package ioport

// Package ir holds the shared vocabulary of the interpreter: the instruction
// alphabet, compiled programs, their content-addressed identity, and the
// canonical JSON encoding used wherever bytes must be reproducible (program
// IDs, golden snapshots, stored run records).
//
// ir imports nothing internal. Every other internal package may import it.
package ir

// Package compiler turns raw program text into a validated ir.Program.
//
// Compilation has two phases that never interleave with execution:
//
//  1. Clean: drop every character that is not one of the eight instructions.
//  2. BuildJumpTable: pair every '[' with its ']' in one left-to-right scan.
//
// A program with unbalanced brackets is rejected as a whole by phase 2, so
// the engine never starts a run that could fail halfway on a missing bracket.
package compiler

// Package engine executes cleaned programs against a tape.
//
// A Session owns one tape, its pointer and the statistics of the last run.
// Session.Process is the interpreter proper: it validates brackets first,
// then runs a single-threaded instruction loop that only suspends inside the
// caller's Input and Output capabilities.
//
// STATE MACHINE:
//
//	Idle -> Running -> Halted   (end of code reached)
//	                -> Faulted  (out of bounds, step limit, capability error)
//
// A bracket mismatch is returned before the session enters Running, so a
// malformed program produces no output and leaves the tape untouched.
//
// POLICIES:
//
// Cells are unsigned and wrap modulo 2^CellBits on every store, including
// values returned by Input. The pointer either faults (BoundsReject) or wraps
// modulo the tape size (BoundsWrap) when it leaves the tape. The engine never
// retries; recovery (for example resetting the session) belongs to the caller.
//
// CONCURRENCY:
//
// A Session must not be used from more than one goroutine at a time.
// Independent sessions share no state and may run in parallel.
package engine

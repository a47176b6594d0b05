// Package store provides SQLite-backed run history for bfi.
//
// Every recorded run keeps:
//   - the cleaned code and its content-addressed program ID
//   - the engine configuration it ran under (tape size, cell width, bounds, step limit)
//   - the final state: status, error, pointer, steps and the used tape prefix
//   - the output as raw cell values plus a digest of them
//
// # Ordering
//
// Runs are ordered by seq, assigned by the database on insert. Timestamps are
// informational only; queries never sort by created_at.
//
// # Idempotency
//
// Run IDs are unique. Writing the same ID twice keeps the first record.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Program IDs and output digests come from internal/ir using canonical JSON
// and SHA-256 with domain separation.
package store

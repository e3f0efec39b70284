// Package store provides a SQLite-backed log of conformance runs.
//
// Each run records:
//   - Runs: the executable under test and the overall verdict
//   - Cases: the case definitions exactly as they were run
//   - Results: one row per (case, method) with raw output and the failure
//
// # Ordering
//
// Results are ordered by the runner's logical clock (seq), never by
// timestamps. Queries use ORDER BY case_idx, method or ORDER BY seq so
// output is identical across reads.
//
// # Byte fidelity
//
// Stdin payloads, decoded values and raw output are stored as BLOBs. Engines
// may emit bytes that are not valid UTF-8 and a replayed run must compare
// exactly as the live one did.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

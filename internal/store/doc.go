// Package store provides SQLite-backed history of validation runs.
//
// Each run records the model fingerprint, reachability counts and every
// issue the validator reported, so successive runs over an evolving model
// can be compared.
//
// # Ordering
//
//   - Runs are ordered by seq, assigned at write time, never by timestamps
//   - Issues are stored in report order and read back ORDER BY seq ASC
//   - Run IDs are UUIDv7 so they also sort by creation
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store

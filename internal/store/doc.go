// Package store provides SQLite-backed key/value storage for racetally
// session snapshots.
//
// The store only moves bytes; it never interprets them. Every Save keeps
// the value it replaces in blob_backups so a snapshot that later fails to
// decode can be recovered from the previous save.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Memory is an in-process implementation with the same contract, used by
// tests and the scenario harness.
package store

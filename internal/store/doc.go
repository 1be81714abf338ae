// Package store provides durable key/text storage for saved states.
//
// Every write lands in two tables:
//   - entries: the current value of each key
//   - snapshots: an append-only history of every value written
//
// Ordering uses a logical seq counter, never timestamps, so history reads
// are deterministic. Snapshot ids are UUIDv7.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON
//
// Memory is an in-process equivalent for tests and one-shot CLI runs.
package store

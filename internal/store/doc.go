// Package store records validation outcomes in SQLite.
//
// Each run of the validator over a document appends one row: the document
// label, its digest, the schema used, the stage reached and the headline
// error code/message plus every violation. Validated IR is never written;
// the digest is enough to correlate repeated submissions of the same
// document.
//
// # Ordering
//
// seq is assigned by SQLite (AUTOINCREMENT) and is the only ordering used.
// All queries return rows ORDER BY seq ASC so results are stable.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//   - One open connection: writes are serialized
package store

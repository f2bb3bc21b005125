// Package sqlite stores the usage ledger in SQLite through the pure-Go
// modernc.org/sqlite driver, as an alternative to the CSV ledger when
// many operators append concurrently.
//
// The schema lives in migrations/ as numbered .up.sql/.down.sql pairs.
// Rows carry an autoincrement seq so append order survives equal or
// decreasing timestamps. The database runs in WAL mode with a busy
// timeout, so readers do not block the writer.
package sqlite

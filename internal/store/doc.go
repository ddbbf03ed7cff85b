// Package store provides the SQLite-backed persistent session store.
//
// The store is a small key/value table mirroring client state that must
// survive between calls within a process: the bearer token and the user
// record of the active session. It is written only by the session
// controller, which keeps it in lockstep with the session domain.
//
// # Ordering
//
// Every write stamps the row with a logical sequence number (one more than
// the highest in the table), never a timestamp, so Keys returns entries in
// write order deterministically.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforced for future tables
//
// Memory implements the same persister surface without a database.
package store

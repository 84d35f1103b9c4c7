// Package history stores past search runs in SQLite so they can be listed
// and compared.
//
// Runs are kept in a single database file (history.db) below the XDG data
// directory. Each run records the query, a fingerprint of it, the output
// mode and the statistics of the run. Two runs with the same fingerprint
// searched the same patterns over the same paths; comparing them shows how
// the searched tree changed between the two runs.
package history

// Package history stores one row per sync cycle in the sync_runs table.
//
// The recorder is only wired when the database is enabled. The daemon writes
// every cycle report through Record and the HTTP API lists the latest ones
// through Recent.
package history

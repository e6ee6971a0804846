// Package snapshot persists the cache mapping of a sync pair between cycles.
//
// FileStore keeps the historical on-disk format, a JSON array of
// [key, entry] pairs. DBStore keeps one row per entry in a database table,
// partitioned by pair name, for deployments that run several daemons
// against the same database.
package snapshot

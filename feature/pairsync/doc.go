// Package pairsync runs sync cycles between the two storages of a pair.
//
// A cycle lists both sides, loads the cache snapshot (bidirectional mode
// only), computes the operation set, checks the deletion limit, then runs
// four queues in a fixed order: delete from target, copy source to target,
// delete from source, copy target to source. The snapshot is saved last,
// corrected for the items that failed.
//
// Every fatal failure is returned as a *StageError naming the stage it
// happened in. Item failures never abort a cycle: they are retried by the
// queue, written to the errors artifact and counted in the Report.
//
// A cycle runs at most once at a time per process, and per host when a lock
// file is configured. RunEvery drives the daemon; the Feature exposes the
// service over HTTP.
package pairsync

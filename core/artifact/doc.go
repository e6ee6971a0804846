// Package artifact writes timestamped JSON records of a sync cycle (queue
// errors, worker logs, reconciliation plans) and prunes old ones.
//
// Files are named <UTC time>-<name>-<kind>.json so a directory listing sorts
// chronologically.
package artifact

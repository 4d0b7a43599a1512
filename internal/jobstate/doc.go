// Package jobstate stores workflow continuations for suspended async scans
// and a journal of workflow executions in a local SQLite database.
package jobstate

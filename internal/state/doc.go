// Package state defines the serializable continuation record the ingest
// workflow threads through its stages, including the suspension markers used
// to park an execution while an asynchronous inference job runs.
package state

// Package workflow routes state records through the stage handlers. The
// router is an explicit state machine over stage names; the manager runs one
// execution until it completes or suspends on an async job, and the trigger
// turns inbox arrivals and job completions into executions.
package workflow

// Package daemon hosts the long-running process: single-instance locking
// and the inbox and completion pollers that feed the workflow trigger.
package daemon

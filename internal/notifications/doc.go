// Package notifications publishes workflow messages to topics and parses
// the async-scan completion payloads that resume suspended workflows.
package notifications

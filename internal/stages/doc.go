// Package stages implements the workflow stage handlers: media
// classification, moderation and recognition scans (with their resume
// counterparts for asynchronous jobs), derived-artifact creation, and the
// terminal copy, cleanup, and notification steps.
package stages

// Package inference defines the image and video analysis contracts used by
// the scan stages, with an HTTP client for a real detection service and an
// in-process stub for local operation.
package inference

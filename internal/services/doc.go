// Package services provides the error taxonomy and context annotations
// shared by the external service clients and workflow stages.
package services

// Package storage defines the object store contract the workflow depends on
// and provides filesystem and in-memory implementations.
package storage

// Package indexer keeps the recordings index in sync with the camera
// filesystem and shapes it into the browse tree served to clients.
package indexer

// Package handlers implements the HTTP surface: HLS job control, origin
// and artifact file serving, the recordings tree, thumbnails, and the
// health and version probes.
package handlers

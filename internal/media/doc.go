// Package media generates cached thumbnail previews for the browse UI:
// downscaled camera snapshots, or a grabbed video frame when a recording
// has no snapshot.
package media

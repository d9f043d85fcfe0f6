// Package playlist synthesizes static HLS VOD playlists ahead of segment
// production.
//
// Publishing a complete playlist before the encoder has flushed a single
// segment lets players build their seek bar immediately; the file server
// covers the race by blocking segment requests until the encoder catches up.
package playlist

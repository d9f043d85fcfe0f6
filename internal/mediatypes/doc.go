// Package mediatypes provides shared extension and MIME type tables for the
// file types reodash serves: camera recordings (mp4), snapshots (jpg/png)
// and HLS artifacts (m3u8 playlists, fMP4 segments, transport streams).
//
// It is a dependency-free foundation that other packages can import without
// creating cycles.
package mediatypes

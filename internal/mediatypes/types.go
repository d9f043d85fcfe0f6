package mediatypes

import (
	"path/filepath"
	"strings"
)

// Kind categorizes a file served by the dashboard.
type Kind string

const (
	// KindVideo is an origin camera recording (mp4).
	KindVideo Kind = "video"
	// KindImage is a camera snapshot (jpg/png).
	KindImage Kind = "image"
	// KindPlaylist is an HLS playlist (m3u8).
	KindPlaylist Kind = "playlist"
	// KindSegment is an HLS media segment or init fragment (m4s/ts/mp4 under the HLS root).
	KindSegment Kind = "segment"
	// KindOther is anything unrecognized.
	KindOther Kind = "other"
)

// mimeTypes maps lowercase extensions to MIME types. HLS types follow the
// fMP4 variant of RFC 8216: playlists are application/vnd.apple.mpegurl,
// fragmented segments video/iso.segment, init fragments plain video/mp4.
var mimeTypes = map[string]string{
	".mp4":  "video/mp4",
	".m4s":  "video/iso.segment",
	".ts":   "video/mp2t",
	".m3u8": "application/vnd.apple.mpegurl",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

var kinds = map[string]Kind{
	".mp4":  KindVideo,
	".m4s":  KindSegment,
	".ts":   KindSegment,
	".m3u8": KindPlaylist,
	".jpg":  KindImage,
	".jpeg": KindImage,
	".png":  KindImage,
}

// Ext returns the lowercase extension of name, including the dot.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(name))
}

// MimeType returns the MIME type for a file name, or application/octet-stream
// when the extension is not recognized.
func MimeType(name string) string {
	if m, ok := mimeTypes[Ext(name)]; ok {
		return m
	}
	return "application/octet-stream"
}

// KindOf returns the Kind for a file name based on its extension.
func KindOf(name string) Kind {
	if k, ok := kinds[Ext(name)]; ok {
		return k
	}
	return KindOther
}

// IsHLSArtifact reports whether the extension belongs to an HLS working
// directory: playlists, segments and the shared init fragment.
func IsHLSArtifact(name string) bool {
	switch Ext(name) {
	case ".m3u8", ".m4s", ".ts", ".mp4":
		return true
	}
	return false
}

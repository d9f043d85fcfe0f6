package recordings

import (
	"regexp"
	"time"
)

// Cameras write files named Camera_SS_YYYYMMDDHHMMSS.(jpg|mp4): a camera
// name, a two-digit sequence and a 14-digit timestamp.
var filenamePattern = regexp.MustCompile(`^(.+)_(\d{2})_(\d{14})\.(jpg|mp4)$`)

const timestampLayout = "20060102150405"

// Recording is the metadata parsed from one recording filename.
type Recording struct {
	Camera    string
	Sequence  string
	Timestamp time.Time
	Ext       string
	// BaseName identifies the recording event; the snapshot and the video
	// of one event share it.
	BaseName string
}

// ParseFilename extracts recording metadata from a camera file name.
// Returns false for names that do not match the camera naming scheme.
func ParseFilename(name string) (Recording, bool) {
	match := filenamePattern.FindStringSubmatch(name)
	if match == nil {
		return Recording{}, false
	}

	ts, err := time.ParseInLocation(timestampLayout, match[3], time.Local)
	if err != nil {
		return Recording{}, false
	}

	return Recording{
		Camera:    match[1],
		Sequence:  match[2],
		Timestamp: ts,
		Ext:       match[4],
		BaseName:  match[1] + "_" + match[2] + "_" + match[3],
	}, true
}

package database

import "time"

// Entry is one indexed recording: a video and its optional snapshot, living
// under camera/year/month/day in the recordings tree.
type Entry struct {
	Camera     string    `json:"camera"`
	Year       string    `json:"year"`
	Month      string    `json:"month"`
	Day        string    `json:"day"`
	BaseName   string    `json:"base_name"`
	Video      string    `json:"video"`
	Thumbnail  string    `json:"thumbnail,omitempty"`
	RelPath    string    `json:"path"`
	RecordedAt time.Time `json:"-"`
	Size       int64     `json:"-"`
}

// IndexStats summarizes the recordings index.
type IndexStats struct {
	TotalRecordings int       `json:"totalRecordings"`
	TotalCameras    int       `json:"totalCameras"`
	TotalBytes      int64     `json:"totalBytes"`
	NewestRecording time.Time `json:"newestRecording,omitempty"`
	LastIndexed     time.Time `json:"lastIndexed,omitempty"`
	IndexDuration   string    `json:"indexDuration,omitempty"`
}

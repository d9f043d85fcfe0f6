package indexer

import (
	"fmt"
	"time"

	"reodash/internal/database"
)

// TreeEntry is one recording as presented to the browse UI.
type TreeEntry struct {
	BaseName  string  `json:"base_name"`
	Thumbnail *string `json:"thumbnail"`
	Video     string  `json:"video"`
	Path      string  `json:"path"`
}

// Tree mirrors the browse structure: a "Today" bucket of today's recordings
// across all cameras, plus camera -> year -> month -> day -> entries.
type Tree map[string]interface{}

// BuildTree shapes index entries into the nested browse structure. Entries
// arrive ordered (camera, year, month, day, base name), so appends preserve
// chronological order within each day.
func BuildTree(entries []database.Entry, now time.Time) Tree {
	todayYear := fmt.Sprintf("%04d", now.Year())
	todayMonth := fmt.Sprintf("%02d", int(now.Month()))
	todayDay := fmt.Sprintf("%02d", now.Day())

	today := []TreeEntry{}
	tree := Tree{}

	for _, e := range entries {
		te := TreeEntry{
			BaseName: e.BaseName,
			Video:    e.Video,
			Path:     e.RelPath,
		}
		if e.Thumbnail != "" {
			thumb := e.Thumbnail
			te.Thumbnail = &thumb
		}

		camera, ok := tree[e.Camera].(map[string]map[string]map[string][]TreeEntry)
		if !ok {
			camera = make(map[string]map[string]map[string][]TreeEntry)
			tree[e.Camera] = camera
		}
		year := camera[e.Year]
		if year == nil {
			year = make(map[string]map[string][]TreeEntry)
			camera[e.Year] = year
		}
		month := year[e.Month]
		if month == nil {
			month = make(map[string][]TreeEntry)
			year[e.Month] = month
		}
		month[e.Day] = append(month[e.Day], te)

		if e.Year == todayYear && e.Month == todayMonth && e.Day == todayDay {
			today = append(today, te)
		}
	}

	tree["Today"] = today
	return tree
}

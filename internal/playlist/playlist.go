package playlist

import (
	"fmt"
	"math"
	"strings"
)

const (
	// SegmentDuration is the target segment length in seconds. The encoder
	// keyframe interval is tuned to this value so segment boundaries align
	// with keyframes.
	SegmentDuration = 2.0

	// remainderEpsilon is the smallest trailing remainder that earns its own
	// segment; anything shorter is floating-point noise from the probe.
	remainderEpsilon = 0.01

	// PublishedName is the playlist file handed to players. It is synthesized
	// in full before the encoder produces any segments.
	PublishedName = "index.m3u8"

	// InternalName is the playlist the encoder appends to as it works. It is
	// never published; it only exists so the encoder does not clobber the
	// synthesized VOD playlist.
	InternalName = "internal.m3u8"

	// InitName is the shared fMP4 initialization fragment.
	InitName = "init.mp4"
)

// Segment is one playlist entry.
type Segment struct {
	Index    int
	Duration float64
	Filename string
}

// SegmentFilename returns the on-disk name for segment i, matching the
// pattern handed to the encoder.
func SegmentFilename(i int) string {
	return fmt.Sprintf("seg_%05d.m4s", i)
}

// Segments splits a total duration into SegmentDuration-sized entries with
// one trailing short segment for the remainder. The per-segment durations
// always sum to totalDuration. A remainder below remainderEpsilon is folded
// into the preceding segments rather than emitted as a degenerate entry.
func Segments(totalDuration float64) []Segment {
	if totalDuration <= 0 {
		return nil
	}

	full := int(totalDuration / SegmentDuration)
	remainder := totalDuration - float64(full)*SegmentDuration

	count := full
	if remainder > remainderEpsilon {
		count++
	}

	segments := make([]Segment, 0, count)
	for i := 0; i < count; i++ {
		duration := SegmentDuration
		if i >= full {
			duration = remainder
		}
		segments = append(segments, Segment{
			Index:    i,
			Duration: duration,
			Filename: SegmentFilename(i),
		})
	}
	return segments
}

// TargetDuration computes the mandatory EXT-X-TARGETDURATION value: the
// ceiling of the longest segment duration, never below the nominal target.
func TargetDuration(segments []Segment) int {
	longest := SegmentDuration
	for _, s := range segments {
		if s.Duration > longest {
			longest = s.Duration
		}
	}
	return int(math.Ceil(longest))
}

// Synthesize renders a complete VOD playlist for a recording of the given
// duration. The output is byte-deterministic for a given duration, and is
// valid before any referenced segment exists: readers racing the encoder
// are handled by the file server, not the playlist.
//
// Returns "" when totalDuration is not positive; callers must then fall back
// to the encoder's own incrementally-appended playlist.
func Synthesize(totalDuration float64) string {
	segments := Segments(totalDuration)
	if len(segments) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("#EXTM3U\n")
	b.WriteString("#EXT-X-VERSION:7\n")
	fmt.Fprintf(&b, "#EXT-X-TARGETDURATION:%d\n", TargetDuration(segments))
	b.WriteString("#EXT-X-MEDIA-SEQUENCE:0\n")
	b.WriteString("#EXT-X-PLAYLIST-TYPE:VOD\n")
	b.WriteString("#EXT-X-INDEPENDENT-SEGMENTS\n")
	fmt.Fprintf(&b, "#EXT-X-MAP:URI=%q\n", InitName)

	for _, s := range segments {
		fmt.Fprintf(&b, "#EXTINF:%.3f,\n", s.Duration)
		b.WriteString(s.Filename)
		b.WriteByte('\n')
	}

	b.WriteString("#EXT-X-ENDLIST\n")
	return b.String()
}

package hls

import (
	"path/filepath"
	"strconv"

	"reodash/internal/playlist"
	"reodash/internal/probe"
)

// encodeArgs builds the ffmpeg argument list for one job. Tracks already in
// the target format are stream copied; everything else is re-encoded to
// baseline h264 / AAC with the resolution, preset and audio bitrate picked
// by fastMode. The keyframe interval (48 frames at 24fps) matches the 2s
// segment length so segment boundaries land on keyframes.
func encodeArgs(sourcePath, workDir string, info probe.StreamInfo, fastMode bool) []string {
	args := []string{
		"-y", "-loglevel", "error",
		"-fflags", "+genpts",
		"-i", sourcePath,
	}

	if info.CopyVideo() {
		args = append(args, "-c:v", "copy")
	} else {
		preset, scale := "medium", "scale=1280:-2"
		if fastMode {
			preset, scale = "veryfast", "scale=720:-2"
		}
		args = append(args,
			"-c:v", "libx264",
			"-preset", preset,
			"-pix_fmt", "yuv420p",
			"-profile:v", "baseline",
			"-level", "3.0",
			"-vf", scale,
			"-g", "48",
			"-sc_threshold", "0",
			"-keyint_min", "48",
			"-r", "24",
		)
	}

	if info.CopyAudio() {
		args = append(args, "-c:a", "copy")
	} else {
		bitrate := "128k"
		if fastMode {
			bitrate = "96k"
		}
		args = append(args, "-c:a", "aac", "-b:a", bitrate)
	}

	// The encoder appends to an internal playlist; the published VOD
	// playlist is synthesized separately so players see the full seek
	// range from the first request.
	args = append(args,
		"-f", "hls",
		"-hls_time", strconv.FormatFloat(playlist.SegmentDuration, 'f', -1, 64),
		"-hls_list_size", "0",
		"-hls_playlist_type", "event",
		"-hls_segment_type", "fmp4",
		"-hls_flags", "independent_segments+append_list+temp_file",
		"-start_number", "0",
		"-hls_segment_filename", filepath.Join(workDir, "seg_%05d.m4s"),
		"-hls_fmp4_init_filename", playlist.InitName,
		filepath.Join(workDir, playlist.InternalName),
	)

	return args
}

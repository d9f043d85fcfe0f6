package hls

import (
	"strings"
	"testing"

	"reodash/internal/probe"
)

func hasPair(args []string, flag, value string) bool {
	for i := 0; i < len(args)-1; i++ {
		if args[i] == flag && args[i+1] == value {
			return true
		}
	}
	return false
}

func TestEncodeArgsStreamCopy(t *testing.T) {
	info := probe.StreamInfo{VideoCodec: "h264", PixelFormat: "yuv420p", AudioCodec: "aac"}
	args := encodeArgs("/src/video.mp4", "/hls/job", info, true)

	if !hasPair(args, "-c:v", "copy") {
		t.Error("compatible video track not stream copied")
	}
	if !hasPair(args, "-c:a", "copy") {
		t.Error("compatible audio track not stream copied")
	}
	if hasPair(args, "-c:v", "libx264") {
		t.Error("copy and re-encode both present")
	}
}

func TestEncodeArgsReencode(t *testing.T) {
	tests := []struct {
		name       string
		fastMode   bool
		wantPreset string
		wantScale  string
		wantAudio  string
	}{
		{"fast", true, "veryfast", "scale=720:-2", "96k"},
		{"accurate", false, "medium", "scale=1280:-2", "128k"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := encodeArgs("/src/video.mp4", "/hls/job", probe.StreamInfo{}, tt.fastMode)

			if !hasPair(args, "-c:v", "libx264") {
				t.Error("unknown video track not re-encoded")
			}
			if !hasPair(args, "-preset", tt.wantPreset) {
				t.Errorf("preset %q missing", tt.wantPreset)
			}
			if !hasPair(args, "-vf", tt.wantScale) {
				t.Errorf("scale filter %q missing", tt.wantScale)
			}
			if !hasPair(args, "-profile:v", "baseline") {
				t.Error("baseline profile missing")
			}
			if !hasPair(args, "-b:a", tt.wantAudio) {
				t.Errorf("audio bitrate %q missing", tt.wantAudio)
			}
		})
	}
}

func TestEncodeArgsHLSOutput(t *testing.T) {
	args := encodeArgs("/src/video.mp4", "/hls/job", probe.StreamInfo{}, true)

	if !hasPair(args, "-f", "hls") {
		t.Error("hls muxer missing")
	}
	if !hasPair(args, "-hls_time", "2") {
		t.Error("segment duration missing")
	}
	if !hasPair(args, "-hls_segment_type", "fmp4") {
		t.Error("fmp4 segment type missing")
	}
	if !hasPair(args, "-hls_playlist_type", "event") {
		t.Error("event playlist type missing")
	}
	if !hasPair(args, "-hls_flags", "independent_segments+append_list+temp_file") {
		t.Error("hls flags missing")
	}

	// The encoder must write its own internal playlist, never the
	// published one.
	last := args[len(args)-1]
	if !strings.HasSuffix(last, "internal.m3u8") {
		t.Errorf("encoder output playlist = %q, want internal.m3u8", last)
	}
	for _, a := range args {
		if strings.Contains(a, "index.m3u8") {
			t.Errorf("encoder argument references the published playlist: %q", a)
		}
	}
}

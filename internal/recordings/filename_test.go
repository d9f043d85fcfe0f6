package recordings

import (
	"testing"
	"time"
)

func TestParseFilename(t *testing.T) {
	tests := []struct {
		name string
		in   string
		ok   bool
		want Recording
	}{
		{
			name: "video",
			in:   "FrontDoor_01_20250812153000.mp4",
			ok:   true,
			want: Recording{
				Camera:    "FrontDoor",
				Sequence:  "01",
				Timestamp: time.Date(2025, 8, 12, 15, 30, 0, 0, time.Local),
				Ext:       "mp4",
				BaseName:  "FrontDoor_01_20250812153000",
			},
		},
		{
			name: "snapshot",
			in:   "Driveway_00_20251231235959.jpg",
			ok:   true,
			want: Recording{
				Camera:    "Driveway",
				Sequence:  "00",
				Timestamp: time.Date(2025, 12, 31, 23, 59, 59, 0, time.Local),
				Ext:       "jpg",
				BaseName:  "Driveway_00_20251231235959",
			},
		},
		{
			name: "camera name containing underscores",
			in:   "Back_Yard_02_20250101000000.mp4",
			ok:   true,
			want: Recording{
				Camera:    "Back_Yard",
				Sequence:  "02",
				Timestamp: time.Date(2025, 1, 1, 0, 0, 0, 0, time.Local),
				Ext:       "mp4",
				BaseName:  "Back_Yard_02_20250101000000",
			},
		},
		{name: "no structure", in: "notacamera.mp4", ok: false},
		{name: "one-digit sequence", in: "Cam_1_20250812153000.mp4", ok: false},
		{name: "short timestamp", in: "Cam_01_20250812.mp4", ok: false},
		{name: "wrong extension", in: "Cam_01_20250812153000.avi", ok: false},
		{name: "impossible month", in: "Cam_01_20251312153000.mp4", ok: false},
		{name: "empty", in: "", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseFilename(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseFilename(%q) ok = %v, want %v", tt.in, ok, tt.ok)
			}
			if !ok {
				return
			}
			if got.Camera != tt.want.Camera {
				t.Errorf("Camera = %q, want %q", got.Camera, tt.want.Camera)
			}
			if got.Sequence != tt.want.Sequence {
				t.Errorf("Sequence = %q, want %q", got.Sequence, tt.want.Sequence)
			}
			if !got.Timestamp.Equal(tt.want.Timestamp) {
				t.Errorf("Timestamp = %v, want %v", got.Timestamp, tt.want.Timestamp)
			}
			if got.Ext != tt.want.Ext {
				t.Errorf("Ext = %q, want %q", got.Ext, tt.want.Ext)
			}
			if got.BaseName != tt.want.BaseName {
				t.Errorf("BaseName = %q, want %q", got.BaseName, tt.want.BaseName)
			}
		})
	}
}

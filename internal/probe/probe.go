package probe

import (
	"bytes"
	"context"
	"encoding/json"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"reodash/internal/logging"
)

// DefaultTimeout bounds every ffprobe invocation. A source that cannot be
// probed within this window is treated as unknown, never as an error.
const DefaultTimeout = 5 * time.Second

// StreamInfo holds the per-track facts the transcode planner needs. Empty
// fields mean the track is absent or could not be probed.
type StreamInfo struct {
	VideoCodec  string
	PixelFormat string
	AudioCodec  string
}

// CopyVideo reports whether the video track can be passed through unmodified:
// h264 in a 4:2:0 pixel format that browsers decode natively.
func (s StreamInfo) CopyVideo() bool {
	codec := strings.ToLower(s.VideoCodec)
	pix := strings.ToLower(s.PixelFormat)
	return codec == "h264" && (pix == "yuv420p" || pix == "yuvj420p")
}

// CopyAudio reports whether the audio track is already AAC.
func (s StreamInfo) CopyAudio() bool {
	return strings.ToLower(s.AudioCodec) == "aac"
}

// Prober inspects media files with ffprobe.
type Prober struct {
	// Path is the ffprobe executable; tests may point it at a stub.
	Path    string
	Timeout time.Duration
}

// New returns a Prober using ffprobe from PATH with the default timeout.
func New() *Prober {
	return &Prober{Path: "ffprobe", Timeout: DefaultTimeout}
}

type ffprobeStream struct {
	CodecName string `json:"codec_name"`
	PixFmt    string `json:"pix_fmt"`
}

type ffprobeOutput struct {
	Streams []ffprobeStream `json:"streams"`
}

// Streams probes the first video and audio track of sourcePath. All failures
// (timeout, non-zero exit, malformed output) are absorbed into the zero
// value, which downstream code treats as "cannot copy, must re-encode".
func (p *Prober) Streams(ctx context.Context, sourcePath string) StreamInfo {
	var info StreamInfo

	if v, ok := p.probeStream(ctx, sourcePath, "v:0"); ok {
		info.VideoCodec = v.CodecName
		info.PixelFormat = v.PixFmt
	}
	if a, ok := p.probeStream(ctx, sourcePath, "a:0"); ok {
		info.AudioCodec = a.CodecName
	}

	return info
}

func (p *Prober) probeStream(ctx context.Context, sourcePath, selector string) (ffprobeStream, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Path,
		"-v", "error",
		"-select_streams", selector,
		"-show_entries", "stream=codec_name,pix_fmt",
		"-of", "json",
		sourcePath,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		logging.Debug("ffprobe %s failed for %s: %v", selector, sourcePath, err)
		return ffprobeStream{}, false
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(stdout.Bytes(), &parsed); err != nil {
		logging.Debug("ffprobe %s produced malformed output for %s: %v", selector, sourcePath, err)
		return ffprobeStream{}, false
	}
	if len(parsed.Streams) == 0 {
		return ffprobeStream{}, false
	}

	return parsed.Streams[0], true
}

// Duration returns the container duration of sourcePath in seconds. The
// second return value is false when the duration is unavailable; callers
// must then degrade to best-effort playlists.
func (p *Prober) Duration(ctx context.Context, sourcePath string) (float64, bool) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout())
	defer cancel()

	cmd := exec.CommandContext(ctx, p.Path,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=nk=1:nw=1",
		sourcePath,
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		logging.Debug("ffprobe duration failed for %s: %v", sourcePath, err)
		return 0, false
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" {
		return 0, false
	}

	seconds, err := strconv.ParseFloat(text, 64)
	if err != nil || seconds <= 0 {
		return 0, false
	}
	return seconds, true
}

func (p *Prober) timeout() time.Duration {
	if p.Timeout > 0 {
		return p.Timeout
	}
	return DefaultTimeout
}

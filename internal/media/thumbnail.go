package media

import (
	"bytes"
	"context"
	"crypto/md5"
	"fmt"
	"image"
	"image/jpeg"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/disintegration/imaging"

	"reodash/internal/logging"
	"reodash/internal/mediatypes"
	"reodash/internal/metrics"

	_ "image/gif"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

const (
	thumbWidth  = 320
	thumbHeight = 180

	frameGrabTimeout = 10 * time.Second
)

// ThumbnailGenerator produces downscaled JPEG previews. Camera snapshots are
// resized directly; recordings without a snapshot get a frame grabbed from
// the video.
type ThumbnailGenerator struct {
	cacheDir   string
	enabled    bool
	ffmpegPath string
	mu         sync.Mutex
}

// NewThumbnailGenerator returns a generator caching results under cacheDir.
func NewThumbnailGenerator(cacheDir string, enabled bool) *ThumbnailGenerator {
	if enabled {
		if err := os.MkdirAll(cacheDir, 0o755); err != nil {
			logging.Warn("thumbnail cache dir unavailable: %v", err)
			enabled = false
		}
	}
	return &ThumbnailGenerator{
		cacheDir:   cacheDir,
		enabled:    enabled,
		ffmpegPath: "ffmpeg",
	}
}

// IsEnabled reports whether thumbnails can be generated and cached.
func (t *ThumbnailGenerator) IsEnabled() bool {
	return t.enabled
}

// GetThumbnail returns the JPEG thumbnail bytes for filePath, generating and
// caching them on first request.
func (t *ThumbnailGenerator) GetThumbnail(ctx context.Context, filePath string) ([]byte, error) {
	if !t.enabled {
		return nil, fmt.Errorf("thumbnails disabled")
	}

	if _, err := os.Stat(filePath); err != nil {
		return nil, fmt.Errorf("file not accessible: %w", err)
	}

	hash := md5.Sum([]byte(filePath))
	cachePath := filepath.Join(t.cacheDir, fmt.Sprintf("%x.jpg", hash))

	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		return data, nil
	}

	// One generation at a time; snapshot resizing is cheap, frame grabs
	// are not.
	t.mu.Lock()
	defer t.mu.Unlock()

	if data, err := os.ReadFile(cachePath); err == nil {
		metrics.ThumbnailCacheHits.Inc()
		return data, nil
	}

	kind := mediatypes.KindOf(filePath)

	var img image.Image
	var err error
	switch kind {
	case mediatypes.KindImage:
		img, err = imaging.Open(filePath, imaging.AutoOrientation(true))
	case mediatypes.KindVideo:
		img, err = t.grabFrame(ctx, filePath)
	default:
		return nil, fmt.Errorf("unsupported file type for thumbnail: %s", kind)
	}
	if err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(string(kind), "error").Inc()
		return nil, fmt.Errorf("thumbnail generation failed: %w", err)
	}

	thumb := imaging.Fit(img, thumbWidth, thumbHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, thumb, &jpeg.Options{Quality: 80}); err != nil {
		metrics.ThumbnailGenerationsTotal.WithLabelValues(string(kind), "error").Inc()
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}

	if err := os.WriteFile(cachePath, buf.Bytes(), 0o644); err != nil {
		logging.Warn("failed to cache thumbnail %s: %v", cachePath, err)
	}

	metrics.ThumbnailGenerationsTotal.WithLabelValues(string(kind), "success").Inc()
	return buf.Bytes(), nil
}

// grabFrame extracts a single frame one second into the video.
func (t *ThumbnailGenerator) grabFrame(ctx context.Context, filePath string) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, frameGrabTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, t.ffmpegPath,
		"-loglevel", "error",
		"-ss", "1",
		"-i", filePath,
		"-vframes", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	)

	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("frame grab failed: %w", err)
	}

	img, _, err := image.Decode(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to decode grabbed frame: %w", err)
	}
	return img, nil
}

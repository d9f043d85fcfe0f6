package hls

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"syscall"
	"time"

	"github.com/google/uuid"

	"reodash/internal/logging"
	"reodash/internal/metrics"
	"reodash/internal/playlist"
	"reodash/internal/probe"
)

// ErrQueueFull is returned by Start when the concurrency gate is at
// capacity. It is a normal operating condition, surfaced to clients as
// "try again later", never logged as an error.
var ErrQueueFull = errors.New("transcode queue full")

// Config controls the transcode pipeline timings. The defaults mirror the
// bounds the rest of the system is designed around; tests shrink them.
type Config struct {
	// Root is the directory job working directories are created under.
	Root string
	// MaxConcurrent bounds simultaneous encoder processes.
	MaxConcurrent int
	// FFmpegPath is the encoder executable.
	FFmpegPath string
	// FirstSegmentWait bounds how long Start blocks for the init fragment
	// and first segment before returning anyway.
	FirstSegmentWait time.Duration
	// PollInterval is the filesystem existence poll period.
	PollInterval time.Duration
	// ReapTimeout is how long a supervisor waits for the encoder to exit
	// before terminating it.
	ReapTimeout time.Duration
	// KillGrace is the window between SIGTERM and SIGKILL.
	KillGrace time.Duration
}

// DefaultConfig returns production timings for the given HLS root.
func DefaultConfig(root string, maxConcurrent int) Config {
	return Config{
		Root:             root,
		MaxConcurrent:    maxConcurrent,
		FFmpegPath:       "ffmpeg",
		FirstSegmentWait: 20 * time.Second,
		PollInterval:     50 * time.Millisecond,
		ReapTimeout:      180 * time.Second,
		KillGrace:        5 * time.Second,
	}
}

// StartResult is handed back to the playback-start endpoint.
type StartResult struct {
	JobID string
	// PlaylistPath is the playlist location relative to the HLS root,
	// e.g. "4f1d.../index.m3u8".
	PlaylistPath string
	// Duration is the probed source duration in seconds, nil when probing
	// failed and the published playlist could not be synthesized.
	Duration *float64
}

// Manager launches, tracks and reaps HLS transcode jobs.
type Manager struct {
	cfg      Config
	gate     *Gate
	registry *registry
	prober   *probe.Prober
}

// NewManager returns a Manager using the given prober for source inspection.
func NewManager(cfg Config, prober *probe.Prober) *Manager {
	return &Manager{
		cfg:      cfg,
		gate:     NewGate(cfg.MaxConcurrent),
		registry: newRegistry(),
		prober:   prober,
	}
}

// GateSnapshot exposes gate occupancy for the status endpoint.
func (m *Manager) GateSnapshot() GateSnapshot {
	return m.gate.Snapshot()
}

// ActiveJobs returns the number of registered jobs.
func (m *Manager) ActiveJobs() int {
	return m.registry.len()
}

// Start admits, probes and launches one transcode job for sourcePath.
//
// The context bounds probing only: the encoder process deliberately outlives
// the request that started it, since players fetch segments long after the
// starting request has returned.
//
// On success the published playlist (when the source duration is known) and
// the working directory exist, the job is registered and supervised, and the
// first segment has been waited for up to the configured bound. Returns
// ErrQueueFull without side effects when the gate refuses admission.
func (m *Manager) Start(ctx context.Context, sourcePath string, fastMode bool) (*StartResult, error) {
	if !m.gate.TryAdmit() {
		metrics.TranscodeJobsRefused.Inc()
		return nil, ErrQueueFull
	}

	id := fmt.Sprintf("%x", [16]byte(uuid.New()))
	workDir := filepath.Join(m.cfg.Root, id)
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create job directory: %w", err)
	}

	info := m.prober.Streams(ctx, sourcePath)
	logging.Debug("probe %s: video=%q pix=%q audio=%q copy_video=%v copy_audio=%v",
		sourcePath, info.VideoCodec, info.PixelFormat, info.AudioCodec, info.CopyVideo(), info.CopyAudio())

	cmd := exec.Command(m.cfg.FFmpegPath, encodeArgs(sourcePath, workDir, info, fastMode)...)
	// The encoder is a black box: only its exit code and the files it
	// produces are observed.
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		if rmErr := os.RemoveAll(workDir); rmErr != nil {
			logging.Warn("failed to remove job directory %s: %v", workDir, rmErr)
		}
		return nil, fmt.Errorf("failed to launch encoder: %w", err)
	}

	var durationPtr *float64
	if duration, ok := m.prober.Duration(ctx, sourcePath); ok {
		durationPtr = &duration
		text := playlist.Synthesize(duration)
		published := filepath.Join(workDir, playlist.PublishedName)
		if err := os.WriteFile(published, []byte(text), 0o644); err != nil {
			// Degrade to the encoder's own event playlist.
			logging.Warn("failed to write published playlist for job %s: %v", id, err)
		}
	} else {
		logging.Debug("duration unavailable for %s, skipping VOD playlist synthesis", sourcePath)
	}

	m.gate.Acquire()
	metrics.TranscodeJobsInProgress.Inc()

	job := &Job{
		ID:      id,
		Dir:     workDir,
		Source:  sourcePath,
		Started: time.Now(),
		cmd:     cmd,
		done:    make(chan struct{}),
		state:   StateStarting,
	}
	go func() {
		job.waitErr = cmd.Wait()
		close(job.done)
	}()

	job.setState(StateRunning)
	m.registry.add(job)
	go m.supervise(job)

	logging.Info("started HLS job %s for %s (fast=%v)", id, sourcePath, fastMode)

	m.awaitFirstSegment(job)

	return &StartResult{
		JobID:        id,
		PlaylistPath: id + "/" + playlist.PublishedName,
		Duration:     durationPtr,
	}, nil
}

// awaitFirstSegment blocks until the init fragment and the first segment
// exist, or the bound elapses. Reaching the bound is not an error: the
// caller may still succeed once the encoder catches up.
func (m *Manager) awaitFirstSegment(j *Job) {
	initPath := filepath.Join(j.Dir, playlist.InitName)
	firstSeg := filepath.Join(j.Dir, playlist.SegmentFilename(0))

	start := time.Now()
	deadline := start.Add(m.cfg.FirstSegmentWait)
	for time.Now().Before(deadline) {
		if fileExists(initPath) && fileExists(firstSeg) {
			metrics.TranscodeFirstSegmentWait.Observe(time.Since(start).Seconds())
			return
		}
		if j.exited() {
			// Nothing more will be produced; stop burning the latency budget.
			break
		}
		time.Sleep(m.cfg.PollInterval)
	}
	metrics.TranscodeFirstSegmentWait.Observe(time.Since(start).Seconds())
	logging.Warn("job %s: first segment not ready within %v", j.ID, m.cfg.FirstSegmentWait)
}

// supervise waits for the encoder to exit, enforcing the reap ceiling, then
// finalizes the job unless an explicit cancel got there first.
func (m *Manager) supervise(j *Job) {
	select {
	case <-j.done:
		j.setState(StateCompleted)
		if j.waitErr != nil {
			logging.Warn("job %s: encoder exited with error: %v", j.ID, j.waitErr)
		}
	case <-time.After(m.cfg.ReapTimeout):
		logging.Warn("job %s: encoder exceeded %v, terminating", j.ID, m.cfg.ReapTimeout)
		j.setState(StateTimedOut)
		m.terminate(j)
	}
	m.finalize(j)
}

// terminate stops the encoder process: graceful signal first, hard kill
// after the grace window. It returns once the process has been reaped.
func (m *Manager) terminate(j *Job) {
	if j.exited() {
		return
	}
	if err := j.cmd.Process.Signal(syscall.SIGTERM); err != nil {
		logging.Debug("job %s: SIGTERM failed (process likely gone): %v", j.ID, err)
	}
	select {
	case <-j.done:
		return
	case <-time.After(m.cfg.KillGrace):
	}
	if err := j.cmd.Process.Kill(); err != nil {
		logging.Debug("job %s: kill failed (process likely gone): %v", j.ID, err)
	}
	<-j.done
}

// finalize releases the gate slot, deletes the working directory and
// records metrics — exactly once per job. The registry removal is the
// arbiter: if the job is already gone, another path owns finalization.
func (m *Manager) finalize(j *Job) {
	if _, ok := m.registry.remove(j.ID); !ok {
		return
	}
	m.cleanup(j)
}

// cleanup must never fail upward: it runs on supervisory goroutines whose
// failure must not crash the service, so every step logs and continues.
func (m *Manager) cleanup(j *Job) {
	m.gate.Release()
	metrics.TranscodeJobsInProgress.Dec()
	metrics.TranscodeJobsTotal.WithLabelValues(j.Outcome().String()).Inc()
	metrics.TranscodeJobDuration.Observe(time.Since(j.Started).Seconds())

	if err := os.RemoveAll(j.Dir); err != nil {
		logging.Warn("job %s: failed to remove working directory %s: %v", j.ID, j.Dir, err)
	}
	j.setState(StateCleaned)
	logging.Info("job %s finished (%s) after %v", j.ID, j.Outcome(), time.Since(j.Started).Round(time.Millisecond))
}

// Cancel synchronously stops the job and removes its artifacts. Returns
// false when the id is unknown — including a job whose own supervisor
// finished cleanup moments earlier, which is not an error.
func (m *Manager) Cancel(jobID string) bool {
	j, ok := m.registry.remove(jobID)
	if !ok {
		return false
	}
	j.setState(StateCancelled)
	m.terminate(j)
	m.cleanup(j)
	return true
}

// CancelAll stops every live job; used during shutdown.
func (m *Manager) CancelAll() {
	for _, id := range m.registry.ids() {
		m.Cancel(id)
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

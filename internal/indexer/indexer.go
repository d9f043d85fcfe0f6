package indexer

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"reodash/internal/database"
	"reodash/internal/logging"
	"reodash/internal/metrics"
	"reodash/internal/recordings"
)

// Indexer periodically scans the recordings directory into the index
// database. The camera firmware writes files continuously, so the scan
// repeats on a fixed interval and can be triggered manually.
type Indexer struct {
	db            *database.Database
	recordingsDir string
	interval      time.Duration

	stopChan    chan struct{}
	triggerChan chan struct{}
	stopOnce    sync.Once

	mu            sync.Mutex
	indexing      bool
	ready         bool
	lastIndexed   time.Time
	lastDuration  time.Duration
	lastError     error
	lastCount     int
}

// HealthStatus is the indexer's contribution to the health endpoint.
type HealthStatus struct {
	Ready       bool
	Indexing    bool
	LastIndexed time.Time
	LastError   string
	Recordings  int
}

// New creates an Indexer scanning recordingsDir every interval.
func New(db *database.Database, recordingsDir string, interval time.Duration) *Indexer {
	return &Indexer{
		db:            db,
		recordingsDir: recordingsDir,
		interval:      interval,
		stopChan:      make(chan struct{}),
		triggerChan:   make(chan struct{}, 1),
	}
}

// Start runs the initial scan synchronously, then loops until Stop. The
// initial scan failing marks the service degraded but does not abort: an
// empty tree is better than no service.
func (idx *Indexer) Start() error {
	if err := idx.runOnce(); err != nil {
		logging.Error("initial index failed: %v", err)
	}

	idx.mu.Lock()
	idx.ready = true
	idx.mu.Unlock()

	ticker := time.NewTicker(idx.interval)
	defer ticker.Stop()

	for {
		select {
		case <-idx.stopChan:
			return nil
		case <-ticker.C:
			if err := idx.runOnce(); err != nil {
				logging.Error("index run failed: %v", err)
			}
		case <-idx.triggerChan:
			if err := idx.runOnce(); err != nil {
				logging.Error("triggered index run failed: %v", err)
			}
		}
	}
}

// Stop terminates the scan loop. Safe to call more than once.
func (idx *Indexer) Stop() {
	idx.stopOnce.Do(func() { close(idx.stopChan) })
}

// TriggerIndex requests an immediate re-scan. A request while one is queued
// is coalesced.
func (idx *Indexer) TriggerIndex() {
	select {
	case idx.triggerChan <- struct{}{}:
	default:
	}
}

// IsIndexing reports whether a scan is in progress.
func (idx *Indexer) IsIndexing() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.indexing
}

// IsReady reports whether the initial scan has been attempted.
func (idx *Indexer) IsReady() bool {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.ready
}

// GetHealthStatus returns the current indexer state for health reporting.
func (idx *Indexer) GetHealthStatus() HealthStatus {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	status := HealthStatus{
		Ready:       idx.ready,
		Indexing:    idx.indexing,
		LastIndexed: idx.lastIndexed,
		Recordings:  idx.lastCount,
	}
	if idx.lastError != nil {
		status.LastError = idx.lastError.Error()
	}
	return status
}

// LastRun returns the completion time and duration of the last scan.
func (idx *Indexer) LastRun() (time.Time, time.Duration) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	return idx.lastIndexed, idx.lastDuration
}

func (idx *Indexer) runOnce() error {
	idx.mu.Lock()
	if idx.indexing {
		idx.mu.Unlock()
		return nil
	}
	idx.indexing = true
	idx.mu.Unlock()

	start := time.Now()
	entries, err := idx.scan()
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		err = idx.db.ReplaceAll(ctx, entries)
		cancel()
	}

	idx.mu.Lock()
	idx.indexing = false
	idx.lastError = err
	if err == nil {
		idx.lastIndexed = time.Now()
		idx.lastDuration = time.Since(start)
		idx.lastCount = len(entries)
	}
	idx.mu.Unlock()

	if err != nil {
		metrics.IndexerErrors.Inc()
		return err
	}

	metrics.IndexerRunsTotal.Inc()
	metrics.IndexerLastRunDuration.Set(time.Since(start).Seconds())
	metrics.IndexerRecordings.Set(float64(len(entries)))
	logging.Debug("indexed %d recordings in %v", len(entries), time.Since(start))
	return nil
}

// scan walks the camera/year/month/day tree, pairing each video with its
// snapshot by base name. Only recordings with a non-empty video file are
// indexed; a missing or empty snapshot just means no thumbnail.
func (idx *Indexer) scan() ([]database.Entry, error) {
	root := idx.recordingsDir
	if _, err := os.Stat(root); err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []database.Entry

	cameras, err := os.ReadDir(root)
	if err != nil {
		return nil, err
	}
	for _, camera := range cameras {
		if !camera.IsDir() {
			continue
		}
		years, err := os.ReadDir(filepath.Join(root, camera.Name()))
		if err != nil {
			logging.Warn("failed to read camera directory %s: %v", camera.Name(), err)
			continue
		}
		for _, year := range years {
			if !year.IsDir() {
				continue
			}
			months, err := os.ReadDir(filepath.Join(root, camera.Name(), year.Name()))
			if err != nil {
				continue
			}
			for _, month := range months {
				if !month.IsDir() {
					continue
				}
				days, err := os.ReadDir(filepath.Join(root, camera.Name(), year.Name(), month.Name()))
				if err != nil {
					continue
				}
				for _, day := range days {
					if !day.IsDir() {
						continue
					}
					dayDir := filepath.Join(root, camera.Name(), year.Name(), month.Name(), day.Name())
					entries = append(entries, idx.scanDay(dayDir,
						camera.Name(), year.Name(), month.Name(), day.Name())...)
				}
			}
		}
	}

	return entries, nil
}

// pairing groups the snapshot and video of one recording event.
type pairing struct {
	video     string
	thumbnail string
	recorded  time.Time
	size      int64
}

func (idx *Indexer) scanDay(dayDir, camera, year, month, day string) []database.Entry {
	files, err := os.ReadDir(dayDir)
	if err != nil {
		logging.Warn("failed to read day directory %s: %v", dayDir, err)
		return nil
	}

	byBase := make(map[string]*pairing)
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		parsed, ok := recordings.ParseFilename(f.Name())
		if !ok {
			continue
		}
		info, err := f.Info()
		if err != nil || info.Size() == 0 {
			continue
		}
		p := byBase[parsed.BaseName]
		if p == nil {
			p = &pairing{recorded: parsed.Timestamp}
			byBase[parsed.BaseName] = p
		}
		switch parsed.Ext {
		case "mp4":
			p.video = f.Name()
			p.size = info.Size()
		case "jpg":
			p.thumbnail = f.Name()
		}
	}

	relPath := camera + "/" + year + "/" + month + "/" + day
	var entries []database.Entry
	for baseName, p := range byBase {
		if p.video == "" {
			continue
		}
		entries = append(entries, database.Entry{
			Camera:     camera,
			Year:       year,
			Month:      month,
			Day:        day,
			BaseName:   baseName,
			Video:      p.video,
			Thumbnail:  p.thumbnail,
			RelPath:    relPath,
			RecordedAt: p.recorded,
			Size:       p.size,
		})
	}
	return entries
}

package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver

	"reodash/internal/logging"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Database persists the recordings index so the tree endpoint does not walk
// the recordings filesystem on every request.
type Database struct {
	db     *sql.DB
	dbPath string
}

// New opens (or creates) the index database at dbPath. The parent directory
// must already exist and be writable; startup.LoadConfig validates that.
func New(ctx context.Context, dbPath string) (*Database, error) {
	logging.Info("Index database path: %s", dbPath)

	// WAL mode with a busy timeout: the indexer writes while request
	// handlers read.
	connStr := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000", dbPath)

	db, err := sql.Open("sqlite3", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{db: db, dbPath: dbPath}
	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after init failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return d, nil
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS recordings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		camera TEXT NOT NULL,
		year TEXT NOT NULL,
		month TEXT NOT NULL,
		day TEXT NOT NULL,
		base_name TEXT NOT NULL,
		video TEXT NOT NULL,
		thumbnail TEXT,
		rel_path TEXT NOT NULL,
		recorded_at INTEGER NOT NULL,
		size INTEGER NOT NULL DEFAULT 0,
		UNIQUE(camera, base_name)
	);

	CREATE INDEX IF NOT EXISTS idx_recordings_date ON recordings(year, month, day);
	CREATE INDEX IF NOT EXISTS idx_recordings_camera ON recordings(camera);
	`

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err := d.db.ExecContext(ctx, schema)
	return err
}

// Close closes the underlying connection pool.
func (d *Database) Close() error {
	return d.db.Close()
}

// ReplaceAll swaps the entire index for the given entries in one
// transaction, so readers never observe a half-built index.
func (d *Database) ReplaceAll(ctx context.Context, entries []Entry) error {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
			logging.Warn("index transaction rollback: %v", err)
		}
	}()

	if _, err := tx.ExecContext(ctx, `DELETE FROM recordings`); err != nil {
		return fmt.Errorf("failed to clear index: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO recordings (camera, year, month, day, base_name, video, thumbnail, rel_path, recorded_at, size)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		if err := stmt.Close(); err != nil {
			logging.Warn("failed to close insert statement: %v", err)
		}
	}()

	for _, e := range entries {
		var thumb interface{}
		if e.Thumbnail != "" {
			thumb = e.Thumbnail
		}
		if _, err := stmt.ExecContext(ctx,
			e.Camera, e.Year, e.Month, e.Day,
			e.BaseName, e.Video, thumb, e.RelPath,
			e.RecordedAt.Unix(), e.Size,
		); err != nil {
			return fmt.Errorf("failed to insert %s: %w", e.BaseName, err)
		}
	}

	return tx.Commit()
}

// All returns every indexed recording ordered for tree building.
func (d *Database) All(ctx context.Context) ([]Entry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT camera, year, month, day, base_name, video, thumbnail, rel_path, recorded_at, size
		FROM recordings
		ORDER BY camera, year, month, day, base_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query recordings: %w", err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			logging.Warn("failed to close rows: %v", err)
		}
	}()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var thumb sql.NullString
		var recordedAt int64
		if err := rows.Scan(&e.Camera, &e.Year, &e.Month, &e.Day,
			&e.BaseName, &e.Video, &thumb, &e.RelPath, &recordedAt, &e.Size); err != nil {
			return nil, fmt.Errorf("failed to scan recording: %w", err)
		}
		e.Thumbnail = thumb.String
		e.RecordedAt = time.Unix(recordedAt, 0)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Stats summarizes the index for the stats endpoint.
func (d *Database) Stats(ctx context.Context) (IndexStats, error) {
	var stats IndexStats

	row := d.db.QueryRowContext(ctx, `
		SELECT COUNT(*), COUNT(DISTINCT camera), COALESCE(SUM(size), 0)
		FROM recordings`)
	if err := row.Scan(&stats.TotalRecordings, &stats.TotalCameras, &stats.TotalBytes); err != nil {
		return stats, fmt.Errorf("failed to query stats: %w", err)
	}

	var newest sql.NullInt64
	row = d.db.QueryRowContext(ctx, `SELECT MAX(recorded_at) FROM recordings`)
	if err := row.Scan(&newest); err != nil {
		return stats, fmt.Errorf("failed to query newest recording: %w", err)
	}
	if newest.Valid {
		stats.NewestRecording = time.Unix(newest.Int64, 0)
	}

	return stats, nil
}

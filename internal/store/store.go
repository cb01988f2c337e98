package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/docpull/docpull/internal/model"
)

// DBFileName is the SQLite database file name inside the state directory.
const DBFileName = "docpull.db"

// Store provides SQLite-based persistence for download records.
// It manages connection pooling and exposes the upsert operations the
// download pipeline needs: mark-attempt, mark-success, mark-failure.
//
// Design decision: a single database file per state directory rather than
// one per run. Resumability across runs is the whole point of the store;
// deleting the file is the documented way to force full re-verification.
type Store struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Store behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging so readers see consistent
	// snapshots while a writer commits. Recommended.
	EnableWAL bool
}

// DefaultOptions returns the default store options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates the download state store in the given directory.
// Schema creation is idempotent. If CreateIfNotExists is false and the
// database doesn't exist, an error is returned; the status command uses
// this to avoid creating empty state by accident.
func Open(stateDir string, opts Options) (*Store, error) {
	dbPath := filepath.Join(stateDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("state database not found at %s", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check state database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(stateDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create state directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open state database: %w", err)
	}

	// SQLite supports one writer; a single pooled connection avoids
	// SQLITE_BUSY churn between the pipeline's per-operation calls.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	s := &Store{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := s.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.dbPath
}

// createTables creates the schema if it doesn't exist.
func (s *Store) createTables() error {
	schema := `
	-- One row per URL; deleting the table forces full re-verification.
	CREATE TABLE IF NOT EXISTS downloads (
		url TEXT PRIMARY KEY,
		filename TEXT,
		size_bytes INTEGER,
		sha256 TEXT,
		content_type TEXT,
		http_status INTEGER,
		status TEXT NOT NULL DEFAULT 'pending',
		attempts INTEGER NOT NULL DEFAULT 0,
		last_error TEXT,
		last_attempt_at TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_downloads_status ON downloads(status);
	`

	_, err := s.db.ExecContext(context.Background(), schema)
	return err
}

// Get retrieves the download record for a URL.
// Returns (nil, nil) when no record exists.
func (s *Store) Get(ctx context.Context, url string) (*model.DownloadRecord, error) {
	query := `
	SELECT url, filename, size_bytes, sha256, content_type, http_status, status, attempts, last_error, last_attempt_at
	FROM downloads
	WHERE url = ?
	`

	var (
		rec         model.DownloadRecord
		filename    sql.NullString
		sizeBytes   sql.NullInt64
		checksum    sql.NullString
		contentType sql.NullString
		httpStatus  sql.NullInt64
		status      string
		lastError   sql.NullString
		lastAttempt sql.NullString
	)

	err := s.db.QueryRowContext(ctx, query, url).Scan(
		&rec.URL,
		&filename,
		&sizeBytes,
		&checksum,
		&contentType,
		&httpStatus,
		&status,
		&rec.Attempts,
		&lastError,
		&lastAttempt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get download record: %w", err)
	}

	rec.Filename = filename.String
	rec.SizeBytes = sizeBytes.Int64
	rec.Checksum = checksum.String
	rec.ContentType = contentType.String
	rec.HTTPStatus = int(httpStatus.Int64)
	rec.Status = model.ParseStatus(status)
	rec.LastError = lastError.String
	if lastAttempt.Valid {
		rec.LastAttemptAt = parseTimestamp(lastAttempt.String)
	}

	return &rec, nil
}

// MarkAttempt records that a fetch attempt is starting: it upserts the row,
// increments attempts, and sets status to pending. Called BEFORE the network
// request so a crash mid-fetch leaves visible evidence.
func (s *Store) MarkAttempt(ctx context.Context, url string) error {
	query := `
	INSERT INTO downloads (url, status, attempts, last_attempt_at)
	VALUES (?, 'pending', 1, ?)
	ON CONFLICT(url) DO UPDATE SET
		attempts = attempts + 1,
		status = 'pending',
		last_attempt_at = excluded.last_attempt_at
	`

	if _, err := s.db.ExecContext(ctx, query, url, nowUTC()); err != nil {
		return fmt.Errorf("failed to mark attempt: %w", err)
	}
	return nil
}

// SuccessMeta carries the metadata recorded with a successful download.
type SuccessMeta struct {
	Filename    string
	SizeBytes   int64
	Checksum    string
	ContentType string
	HTTPStatus  int
}

// MarkSuccess records a verified download. Idempotent: re-marking success
// refreshes metadata and clears the last error; attempts is not touched by
// the update path so it never decreases.
func (s *Store) MarkSuccess(ctx context.Context, url string, meta SuccessMeta) error {
	query := `
	INSERT INTO downloads (url, filename, size_bytes, sha256, content_type, http_status, status, attempts, last_error, last_attempt_at)
	VALUES (?, ?, ?, ?, ?, ?, 'success', 1, NULL, ?)
	ON CONFLICT(url) DO UPDATE SET
		filename = excluded.filename,
		size_bytes = excluded.size_bytes,
		sha256 = excluded.sha256,
		content_type = excluded.content_type,
		http_status = excluded.http_status,
		status = 'success',
		last_error = NULL,
		last_attempt_at = excluded.last_attempt_at
	`

	_, err := s.db.ExecContext(ctx, query,
		url,
		meta.Filename,
		meta.SizeBytes,
		meta.Checksum,
		meta.ContentType,
		meta.HTTPStatus,
		nowUTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to mark success: %w", err)
	}
	return nil
}

// MarkFailure records a failed attempt with its error message, truncated to
// model.MaxErrorLength. httpStatus <= 0 preserves the previously recorded
// status (transport faults carry no HTTP status).
func (s *Store) MarkFailure(ctx context.Context, url, lastError string, httpStatus int) error {
	var status sql.NullInt64
	if httpStatus > 0 {
		status = sql.NullInt64{Int64: int64(httpStatus), Valid: true}
	}

	query := `
	INSERT INTO downloads (url, status, attempts, http_status, last_error, last_attempt_at)
	VALUES (?, 'failed', 1, ?, ?, ?)
	ON CONFLICT(url) DO UPDATE SET
		status = 'failed',
		http_status = COALESCE(?, http_status),
		last_error = excluded.last_error,
		last_attempt_at = excluded.last_attempt_at
	`

	truncated := model.TruncateError(lastError)
	if _, err := s.db.ExecContext(ctx, query, url, status, truncated, nowUTC(), status); err != nil {
		return fmt.Errorf("failed to mark failure: %w", err)
	}
	return nil
}

// IsSuccess reports whether the URL has a verified successful download.
func (s *Store) IsSuccess(ctx context.Context, url string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		"SELECT 1 FROM downloads WHERE url = ? AND status = 'success'", url,
	).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check success: %w", err)
	}
	return true, nil
}

// Summary holds per-status record counts for inspection tooling.
type Summary struct {
	Total   int
	Pending int
	Success int
	Failed  int
}

// Summarize returns record counts grouped by status.
func (s *Store) Summarize(ctx context.Context) (Summary, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT status, COUNT(*) FROM downloads GROUP BY status")
	if err != nil {
		return Summary{}, fmt.Errorf("failed to summarize downloads: %w", err)
	}
	defer rows.Close()

	var sum Summary
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return Summary{}, fmt.Errorf("failed to scan summary row: %w", err)
		}
		sum.Total += count
		switch model.ParseStatus(status) {
		case model.StatusPending:
			sum.Pending += count
		case model.StatusSuccess:
			sum.Success += count
		case model.StatusFailed:
			sum.Failed += count
		}
	}
	return sum, rows.Err()
}

// ListFailed returns the records whose last outcome was failure, ordered by
// URL so output is deterministic. Used for manual re-run inspection.
func (s *Store) ListFailed(ctx context.Context) ([]*model.DownloadRecord, error) {
	return s.listByStatus(ctx, "failed")
}

// ListAll returns every record ordered by URL.
func (s *Store) ListAll(ctx context.Context) ([]*model.DownloadRecord, error) {
	return s.listByStatus(ctx, "")
}

func (s *Store) listByStatus(ctx context.Context, status string) ([]*model.DownloadRecord, error) {
	query := `
	SELECT url, filename, size_bytes, sha256, content_type, http_status, status, attempts, last_error, last_attempt_at
	FROM downloads
	`
	args := make([]any, 0, 1)
	if status != "" {
		query += " WHERE status = ?"
		args = append(args, status)
	}
	query += " ORDER BY url"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list downloads: %w", err)
	}
	defer rows.Close()

	var records []*model.DownloadRecord
	for rows.Next() {
		var (
			rec         model.DownloadRecord
			filename    sql.NullString
			sizeBytes   sql.NullInt64
			checksum    sql.NullString
			contentType sql.NullString
			httpStatus  sql.NullInt64
			st          string
			lastError   sql.NullString
			lastAttempt sql.NullString
		)
		if err := rows.Scan(
			&rec.URL, &filename, &sizeBytes, &checksum, &contentType,
			&httpStatus, &st, &rec.Attempts, &lastError, &lastAttempt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan download record: %w", err)
		}
		rec.Filename = filename.String
		rec.SizeBytes = sizeBytes.Int64
		rec.Checksum = checksum.String
		rec.ContentType = contentType.String
		rec.HTTPStatus = int(httpStatus.Int64)
		rec.Status = model.ParseStatus(st)
		rec.LastError = lastError.String
		if lastAttempt.Valid {
			rec.LastAttemptAt = parseTimestamp(lastAttempt.String)
		}
		records = append(records, &rec)
	}
	return records, rows.Err()
}

// nowUTC returns the current UTC time in the stored timestamp format.
func nowUTC() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// timestampFormats contains the timestamp formats that may appear in stored
// rows. RFC3339 is what we write; the others tolerate rows written by
// external tooling or older versions.
var timestampFormats = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// parseTimestamp attempts multiple formats, returning zero time on failure.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

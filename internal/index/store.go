// Package index is the persistent content-hash index shared by all import
// targets. It answers "is this content already somewhere?" and "has this
// source path been handled?", and caches identification lookups.
//
// Every exported operation is a single logical transaction, committed
// immediately: a write is either fully visible to the next read or not
// there at all, and a crash never leaves a torn record behind.
package index

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-sqlite3"

	"undisorder/internal/index/migrations"
	"undisorder/internal/model"
)

// ErrContentExists is returned when a FileRecord insert collides with an
// existing hash outside the expected skip path. The caller must have
// checked HasContent first; hitting this is a sequencing bug, fatal for
// the file in question, never silently overwritten.
var ErrContentExists = errors.New("content hash already indexed")

// Store is the SQLite-backed hash index.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (creating if necessary) the index database at path and brings
// its schema up to date. path may be ":memory:" for tests.
func Open(path string) (*Store, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("creating index directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening index database: %w", err)
	}
	// An in-memory database exists per connection; a second pooled
	// connection would see an empty schema.
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling foreign keys: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := migrations.Up(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating index schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// HasContent reports whether a FileRecord with this hash exists in any
// target. Identical bytes already present anywhere mean a candidate file
// is skipped, regardless of which source path offers it.
func (s *Store) HasContent(hash string) (bool, error) {
	var one int
	err := s.db.QueryRow("SELECT 1 FROM files WHERE hash = ?", hash).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("checking content hash: %w", err)
	}
	return true, nil
}

// GetFileRecord returns the FileRecord for a hash, or nil if none exists.
func (s *Store) GetFileRecord(hash string) (*model.FileRecord, error) {
	row := s.db.QueryRow(
		"SELECT hash, target_dir, file_size, file_path, date_taken, import_date, source_path FROM files WHERE hash = ?",
		hash,
	)
	return scanFileRecord(row)
}

// FilesForTarget returns all FileRecords belonging to a target, ordered by
// relative path.
func (s *Store) FilesForTarget(targetDir string) ([]*model.FileRecord, error) {
	rows, err := s.db.Query(
		"SELECT hash, target_dir, file_size, file_path, date_taken, import_date, source_path FROM files WHERE target_dir = ? ORDER BY file_path",
		targetDir,
	)
	if err != nil {
		return nil, fmt.Errorf("listing target files: %w", err)
	}
	defer rows.Close()

	var records []*model.FileRecord
	for rows.Next() {
		rec, err := scanFileRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// CountFiles returns the number of FileRecords for a target.
func (s *Store) CountFiles(targetDir string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM files WHERE target_dir = ?", targetDir).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting files: %w", err)
	}
	return n, nil
}

// GetImport returns the prior import of this exact source path, or nil.
func (s *Store) GetImport(sourcePath string) (*model.ImportRecord, error) {
	var (
		rec      model.ImportRecord
		filePath sql.NullString
	)
	err := s.db.QueryRow(
		"SELECT source_path, target_dir, hash, file_path FROM imports WHERE source_path = ?",
		sourcePath,
	).Scan(&rec.SourcePath, &rec.TargetDir, &rec.Hash, &filePath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up import: %w", err)
	}
	rec.FilePath = filePath.String
	return &rec, nil
}

// CountImports returns the number of ImportRecords for a target.
func (s *Store) CountImports(targetDir string) (int, error) {
	var n int
	err := s.db.QueryRow("SELECT COUNT(*) FROM imports WHERE target_dir = ?", targetDir).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting imports: %w", err)
	}
	return n, nil
}

// RecordImport inserts the FileRecord and ImportRecord for a freshly
// transferred file in one transaction. Returns ErrContentExists if a
// FileRecord with the same hash is already present.
func (s *Store) RecordImport(file *model.FileRecord, imp *model.ImportRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.Exec(
		"INSERT INTO files (hash, target_dir, file_size, file_path, date_taken, import_date, source_path) VALUES (?, ?, ?, ?, ?, ?, ?)",
		file.Hash, file.TargetDir, file.FileSize, file.FilePath,
		nullTime(file.DateTaken), file.ImportDate, nullString(file.SourcePath),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("inserting file record for %s: %w", file.FilePath, ErrContentExists)
		}
		return fmt.Errorf("inserting file record: %w", err)
	}

	_, err = tx.Exec(
		"INSERT OR IGNORE INTO imports (source_path, target_dir, hash, file_path) VALUES (?, ?, ?, ?)",
		imp.SourcePath, imp.TargetDir, imp.Hash, nullString(imp.FilePath),
	)
	if err != nil {
		return fmt.Errorf("inserting import record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing import: %w", err)
	}
	return nil
}

// RecordSourceDuplicate marks a source path as handled without a target
// file of its own: its bytes were imported from another copy. Re-running
// against the same source then skips it on the import-record check.
func (s *Store) RecordSourceDuplicate(imp *model.ImportRecord) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO imports (source_path, target_dir, hash, file_path) VALUES (?, ?, ?, ?)",
		imp.SourcePath, imp.TargetDir, imp.Hash, nullString(imp.FilePath),
	)
	if err != nil {
		return fmt.Errorf("recording source duplicate: %w", err)
	}
	return nil
}

// OverwriteImport replaces the FileRecord for oldHash with the new one and
// updates the existing ImportRecord in place, all in one transaction. Used
// only on forced update when the source is newer than what was imported.
func (s *Store) OverwriteImport(oldHash string, file *model.FileRecord, imp *model.ImportRecord) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM files WHERE hash = ?", oldHash); err != nil {
		return fmt.Errorf("deleting superseded file record: %w", err)
	}

	_, err = tx.Exec(
		"INSERT INTO files (hash, target_dir, file_size, file_path, date_taken, import_date, source_path) VALUES (?, ?, ?, ?, ?, ?, ?)",
		file.Hash, file.TargetDir, file.FileSize, file.FilePath,
		nullTime(file.DateTaken), file.ImportDate, nullString(file.SourcePath),
	)
	if err != nil {
		if isConstraintViolation(err) {
			return fmt.Errorf("inserting replacement file record for %s: %w", file.FilePath, ErrContentExists)
		}
		return fmt.Errorf("inserting replacement file record: %w", err)
	}

	_, err = tx.Exec(
		"UPDATE imports SET hash = ?, file_path = ? WHERE source_path = ?",
		imp.Hash, nullString(imp.FilePath), imp.SourcePath,
	)
	if err != nil {
		return fmt.Errorf("updating import record: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing overwrite: %w", err)
	}
	return nil
}

// LookupIdentification returns the cached identification for a content
// hash, or nil if none exists. The cache is global across targets.
func (s *Store) LookupIdentification(hash string) (*model.IdentificationRecord, error) {
	var rec model.IdentificationRecord
	var fingerprint, recordingID, artist, album, title sql.NullString
	var duration sql.NullFloat64
	var trackNumber, discNumber, year sql.NullInt64
	err := s.db.QueryRow(
		"SELECT hash, fingerprint, duration, recording_id, artist, album, title, track_number, disc_number, year, lookup_date FROM identification_cache WHERE hash = ?",
		hash,
	).Scan(&rec.Hash, &fingerprint, &duration, &recordingID, &artist, &album, &title, &trackNumber, &discNumber, &year, &rec.LookupDate)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("looking up identification cache: %w", err)
	}
	rec.Fingerprint = fingerprint.String
	rec.Duration = duration.Float64
	rec.RecordingID = recordingID.String
	rec.Artist = artist.String
	rec.Album = album.String
	rec.Title = title.String
	rec.TrackNumber = int(trackNumber.Int64)
	rec.DiscNumber = int(discNumber.Int64)
	rec.Year = int(year.Int64)
	return &rec, nil
}

// CacheIdentification stores (or replaces) the identification result for a
// content hash.
func (s *Store) CacheIdentification(rec *model.IdentificationRecord) error {
	_, err := s.db.Exec(
		"INSERT OR REPLACE INTO identification_cache (hash, fingerprint, duration, recording_id, artist, album, title, track_number, disc_number, year, lookup_date) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		rec.Hash, nullString(rec.Fingerprint), rec.Duration, nullString(rec.RecordingID),
		nullString(rec.Artist), nullString(rec.Album), nullString(rec.Title),
		nullInt(rec.TrackNumber), nullInt(rec.DiscNumber), nullInt(rec.Year), rec.LookupDate,
	)
	if err != nil {
		return fmt.Errorf("caching identification: %w", err)
	}
	return nil
}

// CreateRun records the start of a mutating CLI command.
func (s *Store) CreateRun(operation, parameters string, startedAt time.Time) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO runs (operation, parameters, started_at, status) VALUES (?, ?, ?, 'success')",
		operation, parameters, startedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("creating run record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("reading run id: %w", err)
	}
	return id, nil
}

// FinishRun finalizes a run record with its outcome.
func (s *Store) FinishRun(id int64, status string, finishedAt time.Time) error {
	_, err := s.db.Exec(
		"UPDATE runs SET finished_at = ?, status = ? WHERE id = ?",
		finishedAt, status, id,
	)
	if err != nil {
		return fmt.Errorf("finishing run record: %w", err)
	}
	return nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]*model.Run, error) {
	rows, err := s.db.Query(
		"SELECT id, operation, parameters, started_at, finished_at, status FROM runs ORDER BY id DESC LIMIT ?",
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var runs []*model.Run
	for rows.Next() {
		var (
			run      model.Run
			finished sql.NullTime
		)
		if err := rows.Scan(&run.ID, &run.Operation, &run.Parameters, &run.StartedAt, &finished, &run.Status); err != nil {
			return nil, fmt.Errorf("scanning run record: %w", err)
		}
		if finished.Valid {
			t := finished.Time
			run.FinishedAt = &t
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanFileRecord(row rowScanner) (*model.FileRecord, error) {
	var (
		rec        model.FileRecord
		dateTaken  sql.NullTime
		sourcePath sql.NullString
	)
	err := row.Scan(&rec.Hash, &rec.TargetDir, &rec.FileSize, &rec.FilePath, &dateTaken, &rec.ImportDate, &sourcePath)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("scanning file record: %w", err)
	}
	if dateTaken.Valid {
		t := dateTaken.Time
		rec.DateTaken = &t
	}
	rec.SourcePath = sourcePath.String
	return &rec, nil
}

func isConstraintViolation(err error) bool {
	var sqliteErr sqlite3.Error
	return errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func nullInt(n int) sql.NullInt64 {
	return sql.NullInt64{Int64: int64(n), Valid: n != 0}
}

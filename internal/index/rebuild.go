package index

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"undisorder/internal/hash"
	"undisorder/internal/model"
)

// Rebuild re-derives all FileRecords for a target from the files physically
// present under targetDir: existing records for the target are dropped and
// every regular file (hidden files excluded) is re-hashed and indexed.
// Source-path provenance cannot be reconstructed from target content, so
// rebuilt records carry no source path, and ImportRecords are deliberately
// left untouched: a stale import hash is harmless because the content check
// runs first in the import decision order.
//
// Content already indexed under a different target keeps its original
// record (one FileRecord per hash, first target wins).
//
// Returns the number of files indexed.
func (s *Store) Rebuild(targetDir string, now time.Time) (int, error) {
	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return 0, fmt.Errorf("resolving target: %w", err)
	}

	if _, err := s.db.Exec("DELETE FROM files WHERE target_dir = ?", absTarget); err != nil {
		return 0, fmt.Errorf("clearing target records: %w", err)
	}

	count := 0
	err = filepath.WalkDir(absTarget, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != absTarget && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		size, digest, err := hash.File(p)
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(absTarget, p)
		if err != nil {
			return err
		}

		if err := s.insertRebuilt(&model.FileRecord{
			Hash:       digest,
			TargetDir:  absTarget,
			FileSize:   size,
			FilePath:   rel,
			ImportDate: now,
		}); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return count, fmt.Errorf("rebuilding index for %s: %w", absTarget, err)
	}
	return count, nil
}

func (s *Store) insertRebuilt(rec *model.FileRecord) error {
	_, err := s.db.Exec(
		"INSERT OR IGNORE INTO files (hash, target_dir, file_size, file_path, date_taken, import_date, source_path) VALUES (?, ?, ?, ?, NULL, ?, NULL)",
		rec.Hash, rec.TargetDir, rec.FileSize, rec.FilePath, rec.ImportDate,
	)
	if err != nil {
		return fmt.Errorf("indexing %s: %w", rec.FilePath, err)
	}
	return nil
}

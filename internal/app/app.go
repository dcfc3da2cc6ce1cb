// Package app is the application layer between the CLI and the import
// pipeline. It constructs all dependencies from config, manages the index
// lock and lifecycle, and records mutating commands in the run history.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"undisorder/internal/config"
	"undisorder/internal/geocode"
	"undisorder/internal/hash"
	"undisorder/internal/identify"
	"undisorder/internal/importer"
	"undisorder/internal/index"
	"undisorder/internal/media"
	"undisorder/internal/metadata"
	"undisorder/internal/model"
)

// App wires the hash index, logger, and pipeline collaborators for one CLI
// command. Mutating commands hold an advisory lock on the index for their
// whole lifetime so concurrent runs cannot interleave index writes.
type App struct {
	cfg     *config.Config
	store   *index.Store
	lock    *index.Lock
	op      *Operation
	logFile *os.File
	logger  *slogAdapter
	clock   importer.Clock
}

// NewApp creates a fully wired App from the given config.
// operation identifies the CLI command being run (e.g. "Import", "Rebuild").
// mutating commands acquire the index lock before the database is opened.
// The caller must call Close when done.
func NewApp(cfg *config.Config, operation string, mutating bool) (*App, error) {
	var lock *index.Lock
	if mutating {
		lock = index.NewLock(cfg.DatabasePath())
		if err := lock.Acquire(); err != nil {
			return nil, err
		}
	}

	store, err := index.Open(cfg.DatabasePath())
	if err != nil {
		if lock != nil {
			lock.Release()
		}
		return nil, fmt.Errorf("opening index: %w", err)
	}

	runID := uuid.New().String()[:8]
	logger, logFile, err := newLogger(cfg.LogDir, runID)
	if err != nil {
		store.Close()
		if lock != nil {
			lock.Release()
		}
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	return &App{
		cfg:     cfg,
		store:   store,
		lock:    lock,
		op:      NewOperation(operation, ""),
		logFile: logFile,
		logger:  &slogAdapter{l: logger},
		clock:   importer.RealClock{},
	}, nil
}

// persistOperation saves the run to the database, giving it an
// auto-increment ID. This should only be called for index-mutating commands.
func (a *App) persistOperation() error {
	if a.op.Persisted() {
		return nil // already persisted
	}
	id, err := a.store.CreateRun(a.op.Operation, a.op.Parameters, a.clock.Now())
	if err != nil {
		return fmt.Errorf("persisting run: %w", err)
	}
	a.op.ID = id
	return nil
}

// Import runs the import pipeline with the given options. Config defaults
// fill any zero-valued tuning options. A summary with failed batches marks
// the run as errored but is not itself an error.
func (a *App) Import(ctx context.Context, opts importer.Options) (*importer.Summary, error) {
	a.applyConfigDefaults(&opts)

	if !opts.DryRun {
		a.op.Parameters = opts.Source
		if err := a.persistOperation(); err != nil {
			return nil, err
		}
	}

	pipeline := importer.NewPipeline(
		a.store,
		&metadata.ExifToolExtractor{},
		metadata.TagReader{},
		a.identifier(),
		a.geocoder(),
		importer.OSFileOps{},
		importer.NewTerminalPrompter(),
		a.logger,
		a.clock,
	)

	sum, err := pipeline.Run(ctx, opts)
	if err != nil || (sum != nil && sum.FailedBatches > 0) {
		a.op.Status = "error"
	}
	return sum, err
}

// Rebuild re-derives the file records for a target directory from the
// files actually present on disk. Import records are left untouched.
func (a *App) Rebuild(targetDir string) (int, error) {
	a.op.Parameters = targetDir
	if err := a.persistOperation(); err != nil {
		return 0, err
	}
	n, err := a.store.Rebuild(targetDir, a.clock.Now())
	if err != nil {
		a.op.Status = "error"
		return n, err
	}
	return n, nil
}

// Dupes finds byte-identical files under dir. It works purely on the
// filesystem; the index is not consulted.
func (a *App) Dupes(dir string) ([]hash.DuplicateGroup, error) {
	result, err := media.Scan(dir)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}
	return hash.FindDuplicates(result.AllFiles(), a.cfg.Import.HashWorkers), nil
}

// DeleteDupes removes all but the oldest copy from each duplicate group.
func (a *App) DeleteDupes(groups []hash.DuplicateGroup) ([]string, error) {
	if err := a.persistOperation(); err != nil {
		return nil, err
	}
	deleted, err := hash.DeleteDuplicates(groups)
	if err != nil {
		a.op.Status = "error"
	}
	return deleted, err
}

// CheckReport is the outcome of a target consistency check.
type CheckReport struct {
	Files      int                   // files examined under the target
	Duplicates []hash.DuplicateGroup // byte-identical copies within the target
	Unindexed  []string              // target files whose content the index does not know
}

// Check verifies a target directory against the index: every file's
// content must be indexed, and no content should exist at two paths.
func (a *App) Check(targetDir string) (*CheckReport, error) {
	absTarget, err := filepath.Abs(targetDir)
	if err != nil {
		return nil, fmt.Errorf("resolving target %s: %w", targetDir, err)
	}
	result, err := media.Scan(absTarget)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", absTarget, err)
	}

	files := result.AllFiles()
	report := &CheckReport{
		Files:      len(files),
		Duplicates: hash.FindDuplicates(files, a.cfg.Import.HashWorkers),
	}

	hashes := hash.Batch(files, a.cfg.Import.HashWorkers)
	for _, f := range files {
		h, ok := hashes[f]
		if !ok {
			report.Unindexed = append(report.Unindexed, f)
			continue
		}
		known, err := a.store.HasContent(h)
		if err != nil {
			return nil, fmt.Errorf("checking index for %s: %w", f, err)
		}
		if !known {
			report.Unindexed = append(report.Unindexed, f)
		}
	}
	return report, nil
}

// History returns the most recent runs, newest first.
func (a *App) History(limit int) ([]*model.Run, error) {
	return a.store.ListRuns(limit)
}

// Config returns the loaded configuration.
func (a *App) Config() *config.Config {
	return a.cfg
}

// Close finalizes the run record and releases all resources.
func (a *App) Close() error {
	var firstErr error

	if a.op.Persisted() {
		if err := a.store.FinishRun(a.op.ID, a.op.Status, a.clock.Now()); err != nil {
			firstErr = fmt.Errorf("finishing run: %w", err)
		}
	}

	if err := a.store.Close(); err != nil {
		if firstErr == nil {
			firstErr = fmt.Errorf("closing index: %w", err)
		}
	}

	if a.lock != nil {
		if err := a.lock.Release(); err != nil && firstErr == nil {
			firstErr = fmt.Errorf("releasing index lock: %w", err)
		}
	}

	if a.logFile != nil {
		a.logFile.Close()
	}

	return firstErr
}

// applyConfigDefaults fills zero-valued options from config. Behavior
// flags can only be enabled by config, not disabled, since an unset CLI
// flag is indistinguishable from an explicit false.
func (a *App) applyConfigDefaults(opts *importer.Options) {
	opts.Move = opts.Move || a.cfg.Import.Move
	opts.Update = opts.Update || a.cfg.Import.Update
	if opts.ImagesTarget == "" {
		opts.ImagesTarget = a.cfg.Targets.Images
	}
	if opts.VideoTarget == "" {
		opts.VideoTarget = a.cfg.Targets.Video
	}
	if opts.AudioTarget == "" {
		opts.AudioTarget = a.cfg.Targets.Audio
	}
	if opts.BatchSize == 0 {
		opts.BatchSize = a.cfg.Import.BatchSize
	}
	if opts.AudioBatchSize == 0 {
		opts.AudioBatchSize = a.cfg.Import.AudioBatchSize
	}
	if opts.HashWorkers == 0 {
		opts.HashWorkers = a.cfg.Import.HashWorkers
	}
	if len(opts.Exclude) == 0 {
		opts.Exclude = a.cfg.Import.Exclude
	}
	if len(opts.ExcludeDir) == 0 {
		opts.ExcludeDir = a.cfg.Import.ExcludeDir
	}
}

func (a *App) identifier() *identify.Identifier {
	if !a.cfg.Identify.Enabled || a.cfg.Identify.AcoustIDKey == "" {
		return nil
	}
	return identify.NewIdentifier(
		identify.Fpcalc{},
		&identify.AcoustID{APIKey: a.cfg.Identify.AcoustIDKey},
		a.store,
		a.clock,
	)
}

func (a *App) geocoder() geocode.Geocoder {
	return geocode.New(geocode.Mode(a.cfg.Geocoding.Mode))
}

// Package importer drives the batched media import pipeline: scan a
// source tree, deduplicate against the hash index, resolve target paths,
// and transfer files in per-directory batches so one failure never takes
// down the whole run.
package importer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"undisorder/internal/geocode"
	"undisorder/internal/hash"
	"undisorder/internal/identify"
	"undisorder/internal/index"
	"undisorder/internal/media"
	"undisorder/internal/metadata"
	"undisorder/internal/model"
	"undisorder/internal/organize"
)

// Index is the slice of the hash index the pipeline needs.
type Index interface {
	HasContent(hash string) (bool, error)
	GetImport(sourcePath string) (*model.ImportRecord, error)
	RecordImport(file *model.FileRecord, imp *model.ImportRecord) error
	RecordSourceDuplicate(imp *model.ImportRecord) error
	OverwriteImport(oldHash string, file *model.FileRecord, imp *model.ImportRecord) error
}

// Options configures a single import run.
type Options struct {
	Source       string // source directory to import from
	ImagesTarget string // target root for photos
	VideoTarget  string // target root for videos
	AudioTarget  string // target root for audio

	Move        bool // move instead of copy
	Update      bool // re-import changed files that were imported before
	DryRun      bool // report decisions without touching files or index
	Interactive bool // confirm directory names and updates on the terminal
	Select      bool // pick source directories before importing
	Identify    bool // fingerprint-identify untagged audio

	Exclude    []string // filename glob patterns to skip
	ExcludeDir []string // directory-name glob patterns to skip

	BatchSize      int // photo/video files per metadata batch
	AudioBatchSize int // audio files per batch
	HashWorkers    int // concurrent hashing workers
}

// Summary is the outcome of an import run.
type Summary struct {
	Scanned          int // media files found after exclusions
	Imported         int
	Updated          int
	Skipped          int // already present, already imported, or declined
	SourceDuplicates int // shadowed identical copies within the source
	Failed           int // files abandoned because of errors
	FailedBatches    int
}

// Pipeline wires the import collaborators together. Every external effect
// goes through an injected interface so tests can run the full pipeline
// against fakes.
type Pipeline struct {
	index      Index
	extractor  metadata.Extractor
	audio      metadata.AudioExtractor
	identifier *identify.Identifier
	geocoder   geocode.Geocoder
	fileOps    FileOps
	prompter   Prompter
	logger     Logger
	clock      Clock
}

// NewPipeline builds a Pipeline. identifier may be nil when audio
// identification is not configured.
func NewPipeline(idx Index, extractor metadata.Extractor, audio metadata.AudioExtractor,
	identifier *identify.Identifier, geocoder geocode.Geocoder,
	fileOps FileOps, prompter Prompter, logger Logger, clock Clock) *Pipeline {
	if logger == nil {
		logger = NewNopLogger()
	}
	return &Pipeline{
		index:      idx,
		extractor:  extractor,
		audio:      audio,
		identifier: identifier,
		geocoder:   geocoder,
		fileOps:    fileOps,
		prompter:   prompter,
		logger:     logger,
		clock:      clock,
	}
}

// Run executes one import. It returns a Summary even when some batches
// failed; a non-nil error means the run could not proceed at all.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Summary, error) {
	source, err := filepath.Abs(opts.Source)
	if err != nil {
		return nil, fmt.Errorf("resolving source %s: %w", opts.Source, err)
	}

	result, err := media.Scan(source)
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", source, err)
	}
	result = media.ApplyExcludePatterns(result, source, opts.Exclude, opts.ExcludeDir)

	if opts.Select {
		accepted, err := p.prompter.SelectDirectories(media.GroupByDirectory(result, source))
		if err != nil {
			return nil, err
		}
		result = media.FilterByDirectories(result, source, accepted)
	}

	sum := &Summary{Scanned: len(result.MediaFiles())}
	p.logger.Info("scan complete", "source", source,
		"photos", len(result.Photos), "videos", len(result.Videos),
		"audio", len(result.Audios), "unknown", len(result.Unknown))

	candidates, shadowed := p.prepare(result, opts, sum)

	for _, group := range p.groupCandidates(candidates, source) {
		p.processDirectory(ctx, group, opts, sum)
	}

	if !opts.DryRun {
		p.recordShadowed(shadowed, opts, sum)
	} else {
		sum.SourceDuplicates = len(shadowed)
	}

	p.logger.Info("import finished",
		"imported", sum.Imported, "updated", sum.Updated,
		"skipped", sum.Skipped, "source_duplicates", sum.SourceDuplicates,
		"failed", sum.Failed, "failed_batches", sum.FailedBatches)
	return sum, nil
}

// prepare hashes every media file and collapses byte-identical source
// copies down to one candidate each, keeping the copy with the oldest
// modification time. Shadowed copies are returned separately so they can
// be recorded once their content has landed in a target.
func (p *Pipeline) prepare(result *media.ScanResult, opts Options, sum *Summary) ([]*candidate, []*candidate) {
	paths := result.MediaFiles()
	hashes := hash.Batch(paths, opts.HashWorkers)

	byHash := make(map[string][]*candidate)
	order := make([]string, 0, len(paths))
	for _, path := range paths {
		h, ok := hashes[path]
		if !ok {
			p.logger.Warn("could not hash file, skipping", "path", path)
			sum.Failed++
			continue
		}
		info, err := os.Stat(path)
		if err != nil {
			p.logger.Warn("could not stat file, skipping", "path", path, "error", err)
			sum.Failed++
			continue
		}
		if len(byHash[h]) == 0 {
			order = append(order, h)
		}
		byHash[h] = append(byHash[h], &candidate{
			path: path,
			kind: media.Classify(path),
			size: info.Size(),
			hash: h,
		})
	}

	var survivors, shadowed []*candidate
	for _, h := range order {
		group := byHash[h]
		sort.Slice(group, func(i, j int) bool {
			mi, mj := fileMtime(group[i].path), fileMtime(group[j].path)
			if !mi.Equal(mj) {
				return mi.Before(mj)
			}
			return group[i].path < group[j].path
		})
		survivors = append(survivors, group[0])
		for _, dup := range group[1:] {
			p.logger.Debug("source duplicate", "path", dup.path, "of", group[0].path)
			shadowed = append(shadowed, dup)
		}
	}
	return survivors, shadowed
}

// groupCandidates arranges surviving candidates into per-directory groups,
// deepest first, mirroring media.GroupByDirectory's ordering.
func (p *Pipeline) groupCandidates(candidates []*candidate, source string) [][]*candidate {
	result := &media.ScanResult{}
	byPath := make(map[string]*candidate, len(candidates))
	for _, c := range candidates {
		byPath[c.path] = c
		switch c.kind {
		case media.KindPhoto:
			result.Photos = append(result.Photos, c.path)
		case media.KindVideo:
			result.Videos = append(result.Videos, c.path)
		case media.KindAudio:
			result.Audios = append(result.Audios, c.path)
		}
	}

	var groups [][]*candidate
	for _, g := range media.GroupByDirectory(result, source) {
		batch := make([]*candidate, 0, len(g.Files))
		for _, f := range g.Files {
			batch = append(batch, byPath[f])
		}
		groups = append(groups, batch)
	}
	return groups
}

// processDirectory imports one directory group in kind-specific batches.
func (p *Pipeline) processDirectory(ctx context.Context, group []*candidate, opts Options, sum *Summary) {
	var visual, audio []*candidate
	for _, c := range group {
		if c.kind == media.KindAudio {
			audio = append(audio, c)
		} else {
			visual = append(visual, c)
		}
	}

	for _, batch := range chunk(visual, opts.BatchSize) {
		p.processVisualBatch(ctx, batch, opts, sum)
	}
	for _, batch := range chunk(audio, opts.AudioBatchSize) {
		p.processAudioBatch(ctx, batch, opts, sum)
	}
}

// processVisualBatch handles one batch of photos and videos: extract
// metadata for the whole batch in one pass, decide each file against the
// index, then transfer the newcomers grouped by resolved directory name.
// The first transfer or index error abandons the rest of the batch.
func (p *Pipeline) processVisualBatch(ctx context.Context, batch []*candidate, opts Options, sum *Summary) {
	metas, err := p.extractor.ExtractBatch(ctx, pathsOf(batch))
	if err != nil {
		p.logger.Warn("metadata extraction failed for batch, importing without metadata", "error", err)
		metas = map[string]*metadata.Record{}
	}

	handled := 0
	fail := func(err error) {
		remaining := len(batch) - handled
		p.logger.Error("batch failed, abandoning remaining files", "error", err, "remaining", remaining)
		sum.Failed += remaining
		sum.FailedBatches++
	}

	newcomers := make(map[string][]*candidate) // resolved dirname -> files
	var dirnames []string

	for _, c := range batch {
		if err := p.decide(c, opts); err != nil {
			fail(err)
			return
		}
		switch c.action {
		case actionNew:
			meta := metas[c.path]
			if meta == nil {
				meta = &metadata.Record{SourcePath: c.path}
			}
			c.meta = meta
			dirname := organize.SuggestDirname(meta, p.placeFor(ctx, meta), fileMtime(c.path))
			if _, seen := newcomers[dirname]; !seen {
				dirnames = append(dirnames, dirname)
			}
			newcomers[dirname] = append(newcomers[dirname], c)
		case actionUpdate:
			if err := p.transferUpdate(c, opts, sum); err != nil {
				fail(err)
				return
			}
			handled++
		default:
			p.logger.Debug("skipping", "path", c.path, "reason", c.action.String())
			sum.Skipped++
			handled++
		}
	}

	for _, dirname := range dirnames {
		files := newcomers[dirname]
		resolved := dirname
		if opts.Interactive && !opts.DryRun {
			edited, ok := p.prompter.ConfirmDirname(dirname, pathsOf(files))
			if !ok {
				p.logger.Info("directory skipped", "dirname", dirname, "files", len(files))
				sum.Skipped += len(files)
				handled += len(files)
				continue
			}
			resolved = edited
		}
		for _, c := range files {
			if err := p.transferNew(c, resolved, p.targetFor(c.kind, opts), opts, sum); err != nil {
				fail(err)
				return
			}
			handled++
		}
	}
}

// processAudioBatch handles one batch of audio files. Tags come from the
// file itself, optionally enriched by fingerprint identification, and the
// target path is the Artist/Album/Track layout.
func (p *Pipeline) processAudioBatch(ctx context.Context, batch []*candidate, opts Options, sum *Summary) {
	handled := 0
	fail := func(err error) {
		remaining := len(batch) - handled
		p.logger.Error("batch failed, abandoning remaining files", "error", err, "remaining", remaining)
		sum.Failed += remaining
		sum.FailedBatches++
	}

	for _, c := range batch {
		if err := p.decide(c, opts); err != nil {
			fail(err)
			return
		}
		switch c.action {
		case actionNew:
			rec, err := p.audio.Extract(c.path)
			if err != nil || rec == nil {
				rec = &metadata.AudioRecord{SourcePath: c.path}
			}
			if opts.Identify && p.identifier != nil {
				rec = p.identifier.Identify(ctx, c.path, c.hash, rec)
			}
			dest := organize.AudioTargetPath(rec, opts.AudioTarget)
			if err := p.transferTo(c, dest, opts.AudioTarget, nil, opts, sum); err != nil {
				fail(err)
				return
			}
		case actionUpdate:
			if err := p.transferUpdate(c, opts, sum); err != nil {
				fail(err)
				return
			}
		default:
			p.logger.Debug("skipping", "path", c.path, "reason", c.action.String())
			sum.Skipped++
		}
		handled++
	}
}

// transferNew moves or copies a newly decided file into dirname under
// targetRoot and records the import.
func (p *Pipeline) transferNew(c *candidate, dirname, targetRoot string, opts Options, sum *Summary) error {
	dest := filepath.Join(targetRoot, dirname, filepath.Base(c.path))
	var dateTaken *time.Time
	if c.meta != nil {
		dateTaken = c.meta.DateTaken
	}
	return p.transferTo(c, dest, targetRoot, dateTaken, opts, sum)
}

// transferTo performs the physical transfer to dest and commits the
// import. In dry-run mode it only logs the decision.
func (p *Pipeline) transferTo(c *candidate, dest, targetRoot string, dateTaken *time.Time, opts Options, sum *Summary) error {
	if opts.DryRun {
		p.logger.Info("would import", "source", c.path, "dest", dest)
		sum.Imported++
		return nil
	}

	dest = organize.ResolveCollision(dest)
	if err := p.writeFile(c, dest, opts.Move); err != nil {
		return err
	}

	rel, err := filepath.Rel(targetRoot, dest)
	if err != nil {
		rel = dest
	}
	now := p.clock.Now()
	file := &model.FileRecord{
		Hash:       c.hash,
		TargetDir:  targetRoot,
		FileSize:   c.size,
		FilePath:   rel,
		DateTaken:  dateTaken,
		ImportDate: now,
		SourcePath: c.path,
	}
	imp := &model.ImportRecord{
		SourcePath: c.path,
		TargetDir:  targetRoot,
		Hash:       c.hash,
		FilePath:   rel,
	}
	if err := p.index.RecordImport(file, imp); err != nil {
		if errors.Is(err, index.ErrContentExists) {
			p.logger.Warn("content appeared in index mid-run, skipping", "path", c.path)
			sum.Skipped++
			return nil
		}
		return fmt.Errorf("recording import of %s: %w", c.path, err)
	}
	p.logger.Info("imported", "source", c.path, "dest", dest)
	sum.Imported++
	return nil
}

// transferUpdate overwrites the previously imported target file in place
// and swaps the index records over to the new content.
func (p *Pipeline) transferUpdate(c *candidate, opts Options, sum *Summary) error {
	dest := joinTarget(c.old.TargetDir, c.old.FilePath)
	if opts.DryRun {
		p.logger.Info("would update", "source", c.path, "dest", dest)
		sum.Updated++
		return nil
	}

	if err := p.writeFile(c, dest, opts.Move); err != nil {
		return err
	}
	now := p.clock.Now()
	file := &model.FileRecord{
		Hash:       c.hash,
		TargetDir:  c.old.TargetDir,
		FileSize:   c.size,
		FilePath:   c.old.FilePath,
		ImportDate: now,
		SourcePath: c.path,
	}
	imp := &model.ImportRecord{
		SourcePath: c.path,
		TargetDir:  c.old.TargetDir,
		Hash:       c.hash,
		FilePath:   c.old.FilePath,
	}
	if err := p.index.OverwriteImport(c.old.Hash, file, imp); err != nil {
		return fmt.Errorf("recording update of %s: %w", c.path, err)
	}
	p.logger.Info("updated", "source", c.path, "dest", dest)
	sum.Updated++
	return nil
}

// writeFile performs the copy or move, creating parent directories. Copies
// are verified against the already known content hash before the index is
// touched; a mismatch means the source changed mid-read.
func (p *Pipeline) writeFile(c *candidate, dest string, move bool) error {
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", filepath.Dir(dest), err)
	}
	if _, err := os.Stat(dest); err == nil {
		// Updates overwrite in place; anything else resolved collisions
		// beforehand, so an existing file is only ever the old version.
		if err := os.Remove(dest); err != nil {
			return fmt.Errorf("replacing %s: %w", dest, err)
		}
	}

	if move {
		if err := p.fileOps.Move(c.path, dest); err != nil {
			return err
		}
		info, err := os.Stat(dest)
		if err != nil {
			return fmt.Errorf("verifying move of %s: %w", c.path, err)
		}
		if info.Size() != c.size {
			return fmt.Errorf("verification failed for %s: size changed during move", c.path)
		}
		return nil
	}
	digest, err := p.fileOps.Copy(c.path, dest)
	if err != nil {
		return err
	}
	if digest != c.hash {
		os.Remove(dest)
		return fmt.Errorf("verification failed for %s: content changed during copy", c.path)
	}
	return nil
}

// recordShadowed records the collapsed source copies whose content made it
// into a target, so re-runs skip them by source path alone.
func (p *Pipeline) recordShadowed(shadowed []*candidate, opts Options, sum *Summary) {
	for _, c := range shadowed {
		known, err := p.index.HasContent(c.hash)
		if err != nil || !known {
			continue
		}
		imp := &model.ImportRecord{
			SourcePath: c.path,
			TargetDir:  p.targetFor(c.kind, opts),
			Hash:       c.hash,
		}
		if err := p.index.RecordSourceDuplicate(imp); err != nil {
			p.logger.Warn("could not record source duplicate", "path", c.path, "error", err)
			continue
		}
		sum.SourceDuplicates++
	}
}

// placeFor resolves a human place name for a record's GPS position, if it
// has one. Geocoding failures degrade to no place, never to an error.
func (p *Pipeline) placeFor(ctx context.Context, meta *metadata.Record) string {
	if !meta.HasGPS() || p.geocoder == nil {
		return ""
	}
	place, err := p.geocoder.Reverse(ctx, *meta.Latitude, *meta.Longitude)
	if err != nil {
		p.logger.Warn("reverse geocoding failed", "path", meta.SourcePath, "error", err)
		return ""
	}
	return place
}

func (p *Pipeline) targetFor(kind media.Kind, opts Options) string {
	switch kind {
	case media.KindVideo:
		return opts.VideoTarget
	case media.KindAudio:
		return opts.AudioTarget
	default:
		return opts.ImagesTarget
	}
}

func pathsOf(batch []*candidate) []string {
	paths := make([]string, len(batch))
	for i, c := range batch {
		paths[i] = c.path
	}
	return paths
}

func chunk(items []*candidate, size int) [][]*candidate {
	if size <= 0 {
		size = 1
	}
	var batches [][]*candidate
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}

func joinTarget(targetRoot, rel string) string {
	return filepath.Join(targetRoot, rel)
}

func fileMtime(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

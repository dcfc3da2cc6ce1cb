package importer

import (
	"os"

	"undisorder/internal/media"
	"undisorder/internal/metadata"
	"undisorder/internal/model"
)

// action is the per-file outcome of the dedup decision order.
type action int

const (
	actionNew action = iota
	actionUpdate
	actionSkipContent  // identical bytes already in a target
	actionSkipImported // source path already handled
	actionSkipDeclined // update available but not taken
)

func (a action) String() string {
	switch a {
	case actionNew:
		return "import"
	case actionUpdate:
		return "update"
	case actionSkipContent:
		return "skip (content already in target)"
	case actionSkipImported:
		return "skip (source already imported)"
	case actionSkipDeclined:
		return "skip (update declined)"
	default:
		return "unknown"
	}
}

// candidate is one file that survived source deduplication, carrying
// everything the decision and transfer steps need.
type candidate struct {
	path   string
	kind   media.Kind
	size   int64
	hash   string
	action action
	// extracted metadata, set for newly imported photos and videos
	meta *metadata.Record
	// prior import, set when action is actionUpdate
	old *model.ImportRecord
}

// decide classifies a candidate against the index, in strict order:
// content already present anywhere skips, a previously imported source
// path skips unless update mode is active and the source is newer than
// the previously imported target file, and everything else is new.
func (p *Pipeline) decide(c *candidate, opts Options) error {
	known, err := p.index.HasContent(c.hash)
	if err != nil {
		return err
	}
	if known {
		c.action = actionSkipContent
		return nil
	}

	prior, err := p.index.GetImport(c.path)
	if err != nil {
		return err
	}
	if prior == nil {
		c.action = actionNew
		return nil
	}

	if prior.FilePath == "" || !sourceIsNewer(c.path, joinTarget(prior.TargetDir, prior.FilePath)) {
		c.action = actionSkipImported
		return nil
	}

	switch {
	case opts.Interactive:
		if !p.prompter.ConfirmUpdate(c.path) {
			c.action = actionSkipDeclined
			return nil
		}
	case !opts.Update:
		c.action = actionSkipDeclined
		return nil
	}

	c.action = actionUpdate
	c.old = prior
	return nil
}

// sourceIsNewer reports whether source's mtime is strictly newer than
// target's. A missing target means there is nothing to compare against.
func sourceIsNewer(source, target string) bool {
	srcInfo, err := os.Stat(source)
	if err != nil {
		return false
	}
	dstInfo, err := os.Stat(target)
	if err != nil {
		return false
	}
	return srcInfo.ModTime().After(dstInfo.ModTime())
}

package identify

import (
	"context"
	"time"

	"undisorder/internal/metadata"
	"undisorder/internal/model"
)

// Cache is the read-through store for identification results, keyed purely
// by content hash. Satisfied by the hash index.
type Cache interface {
	LookupIdentification(hash string) (*model.IdentificationRecord, error)
	CacheIdentification(rec *model.IdentificationRecord) error
}

// Clock abstracts time retrieval so lookup timestamps are deterministic in
// tests.
type Clock interface {
	Now() time.Time
}

// Identifier fills in missing audio tags from a fingerprint-based remote
// lookup, consulting the cache first. Existing tag data always wins over
// lookup data, field by field.
type Identifier struct {
	fingerprinter Fingerprinter
	lookup        RecordingLookup
	cache         Cache
	clock         Clock
}

// NewIdentifier wires an Identifier from its collaborators.
func NewIdentifier(fp Fingerprinter, lookup RecordingLookup, cache Cache, clock Clock) *Identifier {
	return &Identifier{fingerprinter: fp, lookup: lookup, cache: cache, clock: clock}
}

// Identify returns existing merged with lookup results for the file at
// path. Any collaborator failure returns existing unchanged; an
// identification problem never blocks an import.
func (i *Identifier) Identify(ctx context.Context, path, contentHash string, existing *metadata.AudioRecord) *metadata.AudioRecord {
	if cached, err := i.cache.LookupIdentification(contentHash); err == nil && cached != nil {
		return merge(existing, &metadata.AudioRecord{
			Artist:      cached.Artist,
			Album:       cached.Album,
			Title:       cached.Title,
			TrackNumber: cached.TrackNumber,
			DiscNumber:  cached.DiscNumber,
			Year:        cached.Year,
		})
	}

	fingerprint, duration, err := i.fingerprinter.Fingerprint(ctx, path)
	if err != nil {
		return existing
	}

	looked, recordingID, err := i.lookup.Lookup(ctx, fingerprint, duration)
	if err != nil {
		return existing
	}

	// Negative results are cached too, so the next encounter of the same
	// content skips the remote round trip.
	cacheRec := &model.IdentificationRecord{
		Hash:        contentHash,
		Fingerprint: fingerprint,
		Duration:    duration,
		RecordingID: recordingID,
		LookupDate:  i.clock.Now(),
	}
	if looked != nil {
		cacheRec.Artist = looked.Artist
		cacheRec.Album = looked.Album
		cacheRec.Title = looked.Title
		cacheRec.TrackNumber = looked.TrackNumber
		cacheRec.DiscNumber = looked.DiscNumber
		cacheRec.Year = looked.Year
	}
	_ = i.cache.CacheIdentification(cacheRec)

	if looked == nil {
		return existing
	}
	return merge(existing, looked)
}

func merge(existing, looked *metadata.AudioRecord) *metadata.AudioRecord {
	out := *existing
	if out.Artist == "" {
		out.Artist = looked.Artist
	}
	if out.Album == "" {
		out.Album = looked.Album
	}
	if out.Title == "" {
		out.Title = looked.Title
	}
	if out.TrackNumber == 0 {
		out.TrackNumber = looked.TrackNumber
	}
	if out.DiscNumber == 0 {
		out.DiscNumber = looked.DiscNumber
	}
	if out.Year == 0 {
		out.Year = looked.Year
	}
	return &out
}

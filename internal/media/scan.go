// Package media discovers and classifies media files in a source tree.
package media

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Kind classifies a file by its extension.
type Kind int

const (
	KindUnknown Kind = iota
	KindPhoto
	KindVideo
	KindAudio
)

func (k Kind) String() string {
	switch k {
	case KindPhoto:
		return "photo"
	case KindVideo:
		return "video"
	case KindAudio:
		return "audio"
	default:
		return "unknown"
	}
}

var photoExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".tiff": true, ".tif": true,
	".heic": true, ".heif": true, ".webp": true, ".bmp": true,
	// RAW formats
	".cr2": true, ".cr3": true, ".nef": true, ".arw": true, ".orf": true,
	".raf": true, ".rw2": true, ".dng": true, ".pef": true, ".srw": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".avi": true, ".mkv": true, ".mts": true,
	".m2ts": true, ".wmv": true, ".flv": true, ".webm": true, ".3gp": true,
	".m4v": true, ".mpg": true, ".mpeg": true, ".vob": true,
}

var audioExtensions = map[string]bool{
	".mp3": true, ".flac": true, ".ogg": true, ".opus": true, ".m4a": true,
	".aac": true, ".wma": true, ".wav": true, ".aiff": true, ".ape": true,
	".mpc": true, ".wv": true, ".tta": true,
}

// Classify returns the media kind for a path based on its extension.
func Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case photoExtensions[ext]:
		return KindPhoto
	case videoExtensions[ext]:
		return KindVideo
	case audioExtensions[ext]:
		return KindAudio
	default:
		return KindUnknown
	}
}

// ScanResult holds the classified files found under a source root.
type ScanResult struct {
	Photos  []string
	Videos  []string
	Audios  []string
	Unknown []string
}

// Total returns the number of files across all classes.
func (r *ScanResult) Total() int {
	return len(r.Photos) + len(r.Videos) + len(r.Audios) + len(r.Unknown)
}

// AllFiles returns every scanned file, photos first.
func (r *ScanResult) AllFiles() []string {
	all := make([]string, 0, r.Total())
	all = append(all, r.Photos...)
	all = append(all, r.Videos...)
	all = append(all, r.Audios...)
	all = append(all, r.Unknown...)
	return all
}

// MediaFiles returns photos, videos, and audio, excluding unknown files.
func (r *ScanResult) MediaFiles() []string {
	all := make([]string, 0, len(r.Photos)+len(r.Videos)+len(r.Audios))
	all = append(all, r.Photos...)
	all = append(all, r.Videos...)
	all = append(all, r.Audios...)
	return all
}

// Scan walks directory recursively and classifies every regular file.
// Hidden files and files inside hidden directories are skipped.
func Scan(directory string) (*ScanResult, error) {
	result := &ScanResult{}

	err := filepath.WalkDir(directory, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != directory && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		switch Classify(p) {
		case KindPhoto:
			result.Photos = append(result.Photos, p)
		case KindVideo:
			result.Videos = append(result.Videos, p)
		case KindAudio:
			result.Audios = append(result.Audios, p)
		default:
			result.Unknown = append(result.Unknown, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", directory, err)
	}

	return result, nil
}

package media

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

func matchesAny(name string, patterns []string) bool {
	lower := strings.ToLower(name)
	for _, p := range patterns {
		if ok, _ := filepath.Match(strings.ToLower(p), lower); ok {
			return true
		}
	}
	return false
}

func isExcluded(path, sourceRoot string, excludeFile, excludeDir []string) bool {
	if matchesAny(filepath.Base(path), excludeFile) {
		return true
	}
	if len(excludeDir) == 0 {
		return false
	}
	rel, err := filepath.Rel(sourceRoot, path)
	if err != nil {
		return false
	}
	dir := filepath.Dir(rel)
	if dir == "." {
		return false
	}
	for _, part := range strings.Split(dir, string(filepath.Separator)) {
		if matchesAny(part, excludeDir) {
			return true
		}
	}
	return false
}

// ApplyExcludePatterns drops files matching the given case-insensitive
// globs, either by filename or by any path component of their directory
// relative to sourceRoot. Returns a new ScanResult.
func ApplyExcludePatterns(result *ScanResult, sourceRoot string, excludeFile, excludeDir []string) *ScanResult {
	keep := func(paths []string) []string {
		var kept []string
		for _, p := range paths {
			if !isExcluded(p, sourceRoot, excludeFile, excludeDir) {
				kept = append(kept, p)
			}
		}
		return kept
	}
	return &ScanResult{
		Photos:  keep(result.Photos),
		Videos:  keep(result.Videos),
		Audios:  keep(result.Audios),
		Unknown: keep(result.Unknown),
	}
}

// DirectoryGroup is the set of scanned files sharing one parent directory,
// expressed relative to the source root ("." for the root itself).
type DirectoryGroup struct {
	RelPath      string
	Files        []string
	PhotoCount   int
	VideoCount   int
	AudioCount   int
	UnknownCount int
	TotalSize    int64
}

// GroupByDirectory groups all scanned files by parent directory. Groups are
// ordered deepest-first (so leaf directories are fully processed before
// their ancestors), with a lexical tiebreak.
func GroupByDirectory(result *ScanResult, sourceRoot string) []DirectoryGroup {
	byDir := make(map[string][]string)
	for _, f := range result.AllFiles() {
		rel, err := filepath.Rel(sourceRoot, f)
		if err != nil {
			continue
		}
		dir := filepath.Dir(rel)
		byDir[dir] = append(byDir[dir], f)
	}

	groups := make([]DirectoryGroup, 0, len(byDir))
	for rel, files := range byDir {
		sort.Strings(files)
		g := DirectoryGroup{RelPath: rel, Files: files}
		for _, f := range files {
			switch Classify(f) {
			case KindPhoto:
				g.PhotoCount++
			case KindVideo:
				g.VideoCount++
			case KindAudio:
				g.AudioCount++
			default:
				g.UnknownCount++
			}
			if info, err := os.Stat(f); err == nil {
				g.TotalSize += info.Size()
			}
		}
		groups = append(groups, g)
	}

	sort.Slice(groups, func(i, j int) bool {
		di := strings.Count(groups[i].RelPath, string(filepath.Separator))
		dj := strings.Count(groups[j].RelPath, string(filepath.Separator))
		if groups[i].RelPath == "." {
			di = -1
		}
		if groups[j].RelPath == "." {
			dj = -1
		}
		if di != dj {
			return di > dj
		}
		return groups[i].RelPath < groups[j].RelPath
	})
	return groups
}

// FilterByDirectories keeps only files whose parent directory (relative to
// sourceRoot) is in accepted.
func FilterByDirectories(result *ScanResult, sourceRoot string, accepted map[string]bool) *ScanResult {
	keep := func(paths []string) []string {
		var kept []string
		for _, p := range paths {
			rel, err := filepath.Rel(sourceRoot, p)
			if err != nil {
				continue
			}
			if accepted[filepath.Dir(rel)] {
				kept = append(kept, p)
			}
		}
		return kept
	}
	return &ScanResult{
		Photos:  keep(result.Photos),
		Videos:  keep(result.Videos),
		Audios:  keep(result.Audios),
		Unknown: keep(result.Unknown),
	}
}

// FormatSize renders a byte count as a human-readable string.
func FormatSize(size int64) string {
	switch {
	case size < 1024:
		return fmt.Sprintf("%d B", size)
	case size < 1024*1024:
		return fmt.Sprintf("%.1f KB", float64(size)/1024)
	case size < 1024*1024*1024:
		return fmt.Sprintf("%.1f MB", float64(size)/(1024*1024))
	default:
		return fmt.Sprintf("%.1f GB", float64(size)/(1024*1024*1024))
	}
}

// Summary renders a directory group as a one-line description.
func (g DirectoryGroup) Summary() string {
	var parts []string
	if g.PhotoCount > 0 {
		parts = append(parts, fmt.Sprintf("%d photo(s)", g.PhotoCount))
	}
	if g.VideoCount > 0 {
		parts = append(parts, fmt.Sprintf("%d video(s)", g.VideoCount))
	}
	if g.AudioCount > 0 {
		parts = append(parts, fmt.Sprintf("%d audio", g.AudioCount))
	}
	if g.UnknownCount > 0 {
		parts = append(parts, fmt.Sprintf("%d unknown", g.UnknownCount))
	}
	return fmt.Sprintf("%s/  (%s, %s)", g.RelPath, strings.Join(parts, ", "), FormatSize(g.TotalSize))
}

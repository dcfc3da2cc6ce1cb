package hash

import (
	"fmt"
	"os"
	"runtime"
	"sort"
	"sync"
	"time"
)

// DuplicateGroup is a set of paths with byte-identical content.
type DuplicateGroup struct {
	Hash     string
	FileSize int64
	Paths    []string
}

// FindDuplicates groups the given paths into classes of identical content.
// Only classes with at least two members are returned.
//
// Two phases: files are first bucketed by size (a stat call per file, no
// content I/O); a size seen once cannot have a duplicate. Only the members
// of multi-file size buckets are hashed, then re-grouped by digest.
// Unreadable files are dropped from consideration rather than failing the
// whole pass.
func FindDuplicates(paths []string, workers int) []DuplicateGroup {
	if len(paths) == 0 {
		return nil
	}

	// Phase 1: bucket by size.
	sizeGroups := make(map[int64][]string)
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		sizeGroups[info.Size()] = append(sizeGroups[info.Size()], p)
	}

	var candidates []string
	candidateSize := make(map[string]int64)
	for size, group := range sizeGroups {
		if len(group) < 2 {
			continue
		}
		for _, p := range group {
			candidates = append(candidates, p)
			candidateSize[p] = size
		}
	}
	if len(candidates) == 0 {
		return nil
	}

	// Phase 2: hash only the candidates, re-group by digest within each
	// size bucket.
	hashes := Batch(candidates, workers)

	type key struct {
		size int64
		hash string
	}
	hashGroups := make(map[key][]string)
	for _, p := range candidates {
		h, ok := hashes[p]
		if !ok {
			continue
		}
		k := key{size: candidateSize[p], hash: h}
		hashGroups[k] = append(hashGroups[k], p)
	}

	var groups []DuplicateGroup
	for k, files := range hashGroups {
		if len(files) < 2 {
			continue
		}
		sort.Strings(files)
		groups = append(groups, DuplicateGroup{Hash: k.hash, FileSize: k.size, Paths: files})
	}
	sort.Slice(groups, func(i, j int) bool { return groups[i].Paths[0] < groups[j].Paths[0] })
	return groups
}

// Batch hashes the given paths on a bounded worker pool and returns a map
// of path to digest. Paths that fail to hash are absent from the result.
func Batch(paths []string, workers int) map[string]string {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(paths) {
		workers = len(paths)
	}

	type result struct {
		path string
		hash string
		err  error
	}

	jobs := make(chan string)
	results := make(chan result)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for p := range jobs {
				_, h, err := File(p)
				results <- result{path: p, hash: h, err: err}
			}
		}()
	}

	go func() {
		for _, p := range paths {
			jobs <- p
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	out := make(map[string]string, len(paths))
	for r := range results {
		if r.err != nil {
			continue
		}
		out[r.path] = r.hash
	}
	return out
}

// DeleteDuplicates removes all but the oldest copy (by modification time)
// within each group. The oldest copy is assumed closest to the original
// capture. Returns the deleted paths. This operates purely on the source
// tree and never consults the hash index.
func DeleteDuplicates(groups []DuplicateGroup) ([]string, error) {
	var deleted []string
	for _, g := range groups {
		ordered := make([]string, len(g.Paths))
		copy(ordered, g.Paths)
		sort.Slice(ordered, func(i, j int) bool {
			return mtimeOf(ordered[i]).Before(mtimeOf(ordered[j]))
		})
		for _, p := range ordered[1:] {
			if err := os.Remove(p); err != nil {
				return deleted, fmt.Errorf("deleting duplicate %s: %w", p, err)
			}
			deleted = append(deleted, p)
		}
	}
	return deleted, nil
}

func mtimeOf(path string) time.Time {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}
	}
	return info.ModTime()
}

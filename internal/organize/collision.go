package organize

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveCollision returns target if nothing exists there, otherwise the
// first "<stem>_N<ext>" variant that is free.
func ResolveCollision(target string) string {
	if _, err := os.Stat(target); err != nil {
		return target
	}

	dir := filepath.Dir(target)
	base := filepath.Base(target)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)

	for counter := 1; ; counter++ {
		candidate := filepath.Join(dir, fmt.Sprintf("%s_%d%s", stem, counter, ext))
		if _, err := os.Stat(candidate); err != nil {
			return candidate
		}
	}
}

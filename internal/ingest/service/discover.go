package service

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ingestdomain "github.com/smallbiznis/reviewvault/internal/ingest/domain"
)

// Discover expands every pattern, ** included, and returns the matching regular
// files deduplicated and sorted.
func Discover(patterns []string) ([]string, error) {
	seen := map[string]struct{}{}
	given := false
	for _, pattern := range patterns {
		pattern = strings.TrimSpace(pattern)
		if pattern == "" {
			continue
		}
		given = true
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("glob %q: %w", pattern, err)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			seen[match] = struct{}{}
		}
	}
	if !given {
		return nil, ingestdomain.ErrNoPatterns
	}

	files := make([]string, 0, len(seen))
	for file := range seen {
		files = append(files, file)
	}
	slices.Sort(files)
	return files, nil
}

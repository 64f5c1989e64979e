package analysis

import (
	"regexp"

	"github.com/chainaudit/repo-judge/internal/types"
)

const (
	// maxFileSize drops any file larger than this from selection
	maxFileSize = 60_000
	// maxSelected caps the candidate set; it bounds both network and
	// heuristic cost per analysis, and heuristics only ever see evidence
	// from files that survive the cap
	maxSelected = 60
)

var includePatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^README\.md$`),
	regexp.MustCompile(`(?i)^docs/`),
	regexp.MustCompile(`(?i)^contracts/`),
	regexp.MustCompile(`(?i)^src/`),
	regexp.MustCompile(`(?i)^app/`),
	regexp.MustCompile(`(?i)^test/`),
	regexp.MustCompile(`(?i)^package\.json$`),
	regexp.MustCompile(`(?i)^\.env\.example$`),
	regexp.MustCompile(`(?i)^foundry\.toml$`),
	regexp.MustCompile(`(?i)^hardhat\.config\.(js|ts|cjs|mjs)$`),
}

var excludePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^node_modules/`),
	regexp.MustCompile(`^dist/`),
	regexp.MustCompile(`^build/`),
	regexp.MustCompile(`^out/`),
	regexp.MustCompile(`^\.next/`),
	regexp.MustCompile(`(?i)\.(png|jpe?g|gif|webp|svg)$`),
	regexp.MustCompile(`\.lock$`),
}

// SelectFiles filters the full recursive tree down to the bounded candidate
// set the heuristics run over: blobs only, size-capped, matching at least one
// include pattern and no exclude pattern, truncated to the first maxSelected
// entries in the provider's tree order.
func SelectFiles(tree []types.TreeEntry) []types.TreeEntry {
	selected := make([]types.TreeEntry, 0, maxSelected)

	for _, e := range tree {
		if e.Type != "blob" {
			continue
		}
		if e.Size > maxFileSize {
			continue
		}
		if !matchesAny(includePatterns, e.Path) {
			continue
		}
		if matchesAny(excludePatterns, e.Path) {
			continue
		}

		selected = append(selected, e)
		if len(selected) == maxSelected {
			break
		}
	}

	return selected
}

func matchesAny(patterns []*regexp.Regexp, path string) bool {
	for _, rx := range patterns {
		if rx.MatchString(path) {
			return true
		}
	}
	return false
}

package analysis

import (
	"context"
	"strings"
	"sync"

	"github.com/chainaudit/repo-judge/internal/types"
)

// fetchWorkers bounds concurrent raw-content fetches within one analysis
const fetchWorkers = 8

// FetchText retrieves the raw text of one selected file. Implementations
// degrade to the empty string on failure; a per-file failure never aborts
// the batch.
type FetchText func(ctx context.Context, path string) string

// Corpora holds the named text corpora the heuristics run over. Each corpus
// is the join, with a blank-line separator, of the matching files' text in
// selection order. Membership predicates overlap, so one file's text can
// appear in several corpora; in particular the docs corpus re-includes
// README.md through its "readme" substring rule.
type Corpora struct {
	Readme         string
	Docs           string
	AppSource      string
	ContractSource string

	// PackageJSON and EnvExample carry the raw text of those two exact
	// files; a few heuristics read them directly
	PackageJSON string
	EnvExample  string

	// Paths is the selected-file path set in selection order
	Paths []string
}

type fetchedFile struct {
	path string
	text string
}

// BuildCorpora fetches text for every selected entry and partitions it into
// the named corpora. Fetches run on a bounded worker pool; concatenation
// order always follows selection order regardless of completion order.
func BuildCorpora(ctx context.Context, selected []types.TreeEntry, fetch FetchText) Corpora {
	files := make([]fetchedFile, len(selected))

	var wg sync.WaitGroup
	sem := make(chan struct{}, fetchWorkers)
	for i, entry := range selected {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			files[i] = fetchedFile{path: path, text: fetch(ctx, path)}
		}(i, entry.Path)
	}
	wg.Wait()

	return assembleCorpora(files)
}

func assembleCorpora(files []fetchedFile) Corpora {
	c := Corpora{Paths: make([]string, 0, len(files))}

	var docs, app, contracts []string
	for _, f := range files {
		c.Paths = append(c.Paths, f.path)

		if f.path == "README.md" {
			c.Readme = f.text
		}
		if f.path == "package.json" {
			c.PackageJSON = f.text
		}
		if f.path == ".env.example" {
			c.EnvExample = f.text
		}

		if strings.HasPrefix(f.path, "docs/") || strings.Contains(strings.ToLower(f.path), "readme") {
			docs = append(docs, f.text)
		}
		if strings.HasPrefix(f.path, "src/") || strings.HasPrefix(f.path, "app/") || hasScriptExtension(f.path) {
			app = append(app, f.text)
		}
		if strings.HasPrefix(f.path, "contracts/") {
			contracts = append(contracts, f.text)
		}
	}

	c.Docs = strings.Join(docs, "\n\n")
	c.AppSource = strings.Join(app, "\n\n")
	c.ContractSource = strings.Join(contracts, "\n\n")
	return c
}

func hasScriptExtension(path string) bool {
	lower := strings.ToLower(path)
	for _, ext := range []string{".ts", ".tsx", ".js", ".jsx"} {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

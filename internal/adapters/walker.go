package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/chainaudit/repo-judge/internal/types"
)

const (
	// maxWalkDepth bounds how deep the contents walk may go
	maxWalkDepth = 3
	// maxListDepth bounds how deep sub-directories are still expanded
	maxListDepth = 2
)

// ListTree walks a repository's contents listing breadth-first with an
// explicit worklist. Directories are expanded only below maxListDepth and the
// walk never exceeds maxWalkDepth, so both bounds are loop invariants rather
// than recursion properties. Failures yield an empty or partial listing, not
// an error; the scoring pipeline does not use this helper.
func (g *GitHubClient) ListTree(ctx context.Context, owner, repo, path, token string) []types.ContentsEntry {
	type workItem struct {
		path  string
		depth int
	}

	results := make([]types.ContentsEntry, 0, 64)
	queue := []workItem{{path: path, depth: 0}}

	for len(queue) > 0 {
		item := queue[0]
		queue = queue[1:]

		if item.depth > maxWalkDepth {
			continue
		}

		entries, ok := g.listContents(ctx, owner, repo, item.path, token)
		if !ok {
			continue
		}

		results = append(results, entries...)

		for _, e := range entries {
			if e.Type == "dir" && item.depth < maxListDepth {
				queue = append(queue, workItem{path: e.Path, depth: item.depth + 1})
			}
		}
	}

	return results
}

// listContents fetches one level of the contents API. A non-array payload
// (single file) or any failure reports not-ok.
func (g *GitHubClient) listContents(ctx context.Context, owner, repo, path, token string) ([]types.ContentsEntry, bool) {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s", owner, repo, url.PathEscape(path))
	resp, err := g.doRequest(ctx, g.baseURL+endpoint, token)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, false
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false
	}

	var entries []types.ContentsEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, false
	}
	return entries, true
}

package adapters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	apperrors "github.com/chainaudit/repo-judge/internal/errors"
	"github.com/chainaudit/repo-judge/internal/types"
)

const defaultBaseURL = "https://api.github.com"

// ghRepo is the subset of the repository metadata payload we decode
type ghRepo struct {
	DefaultBranch string `json:"default_branch"`
	License       *struct {
		SPDXID string `json:"spdx_id"`
		Key    string `json:"key"`
	} `json:"license"`
}

type ghCommit struct {
	SHA string `json:"sha"`
}

type ghTree struct {
	Tree []struct {
		Path string `json:"path"`
		Type string `json:"type"`
		Size int    `json:"size"`
	} `json:"tree"`
}

type ghContents struct {
	DownloadURL string `json:"download_url"`
}

// GitHubClient retrieves repository metadata, commit history, file trees and
// raw file contents from the GitHub API. The bearer token is supplied per
// call and never persisted; fallbackToken (from the environment) is used only
// when a call carries no token of its own.
type GitHubClient struct {
	baseURL       string
	fallbackToken string
	httpClient    *http.Client
}

// NewGitHubClient creates a client with a tuned, pooled transport
func NewGitHubClient(fallbackToken string) *GitHubClient {
	transport := &http.Transport{
		MaxIdleConns:          10,
		MaxConnsPerHost:       20,
		MaxIdleConnsPerHost:   5,
		IdleConnTimeout:       30 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &GitHubClient{
		baseURL:       defaultBaseURL,
		fallbackToken: fallbackToken,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   30 * time.Second,
		},
	}
}

// SetBaseURL overrides the API base URL (used by tests)
func (g *GitHubClient) SetBaseURL(base string) {
	g.baseURL = base
}

// RepoMetadata fetches the default branch and license id for a repository.
// A non-success provider status is fatal and the error carries the status
// code and body.
func (g *GitHubClient) RepoMetadata(ctx context.Context, owner, repo, token string) (types.RepoMetadata, error) {
	var repoData ghRepo
	endpoint := fmt.Sprintf("/repos/%s/%s", owner, repo)
	if err := g.getJSON(ctx, endpoint, token, &repoData); err != nil {
		return types.RepoMetadata{}, err
	}

	license := "UNKNOWN"
	if repoData.License != nil {
		switch {
		case repoData.License.SPDXID != "":
			license = repoData.License.SPDXID
		case repoData.License.Key != "":
			license = repoData.License.Key
		}
	}

	return types.RepoMetadata{
		DefaultBranch: repoData.DefaultBranch,
		License:       license,
	}, nil
}

// RecentCommits returns up to limit commit SHAs on branch, most recent first
func (g *GitHubClient) RecentCommits(ctx context.Context, owner, repo, branch string, limit int, token string) ([]string, error) {
	var commits []ghCommit
	endpoint := fmt.Sprintf("/repos/%s/%s/commits?per_page=%d&sha=%s", owner, repo, limit, url.QueryEscape(branch))
	if err := g.getJSON(ctx, endpoint, token, &commits); err != nil {
		return nil, err
	}

	if len(commits) > limit {
		commits = commits[:limit]
	}
	shas := make([]string, 0, len(commits))
	for _, c := range commits {
		shas = append(shas, c.SHA)
	}
	return shas, nil
}

// HeadCommitSHA resolves the head commit of a branch
func (g *GitHubClient) HeadCommitSHA(ctx context.Context, owner, repo, branch, token string) (string, error) {
	var head ghCommit
	endpoint := fmt.Sprintf("/repos/%s/%s/commits/%s", owner, repo, url.PathEscape(branch))
	if err := g.getJSON(ctx, endpoint, token, &head); err != nil {
		return "", err
	}
	return head.SHA, nil
}

// FullTree fetches the complete recursive tree for a commit in one call
func (g *GitHubClient) FullTree(ctx context.Context, owner, repo, sha, token string) ([]types.TreeEntry, error) {
	var tree ghTree
	endpoint := fmt.Sprintf("/repos/%s/%s/git/trees/%s?recursive=1", owner, repo, url.PathEscape(sha))
	if err := g.getJSON(ctx, endpoint, token, &tree); err != nil {
		return nil, err
	}

	entries := make([]types.TreeEntry, 0, len(tree.Tree))
	for _, t := range tree.Tree {
		entries = append(entries, types.TreeEntry{Path: t.Path, Type: t.Type, Size: t.Size})
	}
	return entries, nil
}

// FileText fetches the raw text of one file, best-effort. When the contents
// endpoint returns a directory listing, the entry has no raw download form,
// or any request fails, it returns the empty string: absence of text is not
// fatal to the pipeline.
func (g *GitHubClient) FileText(ctx context.Context, owner, repo, path, ref, token string) string {
	endpoint := fmt.Sprintf("/repos/%s/%s/contents/%s?ref=%s", owner, repo, url.PathEscape(path), url.QueryEscape(ref))

	resp, err := g.doRequest(ctx, g.baseURL+endpoint, token)
	if err != nil {
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return ""
	}

	// Directory listings come back as a JSON array and decode to no download_url
	var meta ghContents
	if err := json.Unmarshal(body, &meta); err != nil || meta.DownloadURL == "" {
		return ""
	}

	raw, err := g.doRequest(ctx, meta.DownloadURL, token)
	if err != nil {
		return ""
	}
	defer raw.Body.Close()

	if raw.StatusCode != http.StatusOK {
		return ""
	}

	text, err := io.ReadAll(raw.Body)
	if err != nil {
		return ""
	}
	return string(text)
}

// getJSON performs one blocking round trip and decodes the response. No
// retries: transient failures propagate to the caller.
func (g *GitHubClient) getJSON(ctx context.Context, endpoint, token string, out interface{}) error {
	resp, err := g.doRequest(ctx, g.baseURL+endpoint, token)
	if err != nil {
		return apperrors.NewProviderError(fmt.Sprintf("GitHub API unreachable: %v", err), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return apperrors.NewProviderError(
			fmt.Sprintf("GitHub API %d: %s", resp.StatusCode, string(body)), nil)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return apperrors.NewProviderError(fmt.Sprintf("failed to decode GitHub response: %v", err), err)
	}

	slog.Debug("GitHub API call", "endpoint", endpoint)
	return nil
}

func (g *GitHubClient) doRequest(ctx context.Context, fullURL, token string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("User-Agent", "Repo-Judge/1.0")

	if token == "" {
		token = g.fallbackToken
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return g.httpClient.Do(req)
}

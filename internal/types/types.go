package types

// AnalyzeRequest is the payload for the /analyze endpoint
type AnalyzeRequest struct {
	RepoURL     string `json:"repo_url" binding:"required"`
	ProjectName string `json:"project_name,omitempty"`
	GitHubToken string `json:"github_token,omitempty"`
}

// RepoRef identifies a repository parsed from a GitHub URL
type RepoRef struct {
	Owner  string `json:"owner"`
	Name   string `json:"name"`
	Branch string `json:"branch,omitempty"`
}

// RepoMetadata holds the subset of repository metadata the pipeline needs
type RepoMetadata struct {
	DefaultBranch string `json:"default_branch"`
	License       string `json:"license"`
}

// TreeEntry is one entry from the recursive git tree listing
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size,omitempty"`
}

// ContentsEntry is one entry from the contents-listing endpoint,
// used by the bounded tree browser (not by the scoring pipeline)
type ContentsEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
	Type string `json:"type"`
	Size int    `json:"size,omitempty"`
}

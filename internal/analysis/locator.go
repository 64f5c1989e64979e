package analysis

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/chainaudit/repo-judge/internal/errors"
	"github.com/chainaudit/repo-judge/internal/types"
)

// ParseRepoURL extracts owner, repository name and optional branch from a
// GitHub URL. The branch is taken from /owner/name/tree/<branch> paths.
func ParseRepoURL(repoURL string) (types.RepoRef, error) {
	u, err := url.Parse(repoURL)
	if err != nil || u.Host == "" {
		return types.RepoRef{}, apperrors.NewInvalidReferenceError(
			fmt.Sprintf("not a valid repository URL: %q", repoURL))
	}

	parts := make([]string, 0, 4)
	for _, p := range strings.Split(u.Path, "/") {
		if p != "" {
			parts = append(parts, p)
		}
	}

	if len(parts) < 2 {
		return types.RepoRef{}, apperrors.NewInvalidReferenceError(
			fmt.Sprintf("repository URL %q has no owner/name path", repoURL))
	}

	ref := types.RepoRef{Owner: parts[0], Name: parts[1]}
	if len(parts) >= 4 && parts[2] == "tree" {
		ref.Branch = parts[3]
	}
	return ref, nil
}

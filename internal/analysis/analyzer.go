package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chainaudit/repo-judge/internal/types"
)

const commitSampleSize = 5

// ContentClient is the remote-provider surface the analyzer needs. The token
// is threaded through every call and never held by the analyzer.
type ContentClient interface {
	RepoMetadata(ctx context.Context, owner, repo, token string) (types.RepoMetadata, error)
	RecentCommits(ctx context.Context, owner, repo, branch string, limit int, token string) ([]string, error)
	HeadCommitSHA(ctx context.Context, owner, repo, branch, token string) (string, error)
	FullTree(ctx context.Context, owner, repo, sha, token string) ([]types.TreeEntry, error)
	FileText(ctx context.Context, owner, repo, path, ref, token string) string
}

// Analyzer orchestrates the full audit pipeline: locate, fetch metadata and
// tree, select files, build corpora, evaluate heuristics, score.
type Analyzer struct {
	client ContentClient
}

// NewAnalyzer creates an analyzer backed by the given content client
func NewAnalyzer(client ContentClient) *Analyzer {
	return &Analyzer{client: client}
}

// Analyze inspects one repository and produces its ScoreData. A malformed
// URL or a failed metadata/commit/tree fetch is fatal; individual file
// fetches degrade to empty text. Re-running against identical remote state
// yields identical evidence and report, timestamp aside.
func (a *Analyzer) Analyze(ctx context.Context, repoURL, projectName, token string) (ScoreData, error) {
	ref, err := ParseRepoURL(repoURL)
	if err != nil {
		return ScoreData{}, err
	}

	started := time.Now()
	slog.Info("Starting repository audit", "owner", ref.Owner, "repo", ref.Name)

	meta, err := a.client.RepoMetadata(ctx, ref.Owner, ref.Name, token)
	if err != nil {
		return ScoreData{}, err
	}

	branch := ref.Branch
	if branch == "" {
		branch = meta.DefaultBranch
	}
	if branch == "" {
		branch = "main"
	}

	commits, err := a.client.RecentCommits(ctx, ref.Owner, ref.Name, branch, commitSampleSize, token)
	if err != nil {
		return ScoreData{}, err
	}

	headSHA, err := a.client.HeadCommitSHA(ctx, ref.Owner, ref.Name, branch, token)
	if err != nil {
		return ScoreData{}, err
	}

	tree, err := a.client.FullTree(ctx, ref.Owner, ref.Name, headSHA, token)
	if err != nil {
		return ScoreData{}, err
	}

	selected := SelectFiles(tree)
	corpora := BuildCorpora(ctx, selected, func(ctx context.Context, path string) string {
		return a.client.FileText(ctx, ref.Owner, ref.Name, path, branch, token)
	})

	evidence := EvaluateEvidence(corpora)

	name := projectName
	if name == "" {
		name = fmt.Sprintf("%s/%s", ref.Owner, ref.Name)
	}

	report := AssembleReport(ReportInput{
		RepoURL:      repoURL,
		Branch:       branch,
		ProjectName:  name,
		License:      meta.License,
		CommitSample: commits,
		Evidence:     evidence,
	})

	indices := DeriveIndices(evidence, report.Scoring.Total)

	scoreData := ScoreData{
		Owner:             ref.Owner,
		Repo:              ref.Name,
		TechnicalScore:    round1(report.Scoring.Total / 100 * 5),
		SecurityRisk:      round1(indices.SecurityRiskIndex / 20),
		OnChainProof:      indices.OnChainProofPercent,
		DocsCompleteness:  indices.DocsCompleteness,
		PaymentRobustness: indices.PaymentRobustness,
		OverallScore:      indices.OverallScore,
		Timestamp:         time.Now().UTC().Format(time.RFC3339),
		Report:            report,
	}

	slog.Info("Repository audit completed",
		"owner", ref.Owner,
		"repo", ref.Name,
		"files_selected", len(selected),
		"total", report.Scoring.Total,
		"overall", scoreData.OverallScore,
		"duration_ms", time.Since(started).Milliseconds(),
	)

	return scoreData, nil
}

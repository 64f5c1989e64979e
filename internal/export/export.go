// Package export renders a completed analysis result into its interchange
// formats. Pure formatting: no scoring logic lives here.
package export

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/chainaudit/repo-judge/internal/analysis"
)

const csvHeader = "Repository,Overall(0-5),Technical(0-5),SecurityRisk(~0-5),OnChain(%),Docs(%),Payment(0-100),Timestamp"

// JSON renders the full report as indented JSON
func JSON(sd analysis.ScoreData) ([]byte, error) {
	return json.MarshalIndent(sd.Report, "", "  ")
}

// YAML renders the full report as YAML, keyed the same way the JSON form is
func YAML(sd analysis.ScoreData) ([]byte, error) {
	raw, err := json.Marshal(sd.Report)
	if err != nil {
		return nil, err
	}

	var generic map[string]interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, err
	}

	return yaml.Marshal(generic)
}

// CSV renders the score summary as a single-row CSV with a header
func CSV(sd analysis.ScoreData) []byte {
	row := strings.Join([]string{
		fmt.Sprintf("%s/%s", sd.Owner, sd.Repo),
		formatNumber(sd.OverallScore),
		formatNumber(sd.TechnicalScore),
		formatNumber(sd.SecurityRisk),
		formatNumber(sd.OnChainProof),
		formatNumber(sd.DocsCompleteness),
		formatNumber(sd.PaymentRobustness),
		sd.Timestamp,
	}, ",")

	return []byte(csvHeader + "\n" + row + "\n")
}

// Filename suggests a download filename for the given format
func Filename(sd analysis.ScoreData, format string) string {
	switch format {
	case "csv":
		return fmt.Sprintf("%s-%s.csv", sd.Owner, sd.Repo)
	default:
		return fmt.Sprintf("%s-%s-report.%s", sd.Owner, sd.Repo, format)
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

package analysis

import "math"

// Rubric weights are fixed and sum to 100
const (
	weightPayments    = 25.0
	weightBlockchain  = 20.0
	weightSecurity    = 15.0
	weightReliability = 10.0
	weightPerformance = 10.0
	weightCodeQuality = 10.0
	weightDocs        = 5.0
	weightUX          = 5.0
)

const (
	penaltyNoOnchainTx = 15.0
	penaltySecrets     = 20.0
	bonusPerFlag       = 2.0
)

// RubricItem is one weighted rubric entry. Points are derived from the raw
// score clamped into [0,5] before scaling, so a pathological score can never
// push an item's contribution outside its weight.
type RubricItem struct {
	Score0to5 float64 `json:"score_0_5"`
	Weight    float64 `json:"weight"`
	Points    float64 `json:"points"`
}

// Rubric is the fixed eight-category scoring schema
type Rubric struct {
	PaymentsFunctionality RubricItem `json:"payments_functionality"`
	BlockchainIntegration RubricItem `json:"blockchain_integration"`
	SecuritySafety        RubricItem `json:"security_safety"`
	ReliabilityObserv     RubricItem `json:"reliability_observ"`
	PerformanceCost       RubricItem `json:"performance_cost"`
	CodeQualityTests      RubricItem `json:"code_quality_tests"`
	DocsDevex             RubricItem `json:"docs_devex"`
	TechnicalUX           RubricItem `json:"technical_ux"`
}

// Scoring is the computed rubric with bonus, penalties and total
type Scoring struct {
	Rubric          Rubric  `json:"rubric"`
	BonusPoints     float64 `json:"bonus_points"`
	PenaltiesPoints float64 `json:"penalties_points"`
	Total           float64 `json:"total"`
}

// items returns the rubric entries in declaration order for generic iteration
func (r *Rubric) items() []*RubricItem {
	return []*RubricItem{
		&r.PaymentsFunctionality,
		&r.BlockchainIntegration,
		&r.SecuritySafety,
		&r.ReliabilityObserv,
		&r.PerformanceCost,
		&r.CodeQualityTests,
		&r.DocsDevex,
		&r.TechnicalUX,
	}
}

// BuildScoring maps evidence into the eight weighted rubric items and
// aggregates bonus and penalty points into the total. The total is
// intentionally not clamped to [0,100]; heavily penalized repositories can go
// negative (kept for compatibility with the established scoring, see
// DESIGN.md).
func BuildScoring(ev Evidence) Scoring {
	securityDeductions := math.Min(4,
		boolPts(ev.SecretsInRepo, 2)+
			boolPts(ev.SelfdestructUsed, 1)+
			boolPts(ev.DelegatecallUsed, 1)+
			boolPts(ev.UsesTxOrigin, 1))

	s := Scoring{
		Rubric: Rubric{
			PaymentsFunctionality: RubricItem{
				Score0to5: boolPts(ev.HappyPathDocumented, 2) + boolPts(ev.HappyPathTx != "", 2) + boolPts(ev.MentionsStablecoin || ev.MentionsWalletKit, 1),
				Weight:    weightPayments,
			},
			BlockchainIntegration: RubricItem{
				Score0to5: boolPts(ev.MentionsChainPlatform, 2) + boolPts(ev.MentionsWalletKit, 2) + boolPts(len(ev.ExplorerLinks) > 0, 1),
				Weight:    weightBlockchain,
			},
			SecuritySafety: RubricItem{
				Score0to5: 5 - securityDeductions,
				Weight:    weightSecurity,
			},
			ReliabilityObserv: RubricItem{
				Score0to5: boolPts(ev.LogsLevel != "none", 2) + boolPts(ev.MetricsPresent == "present", 2) + boolPts(ev.RetriesPresent == "present", 1),
				Weight:    weightReliability,
			},
			PerformanceCost: RubricItem{
				Score0to5: boolPts(ev.LatencyMention, 2) + boolPts(ev.GasMention, 2) + 1,
				Weight:    weightPerformance,
			},
			CodeQualityTests: RubricItem{
				Score0to5: boolPts(ev.TestsPresent, 2) + boolPts(ev.CoveragePct > 0, 1) + boolPts(ev.LintOK, 1) + 1,
				Weight:    weightCodeQuality,
			},
			DocsDevex: RubricItem{
				Score0to5: boolPts(ev.ReadmeComplete, 2) + boolPts(ev.EnvExamplePresent, 2) + boolPts(ev.ArchDiagramPresent, 1),
				Weight:    weightDocs,
			},
			TechnicalUX: RubricItem{
				Score0to5: boolPts(ev.ShowsTxHash, 2) + boolPts(ev.TxStatusFeedback, 2) + boolPts(ev.DoubleSendPrevented == "yes", 1),
				Weight:    weightUX,
			},
		},
		BonusPoints: boolPts(ev.AccountAbstraction, bonusPerFlag) +
			boolPts(ev.Subnets, bonusPerFlag) +
			boolPts(ev.StressTest, bonusPerFlag) +
			boolPts(ev.OnOffRamp, bonusPerFlag),
		PenaltiesPoints: boolPts(ev.HappyPathTx == "", penaltyNoOnchainTx) +
			boolPts(ev.SecretsInRepo, penaltySecrets),
	}

	total := 0.0
	for _, item := range s.Rubric.items() {
		item.Points = round2(clamp(item.Score0to5, 0, 5) / 5 * item.Weight)
		total += item.Points
	}
	total += s.BonusPoints
	total -= s.PenaltiesPoints
	s.Total = round2(total)

	return s
}

// Indices are the secondary metrics derived from evidence and total,
// independently of the rubric items.
type Indices struct {
	SecurityRiskIndex   float64
	OnChainProofPercent float64
	DocsCompleteness    float64
	PaymentRobustness   float64
	OverallScore        float64
}

// DeriveIndices computes the secondary indices. Payment robustness is 20 per
// signal and deliberately uncapped; the overall score reuses the unclamped
// total and so inherits its range.
func DeriveIndices(ev Evidence, total float64) Indices {
	risk := math.Min(100,
		boolPts(ev.SecretsInRepo, 40)+
			boolPts(ev.SelfdestructUsed, 10)+
			boolPts(ev.DelegatecallUsed, 10)+
			boolPts(ev.UsesTxOrigin, 10))

	onChain := 0.0
	if ev.HappyPathTx != "" {
		onChain++
	}
	if ev.RefundDocumented && ev.RefundTx != "" {
		onChain++
	}
	if ev.SplitDocumented && ev.SplitTx != "" {
		onChain++
	}

	docsSignals := countTrue(ev.ReadmeComplete, ev.EnvExamplePresent, ev.ArchDiagramPresent, ev.MentionsWalletKit)
	paymentSignals := countTrue(
		ev.HappyPathDocumented,
		ev.IdempotencyCheck == "pass",
		ev.ErrorHandling == "documented",
		ev.DoubleSendPrevented == "yes",
		ev.ShowsTxHash,
	)

	return Indices{
		SecurityRiskIndex:   risk,
		OnChainProofPercent: round2(onChain / 3 * 100),
		DocsCompleteness:    round2(100 * float64(docsSignals) / 4),
		PaymentRobustness:   20 * float64(paymentSignals),
		OverallScore:        round1(total / 100 * 5),
	}
}

func boolPts(cond bool, pts float64) float64 {
	if cond {
		return pts
	}
	return 0
}

func countTrue(flags ...bool) int {
	n := 0
	for _, f := range flags {
		if f {
			n++
		}
	}
	return n
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

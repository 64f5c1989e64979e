package analysis

// Report packages all evidence and scores for one analysis run. It is
// constructed once by AssembleReport and never mutated afterwards.
type Report struct {
	Project       ProjectInfo      `json:"project"`
	Deploy        DeployInfo       `json:"deploy"`
	Contracts     ContractsSection `json:"contracts"`
	PaymentsFlow  PaymentsFlow     `json:"payments_flow"`
	RefundsSplits RefundsSplits    `json:"refunds_splits"`
	Security      SecuritySection  `json:"security"`
	Observability Observability    `json:"observability"`
	Performance   PerformanceCosts `json:"performance_costs"`
	CodeQuality   CodeQualityTests `json:"code_quality_tests"`
	Documentation Documentation    `json:"documentation_devex"`
	TechnicalUX   TechnicalUX      `json:"technical_ux"`
	Bonus         BonusFlags       `json:"bonus"`
	Penalties     PenaltyFlags     `json:"penalties"`
	Scoring       Scoring          `json:"scoring"`
	Evidence      EvidenceFiles    `json:"evidence"`
	Summary       Summary          `json:"summary"`
}

type ProjectInfo struct {
	RepoURL      string       `json:"repo_url"`
	Branch       string       `json:"branch"`
	Name         string       `json:"name"`
	License      string       `json:"license"`
	Stack        ProjectStack `json:"stack"`
	CommitSample []string     `json:"commit_sample"`
}

type ProjectStack struct {
	Frontend         string `json:"frontend"`
	Backend          string `json:"backend"`
	ContractsTooling string `json:"contracts_tooling"`
}

type DeployInfo struct {
	Network      string `json:"network"`
	TokenAddress string `json:"usdt_address"`
	WalletKit    bool   `json:"wdk_used"`
}

type ContractsSection struct {
	List []ContractInfo `json:"list"`
}

type ContractInfo struct {
	Name          string   `json:"name,omitempty"`
	Address       string   `json:"address,omitempty"`
	Network       string   `json:"network,omitempty"`
	Verified      bool     `json:"verified_on_snowtrace"`
	ExplorerURL   string   `json:"snowtrace_url,omitempty"`
	EventsEmitted []string `json:"events_emitted"`
}

type PaymentsFlow struct {
	HappyPath           HappyPath `json:"happy_path"`
	IdempotencyCheck    string    `json:"idempotency_check"`
	DoubleSendPrevented string    `json:"double_send_prevented"`
	ErrorHandling       string    `json:"error_handling"`
}

type HappyPath struct {
	TxHash          string `json:"tx_hash,omitempty"`
	ScreenshotOrLog string `json:"screenshot_or_log"`
}

type RefundsSplits struct {
	Refund TxEvidence `json:"refund"`
	Splits TxEvidence `json:"splits"`
}

type TxEvidence struct {
	Present bool   `json:"present"`
	TxHash  string `json:"tx_hash,omitempty"`
}

type SecuritySection struct {
	Allowances         Allowances       `json:"allowances"`
	Patterns           SecurityPatterns `json:"patterns"`
	SecretsInRepo      bool             `json:"secrets_in_repo"`
	ThreatModelPresent bool             `json:"threat_model_present"`
}

type Allowances struct {
	Pattern              string `json:"pattern"`
	RevocationDocumented bool   `json:"revocation_documented"`
}

type SecurityPatterns struct {
	CEI             bool     `json:"cei"`
	ReentrancyGuard bool     `json:"reentrancy_guard"`
	AccessControl   []string `json:"access_control"`
}

type Observability struct {
	Logs            string `json:"logs"`
	Metrics         string `json:"metrics"`
	RetriesTimeouts string `json:"retries_timeouts"`
}

type PerformanceCosts struct {
	LatencyMS      LatencyMS    `json:"latency_ms"`
	Gas            GasEstimates `json:"gas"`
	MonthlyCostUSD float64      `json:"monthly_cost_estimate_usd"`
}

type LatencyMS struct {
	P50 int `json:"p50"`
	P95 int `json:"p95"`
}

type GasEstimates struct {
	Payment int `json:"payment"`
	Refund  int `json:"refund"`
	Split   int `json:"split"`
}

type CodeQualityTests struct {
	LintOK       bool `json:"lint_ok"`
	TestsPresent bool `json:"tests_present"`
	CoveragePct  int  `json:"coverage_pct"`
}

type Documentation struct {
	ReadmeComplete     bool `json:"readme_complete"`
	EnvExamplePresent  bool `json:"env_example_present"`
	ArchDiagramPresent bool `json:"arch_diagram_present"`
}

type TechnicalUX struct {
	TxStatusFeedback  bool `json:"tx_status_feedback"`
	DoubleSubmitGuard bool `json:"double_submit_guard"`
	ShowsTxHash       bool `json:"shows_tx_hash"`
}

type BonusFlags struct {
	EIP4337    bool `json:"eip4337"`
	Subnets    bool `json:"subnets"`
	StressTest bool `json:"stress_test"`
	OnOffRamp  bool `json:"on_off_ramp"`
}

type PenaltyFlags struct {
	NoOnchainTx       bool `json:"no_onchain_tx"`
	SecretsExposed    bool `json:"secrets_exposed"`
	CopyWithoutAttrib bool `json:"copy_without_attrib"`
}

type EvidenceFiles struct {
	RepoMetadataFile string       `json:"repo_metadata_file"`
	EnvAuditFile     string       `json:"env_audit_file"`
	GasReportFile    string       `json:"gas_report_file"`
	PerfFile         string       `json:"perf_file"`
	Attachments      []Attachment `json:"attachments"`
}

type Attachment struct {
	Path string `json:"path"`
}

type Summary struct {
	Highlights      []string `json:"highlights"`
	Risks           []string `json:"risks"`
	Recommendations []string `json:"recommendations"`
}

// ScoreData is the externally consumed unit: repository identity, the five
// secondary indices, the overall 0-5 score and the embedded report.
type ScoreData struct {
	Owner             string  `json:"owner"`
	Repo              string  `json:"repo"`
	TechnicalScore    float64 `json:"technical_score"`
	SecurityRisk      float64 `json:"security_risk"`
	OnChainProof      float64 `json:"on_chain_proof"`
	DocsCompleteness  float64 `json:"docs_completeness"`
	PaymentRobustness float64 `json:"payment_robustness"`
	OverallScore      float64 `json:"overall_score"`
	Timestamp         string  `json:"timestamp"`
	Report            Report  `json:"report"`
}

// ReportInput carries the assembled pipeline outputs into the report
type ReportInput struct {
	RepoURL      string
	Branch       string
	ProjectName  string
	License      string
	CommitSample []string
	Evidence     Evidence
}

// AssembleReport packages metadata, evidence and scoring into one Report.
// Pure construction: it always succeeds, and an all-negative evidence set
// produces a valid "no evidence found" report.
func AssembleReport(in ReportInput) Report {
	ev := in.Evidence

	accessControl := make([]string, 0, 2)
	if ev.AccessControl {
		accessControl = append(accessControl, "roles/onlyOwner")
	}
	if ev.Pausable {
		accessControl = append(accessControl, "pausable")
	}

	contract := ContractInfo{
		Address:       ev.TokenAddress,
		Network:       ev.Network,
		Verified:      len(ev.ExplorerLinks) > 0,
		EventsEmitted: ev.ContractEvents,
	}
	if len(ev.ExplorerLinks) > 0 {
		contract.ExplorerURL = ev.ExplorerLinks[0]
	}

	report := Report{
		Project: ProjectInfo{
			RepoURL: in.RepoURL,
			Branch:  in.Branch,
			Name:    in.ProjectName,
			License: in.License,
			Stack: ProjectStack{
				Frontend:         ev.FrontendStack,
				Backend:          ev.BackendStack,
				ContractsTooling: ev.ContractsTooling,
			},
			CommitSample: in.CommitSample,
		},
		Deploy: DeployInfo{
			Network:      ev.Network,
			TokenAddress: ev.TokenAddress,
			WalletKit:    ev.MentionsWalletKit,
		},
		Contracts: ContractsSection{List: []ContractInfo{contract}},
		PaymentsFlow: PaymentsFlow{
			HappyPath:           HappyPath{TxHash: ev.HappyPathTx, ScreenshotOrLog: ""},
			IdempotencyCheck:    ev.IdempotencyCheck,
			DoubleSendPrevented: ev.DoubleSendPrevented,
			ErrorHandling:       ev.ErrorHandling,
		},
		RefundsSplits: RefundsSplits{
			Refund: TxEvidence{Present: ev.RefundDocumented, TxHash: ev.RefundTx},
			Splits: TxEvidence{Present: ev.SplitDocumented, TxHash: ev.SplitTx},
		},
		Security: SecuritySection{
			Allowances: Allowances{
				Pattern:              ev.AllowancePattern,
				RevocationDocumented: ev.RevocationDocumented,
			},
			Patterns: SecurityPatterns{
				CEI:             ev.CEIHeuristic,
				ReentrancyGuard: ev.ReentrancyGuard,
				AccessControl:   accessControl,
			},
			SecretsInRepo:      ev.SecretsInRepo,
			ThreatModelPresent: ev.ThreatModelPresent,
		},
		Observability: Observability{
			Logs:            ev.LogsLevel,
			Metrics:         ev.MetricsPresent,
			RetriesTimeouts: ev.RetriesPresent,
		},
		Performance:   performanceEstimates(ev),
		CodeQuality:   CodeQualityTests{LintOK: ev.LintOK, TestsPresent: ev.TestsPresent, CoveragePct: ev.CoveragePct},
		Documentation: Documentation{ReadmeComplete: ev.ReadmeComplete, EnvExamplePresent: ev.EnvExamplePresent, ArchDiagramPresent: ev.ArchDiagramPresent},
		TechnicalUX: TechnicalUX{
			TxStatusFeedback:  ev.TxStatusFeedback,
			DoubleSubmitGuard: ev.DoubleSendPrevented == "yes",
			ShowsTxHash:       ev.ShowsTxHash,
		},
		Bonus: BonusFlags{
			EIP4337:    ev.AccountAbstraction,
			Subnets:    ev.Subnets,
			StressTest: ev.StressTest,
			OnOffRamp:  ev.OnOffRamp,
		},
		Penalties: PenaltyFlags{
			NoOnchainTx:    ev.HappyPathTx == "",
			SecretsExposed: ev.SecretsInRepo,
			// never triggered by current evidence; acknowledged limitation
			CopyWithoutAttrib: false,
		},
		Evidence: EvidenceFiles{
			RepoMetadataFile: "repo_metadata.json",
			EnvAuditFile:     "env_audit.txt",
			GasReportFile:    "gas_report.txt",
			PerfFile:         "perf.json",
			Attachments:      []Attachment{},
		},
		Summary: Summary{
			Highlights:      []string{},
			Risks:           []string{},
			Recommendations: []string{},
		},
	}

	report.Scoring = BuildScoring(ev)
	return report
}

// performanceEstimates derives the coarse latency/gas placeholders from the
// latency and gas mentions; these are documentation-driven estimates, not
// measurements.
func performanceEstimates(ev Evidence) PerformanceCosts {
	perf := PerformanceCosts{}
	if ev.LatencyMention {
		perf.LatencyMS = LatencyMS{P50: 300, P95: 800}
	}
	if ev.GasMention {
		perf.Gas = GasEstimates{Payment: 70000, Refund: 50000, Split: 60000}
	}
	return perf
}

package analysis

import (
	"regexp"
	"strings"
)

// Evidence is the full set of typed heuristic outcomes for one analyzed
// repository. Every field is a pure function of corpus content: empty corpora
// yield each heuristic's negative default, never an error.
type Evidence struct {
	// chain platform
	MentionsChainPlatform bool
	Network               string
	MentionsStablecoin    bool
	MentionsWalletKit     bool
	TokenAddress          string
	ExplorerLinks         []string
	TxHashes              []string
	ContractEvents        []string

	// payments flow
	HappyPathDocumented bool
	HappyPathTx         string
	IdempotencyCheck    string // "pass" | "unknown"
	ErrorHandling       string // "documented" | "missing"
	DoubleSendPrevented string // "yes" | "unknown"

	// refunds and splits
	RefundDocumented bool
	RefundTx         string
	SplitDocumented  bool
	SplitTx          string

	// contract security
	ReentrancyGuard  bool
	AccessControl    bool
	Pausable         bool
	SelfdestructUsed bool
	DelegatecallUsed bool
	UsesTxOrigin     bool
	CEIHeuristic     bool

	// allowances and secrets
	AllowancePattern     string // "permit" | "infinite" | "minimal" | "unknown"
	RevocationDocumented bool
	SecretsInRepo        bool
	ThreatModelPresent   bool

	// observability
	LogsLevel       string // "structured" | "basic" | "none"
	MetricsPresent  string // "present" | "none"
	RetriesPresent string // "present" | "none"
	LatencyMention bool
	GasMention     bool

	// code quality and docs
	TestsPresent       bool
	LintOK             bool
	CoveragePct        int
	ReadmeComplete     bool
	EnvExamplePresent  bool
	ArchDiagramPresent bool

	// UX signals
	ShowsTxHash      bool
	TxStatusFeedback bool

	// bonus flags
	AccountAbstraction bool
	Subnets            bool
	StressTest         bool
	OnOffRamp          bool

	// stack detection
	FrontendStack    string
	BackendStack     string
	ContractsTooling string
}

var (
	addressRe = regexp.MustCompile(`0x[a-fA-F0-9]{40}`)
	txRe      = regexp.MustCompile(`0x[a-fA-F0-9]{64}`)

	chainPlatformRe = regexp.MustCompile(`(?i)(avalanche|c-?chain|fuji|subnet)`)
	fujiRe          = regexp.MustCompile(`(?i)fuji`)
	subnetRe        = regexp.MustCompile(`(?i)subnet`)
	mainnetRe       = regexp.MustCompile(`(?i)(avalanche|c-?chain)`)
	stablecoinRe    = regexp.MustCompile(`(?i)\b(usdt|tether)\b`)
	walletKitRe     = regexp.MustCompile(`(?i)\b(wdk|tether\s+wdk)\b`)
	explorerRe      = regexp.MustCompile(`(?i)https?://[^)\s]+snowtrace[^)\s]+`)

	happyPathRe     = regexp.MustCompile(`(?i)(flujo|flow|pago|payment).*(exitos|success|confirm)`)
	idempotencyRe   = regexp.MustCompile(`(?i)idempotenc`)
	errorHandlingRe = regexp.MustCompile(`(?i)(error handling|manejo de errores|retry|timeout|backoff)`)
	doubleSendRe    = regexp.MustCompile(`(?i)(double\s*(click|submit|env[ií]o)|idempotent)`)
	refundRe        = regexp.MustCompile(`(?i)(refund|reembolso)`)
	splitRe         = regexp.MustCompile(`(?i)(split|revenue\s*split|divisi[oó]n de ingresos)`)

	reentrancyRe   = regexp.MustCompile(`(?i)nonreentrant`)
	accessRe       = regexp.MustCompile(`(?i)(onlyowner|accesscontrol)`)
	pausableRe     = regexp.MustCompile(`(?i)pausable`)
	selfdestructRe = regexp.MustCompile(`(?i)selfdestruct\s*\(`)
	delegatecallRe = regexp.MustCompile(`(?i)delegatecall\s*\(`)
	txOriginRe     = regexp.MustCompile(`(?i)tx\.origin`)

	// loose structural approximation of checks-effects-interactions
	// ordering; a textual heuristic, not control-flow analysis
	ceiRe   = regexp.MustCompile(`(?is)(require\(|revert|if\s*\().*?;\s*(?://.*)?\s*.*?(transfer|call|send)`)
	eventRe = regexp.MustCompile(`event\s+([A-Za-z0-9_]+)`)

	permitRe   = regexp.MustCompile(`(?i)permit`)
	infiniteRe = regexp.MustCompile(`(?i)approve\([^,]+,\s*max|infinite`)
	approveRe  = regexp.MustCompile(`(?i)approve`)
	revokeRe   = regexp.MustCompile(`(?i)(revoke|revocar|revoke\.cash)`)

	// deliberately case-sensitive: matches the shouting env-var style
	// secrets are committed in
	secretsRe     = regexp.MustCompile(`(PRIVATE_KEY|MNEMONIC|SEED|API_KEY|RPC_URL)\s*=\s*["']?[A-Za-z0-9_-]{10,}`)
	threatModelRe = regexp.MustCompile(`(?i)(threat\s*model|modelo\s*de\s*amenazas)`)

	structuredLogsRe = regexp.MustCompile(`(?i)(structured\s*log|pino|winston)`)
	basicLogsRe      = regexp.MustCompile(`(?i)(console\.log|logger)`)
	metricsRe        = regexp.MustCompile(`(?i)(metrics|prometheus|otel|opentelemetry)`)
	retriesRe        = regexp.MustCompile(`(?i)(retry|backoff|timeout)`)
	latencyRe        = regexp.MustCompile(`(?i)(latenc(y|ia)|p50|p95)`)
	gasRe            = regexp.MustCompile(`(?i)\bgas\b`)

	readmeSetupRe   = regexp.MustCompile(`(?i)(setup|instalaci[oó]n|getting\s*started)`)
	readmeNetworkRe = regexp.MustCompile(`(?i)(network|address|direcci[oó]n|fuji|avalanche)`)
	archDiagramRe   = regexp.MustCompile(`(?i)(architecture|arquitectura|diagram)`)
	lintRe          = regexp.MustCompile(`(?i)(lint|eslint|prettier)`)
	coverageRe      = regexp.MustCompile(`(?i)coverage`)

	showsTxHashRe      = regexp.MustCompile(`(?i)(tx\s*hash|hash de transacci[oó]n)`)
	txStatusFeedbackRe = regexp.MustCompile(`(?i)((loading|cargando|pending).*tx|estado\s*de\s*transacci[oó]n)`)

	accountAbstractionRe = regexp.MustCompile(`(?i)(4337|account\s*abstraction)`)
	stressTestRe         = regexp.MustCompile(`(?i)(k6|artillery|wrk)`)
	onOffRampRe          = regexp.MustCompile(`(?i)(ramp|transak|moonpay|onramp|offramp)`)

	frontendRe = regexp.MustCompile(`(?i)(next|vite|react)`)
	backendRe  = regexp.MustCompile(`(?i)(node|express|fastify)`)
	hardhatRe  = regexp.MustCompile(`(?i)hardhat`)
	foundryRe  = regexp.MustCompile(`(?i)foundry`)
)

// EvaluateEvidence runs the full heuristic battery over the corpora. Each
// heuristic is independent and side-effect-free; reordering them does not
// change the result.
func EvaluateEvidence(c Corpora) Evidence {
	readmeDocs := c.Readme + c.Docs
	readmeDocsSrc := readmeDocs + c.AppSource
	srcReadmeDocs := c.AppSource + c.Readme + c.Docs
	pkgText := readmeDocs + c.PackageJSON

	ev := Evidence{
		MentionsChainPlatform: chainPlatformRe.MatchString(readmeDocs),
		Network:               detectNetwork(readmeDocs),
		MentionsStablecoin:    stablecoinRe.MatchString(readmeDocsSrc),
		MentionsWalletKit:     walletKitRe.MatchString(readmeDocs),
		TokenAddress:          addressRe.FindString(readmeDocs),
		ExplorerLinks:         dedupe(explorerRe.FindAllString(readmeDocs, -1)),
		TxHashes:              txRe.FindAllString(readmeDocs, -1),
		ContractEvents:        extractEvents(c.ContractSource),

		HappyPathDocumented: happyPathRe.MatchString(readmeDocs),
		IdempotencyCheck:    enumOf(idempotencyRe.MatchString(readmeDocsSrc), "pass", "unknown"),
		ErrorHandling:       enumOf(errorHandlingRe.MatchString(readmeDocsSrc), "documented", "missing"),
		DoubleSendPrevented: enumOf(doubleSendRe.MatchString(readmeDocsSrc), "yes", "unknown"),

		RefundDocumented: refundRe.MatchString(readmeDocs),
		SplitDocumented:  splitRe.MatchString(readmeDocs),

		ReentrancyGuard:  reentrancyRe.MatchString(c.ContractSource),
		AccessControl:    accessRe.MatchString(c.ContractSource),
		Pausable:         pausableRe.MatchString(c.ContractSource),
		SelfdestructUsed: selfdestructRe.MatchString(c.ContractSource),
		DelegatecallUsed: delegatecallRe.MatchString(c.ContractSource),
		UsesTxOrigin:     txOriginRe.MatchString(c.ContractSource),
		CEIHeuristic:     ceiRe.MatchString(c.ContractSource),

		AllowancePattern:     detectAllowancePattern(srcReadmeDocs),
		RevocationDocumented: revokeRe.MatchString(readmeDocs),
		SecretsInRepo:        secretsRe.MatchString(readmeDocsSrc),
		ThreatModelPresent:   threatModelRe.MatchString(readmeDocs),

		LogsLevel:      detectLogsLevel(srcReadmeDocs),
		MetricsPresent: enumOf(metricsRe.MatchString(srcReadmeDocs), "present", "none"),
		RetriesPresent: enumOf(retriesRe.MatchString(srcReadmeDocs), "present", "none"),
		LatencyMention: latencyRe.MatchString(readmeDocs),
		GasMention:     gasRe.MatchString(readmeDocs),

		TestsPresent:       anyPathWithPrefix(c.Paths, "test/"),
		LintOK:             lintRe.MatchString(pkgText),
		ReadmeComplete:     readmeSetupRe.MatchString(c.Readme) && readmeNetworkRe.MatchString(c.Readme),
		EnvExamplePresent:  c.EnvExample != "",
		ArchDiagramPresent: archDiagramRe.MatchString(readmeDocs),

		ShowsTxHash:      showsTxHashRe.MatchString(readmeDocsSrc),
		TxStatusFeedback: txStatusFeedbackRe.MatchString(readmeDocsSrc),

		AccountAbstraction: accountAbstractionRe.MatchString(readmeDocsSrc),
		Subnets:            subnetRe.MatchString(readmeDocs),
		StressTest:         stressTestRe.MatchString(readmeDocs),
		OnOffRamp:          onOffRampRe.MatchString(readmeDocs),

		FrontendStack:    enumOf(frontendRe.MatchString(pkgText), "web", ""),
		BackendStack:     enumOf(backendRe.MatchString(pkgText), "node", ""),
		ContractsTooling: detectContractsTooling(readmeDocs + c.ContractSource),
	}

	if coverageRe.MatchString(readmeDocs) {
		ev.CoveragePct = 60
	}

	if len(ev.TxHashes) > 0 {
		ev.HappyPathTx = ev.TxHashes[0]
	}
	// refund evidence claims the first hash, splits the first hash after it;
	// duplicates in the extracted list are deliberately kept
	if ev.RefundDocumented && len(ev.TxHashes) > 0 {
		ev.RefundTx = ev.TxHashes[0]
	}
	if ev.SplitDocumented && len(ev.TxHashes) > 1 {
		ev.SplitTx = ev.TxHashes[1]
	}

	return ev
}

// detectNetwork picks the first match in priority order: the most specific
// network name wins when several match.
func detectNetwork(text string) string {
	switch {
	case fujiRe.MatchString(text):
		return "fuji"
	case subnetRe.MatchString(text):
		return "subnet"
	case mainnetRe.MatchString(text):
		return "avalanche mainnet"
	default:
		return ""
	}
}

// detectAllowancePattern applies the priority permit > infinite > approve
func detectAllowancePattern(text string) string {
	switch {
	case permitRe.MatchString(text):
		return "permit"
	case infiniteRe.MatchString(text):
		return "infinite"
	case approveRe.MatchString(text):
		return "minimal"
	default:
		return "unknown"
	}
}

func detectLogsLevel(text string) string {
	switch {
	case structuredLogsRe.MatchString(text):
		return "structured"
	case basicLogsRe.MatchString(text):
		return "basic"
	default:
		return "none"
	}
}

func detectContractsTooling(text string) string {
	switch {
	case hardhatRe.MatchString(text):
		return "hardhat"
	case foundryRe.MatchString(text):
		return "foundry"
	default:
		return ""
	}
}

func extractEvents(contractSource string) []string {
	matches := eventRe.FindAllStringSubmatch(contractSource, -1)
	events := make([]string, 0, len(matches))
	for _, m := range matches {
		events = append(events, m[1])
	}
	return events
}

// dedupe removes duplicates preserving first-seen order
func dedupe(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

func anyPathWithPrefix(paths []string, prefix string) bool {
	for _, p := range paths {
		if strings.HasPrefix(p, prefix) {
			return true
		}
	}
	return false
}

func enumOf(cond bool, yes, no string) string {
	if cond {
		return yes
	}
	return no
}

package analysis

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const (
	hashA = "0x" + "a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2c3d4e5f6a1b2"
	hashB = "0x" + "1111111111111111111111111111111111111111111111111111111111111111"
)

func TestEvaluateEvidenceEmptyCorpora(t *testing.T) {
	ev := EvaluateEvidence(Corpora{})

	assert.False(t, ev.MentionsChainPlatform)
	assert.Equal(t, "", ev.Network)
	assert.Empty(t, ev.TxHashes)
	assert.Equal(t, "", ev.HappyPathTx)
	assert.Equal(t, "unknown", ev.IdempotencyCheck)
	assert.Equal(t, "missing", ev.ErrorHandling)
	assert.Equal(t, "unknown", ev.DoubleSendPrevented)
	assert.Equal(t, "unknown", ev.AllowancePattern)
	assert.Equal(t, "none", ev.LogsLevel)
	assert.Equal(t, "none", ev.MetricsPresent)
	assert.Equal(t, "none", ev.RetriesPresent)
	assert.False(t, ev.SecretsInRepo)
	assert.False(t, ev.EnvExamplePresent)
	assert.Equal(t, 0, ev.CoveragePct)
}

func TestEvaluateEvidencePaymentScenario(t *testing.T) {
	readme := strings.Join([]string{
		"# Demo Payments",
		"Payment flow success confirmed on Fuji testnet.",
		"Happy path tx: " + hashA,
		"Refund supported, see " + hashA,
		"Split tx: " + hashB,
		"## Setup",
		"Runs against the Fuji network, USDT address below.",
	}, "\n")

	ev := EvaluateEvidence(Corpora{Readme: readme, Docs: readme})

	assert.True(t, ev.MentionsChainPlatform)
	assert.Equal(t, "fuji", ev.Network)
	assert.True(t, ev.MentionsStablecoin)
	assert.True(t, ev.HappyPathDocumented)
	assert.True(t, ev.ReadmeComplete)

	// the readme text is doubled into the docs corpus, so every hash
	// appears twice; extraction keeps duplicates
	assert.Len(t, ev.TxHashes, 6)
	assert.Equal(t, hashA, ev.HappyPathTx)

	assert.True(t, ev.RefundDocumented)
	assert.Equal(t, hashA, ev.RefundTx)
	assert.True(t, ev.SplitDocumented)
	assert.Equal(t, hashA, ev.SplitTx, "second extracted hash is the doubled first readme hash")
}

func TestEvaluateEvidenceRefundSplitHashes(t *testing.T) {
	tests := []struct {
		name           string
		readme         string
		expectedRefund string
		expectedSplit  string
	}{
		{
			name:           "refund takes the first hash",
			readme:         "refund tx " + hashA,
			expectedRefund: hashA,
		},
		{
			name:          "split takes the second hash",
			readme:        "split txs " + hashA + " and " + hashB,
			expectedSplit: hashB,
		},
		{
			name:   "split documented with a single hash stays empty",
			readme: "split planned, happy path " + hashA,
		},
		{
			name:   "undocumented refund never claims a hash",
			readme: "tx " + hashA,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := EvaluateEvidence(Corpora{Readme: tt.readme})
			assert.Equal(t, tt.expectedRefund, ev.RefundTx)
			assert.Equal(t, tt.expectedSplit, ev.SplitTx)
		})
	}
}

func TestDetectNetworkPriority(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "fuji wins over everything",
			text:     "Avalanche subnet deployed to Fuji",
			expected: "fuji",
		},
		{
			name:     "subnet wins over mainnet",
			text:     "custom Subnet on Avalanche",
			expected: "subnet",
		},
		{
			name:     "c-chain implies mainnet",
			text:     "deployed to the C-Chain",
			expected: "avalanche mainnet",
		},
		{
			name:     "no network mention",
			text:     "deployed to Ethereum",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectNetwork(tt.text))
		})
	}
}

func TestDetectAllowancePattern(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "permit wins over approve",
			text:     "uses permit and approve(spender, amount)",
			expected: "permit",
		},
		{
			name:     "infinite approval detected",
			text:     "approve(spender, MaxUint256)",
			expected: "infinite",
		},
		{
			name:     "plain approve means minimal",
			text:     "approve the exact amount",
			expected: "minimal",
		},
		{
			name:     "no allowance signal",
			text:     "transfers only",
			expected: "unknown",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectAllowancePattern(tt.text))
		})
	}
}

func TestSecretsDetectionIsCaseSensitive(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		expected bool
	}{
		{
			name:     "committed private key matches",
			source:   `PRIVATE_KEY="abc123def456ghi"`,
			expected: true,
		},
		{
			name:     "rpc url with embedded key matches",
			source:   "RPC_URL=https-avax-mainnet-key1234567890",
			expected: true,
		},
		{
			name:     "lowercase variable does not match",
			source:   `private_key="abc123def456ghi"`,
			expected: false,
		},
		{
			name:     "short placeholder value does not match",
			source:   "PRIVATE_KEY=xxx",
			expected: false,
		},
		{
			name:     "empty assignment does not match",
			source:   "API_KEY=",
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := EvaluateEvidence(Corpora{AppSource: tt.source})
			assert.Equal(t, tt.expected, ev.SecretsInRepo)
		})
	}
}

func TestContractHeuristics(t *testing.T) {
	contract := `
		contract Pay is Pausable {
			event PaymentReceived(address from);
			event RefundIssued(address to);

			function pay() external nonReentrant onlyOwner {
				require(msg.value > 0, "zero");
				balance += msg.value;
				payable(msg.sender).transfer(fee);
			}

			function drain() external {
				require(tx.origin == owner);
				selfdestruct(payable(owner));
			}
		}
	`

	ev := EvaluateEvidence(Corpora{ContractSource: contract})

	assert.True(t, ev.ReentrancyGuard)
	assert.True(t, ev.AccessControl)
	assert.True(t, ev.Pausable)
	assert.True(t, ev.SelfdestructUsed)
	assert.True(t, ev.UsesTxOrigin)
	assert.False(t, ev.DelegatecallUsed)
	assert.True(t, ev.CEIHeuristic)
	assert.Equal(t, []string{"PaymentReceived", "RefundIssued"}, ev.ContractEvents)
}

func TestDetectLogsLevel(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		expected string
	}{
		{
			name:     "pino counts as structured",
			text:     "we log with pino",
			expected: "structured",
		},
		{
			name:     "console.log counts as basic",
			text:     "console.log everywhere",
			expected: "basic",
		},
		{
			name:     "structured wins over basic",
			text:     "winston wraps console.log",
			expected: "structured",
		},
		{
			name:     "no logging mention",
			text:     "silent",
			expected: "none",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, detectLogsLevel(tt.text))
		})
	}
}

func TestEvaluateEvidenceQualitySignals(t *testing.T) {
	c := Corpora{
		Readme:      "## Getting started\nConnect to the Fuji network.\nCoverage report in CI.",
		PackageJSON: `{"devDependencies":{"eslint":"8","vite":"5"},"dependencies":{"express":"4"}}`,
		EnvExample:  "RPC_URL=",
		Paths:       []string{"README.md", "test/pay.test.ts"},
	}

	ev := EvaluateEvidence(c)

	assert.True(t, ev.TestsPresent)
	assert.True(t, ev.LintOK)
	assert.Equal(t, 60, ev.CoveragePct)
	assert.True(t, ev.ReadmeComplete)
	assert.True(t, ev.EnvExamplePresent)
	assert.Equal(t, "web", ev.FrontendStack)
	assert.Equal(t, "node", ev.BackendStack)
}

func TestDetectContractsTooling(t *testing.T) {
	assert.Equal(t, "hardhat", detectContractsTooling("hardhat.config.ts and foundry.toml"))
	assert.Equal(t, "foundry", detectContractsTooling("forge via foundry"))
	assert.Equal(t, "", detectContractsTooling("truffle"))
}

func TestExplorerLinksDeduped(t *testing.T) {
	link := "https://testnet.snowtrace.io/tx/" + hashA
	other := "https://testnet.snowtrace.io/address/0xabc"
	readme := link + "\nagain " + link + "\nalso " + other

	ev := EvaluateEvidence(Corpora{Readme: readme})

	assert.Equal(t, []string{link, other}, ev.ExplorerLinks)
}

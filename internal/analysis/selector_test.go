package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chainaudit/repo-judge/internal/types"
)

func blob(path string, size int) types.TreeEntry {
	return types.TreeEntry{Path: path, Type: "blob", Size: size}
}

func TestSelectFiles(t *testing.T) {
	tests := []struct {
		name     string
		tree     []types.TreeEntry
		expected []string
	}{
		{
			name: "keeps README package.json and env example",
			tree: []types.TreeEntry{
				blob("README.md", 100),
				blob("package.json", 100),
				blob(".env.example", 50),
				blob("Makefile", 100),
			},
			expected: []string{"README.md", "package.json", ".env.example"},
		},
		{
			name: "keeps docs contracts src app and test prefixes",
			tree: []types.TreeEntry{
				blob("docs/guide.md", 10),
				blob("contracts/Pay.sol", 10),
				blob("src/index.ts", 10),
				blob("app/page.tsx", 10),
				blob("test/pay.test.ts", 10),
				blob("scripts/deploy.sh", 10),
			},
			expected: []string{"docs/guide.md", "contracts/Pay.sol", "src/index.ts", "app/page.tsx", "test/pay.test.ts"},
		},
		{
			name: "include patterns are case-insensitive",
			tree: []types.TreeEntry{
				blob("readme.MD", 10),
				blob("Docs/Overview.md", 10),
			},
			expected: []string{"readme.MD", "Docs/Overview.md"},
		},
		{
			name: "skips tree entries that are not blobs",
			tree: []types.TreeEntry{
				{Path: "src", Type: "tree", Size: 0},
				blob("src/index.ts", 10),
			},
			expected: []string{"src/index.ts"},
		},
		{
			name: "drops oversized files at the boundary",
			tree: []types.TreeEntry{
				blob("src/big.ts", 60001),
				blob("src/fits.ts", 60000),
			},
			expected: []string{"src/fits.ts"},
		},
		{
			name: "keeps files with absent size",
			tree: []types.TreeEntry{
				blob("README.md", 0),
			},
			expected: []string{"README.md"},
		},
		{
			name: "exclusions win over inclusions",
			tree: []types.TreeEntry{
				blob("src/node_modules/pkg/index.js", 10),
				blob("src/logo.png", 10),
				blob("src/yarn.lock", 10),
				blob("src/keep.ts", 10),
			},
			// only a leading node_modules/ is excluded, but the image and
			// lock suffixes match anywhere
			expected: []string{"src/node_modules/pkg/index.js", "src/keep.ts"},
		},
		{
			name: "excludes build output directories",
			tree: []types.TreeEntry{
				blob("node_modules/react/index.js", 10),
				blob("dist/bundle.js", 10),
				blob("build/main.js", 10),
				blob("out/index.js", 10),
				blob(".next/server/page.js", 10),
			},
			expected: []string{},
		},
		{
			name:     "empty tree selects nothing",
			tree:     []types.TreeEntry{},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			selected := SelectFiles(tt.tree)

			paths := make([]string, 0, len(selected))
			for _, e := range selected {
				paths = append(paths, e.Path)
			}
			assert.Equal(t, tt.expected, paths)
		})
	}
}

func TestSelectFilesCapsAtSixtyInTreeOrder(t *testing.T) {
	tree := make([]types.TreeEntry, 0, 100)
	for i := 0; i < 100; i++ {
		tree = append(tree, blob(fmt.Sprintf("src/file%03d.ts", i), 10))
	}

	selected := SelectFiles(tree)

	assert.Len(t, selected, 60)
	assert.Equal(t, "src/file000.ts", selected[0].Path)
	assert.Equal(t, "src/file059.ts", selected[59].Path)
}

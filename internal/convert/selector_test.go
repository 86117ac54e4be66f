package convert

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelector_FiltersAndPrioritizes(t *testing.T) {
	sel := NewSelector(DefaultPolicy())
	got := sel.Select([]TreeEntry{
		{Path: "src/app.ts", Type: "blob"},
		{Path: "node_modules/x/y.js", Type: "blob"},
		{Path: "README.md", Type: "blob"},
		{Path: "dist/out.js", Type: "blob"},
	})

	require.Len(t, got, 2)
	assert.Equal(t, Selected{Path: "src/app.ts", Priority: PriorityEntrypoint}, got[0])
	assert.Equal(t, Selected{Path: "README.md", Priority: PriorityOther}, got[1])
}

func TestSelector_ManifestsComeFirst(t *testing.T) {
	sel := NewSelector(DefaultPolicy())
	got := sel.Select([]TreeEntry{
		{Path: "src/util.ts", Type: "blob"},
		{Path: "package.json", Type: "blob"},
		{Path: "src/index.ts", Type: "blob"},
	})

	require.Len(t, got, 3)
	assert.Equal(t, "package.json", got[0].Path)
	assert.Equal(t, PriorityManifest, got[0].Priority)
	assert.Equal(t, "src/index.ts", got[1].Path)
	assert.Equal(t, PriorityEntrypoint, got[1].Priority)
	assert.Equal(t, "src/util.ts", got[2].Path)
}

func TestSelector_SkipsTreesAndDeniedEntries(t *testing.T) {
	sel := NewSelector(DefaultPolicy())
	got := sel.Select([]TreeEntry{
		{Path: "src", Type: "tree"},
		{Path: ".git/config", Type: "blob"},
		{Path: "coverage/lcov.info", Type: "blob"},
		{Path: "package-lock.json", Type: "blob"},
		{Path: "debug.log", Type: "blob"},
		{Path: "logo.png", Type: "blob"},
	})
	assert.Empty(t, got)
}

func TestSelector_AllowsWellKnownBasenames(t *testing.T) {
	sel := NewSelector(DefaultPolicy())
	got := sel.Select([]TreeEntry{
		{Path: "Dockerfile", Type: "blob"},
		{Path: ".eslintrc", Type: "blob"},
		{Path: "Makefile", Type: "blob"},
	})
	require.Len(t, got, 3)
}

func TestSelector_TruncatesToMaxFiles(t *testing.T) {
	policy := DefaultPolicy()
	policy.MaxFiles = 3
	sel := NewSelector(policy)

	entries := make([]TreeEntry, 10)
	for i := range entries {
		entries[i] = TreeEntry{Path: fmt.Sprintf("lib/f%02d.go", i), Type: "blob"}
	}
	got := sel.Select(entries)
	assert.Len(t, got, 3)
}

package convert

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadPolicy_OverlaysNonEmptyFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "policy.yaml")
	raw := []byte("allow_exts:\n  - \".lua\"\nmax_files: 10\n")
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	p, err := LoadPolicy(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(p.AllowExts) != 1 || p.AllowExts[0] != ".lua" {
		t.Fatalf("allow_exts not overridden: %v", p.AllowExts)
	}
	if p.MaxFiles != 10 {
		t.Fatalf("max_files not overridden: %d", p.MaxFiles)
	}
	// Untouched fields keep their defaults.
	if len(p.DenyDirs) == 0 || len(p.ManifestNames) == 0 {
		t.Fatal("defaults lost during overlay")
	}
}

func TestLoadPolicy_MissingFile(t *testing.T) {
	if _, err := LoadPolicy(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefaultPolicy_SelectorSmoke(t *testing.T) {
	// The default policy must at minimum accept common manifests.
	sel := NewSelector(DefaultPolicy())
	got := sel.Select([]TreeEntry{
		{Path: "go.mod", Type: "blob"},
		{Path: "requirements.txt", Type: "blob"},
	})
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(got))
	}
	for _, s := range got {
		if s.Priority != PriorityManifest {
			t.Fatalf("%s should be manifest priority, got %d", s.Path, s.Priority)
		}
	}
}

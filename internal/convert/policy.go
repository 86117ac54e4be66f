package convert

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Policy controls which repository entries the selector accepts and how
// they are prioritized. The zero value is unusable; start from
// DefaultPolicy and override via LoadPolicy when a policy file is set.
type Policy struct {
	// DenyDirs are path segments that disqualify an entry outright
	// (dependency caches, VCS metadata, build output).
	DenyDirs []string `yaml:"deny_dirs"`

	// DenyFiles are exact basenames that disqualify an entry.
	DenyFiles []string `yaml:"deny_files"`

	// AllowExts are extensions (with dot, lowercased) of convertible
	// source, config and doc files.
	AllowExts []string `yaml:"allow_exts"`

	// AllowNames are well-known tool config basenames accepted even when
	// their extension is not allow-listed. Matched case-insensitively
	// with the extension stripped.
	AllowNames []string `yaml:"allow_names"`

	// ManifestNames are dependency-manifest basenames that get the top
	// priority tier.
	ManifestNames []string `yaml:"manifest_names"`

	// EntrypointMarkers promote a file to the entrypoint tier when its
	// basename contains one of them.
	EntrypointMarkers []string `yaml:"entrypoint_markers"`

	// MaxFiles truncates the selection. A silent capacity limit, not an
	// error.
	MaxFiles int `yaml:"max_files"`
}

// DefaultPolicy returns the built-in selection policy.
func DefaultPolicy() Policy {
	return Policy{
		DenyDirs: []string{
			"node_modules", "vendor", "bower_components",
			".git", ".hg", ".svn",
			"dist", "build", "out", "target", "bin", "obj",
			"coverage", ".nyc_output",
			".idea", ".vscode", ".vs",
			"__pycache__", ".pytest_cache", ".mypy_cache",
			".next", ".nuxt", ".cache", ".gradle",
		},
		DenyFiles: []string{
			".DS_Store", "Thumbs.db",
			"package-lock.json", "yarn.lock", "pnpm-lock.yaml",
			"Gemfile.lock", "poetry.lock", "Cargo.lock", "composer.lock", "go.sum",
		},
		AllowExts: []string{
			".js", ".jsx", ".ts", ".tsx", ".mjs", ".cjs",
			".py", ".rb", ".php", ".java", ".kt", ".scala",
			".go", ".rs", ".c", ".h", ".cpp", ".hpp", ".cs", ".swift",
			".vue", ".svelte",
			".html", ".css", ".scss", ".sass", ".less",
			".sql", ".graphql", ".proto",
			".json", ".yaml", ".yml", ".toml", ".xml", ".ini", ".env",
			".md", ".txt",
			".sh", ".bash",
		},
		AllowNames: []string{
			"dockerfile", "makefile", "rakefile", "gemfile", "procfile",
			".gitignore", ".dockerignore", ".editorconfig",
			".eslintrc", ".prettierrc", ".babelrc", ".npmrc",
		},
		ManifestNames: []string{
			"package.json", "go.mod", "cargo.toml", "gemfile",
			"requirements.txt", "pyproject.toml", "setup.py", "pipfile",
			"pom.xml", "build.gradle", "composer.json", "mix.exs",
		},
		EntrypointMarkers: []string{"main", "index", "app.", "server."},
		MaxFiles:          200,
	}
}

// LoadPolicy reads a YAML policy file and overlays its non-empty fields
// on the defaults.
func LoadPolicy(path string) (Policy, error) {
	p := DefaultPolicy()
	raw, err := os.ReadFile(path)
	if err != nil {
		return p, fmt.Errorf("read policy file: %w", err)
	}
	var over Policy
	if err := yaml.Unmarshal(raw, &over); err != nil {
		return p, fmt.Errorf("parse policy file: %w", err)
	}
	if len(over.DenyDirs) > 0 {
		p.DenyDirs = over.DenyDirs
	}
	if len(over.DenyFiles) > 0 {
		p.DenyFiles = over.DenyFiles
	}
	if len(over.AllowExts) > 0 {
		p.AllowExts = over.AllowExts
	}
	if len(over.AllowNames) > 0 {
		p.AllowNames = over.AllowNames
	}
	if len(over.ManifestNames) > 0 {
		p.ManifestNames = over.ManifestNames
	}
	if len(over.EntrypointMarkers) > 0 {
		p.EntrypointMarkers = over.EntrypointMarkers
	}
	if over.MaxFiles > 0 {
		p.MaxFiles = over.MaxFiles
	}
	return p, nil
}

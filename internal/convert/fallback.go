package convert

import (
	"fmt"
	"strings"
)

// extensionByLanguage is the closed lookup from target-language
// identifier to canonical file extension. Unrecognized languages fall
// back to fallbackExt.
var extensionByLanguage = map[string]string{
	"javascript": ".js",
	"typescript": ".ts",
	"python":     ".py",
	"ruby":       ".rb",
	"php":        ".php",
	"java":       ".java",
	"kotlin":     ".kt",
	"scala":      ".scala",
	"go":         ".go",
	"golang":     ".go",
	"rust":       ".rs",
	"c":          ".c",
	"c++":        ".cpp",
	"cpp":        ".cpp",
	"c#":         ".cs",
	"csharp":     ".cs",
	"swift":      ".swift",
	"elixir":     ".ex",
	"dart":       ".dart",
}

const fallbackExt = ".txt"

// excerptLimit bounds how much of the original content a stub embeds.
const excerptLimit = 500

// TargetExtension returns the canonical extension for a target language.
func TargetExtension(language string) string {
	if ext, ok := extensionByLanguage[strings.ToLower(strings.TrimSpace(language))]; ok {
		return ext
	}
	return fallbackExt
}

// Fallback synthesizes one placeholder file per input file when a batch
// could not be converted, so the output corpus keeps its structure. It is
// a total function: it never fails.
type Fallback struct{}

// Generate produces a "needs manual conversion" stub for every file in
// the batch. Each stub carries a bounded excerpt of the original content
// for reference, never the full original.
func (Fallback) Generate(batch Batch, target TargetSpec) []ConvertedFile {
	ext := TargetExtension(target.Language)
	out := make([]ConvertedFile, 0, len(batch.Files))
	for _, f := range batch.Files {
		out = append(out, ConvertedFile{
			Path:         replaceExtension(f.Path, ext),
			Content:      stubContent(f, target),
			OriginalPath: f.Path,
			IsFallback:   true,
		})
	}
	return out
}

func replaceExtension(p, ext string) string {
	base := p
	if i := strings.LastIndexByte(p, '/'); i >= 0 {
		base = p[i+1:]
	}
	if j := strings.LastIndexByte(base, '.'); j > 0 {
		return p[:len(p)-len(base)+j] + ext
	}
	return p + ext
}

func stubContent(f SourceFile, target TargetSpec) string {
	excerpt := f.Content
	truncated := false
	if len(excerpt) > excerptLimit {
		excerpt = excerpt[:excerptLimit]
		truncated = true
	}
	var b strings.Builder
	b.WriteString("AUTOMATED CONVERSION FAILED - NEEDS MANUAL CONVERSION\n")
	fmt.Fprintf(&b, "Original file: %s\n", f.Path)
	fmt.Fprintf(&b, "Target stack: %s\n\n", target.String())
	b.WriteString("Original content (excerpt):\n\n")
	b.WriteString(excerpt)
	if truncated {
		fmt.Fprintf(&b, "\n\n[truncated, %d of %d bytes shown]", excerptLimit, len(f.Content))
	}
	b.WriteString("\n")
	return b.String()
}

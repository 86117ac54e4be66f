package convert

import "strings"

// Priority tiers assigned by the selector. Lower converts earlier so the
// model sees dependency manifests before the code that uses them.
const (
	PriorityManifest   = 1
	PriorityEntrypoint = 2
	PriorityOther      = 3
)

// TreeEntry is one raw entry of a repository tree listing.
type TreeEntry struct {
	Path string `json:"path"`
	Type string `json:"type"` // "blob" or "tree"
}

// Selected is a tree entry the selector accepted, with its tier.
type Selected struct {
	Path     string
	Priority int
}

// SourceFile is a fetched repository file. Immutable once fetched.
type SourceFile struct {
	Path     string `json:"path"`
	Content  string `json:"content"`
	Size     int    `json:"size"`
	Priority int    `json:"priority"`
}

// TargetSpec names the destination stack for a whole run.
type TargetSpec struct {
	Language  string `json:"language"`
	Framework string `json:"framework"`
	Database  string `json:"database"`
}

func (t TargetSpec) String() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{t.Language, t.Framework, t.Database} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " / ")
}

// Batch is an ordered, non-empty group of source files whose cumulative
// content size stays within the planner's limit (except a single file
// that alone exceeds it).
type Batch struct {
	Files []SourceFile
}

// Size returns the cumulative content size of the batch.
func (b Batch) Size() int {
	total := 0
	for _, f := range b.Files {
		total += f.Size
	}
	return total
}

// ConvertedFile is one output file, either a genuine conversion or a
// fallback stub flagged for manual follow-up.
type ConvertedFile struct {
	Path         string `json:"path"`
	Content      string `json:"content"`
	OriginalPath string `json:"originalPath"`
	IsFallback   bool   `json:"isFallback"`
}

// Batch outcome statuses.
const (
	StatusSuccess  = "success"
	StatusFallback = "fallback"
)

// BatchOutcome records how a single batch ended. Outcomes feed the
// summary only; they never influence later batches.
type BatchOutcome struct {
	BatchIndex int    `json:"batchIndex"`
	Status     string `json:"status"`
	FileCount  int    `json:"fileCount"`
	Error      string `json:"error,omitempty"`
}

// Summary aggregates a finished run.
type Summary struct {
	OriginalFileCount  int            `json:"originalFileCount"`
	ConvertedFileCount int            `json:"convertedFileCount"`
	BatchCount         int            `json:"batchCount"`
	Outcomes           []BatchOutcome `json:"outcomes"`
}

// Result is the terminal artifact of a conversion run.
type Result struct {
	Files    []ConvertedFile `json:"files"`
	Summary  Summary         `json:"summary"`
	Warnings []string        `json:"warnings,omitempty"`
}

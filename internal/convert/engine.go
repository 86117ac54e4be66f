package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"restack/internal/llm"
	"restack/internal/util/jsonutil"
)

// Batch-level failure modes. The orchestrator catches all of them and
// falls back to stub generation; the engine itself never recovers.
var (
	ErrMalformedResponse = errors.New("convert: model reply is not valid JSON")
	ErrInvalidStructure  = errors.New("convert: model reply has no files array")
	ErrEmptyResult       = errors.New("convert: model reply contains no usable files")
)

const fileSeparator = "--- FILE: %s ---"

// Engine turns one batch into converted files via a single blocking LLM
// call, defending against malformed model output.
type Engine struct {
	client llm.Client
}

func NewEngine(client llm.Client) *Engine {
	return &Engine{client: client}
}

type replyFile struct {
	Path         *string `json:"path"`
	Content      *string `json:"content"`
	OriginalPath string  `json:"originalPath"`
}

// ConvertBatch sends the batch to the model and parses the reply into
// converted files. It either returns at least one file or an error.
func (e *Engine) ConvertBatch(ctx context.Context, batch Batch, target TargetSpec, batchIndex int) ([]ConvertedFile, error) {
	prompt := e.buildPrompt(batch, target)

	raw, err := e.client.GenerateJSON(ctx, prompt, nil)
	if err != nil {
		return nil, fmt.Errorf("batch %d: model call: %w", batchIndex, err)
	}

	entries, err := parseReply(raw)
	if err != nil {
		return nil, fmt.Errorf("batch %d: %w", batchIndex, err)
	}

	inputs := make(map[string]bool, len(batch.Files))
	for _, f := range batch.Files {
		inputs[f.Path] = true
	}

	files := make([]ConvertedFile, 0, len(entries))
	for i, entry := range entries {
		var f replyFile
		if err := jsonutil.UnmarshalFlex(entry, &f); err != nil {
			log.Printf("batch %d: dropping reply entry %d: %v", batchIndex, i, err)
			continue
		}
		if f.Path == nil || f.Content == nil || strings.TrimSpace(*f.Path) == "" {
			log.Printf("batch %d: dropping reply entry %d: missing path or content", batchIndex, i)
			continue
		}
		orig := strings.TrimSpace(f.OriginalPath)
		if orig != "" && !inputs[orig] {
			// Provenance must trace back to a file in this batch; an invented
			// source path is cleared rather than propagated.
			log.Printf("batch %d: entry %d names unknown source %q, clearing provenance", batchIndex, i, orig)
			orig = ""
		}
		files = append(files, ConvertedFile{
			Path:         strings.TrimPrefix(strings.TrimSpace(*f.Path), "/"),
			Content:      *f.Content,
			OriginalPath: orig,
		})
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("batch %d: %w", batchIndex, ErrEmptyResult)
	}
	if len(files) < len(batch.Files) {
		// The model may legitimately merge files; worth a trace, not an error.
		log.Printf("batch %d: %d files in, %d files out", batchIndex, len(batch.Files), len(files))
	}
	return files, nil
}

// parseReply decodes the raw model output down to the individual file
// entries. Direct JSON first, then a recovery pass over the first
// balanced {...} substring. Entries come back raw so one wrong-typed
// entry cannot fail its siblings.
func parseReply(raw json.RawMessage) ([]json.RawMessage, error) {
	var env struct {
		Files json.RawMessage `json:"files"`
	}
	if err := jsonutil.UnmarshalFlex([]byte(raw), &env); err != nil {
		extracted := jsonutil.ExtractObject(string(raw))
		if extracted == "" {
			return nil, ErrMalformedResponse
		}
		if err := jsonutil.UnmarshalFlex([]byte(extracted), &env); err != nil {
			return nil, ErrMalformedResponse
		}
	}
	if len(env.Files) == 0 {
		return nil, ErrInvalidStructure
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(env.Files, &entries); err != nil || entries == nil {
		return nil, ErrInvalidStructure
	}
	return entries, nil
}

func (e *Engine) buildPrompt(batch Batch, target TargetSpec) string {
	var b strings.Builder
	b.WriteString("You are an expert software engineer. Convert the following source files to the target stack.\n\n")
	fmt.Fprintf(&b, "Target language: %s\n", orUnspecified(target.Language))
	fmt.Fprintf(&b, "Target framework: %s\n", orUnspecified(target.Framework))
	fmt.Fprintf(&b, "Target database: %s\n\n", orUnspecified(target.Database))
	b.WriteString("Rules:\n")
	b.WriteString("- Rewrite each file idiomatically for the target stack, adjusting paths and extensions.\n")
	b.WriteString("- Convert dependency manifests to the target ecosystem's equivalent.\n")
	b.WriteString("- Reply with a single JSON object and nothing else, shaped as:\n")
	b.WriteString(`  {"files":[{"path":"<target path>","content":"<file content>","originalPath":"<source path>"}]}` + "\n\n")
	for _, f := range batch.Files {
		fmt.Fprintf(&b, fileSeparator+"\n%s\n\n", f.Path, f.Content)
	}
	return b.String()
}

func orUnspecified(s string) string {
	if strings.TrimSpace(s) == "" {
		return "unspecified"
	}
	return strings.TrimSpace(s)
}

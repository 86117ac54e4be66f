package convert

import (
	"context"
	"errors"
	"testing"

	"restack/internal/llm"
)

type fakeTrees struct {
	entries []TreeEntry
	err     error
}

func (f *fakeTrees) GetTree(context.Context, string, string, string, string) ([]TreeEntry, error) {
	return f.entries, f.err
}

func newTestService(trees TreeLister, contents ContentGetter, client llm.Client) *Service {
	return NewService(trees, contents, NewEngine(client), Options{
		Policy:      DefaultPolicy(),
		SizeLimit:   40_000,
		MaxFileSize: 100_000,
		// zero Throttle: no pacing in tests
	})
}

func TestService_ConvertHappyPath(t *testing.T) {
	trees := &fakeTrees{entries: []TreeEntry{
		{Path: "src/app.ts", Type: "blob"},
		{Path: "node_modules/x.js", Type: "blob"},
	}}
	contents := &scriptedSource{contents: map[string]string{
		"src/app.ts": "console.log('hi')",
	}}
	client := llm.NewFakeClient(`{"files":[{"path":"src/app.py","content":"print('hi')","originalPath":"src/app.ts"}]}`)

	svc := newTestService(trees, contents, client)
	res, err := svc.Convert(context.Background(), "tok", "o", "r", "main", TargetSpec{Language: "python"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Files) != 1 || res.Files[0].Path != "src/app.py" {
		t.Fatalf("unexpected files: %+v", res.Files)
	}
	if res.Summary.OriginalFileCount != 1 || res.Summary.ConvertedFileCount != 1 {
		t.Fatalf("unexpected summary: %+v", res.Summary)
	}
	if len(res.Summary.Outcomes) != 1 || res.Summary.Outcomes[0].Status != StatusSuccess {
		t.Fatalf("unexpected outcomes: %+v", res.Summary.Outcomes)
	}
	if len(res.Warnings) != 0 {
		t.Fatalf("unexpected warnings: %v", res.Warnings)
	}
}

func TestService_NoSelectableFiles(t *testing.T) {
	trees := &fakeTrees{entries: []TreeEntry{
		{Path: "node_modules/a.js", Type: "blob"},
		{Path: "dist/bundle.js", Type: "blob"},
	}}
	svc := newTestService(trees, &scriptedSource{}, llm.NewFakeClient())

	_, err := svc.Convert(context.Background(), "tok", "o", "r", "main", TargetSpec{Language: "go"})
	if !errors.Is(err, ErrNoFilesFound) {
		t.Fatalf("expected ErrNoFilesFound, got %v", err)
	}
}

func TestService_FailedBatchFallsBack(t *testing.T) {
	trees := &fakeTrees{entries: []TreeEntry{{Path: "src/app.ts", Type: "blob"}}}
	contents := &scriptedSource{contents: map[string]string{"src/app.ts": "let x = 1"}}
	client := &llm.FakeClient{Err: errors.New("network down")}

	svc := newTestService(trees, contents, client)
	res, err := svc.Convert(context.Background(), "tok", "o", "r", "main", TargetSpec{Language: "python"})
	if err != nil {
		t.Fatalf("fallback must not surface as run error, got %v", err)
	}
	if len(res.Files) != 1 || !res.Files[0].IsFallback {
		t.Fatalf("expected one fallback stub, got %+v", res.Files)
	}
	if res.Files[0].Path != "src/app.py" {
		t.Fatalf("expected src/app.py, got %s", res.Files[0].Path)
	}
	out := res.Summary.Outcomes[0]
	if out.Status != StatusFallback || out.Error == "" {
		t.Fatalf("unexpected outcome: %+v", out)
	}
	if len(res.Warnings) != 1 {
		t.Fatalf("expected a manual-review warning, got %v", res.Warnings)
	}
}

func TestService_NonJSONReplyFallsBackWithoutRaising(t *testing.T) {
	trees := &fakeTrees{entries: []TreeEntry{{Path: "src/app.ts", Type: "blob"}}}
	contents := &scriptedSource{contents: map[string]string{"src/app.ts": "let x = 1"}}
	client := llm.NewFakeClient("I am sorry but no JSON today")

	svc := newTestService(trees, contents, client)
	res, err := svc.Convert(context.Background(), "tok", "o", "r", "main", TargetSpec{Language: "go"})
	if err != nil {
		t.Fatalf("unexpected run error: %v", err)
	}
	if res.Summary.Outcomes[0].Status != StatusFallback {
		t.Fatalf("expected fallback outcome, got %+v", res.Summary.Outcomes[0])
	}
}

func TestService_MixedBatchesKeepIndependentOutcomes(t *testing.T) {
	// Two files too big to share a batch: first converts, second falls back.
	trees := &fakeTrees{entries: []TreeEntry{
		{Path: "a/one.ts", Type: "blob"},
		{Path: "b/two.ts", Type: "blob"},
	}}
	big1 := make([]byte, 30_000)
	big2 := make([]byte, 30_000)
	for i := range big1 {
		big1[i] = 'a'
		big2[i] = 'b'
	}
	contents := &scriptedSource{contents: map[string]string{
		"a/one.ts": string(big1),
		"b/two.ts": string(big2),
	}}
	client := llm.NewFakeClient(
		`{"files":[{"path":"a/one.py","content":"ok","originalPath":"a/one.ts"}]}`,
		`not json at all`,
	)

	svc := NewService(trees, contents, NewEngine(client), Options{
		Policy:    DefaultPolicy(),
		SizeLimit: 40_000,
	})
	res, err := svc.Convert(context.Background(), "tok", "o", "r", "main", TargetSpec{Language: "python"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Summary.Outcomes) != 2 {
		t.Fatalf("expected 2 outcomes, got %+v", res.Summary.Outcomes)
	}
	if res.Summary.Outcomes[0].Status != StatusSuccess || res.Summary.Outcomes[1].Status != StatusFallback {
		t.Fatalf("unexpected outcomes: %+v", res.Summary.Outcomes)
	}
}

func TestService_ProvenanceTracesToFetchedFiles(t *testing.T) {
	trees := &fakeTrees{entries: []TreeEntry{
		{Path: "package.json", Type: "blob"},
		{Path: "src/index.ts", Type: "blob"},
	}}
	contents := &scriptedSource{contents: map[string]string{
		"package.json": `{"name":"demo"}`,
		"src/index.ts": "export {}",
	}}
	// Model omits originalPath on one file; only non-empty provenance is checked.
	client := llm.NewFakeClient(`{"files":[{"path":"go.mod","content":"module demo","originalPath":"package.json"},{"path":"main.go","content":"package main"}]}`)

	svc := newTestService(trees, contents, client)
	res, err := svc.Convert(context.Background(), "tok", "o", "r", "main", TargetSpec{Language: "go"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	fetched := map[string]bool{"package.json": true, "src/index.ts": true}
	for _, f := range res.Files {
		if f.OriginalPath != "" && !fetched[f.OriginalPath] {
			t.Fatalf("provenance %q does not trace to a fetched file", f.OriginalPath)
		}
	}
}

func TestService_ProgressEventsFire(t *testing.T) {
	trees := &fakeTrees{entries: []TreeEntry{{Path: "src/app.ts", Type: "blob"}}}
	contents := &scriptedSource{contents: map[string]string{"src/app.ts": "x"}}
	client := llm.NewFakeClient(`{"files":[{"path":"app.py","content":"y","originalPath":"src/app.ts"}]}`)

	svc := newTestService(trees, contents, client)
	var events []string
	svc.OnProgress(func(event string, _, _ int, _ string) {
		events = append(events, event)
	})
	if _, err := svc.Convert(context.Background(), "tok", "o", "r", "main", TargetSpec{Language: "python"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"fetching", "planning", "batch", "done"}
	if len(events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Fatalf("expected events %v, got %v", want, events)
		}
	}
}

func TestService_TreeListingFailure(t *testing.T) {
	trees := &fakeTrees{err: errors.New("api down")}
	svc := newTestService(trees, &scriptedSource{}, llm.NewFakeClient())

	_, err := svc.Convert(context.Background(), "tok", "o", "r", "main", TargetSpec{Language: "go"})
	if err == nil {
		t.Fatal("expected error")
	}
}

package convert

import (
	"context"
	"errors"
	"sync"
	"testing"
)

// scriptedSource serves file contents from a map and fails everything else.
type scriptedSource struct {
	mu       sync.Mutex
	contents map[string]string
	calls    []string
}

func (s *scriptedSource) GetRawFile(_ context.Context, _, _, _, path, _ string) (string, error) {
	s.mu.Lock()
	s.calls = append(s.calls, path)
	s.mu.Unlock()
	if c, ok := s.contents[path]; ok {
		return c, nil
	}
	return "", errors.New("boom")
}

func TestFetcher_SkipsFailedFiles(t *testing.T) {
	src := &scriptedSource{contents: map[string]string{
		"a.ts": "aaa",
		"c.ts": "ccc",
	}}
	f := NewFetcher(src, 1000, 2, 0)

	files, err := f.Fetch(context.Background(), "tok", "o", "r", "main", []Selected{
		{Path: "a.ts", Priority: 3},
		{Path: "b.ts", Priority: 3},
		{Path: "c.ts", Priority: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[0].Path != "a.ts" || files[1].Path != "c.ts" {
		t.Fatalf("ordering broken: %+v", files)
	}
}

func TestFetcher_DropsOversizedFiles(t *testing.T) {
	src := &scriptedSource{contents: map[string]string{
		"small.ts": "ok",
		"big.ts":   "0123456789",
	}}
	f := NewFetcher(src, 5, 2, 0)

	files, err := f.Fetch(context.Background(), "tok", "o", "r", "main", []Selected{
		{Path: "small.ts", Priority: 3},
		{Path: "big.ts", Priority: 3},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 1 || files[0].Path != "small.ts" {
		t.Fatalf("expected only small.ts, got %+v", files)
	}
}

func TestFetcher_PreservesSelectorOrderAcrossWindows(t *testing.T) {
	contents := map[string]string{}
	var selected []Selected
	for _, p := range []string{"1", "2", "3", "4", "5", "6", "7"} {
		contents[p] = p
		selected = append(selected, Selected{Path: p, Priority: 3})
	}
	f := NewFetcher(&scriptedSource{contents: contents}, 1000, 3, 0)

	files, err := f.Fetch(context.Background(), "tok", "o", "r", "main", selected)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(files) != 7 {
		t.Fatalf("expected 7 files, got %d", len(files))
	}
	for i, fl := range files {
		if fl.Path != selected[i].Path {
			t.Fatalf("position %d: got %s", i, fl.Path)
		}
	}
}

func TestFetcher_PopulatesSizeAndPriority(t *testing.T) {
	src := &scriptedSource{contents: map[string]string{"package.json": `{"name":"x"}`}}
	f := NewFetcher(src, 1000, 1, 0)

	files, err := f.Fetch(context.Background(), "tok", "o", "r", "main", []Selected{
		{Path: "package.json", Priority: PriorityManifest},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := files[0]
	if got.Size != len(`{"name":"x"}`) || got.Priority != PriorityManifest {
		t.Fatalf("unexpected metadata: %+v", got)
	}
}

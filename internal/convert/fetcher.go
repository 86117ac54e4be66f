package convert

import (
	"context"
	"log"
	"sync"
	"time"
)

// ContentGetter retrieves one raw file from the source-control host.
// Implemented by the GitHub client.
type ContentGetter interface {
	GetRawFile(ctx context.Context, token, owner, repo, path, ref string) (string, error)
}

// Fetcher retrieves the selected files' contents with bounded window
// concurrency and inter-window pacing, as a courtesy to the upstream
// rate limit. Selector ordering is preserved in the output.
type Fetcher struct {
	source ContentGetter

	// MaxFileSize drops files whose decoded size exceeds it. Oversized
	// files are excluded rather than truncated.
	MaxFileSize int
	// Window is how many files are fetched concurrently.
	Window int
	// Delay is inserted between successive windows.
	Delay time.Duration
}

func NewFetcher(source ContentGetter, maxFileSize, window int, delay time.Duration) *Fetcher {
	if maxFileSize <= 0 {
		maxFileSize = 100_000
	}
	if window <= 0 {
		window = 5
	}
	return &Fetcher{source: source, MaxFileSize: maxFileSize, Window: window, Delay: delay}
}

// Fetch retrieves content for every selected entry. A file that fails to
// download or exceeds the size ceiling is skipped with a log line; a
// single missing file must not sink the run.
func (f *Fetcher) Fetch(ctx context.Context, token, owner, repo, branch string, selected []Selected) ([]SourceFile, error) {
	out := make([]*SourceFile, len(selected))

	for start := 0; start < len(selected); start += f.Window {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		end := start + f.Window
		if end > len(selected) {
			end = len(selected)
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				sel := selected[i]
				content, err := f.source.GetRawFile(ctx, token, owner, repo, sel.Path, branch)
				if err != nil {
					log.Printf("fetch: skipping %s: %v", sel.Path, err)
					return
				}
				if len(content) > f.MaxFileSize {
					log.Printf("fetch: skipping %s: %d bytes over limit %d", sel.Path, len(content), f.MaxFileSize)
					return
				}
				out[i] = &SourceFile{
					Path:     sel.Path,
					Content:  content,
					Size:     len(content),
					Priority: sel.Priority,
				}
			}(i)
		}
		wg.Wait()

		if end < len(selected) && f.Delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(f.Delay):
			}
		}
	}

	files := make([]SourceFile, 0, len(selected))
	for _, sf := range out {
		if sf != nil {
			files = append(files, *sf)
		}
	}
	return files, nil
}

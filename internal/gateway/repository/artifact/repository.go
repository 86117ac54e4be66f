package artifact

import (
	"context"
	"errors"
)

// RunManifestPath is the reserved key under each run holding the full
// run result as JSON, so exports can reconstruct provenance and
// fallback flags. Converted files never use this path.
const RunManifestPath = ".restack/result.json"

// Store persists the converted files of a run so they can be previewed,
// zipped or pushed to a new repository after the run finished.
type Store interface {
	Put(ctx context.Context, runID, path string, content []byte) error
	Get(ctx context.Context, runID, path string) ([]byte, error)
	GetURL(ctx context.Context, runID, path string) (string, error)
	List(ctx context.Context, runID string) ([]string, error)
}

var ErrNotFound = errors.New("artifact not found")

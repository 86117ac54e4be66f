package export

import (
	"context"
	"fmt"
	"log"
	"strings"

	"restack/internal/convert"
	"restack/internal/github"
)

// RepoExporter creates a repository on the source-control host and
// uploads converted files into it, one commit per file.
type RepoExporter struct {
	client *github.Client
}

func NewRepoExporter(client *github.Client) *RepoExporter {
	return &RepoExporter{client: client}
}

// Export creates the repository and pushes every file. Returns the new
// repository's full name. Per-file upload failures abort the export;
// half-pushed repos are visible to the user, so better loud than silent.
func (e *RepoExporter) Export(ctx context.Context, token, name string, files []convert.ConvertedFile) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("repository name is required")
	}
	fullName, err := e.client.CreateRepo(ctx, token, name, "Converted by restack", true)
	if err != nil {
		return "", fmt.Errorf("create repository: %w", err)
	}
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok {
		return "", fmt.Errorf("unexpected repository name %q", fullName)
	}
	for _, f := range files {
		msg := "Add " + f.Path
		if f.IsFallback {
			msg += " (needs manual conversion)"
		}
		if err := e.client.PutFile(ctx, token, owner, repo, f.Path, msg, []byte(f.Content)); err != nil {
			return fullName, fmt.Errorf("upload %s: %w", f.Path, err)
		}
	}
	log.Printf("export: pushed %d files to %s", len(files), fullName)
	return fullName, nil
}

package handler

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"strings"

	"restack/internal/convert"
	"restack/internal/export"
	"restack/internal/gateway/progress"
	"restack/internal/gateway/repository/artifact"
	"restack/internal/gateway/repository/runstore"
	"restack/internal/github"
	"restack/internal/llm"
)

// Handler serves the conversion API. One instance per process; the
// conversion pipeline itself is built per request so progress events can
// be tagged with the run ID.
type Handler struct {
	GitHub    *github.Client
	LLM       llm.Client
	Options   convert.Options
	Artifacts artifact.Store
	Runs      *runstore.Store
	Broker    *progress.Broker
	Exporter  *export.RepoExporter

	// DefaultToken is used when a request carries no bearer token of its
	// own. Empty in multi-user deployments.
	DefaultToken string
}

func New(gh *github.Client, model llm.Client, opts convert.Options, store artifact.Store, runs *runstore.Store, broker *progress.Broker) *Handler {
	return &Handler{
		GitHub:    gh,
		LLM:       model,
		Options:   opts,
		Artifacts: store,
		Runs:      runs,
		Broker:    broker,
		Exporter:  export.NewRepoExporter(gh),
	}
}

// bearerToken extracts the caller's access token.
func bearerToken(r *http.Request) string {
	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if after, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(after)
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

// token resolves the access token for a request, falling back to the
// configured default when the request carries none.
func (h *Handler) token(r *http.Request) string {
	if t := bearerToken(r); t != "" {
		return t
	}
	return h.DefaultToken
}

func newRunID() string {
	var b [8]byte
	_, _ = rand.Read(b[:])
	return "run-" + hex.EncodeToString(b[:])
}

// validRunID bounds client-supplied run IDs: they key artifacts and
// broker subscriptions, so no separators or free-form text.
func validRunID(id string) bool {
	if len(id) > 64 {
		return false
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return false
		}
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

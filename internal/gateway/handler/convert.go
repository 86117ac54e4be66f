package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"restack/internal/convert"
	"restack/internal/gateway/progress"
	"restack/internal/gateway/repository/artifact"
	"restack/internal/gateway/repository/runstore"
)

type convertRequest struct {
	// RunID is optional. A client that wants live progress mints its own
	// ID, opens /ws/progress?run_id= first, then starts the run with it.
	// Left empty, the server mints one.
	RunID  string             `json:"run_id"`
	Owner  string             `json:"owner"`
	Repo   string             `json:"repo"`
	Branch string             `json:"branch"`
	Target convert.TargetSpec `json:"target"`
}

// HandleConvert runs the whole pipeline for one repository branch and
// stores the output under the request's run ID.
func (h *Handler) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	token := h.token(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "access token is required")
		return
	}
	var req convertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	req.Owner = strings.TrimSpace(req.Owner)
	req.Repo = strings.TrimSpace(req.Repo)
	req.Branch = strings.TrimSpace(req.Branch)
	if req.Owner == "" || req.Repo == "" || req.Branch == "" {
		writeError(w, http.StatusBadRequest, "owner, repo and branch are required")
		return
	}
	if strings.TrimSpace(req.Target.Language) == "" {
		writeError(w, http.StatusBadRequest, "target.language is required")
		return
	}

	runID := strings.TrimSpace(req.RunID)
	if runID == "" {
		runID = newRunID()
	} else if !validRunID(runID) {
		writeError(w, http.StatusBadRequest, "run_id may only contain letters, digits, '-' and '_'")
		return
	}
	svc := convert.NewService(h.GitHub, h.GitHub, convert.NewEngine(h.LLM), h.Options)
	svc.OnProgress(func(event string, batchIndex, batchTotal int, detail string) {
		h.Broker.Publish(progress.Event{
			Type:       event,
			RunID:      runID,
			BatchIndex: batchIndex,
			BatchTotal: batchTotal,
			Detail:     detail,
		})
	})

	result, err := svc.Convert(r.Context(), token, req.Owner, req.Repo, req.Branch, req.Target)
	if err != nil {
		h.Broker.Publish(progress.Event{Type: "failed", RunID: runID, Detail: err.Error()})
		h.recordRun(runID, req, result, "failed")
		status := http.StatusBadGateway
		if errors.Is(err, convert.ErrNoFilesFound) {
			status = http.StatusUnprocessableEntity
		}
		writeError(w, status, err.Error())
		return
	}

	h.storeArtifacts(r.Context(), runID, result)
	h.recordRun(runID, req, result, "completed")

	writeJSON(w, http.StatusOK, map[string]any{
		"run_id":   runID,
		"files":    result.Files,
		"summary":  result.Summary,
		"warnings": result.Warnings,
	})
}

// storeArtifacts persists the run output plus a result manifest. Storage
// trouble downgrades the response (no ZIP/export later) but does not fail
// a conversion that already succeeded.
func (h *Handler) storeArtifacts(ctx context.Context, runID string, result convert.Result) {
	if h.Artifacts == nil {
		return
	}
	for _, f := range result.Files {
		if err := h.Artifacts.Put(ctx, runID, f.Path, []byte(f.Content)); err != nil {
			log.Printf("artifact: store %s/%s: %v", runID, f.Path, err)
		}
	}
	manifest, err := json.Marshal(result)
	if err == nil {
		err = h.Artifacts.Put(ctx, runID, artifact.RunManifestPath, manifest)
	}
	if err != nil {
		log.Printf("artifact: store manifest for %s: %v", runID, err)
	}
}

func (h *Handler) recordRun(runID string, req convertRequest, result convert.Result, status string) {
	if h.Runs == nil {
		return
	}
	fallbacks := 0
	for _, f := range result.Files {
		if f.IsFallback {
			fallbacks++
		}
	}
	if err := h.Runs.Put(runstore.Run{
		RunID:          runID,
		Owner:          req.Owner,
		Repo:           req.Repo,
		Branch:         req.Branch,
		TargetLanguage: req.Target.Language,
		Status:         status,
		FileCount:      len(result.Files),
		FallbackCount:  fallbacks,
	}); err != nil {
		log.Printf("runstore: record %s: %v", runID, err)
	}
}

// HandleListRuns returns recent run history.
func (h *Handler) HandleListRuns(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	runs, err := h.Runs.List(50)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

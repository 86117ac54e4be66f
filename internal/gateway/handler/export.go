package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"restack/internal/convert"
	"restack/internal/export"
	"restack/internal/gateway/repository/artifact"
)

// loadResult reconstructs a stored run result from its manifest.
func (h *Handler) loadResult(r *http.Request, runID string) (convert.Result, error) {
	if h.Artifacts == nil {
		return convert.Result{}, errors.New("artifact store is not configured")
	}
	raw, err := h.Artifacts.Get(r.Context(), runID, artifact.RunManifestPath)
	if err != nil {
		return convert.Result{}, err
	}
	var result convert.Result
	if err := json.Unmarshal(raw, &result); err != nil {
		return convert.Result{}, fmt.Errorf("decode result manifest: %w", err)
	}
	return result, nil
}

// HandleExportZip streams a run's converted files as a ZIP archive.
func (h *Handler) HandleExportZip(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	runID := strings.TrimSpace(r.URL.Query().Get("run_id"))
	if runID == "" {
		writeError(w, http.StatusBadRequest, "run_id is required")
		return
	}
	result, err := h.loadResult(r, runID)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", runID+".zip"))
	if err := export.WriteZip(w, result.Files); err != nil {
		// Headers are out the door already; nothing left but to log.
		log.Printf("export: zip %s: %v", runID, err)
	}
}

type exportRepoRequest struct {
	RunID string `json:"run_id"`
	Name  string `json:"name"`
}

// HandleExportRepo creates a repository on the host and uploads a run's
// converted files into it.
func (h *Handler) HandleExportRepo(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	token := h.token(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "access token is required")
		return
	}
	var req exportRepoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	runID := strings.TrimSpace(req.RunID)
	if runID == "" || strings.TrimSpace(req.Name) == "" {
		writeError(w, http.StatusBadRequest, "run_id and name are required")
		return
	}
	result, err := h.loadResult(r, runID)
	if err != nil {
		if errors.Is(err, artifact.ErrNotFound) {
			writeError(w, http.StatusNotFound, "run not found")
			return
		}
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	fullName, err := h.Exporter.Export(r.Context(), token, req.Name, result.Files)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repository": fullName, "file_count": len(result.Files)})
}

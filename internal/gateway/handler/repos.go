package handler

import (
	"errors"
	"net/http"
	"strings"

	"restack/internal/github"
)

// HandleListRepos proxies the authenticated user's repository listing.
func (h *Handler) HandleListRepos(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	token := h.token(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "access token is required")
		return
	}
	repos, err := h.GitHub.ListRepos(r.Context(), token)
	if err != nil {
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"repos": repos})
}

// HandleListBranches proxies one repository's branch listing.
func (h *Handler) HandleListBranches(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	token := h.token(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "access token is required")
		return
	}
	owner := strings.TrimSpace(r.URL.Query().Get("owner"))
	repo := strings.TrimSpace(r.URL.Query().Get("repo"))
	if owner == "" || repo == "" {
		writeError(w, http.StatusBadRequest, "owner and repo are required")
		return
	}
	branches, err := h.GitHub.ListBranches(r.Context(), token, owner, repo)
	if err != nil {
		if errors.Is(err, github.ErrNotFound) {
			writeError(w, http.StatusNotFound, "repository not found")
			return
		}
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"branches": branches})
}

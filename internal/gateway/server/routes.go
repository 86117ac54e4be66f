package server

import (
	"net/http"

	"restack/internal/gateway/handler"
	"restack/internal/gateway/middleware"
)

func NewMux(h *handler.Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/api/repos", h.HandleListRepos)
	mux.HandleFunc("/api/branches", h.HandleListBranches)
	mux.HandleFunc("/api/convert", h.HandleConvert)
	mux.HandleFunc("/api/runs", h.HandleListRuns)
	mux.HandleFunc("/api/export/zip", h.HandleExportZip)
	mux.HandleFunc("/api/export/repo", h.HandleExportRepo)
	mux.HandleFunc("/ws/progress", h.HandleProgressWS)

	return middleware.CORS(mux)
}

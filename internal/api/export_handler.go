package api

import (
	"encoding/json"
	"net/http"

	"github.com/clipsight/clipsight-agent/internal/export"
)

func exportCaptionsHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req export.Request
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		list := cfg.Orchestrator.Annotations()
		if len(list) == 0 {
			WriteError(w, http.StatusUnprocessableEntity, "no annotations to export", "NO_ANNOTATIONS")
			return
		}

		result, err := export.WriteCaptions(req, list)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusOK, result)
	}
}

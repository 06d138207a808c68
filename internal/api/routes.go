package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/clipsight/clipsight-agent/internal/analysis"
	"github.com/clipsight/clipsight-agent/internal/config"
	"github.com/clipsight/clipsight-agent/internal/media"
	"github.com/clipsight/clipsight-agent/internal/presentation"
	"github.com/clipsight/clipsight-agent/internal/timecode"
)

// Drops are streamed to disk; the memory threshold only caps what multipart
// parsing buffers in RAM.
const maxMultipartMemory = 32 << 20

func NewRouter(cfg ServerConfig) *chi.Mux {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware())
	r.Use(RecoveryMiddleware(cfg.Logger))
	r.Use(LoggingMiddleware(cfg.Logger))

	r.Get("/health", healthHandler(cfg))

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(cfg.Repository, cfg.Logger))

		r.Get("/state", stateHandler(cfg))
		r.Get("/modes", modesHandler(cfg))
		r.Post("/media", dropMediaHandler(cfg))
		r.Get("/media/preview", previewHandler(cfg))
		r.Post("/analyze", analyzeHandler(cfg))
		r.Post("/playback/time", playbackTimeHandler(cfg))
		r.Post("/playback/duration", playbackDurationHandler(cfg))
		r.Post("/playback/play", playbackPlayHandler(cfg))
		r.Post("/playback/scrub", playbackScrubHandler(cfg))
		r.Post("/playback/jump", playbackJumpHandler(cfg))
		r.Post("/export", exportCaptionsHandler(cfg))
	})

	return r
}

func healthHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		uptime := int64(time.Since(cfg.StartTime).Seconds())
		WriteJSON(w, http.StatusOK, HealthResponse{
			Status:   "ok",
			Version:  config.Version,
			UptimeS:  uptime,
			DeviceID: cfg.DeviceID,
		})
	}
}

func stateHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		analysisSnap := cfg.Orchestrator.Snapshot()

		WriteJSON(w, http.StatusOK, StateResponse{
			Media:        cfg.Media.Snapshot(),
			Analysis:     analysisSnap,
			Playback:     cfg.Sync.Snapshot(),
			Presentation: presentation.Select(analysisSnap.ModeID, analysisSnap.Annotations),
		})
	}
}

func modesHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		modes := analysis.Modes()
		resp := ModesResponse{Modes: make([]ModeResponse, len(modes))}
		for i, m := range modes {
			resp.Modes[i] = ModeToResponse(m)
		}
		WriteJSON(w, http.StatusOK, resp)
	}
}

func dropMediaHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(maxMultipartMemory); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid multipart body", "BAD_REQUEST")
			return
		}

		file, header, err := r.FormFile("file")
		if err != nil {
			WriteError(w, http.StatusBadRequest, "file field is required", "BAD_REQUEST")
			return
		}
		defer file.Close()

		mimeType := header.Header.Get("Content-Type")

		snap, err := cfg.Media.Drop(r.Context(), header.Filename, mimeType, file)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error(), "INTERNAL_ERROR")
			return
		}

		if snap.State == media.StateFailed && snap.Reason == media.ReasonUnsupportedType {
			WriteError(w, http.StatusUnsupportedMediaType, "unsupported media type", "UNSUPPORTED_TYPE")
			return
		}

		WriteJSON(w, http.StatusAccepted, snap)
	}
}

func previewHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := cfg.Media.Snapshot()
		if snap.PreviewPath == "" {
			WriteError(w, http.StatusNotFound, "no preview available", "NOT_FOUND")
			return
		}

		if err := cfg.Preview.ServePreview(w, r, snap.PreviewPath); err != nil {
			cfg.Logger.Error("preview error", "error", err, "session_id", snap.ID)
		}
	}
}

func analyzeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req AnalyzeRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		err := cfg.Orchestrator.Run(r.Context(), analysis.Request{
			ModeID:  req.Mode,
			SubMode: req.SubMode,
			Input:   req.Input,
		})
		switch {
		case errors.Is(err, analysis.ErrRequestInFlight):
			WriteError(w, http.StatusConflict, err.Error(), "REQUEST_IN_FLIGHT")
			return
		case errors.Is(err, analysis.ErrNoMediaAvailable):
			WriteError(w, http.StatusBadRequest, err.Error(), "NO_MEDIA_AVAILABLE")
			return
		case err != nil:
			// Mode/prompt validation failures never reach the model; anything
			// else is a failed generation round trip.
			snap := cfg.Orchestrator.Snapshot()
			if snap.ErrorKind == analysis.ErrorGenerationFailed {
				WriteError(w, http.StatusBadGateway, err.Error(), "GENERATION_FAILED")
			} else {
				WriteError(w, http.StatusBadRequest, err.Error(), "BAD_REQUEST")
			}
			return
		}

		// Feed the fresh annotation list to the playback synchronizer.
		cfg.Sync.SetAnnotations(cfg.Orchestrator.Annotations())

		WriteJSON(w, http.StatusOK, cfg.Orchestrator.Snapshot())
	}
}

func playbackTimeHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req TimeUpdateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		cfg.Sync.HandleTimeUpdate(req.CurrentS)
		WriteJSON(w, http.StatusOK, cfg.Sync.Snapshot())
	}
}

func playbackDurationHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req DurationRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		cfg.Sync.SetDuration(req.DurationS)
		WriteJSON(w, http.StatusOK, cfg.Sync.Snapshot())
	}
}

func playbackPlayHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req PlayRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		cfg.Sync.SetPlaying(req.Playing)
		WriteJSON(w, http.StatusOK, cfg.Sync.Snapshot())
	}
}

func playbackScrubHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req ScrubRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		switch req.Phase {
		case "begin":
			cfg.Sync.BeginScrub()
		case "move":
			cfg.Sync.Scrub(req.Fraction)
		case "end":
			cfg.Sync.EndScrub()
		default:
			WriteError(w, http.StatusBadRequest, "phase must be begin, move, or end", "BAD_REQUEST")
			return
		}

		WriteJSON(w, http.StatusOK, cfg.Sync.Snapshot())
	}
}

func playbackJumpHandler(cfg ServerConfig) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req JumpRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteError(w, http.StatusBadRequest, "invalid request body", "BAD_REQUEST")
			return
		}

		secs, err := timecode.ParseStrict(req.Timecode)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "invalid timecode", "BAD_REQUEST")
			return
		}

		cfg.Sync.JumpTo(secs)
		WriteJSON(w, http.StatusOK, cfg.Sync.Snapshot())
	}
}

package api

import (
	"github.com/clipsight/clipsight-agent/internal/analysis"
	"github.com/clipsight/clipsight-agent/internal/media"
	"github.com/clipsight/clipsight-agent/internal/playback"
	"github.com/clipsight/clipsight-agent/internal/presentation"
)

type HealthResponse struct {
	Status   string `json:"status"`
	Version  string `json:"version"`
	UptimeS  int64  `json:"uptime_s"`
	DeviceID string `json:"device_id"`
}

// StateResponse is the combined snapshot the UI polls. Presentation is
// derived from the analysis snapshot, never stored.
type StateResponse struct {
	Media        media.Snapshot    `json:"media"`
	Analysis     analysis.Snapshot `json:"analysis"`
	Playback     playback.Snapshot `json:"playback"`
	Presentation presentation.Kind `json:"presentation"`
}

type ModeResponse struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	RequiresInput bool     `json:"requires_input"`
	SubModes      []string `json:"sub_modes,omitempty"`
	IsList        bool     `json:"is_list"`
}

type ModesResponse struct {
	Modes []ModeResponse `json:"modes"`
}

type AnalyzeRequest struct {
	Mode    string `json:"mode"`
	SubMode string `json:"sub_mode,omitempty"`
	Input   string `json:"input,omitempty"`
}

type TimeUpdateRequest struct {
	CurrentS float64 `json:"current_s"`
}

type DurationRequest struct {
	DurationS float64 `json:"duration_s"`
}

type PlayRequest struct {
	Playing bool `json:"playing"`
}

// ScrubRequest phases: "begin" opens a scrub session, "move" reports drag
// progress, "end" closes it.
type ScrubRequest struct {
	Phase    string  `json:"phase"`
	Fraction float64 `json:"fraction"`
}

type JumpRequest struct {
	Timecode string `json:"timecode"`
}

type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

func ModeToResponse(m analysis.Mode) ModeResponse {
	subModes := make([]string, len(m.SubModes))
	for i, sm := range m.SubModes {
		subModes[i] = sm.Name
	}
	return ModeResponse{
		ID:            m.ID,
		Name:          m.Name,
		RequiresInput: m.RequiresInput,
		SubModes:      subModes,
		IsList:        m.IsList,
	}
}

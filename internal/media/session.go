// Package media drives a dropped video file through upload, server-side
// processing, and terminal ready/failed state. One session is live at a
// time; a new drop unconditionally supersedes the previous one, and any
// async work started for a superseded session is discarded before it can
// touch shared state.
package media

import "time"

const (
	StateIdle       = "idle"
	StateUploading  = "uploading"
	StateProcessing = "processing"
	StateReady      = "ready"
	StateFailed     = "failed"
)

// Failure reasons surfaced to the UI.
const (
	ReasonUnsupportedType   = "unsupported_type"
	ReasonUploadError       = "upload_error"
	ReasonProcessingFailed  = "processing_failed"
	ReasonProcessingTimeout = "processing_timeout"
)

// UploadedMedia is the opaque handle to a fully processed remote file. It is
// owned by the session until handed to the analysis layer and read-only
// afterward.
type UploadedMedia struct {
	URI      string `json:"uri"`
	MIMEType string `json:"mime_type"`
}

type session struct {
	ID           string
	Filename     string
	MIMEType     string
	State        string
	Reason       string
	Media        *UploadedMedia
	PreviewPath  string
	DurationSecs float64
	CreatedAt    time.Time
}

// Snapshot is a read-only copy of the current session state.
type Snapshot struct {
	ID           string         `json:"id"`
	Filename     string         `json:"filename,omitempty"`
	MIMEType     string         `json:"mime_type,omitempty"`
	State        string         `json:"state"`
	Reason       string         `json:"reason,omitempty"`
	Media        *UploadedMedia `json:"media,omitempty"`
	PreviewPath  string         `json:"-"`
	DurationSecs float64        `json:"duration_s,omitempty"`
	CreatedAt    time.Time      `json:"created_at,omitempty"`
}

func (s *session) snapshot() Snapshot {
	snap := Snapshot{
		ID:           s.ID,
		Filename:     s.Filename,
		MIMEType:     s.MIMEType,
		State:        s.State,
		Reason:       s.Reason,
		PreviewPath:  s.PreviewPath,
		DurationSecs: s.DurationSecs,
		CreatedAt:    s.CreatedAt,
	}
	if s.Media != nil {
		m := *s.Media
		snap.Media = &m
	}
	return snap
}

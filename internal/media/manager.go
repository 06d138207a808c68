package media

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/clipsight/clipsight-agent/internal/genai"
	"github.com/clipsight/clipsight-agent/internal/probe"
)

const (
	DefaultPollInterval = 5 * time.Second
	DefaultPollAttempts = 12
)

type ManagerConfig struct {
	Client       genai.Client
	Prober       probe.Prober
	PreviewDir   string
	PollInterval time.Duration
	PollAttempts int
	Logger       *slog.Logger
}

// Manager owns the current media session and its upload/poll lifecycle.
type Manager struct {
	client       genai.Client
	prober       probe.Prober
	previewDir   string
	pollInterval time.Duration
	pollAttempts int
	logger       *slog.Logger

	mu       sync.Mutex
	session  *session
	onChange func(sessionID string)
}

func NewManager(cfg ManagerConfig) *Manager {
	interval := cfg.PollInterval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	attempts := cfg.PollAttempts
	if attempts <= 0 {
		attempts = DefaultPollAttempts
	}

	return &Manager{
		client:       cfg.Client,
		prober:       cfg.Prober,
		previewDir:   cfg.PreviewDir,
		pollInterval: interval,
		pollAttempts: attempts,
		logger:       cfg.Logger,
	}
}

// OnSessionChange registers a callback fired whenever a new drop replaces
// the current session. Listeners use it to discard annotation and playback
// state that belonged to the previous video.
func (m *Manager) OnSessionChange(fn func(sessionID string)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onChange = fn
}

// Snapshot returns a copy of the current session state. An idle snapshot is
// returned before the first drop.
func (m *Manager) Snapshot() Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil {
		return Snapshot{State: StateIdle}
	}
	return m.session.snapshot()
}

// Drop starts a new session for a dropped file, superseding any previous
// session. Non-video MIME types fail immediately without contacting the
// upload collaborator. The upload and processing poll run asynchronously;
// callers observe progress through Snapshot.
func (m *Manager) Drop(ctx context.Context, filename, mimeType string, r io.Reader) (Snapshot, error) {
	m.mu.Lock()
	m.releasePreviewLocked()

	sess := &session{
		ID:        uuid.NewString(),
		Filename:  filename,
		MIMEType:  mimeType,
		State:     StateUploading,
		CreatedAt: time.Now(),
	}
	m.session = sess

	if !IsVideoMIME(mimeType) {
		sess.State = StateFailed
		sess.Reason = ReasonUnsupportedType
		snap := sess.snapshot()
		notify := m.onChange
		m.mu.Unlock()

		m.logger.Warn("rejected drop with unsupported media type",
			"session_id", sess.ID, "filename", filename, "mime_type", mimeType)
		if notify != nil {
			notify(sess.ID)
		}
		return snap, nil
	}

	notify := m.onChange
	m.mu.Unlock()

	m.logger.Info("media dropped, new session started",
		"session_id", sess.ID, "filename", filename, "mime_type", mimeType)
	if notify != nil {
		notify(sess.ID)
	}

	previewPath, err := m.writePreview(sess.ID, filename, r)
	if err != nil {
		m.fail(sess.ID, ReasonUploadError, err)
		return m.Snapshot(), nil
	}

	if !m.update(sess.ID, func(s *session) { s.PreviewPath = previewPath }) {
		// Superseded while the preview was being written.
		os.Remove(previewPath)
		return m.Snapshot(), nil
	}

	if m.prober != nil {
		if res, err := m.prober.Probe(ctx, previewPath); err == nil && res.DurationSecs > 0 {
			m.update(sess.ID, func(s *session) { s.DurationSecs = res.DurationSecs })
		}
	}

	go m.runUpload(context.WithoutCancel(ctx), sess.ID, previewPath, filename, mimeType)

	return m.Snapshot(), nil
}

// runUpload performs the upload and the sequential processing poll for one
// session. Every state mutation is guarded by the session id so a loop left
// over from a superseded drop cannot write into the new session.
func (m *Manager) runUpload(ctx context.Context, id, previewPath, filename, mimeType string) {
	f, err := os.Open(previewPath)
	if err != nil {
		m.fail(id, ReasonUploadError, err)
		return
	}

	stat, err := f.Stat()
	if err != nil {
		f.Close()
		m.fail(id, ReasonUploadError, err)
		return
	}

	info, err := m.client.UploadFile(ctx, f, stat.Size(), filename, mimeType)
	f.Close()
	if err != nil {
		m.fail(id, ReasonUploadError, err)
		return
	}

	switch info.State {
	case genai.FileStateActive:
		m.ready(id, info, mimeType)
		return
	case genai.FileStateFailed:
		m.fail(id, ReasonProcessingFailed, nil)
		return
	}

	if !m.update(id, func(s *session) { s.State = StateProcessing }) {
		return
	}
	m.logger.Info("upload accepted, polling for processing",
		"session_id", id, "file", info.Name)

	for attempt := 1; attempt <= m.pollAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return
		case <-time.After(m.pollInterval):
		}

		if !m.isCurrent(id) {
			m.logger.Debug("poll loop abandoned, session superseded", "session_id", id)
			return
		}

		polled, err := m.client.GetFile(ctx, info.Name)
		if err != nil {
			m.fail(id, ReasonProcessingFailed, err)
			return
		}

		switch polled.State {
		case genai.FileStateActive:
			m.ready(id, polled, mimeType)
			return
		case genai.FileStateFailed:
			m.fail(id, ReasonProcessingFailed, nil)
			return
		}

		m.logger.Debug("media still processing",
			"session_id", id, "attempt", attempt, "of", m.pollAttempts)
	}

	m.fail(id, ReasonProcessingTimeout, nil)
}

func (m *Manager) ready(id string, info *genai.FileInfo, fallbackMIME string) {
	mime := info.MIMEType
	if mime == "" {
		mime = fallbackMIME
	}
	ok := m.update(id, func(s *session) {
		s.State = StateReady
		s.Media = &UploadedMedia{URI: info.URI, MIMEType: mime}
	})
	if ok {
		m.logger.Info("media ready for analysis", "session_id", id, "uri", info.URI)
	}
}

func (m *Manager) fail(id, reason string, cause error) {
	var preview string
	ok := m.update(id, func(s *session) {
		s.State = StateFailed
		s.Reason = reason
		preview = s.PreviewPath
		s.PreviewPath = ""
	})
	if !ok {
		return
	}

	// A failed session must not hold on to its preview resource.
	if preview != "" {
		os.Remove(preview)
	}

	if cause != nil {
		m.logger.Error("media session failed", "session_id", id, "reason", reason, "error", cause)
	} else {
		m.logger.Error("media session failed", "session_id", id, "reason", reason)
	}
}

// update applies fn to the session only if id still names the current
// session. Returns false when the write was discarded as stale.
func (m *Manager) update(id string, fn func(*session)) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.session == nil || m.session.ID != id {
		return false
	}
	fn(m.session)
	return true
}

func (m *Manager) isCurrent(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session != nil && m.session.ID == id
}

func (m *Manager) releasePreviewLocked() {
	if m.session != nil && m.session.PreviewPath != "" {
		os.Remove(m.session.PreviewPath)
		m.session.PreviewPath = ""
	}
}

func (m *Manager) writePreview(id, filename string, r io.Reader) (string, error) {
	if err := os.MkdirAll(m.previewDir, 0755); err != nil {
		return "", fmt.Errorf("create preview dir: %w", err)
	}

	path := filepath.Join(m.previewDir, "preview-"+id+filepath.Ext(filename))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create preview file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write preview file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close preview file: %w", err)
	}
	return path, nil
}

// IsVideoMIME reports whether the dropped file claims a video MIME type.
func IsVideoMIME(mimeType string) bool {
	return strings.HasPrefix(strings.ToLower(mimeType), "video/")
}

package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/clipsight/clipsight-agent/internal/annotation"
	"github.com/clipsight/clipsight-agent/internal/genai"
	"github.com/clipsight/clipsight-agent/internal/media"
)

var (
	ErrRequestInFlight  = errors.New("analysis request already in flight")
	ErrNoMediaAvailable = errors.New("no media available for analysis")
)

// Error kinds surfaced in the state snapshot. Unknown-capability responses
// are deliberately absent: they are logged and leave no visible error.
const (
	ErrorNone             = ""
	ErrorNoMedia          = "no_media_available"
	ErrorGenerationFailed = "generation_request_failed"
)

// MediaSource provides the current media session. Satisfied by
// *media.Manager.
type MediaSource interface {
	Snapshot() media.Snapshot
}

type Request struct {
	ModeID  string
	SubMode string
	Input   string
}

// Snapshot is a read-only copy of orchestrator state. ResultsEpoch
// increments exactly once per completed request, success or failure; the UI
// scrolls its results view to the top when it observes a change.
type Snapshot struct {
	InFlight     bool            `json:"in_flight"`
	ModeID       string          `json:"mode_id,omitempty"`
	SubMode      string          `json:"sub_mode,omitempty"`
	ErrorKind    string          `json:"error,omitempty"`
	ResultsEpoch uint64          `json:"results_epoch"`
	Annotations  annotation.List `json:"annotations"`
	Text         string          `json:"text,omitempty"`
}

// Orchestrator issues at most one generation request at a time and owns the
// annotation list produced by the last successful one.
type Orchestrator struct {
	client genai.Client
	router *annotation.Router
	media  MediaSource
	model  string
	logger *slog.Logger

	mu           sync.Mutex
	inFlight     bool
	modeID       string
	subMode      string
	errorKind    string
	resultsEpoch uint64
	list         annotation.List
	text         string
}

type OrchestratorConfig struct {
	Client genai.Client
	Router *annotation.Router
	Media  MediaSource
	Model  string
	Logger *slog.Logger
}

func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	return &Orchestrator{
		client: cfg.Client,
		router: cfg.Router,
		media:  cfg.Media,
		model:  cfg.Model,
		logger: cfg.Logger,
	}
}

// Run executes one analysis request: build the prompt, call the model,
// dispatch the returned function call. A second call while one is pending is
// rejected with ErrRequestInFlight and has no effect on state. A response
// arriving after the media session changed is discarded.
func (o *Orchestrator) Run(ctx context.Context, req Request) error {
	mode, ok := ModeByID(req.ModeID)
	if !ok {
		return fmt.Errorf("unknown mode %q", req.ModeID)
	}

	prompt, err := BuildPrompt(mode, req.SubMode, req.Input)
	if err != nil {
		return err
	}

	o.mu.Lock()
	if o.inFlight {
		o.mu.Unlock()
		return ErrRequestInFlight
	}
	o.inFlight = true
	o.mu.Unlock()

	defer func() {
		o.mu.Lock()
		o.inFlight = false
		o.resultsEpoch++
		o.mu.Unlock()
	}()

	snap := o.media.Snapshot()
	if snap.State != media.StateReady || snap.Media == nil {
		o.setError(ErrorNoMedia)
		return ErrNoMediaAvailable
	}
	sessionID := snap.ID

	// A new generation discards the previous result immediately.
	o.mu.Lock()
	o.list = nil
	o.text = ""
	o.errorKind = ErrorNone
	o.modeID = mode.ID
	o.subMode = req.SubMode
	o.mu.Unlock()

	o.logger.Info("running analysis",
		"mode", mode.ID, "sub_mode", req.SubMode, "session_id", sessionID)

	result, err := o.client.Generate(ctx, genai.GenerateRequest{
		Model:        o.model,
		Prompt:       prompt,
		FileURI:      snap.Media.URI,
		FileMIMEType: snap.Media.MIMEType,
		Declarations: Declarations(),
	})
	if err != nil {
		o.setError(ErrorGenerationFailed)
		o.logger.Error("generation request failed", "mode", mode.ID, "error", err)
		return fmt.Errorf("generation request: %w", err)
	}

	if o.media.Snapshot().ID != sessionID {
		o.logger.Info("discarding analysis response for superseded session",
			"session_id", sessionID)
		return nil
	}

	list, applied, err := o.router.Dispatch(result.FunctionCalls)
	switch {
	case errors.Is(err, annotation.ErrUnknownCapability):
		// Soft failure: logged by the router, no visible error, list
		// unchanged.
		return nil
	case err != nil:
		o.setError(ErrorGenerationFailed)
		o.logger.Error("function call dispatch failed", "mode", mode.ID, "error", err)
		return err
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	if applied {
		o.list = list
	} else {
		// Text-only responses are not transformed into annotations.
		o.text = result.Text
	}

	o.logger.Info("analysis completed",
		"mode", mode.ID, "annotations", len(o.list), "text_bytes", len(o.text))
	return nil
}

// ClearResults drops the annotation list and error state. Called when a new
// video is dropped, since results belong to the session that produced them.
func (o *Orchestrator) ClearResults() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.list = nil
	o.text = ""
	o.errorKind = ErrorNone
	o.modeID = ""
	o.subMode = ""
}

func (o *Orchestrator) Snapshot() Snapshot {
	o.mu.Lock()
	defer o.mu.Unlock()

	list := make(annotation.List, len(o.list))
	copy(list, o.list)

	return Snapshot{
		InFlight:     o.inFlight,
		ModeID:       o.modeID,
		SubMode:      o.subMode,
		ErrorKind:    o.errorKind,
		ResultsEpoch: o.resultsEpoch,
		Annotations:  list,
		Text:         o.text,
	}
}

// Annotations returns the current list without the rest of the snapshot.
func (o *Orchestrator) Annotations() annotation.List {
	o.mu.Lock()
	defer o.mu.Unlock()
	list := make(annotation.List, len(o.list))
	copy(list, o.list)
	return list
}

func (o *Orchestrator) setError(kind string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.errorKind = kind
}

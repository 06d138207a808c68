// Package probe extracts media metadata from dropped files. The real
// implementation shells out to ffprobe; the stub keeps the agent working on
// machines without ffmpeg installed (the browser reports duration itself
// once the preview loads, so the probe is best-effort).
package probe

import (
	"context"
	"log/slog"
)

type Result struct {
	DurationSecs float64
	Width        int
	Height       int
	Codec        string
}

type Prober interface {
	Probe(ctx context.Context, filePath string) (*Result, error)
}

type StubProber struct {
	logger *slog.Logger
}

func NewStubProber(logger *slog.Logger) *StubProber {
	return &StubProber{logger: logger}
}

func (p *StubProber) Probe(ctx context.Context, filePath string) (*Result, error) {
	p.logger.Debug("probe stub: ffprobe not available", "path", filePath)
	return &Result{}, nil
}

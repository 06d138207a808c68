package probe

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strconv"
	"time"
)

// FFprobe runs the ffprobe binary and parses its JSON output.
type FFprobe struct {
	binary  string
	timeout time.Duration
	logger  *slog.Logger
}

func NewFFprobe(logger *slog.Logger) *FFprobe {
	return &FFprobe{
		binary:  "ffprobe",
		timeout: 15 * time.Second,
		logger:  logger,
	}
}

// Available reports whether the ffprobe binary can be found on PATH.
func (p *FFprobe) Available() bool {
	_, err := exec.LookPath(p.binary)
	return err == nil
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		CodecName string `json:"codec_name"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
}

func (p *FFprobe) Probe(ctx context.Context, filePath string) (*Result, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.binary,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		filePath,
	)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}

	result := &Result{}
	if parsed.Format.Duration != "" {
		if d, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
			result.DurationSecs = d
		}
	}
	for _, s := range parsed.Streams {
		if s.CodecType == "video" {
			result.Width = s.Width
			result.Height = s.Height
			result.Codec = s.CodecName
			break
		}
	}

	p.logger.Debug("probed media file",
		"path", filePath,
		"duration_s", result.DurationSecs,
		"codec", result.Codec,
	)
	return result, nil
}

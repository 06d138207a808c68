// Package export writes the current annotation list to caption files so
// results can be taken out of the session before it is discarded.
package export

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/clipsight/clipsight-agent/internal/annotation"
	"github.com/clipsight/clipsight-agent/internal/timecode"
)

type Format string

const (
	FormatSRT Format = "srt"
	FormatVTT Format = "vtt"
)

// Cues without a successor get this display window.
const defaultCueSecs = 5.0

type Request struct {
	Format    Format `json:"format"`
	OutputDir string `json:"output_dir"`
	Name      string `json:"name"`
}

type Result struct {
	OutputPath string `json:"output_path"`
	CueCount   int    `json:"cue_count"`
}

type cue struct {
	start float64
	end   float64
	text  string
}

// buildCues turns the annotation list into chronological caption cues.
// Entries without text or with malformed timecodes are skipped; each cue
// ends where the next one starts.
func buildCues(list annotation.List) []cue {
	var cues []cue
	for _, a := range list {
		if a.Text == "" {
			continue
		}
		start := timecode.Parse(a.Time)
		if math.IsNaN(start) {
			continue
		}
		cues = append(cues, cue{start: start, text: a.Text})
	}

	sort.SliceStable(cues, func(i, j int) bool { return cues[i].start < cues[j].start })

	for i := range cues {
		if i+1 < len(cues) && cues[i+1].start > cues[i].start {
			cues[i].end = cues[i+1].start
		} else {
			cues[i].end = cues[i].start + defaultCueSecs
		}
	}
	return cues
}

// GenerateSRT renders the annotation list as a SubRip caption document.
func GenerateSRT(list annotation.List) (string, int) {
	cues := buildCues(list)

	var b strings.Builder
	for i, c := range cues {
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			i+1, formatStamp(c.start, ","), formatStamp(c.end, ","), c.text)
	}
	return b.String(), len(cues)
}

// GenerateVTT renders the annotation list as a WebVTT caption document.
func GenerateVTT(list annotation.List) (string, int) {
	cues := buildCues(list)

	var b strings.Builder
	b.WriteString("WEBVTT\n\n")
	for _, c := range cues {
		fmt.Fprintf(&b, "%s --> %s\n%s\n\n",
			formatStamp(c.start, "."), formatStamp(c.end, "."), c.text)
	}
	return b.String(), len(cues)
}

// WriteCaptions validates the request, renders the chosen format, and
// writes the file into the output directory.
func WriteCaptions(req Request, list annotation.List) (*Result, error) {
	if err := ValidateOutputDir(req.OutputDir); err != nil {
		return nil, err
	}

	name := SanitizeName(req.Name, 120)
	if name == "" {
		name = "annotations"
	}

	var content string
	var count int
	switch req.Format {
	case FormatSRT:
		content, count = GenerateSRT(list)
	case FormatVTT:
		content, count = GenerateVTT(list)
	default:
		return nil, fmt.Errorf("unsupported caption format %q", req.Format)
	}

	if count == 0 {
		return nil, fmt.Errorf("no exportable captions in the current results")
	}

	path := filepath.Join(req.OutputDir, name+"."+string(req.Format))
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		return nil, fmt.Errorf("write caption file: %w", err)
	}

	return &Result{OutputPath: path, CueCount: count}, nil
}

// formatStamp renders seconds as HH:MM:SS<sep>mmm, the timestamp shape both
// caption formats share apart from the millisecond separator.
func formatStamp(secs float64, sep string) string {
	if secs < 0 {
		secs = 0
	}
	millis := int(math.Round(secs * 1000))
	h := millis / 3600000
	m := millis % 3600000 / 60000
	s := millis % 60000 / 1000
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d%s%03d", h, m, s, sep, ms)
}

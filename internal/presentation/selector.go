// Package presentation decides how analysis results should be rendered.
// Pure decision logic; the browser does the actual drawing.
package presentation

import (
	"github.com/clipsight/clipsight-agent/internal/analysis"
	"github.com/clipsight/clipsight-agent/internal/annotation"
)

type Kind string

const (
	KindEmpty          Kind = "empty"
	KindTable          Kind = "table"
	KindChart          Kind = "chart"
	KindList           Kind = "list"
	KindSentenceStream Kind = "sentences"
)

// Select maps the active mode and result shape to a presentation kind. The
// reserved Table and Chart modes force their layout; list modes render as a
// list; everything else streams as captioned sentences.
func Select(modeID string, list annotation.List) Kind {
	if len(list) == 0 {
		return KindEmpty
	}

	switch modeID {
	case analysis.ModeTable:
		return KindTable
	case analysis.ModeChart:
		return KindChart
	}

	if mode, ok := analysis.ModeByID(modeID); ok && mode.IsList {
		return KindList
	}
	return KindSentenceStream
}

package presentation

import (
	"testing"

	"github.com/clipsight/clipsight-agent/internal/analysis"
	"github.com/clipsight/clipsight-agent/internal/annotation"
)

func someList() annotation.List {
	return annotation.List{{Time: "0:05", Text: "x"}}
}

func TestSelect(t *testing.T) {
	tests := []struct {
		name   string
		modeID string
		list   annotation.List
		want   Kind
	}{
		{name: "empty list", modeID: analysis.ModeTable, list: nil, want: KindEmpty},
		{name: "table mode", modeID: analysis.ModeTable, list: someList(), want: KindTable},
		{name: "chart mode", modeID: analysis.ModeChart, list: someList(), want: KindChart},
		{name: "list mode", modeID: analysis.ModeKeyMoments, list: someList(), want: KindList},
		{name: "captions mode", modeID: analysis.ModeAVCaptions, list: someList(), want: KindList},
		{name: "paragraph mode", modeID: analysis.ModeParagraph, list: someList(), want: KindSentenceStream},
		{name: "haiku mode", modeID: analysis.ModeHaiku, list: someList(), want: KindSentenceStream},
		{name: "unknown mode", modeID: "bogus", list: someList(), want: KindSentenceStream},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Select(tc.modeID, tc.list); got != tc.want {
				t.Errorf("Select(%q) = %s, want %s", tc.modeID, got, tc.want)
			}
		})
	}
}

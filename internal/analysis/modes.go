// Package analysis holds the static mode catalog and the orchestrator that
// turns a mode selection into one model round trip and a new annotation
// list.
package analysis

import (
	"fmt"
	"strings"

	"github.com/clipsight/clipsight-agent/internal/annotation"
	"github.com/clipsight/clipsight-agent/internal/genai"
)

// Reserved mode ids the presentation layer keys off.
const (
	ModeAVCaptions = "av_captions"
	ModeParagraph  = "paragraph"
	ModeKeyMoments = "key_moments"
	ModeHaiku      = "haiku"
	ModeTable      = "table"
	ModeChart      = "chart"
	ModeCustom     = "custom"
)

// SubModeCustom selects the free-text variant of a mode with sub-modes.
const SubModeCustom = "Custom"

// SubMode is one named prompt fragment of a mode. Order matters for display.
type SubMode struct {
	Name   string `json:"name"`
	Phrase string `json:"-"`
}

// Mode is one entry of the fixed analysis catalog. PromptTemplate either is
// the complete prompt or carries a single %s slot filled from free text or a
// sub-mode phrase. The catalog is immutable for the process lifetime.
type Mode struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	PromptTemplate string    `json:"-"`
	RequiresInput  bool      `json:"requires_input"`
	SubModes       []SubMode `json:"sub_modes,omitempty"`
	IsList         bool      `json:"is_list"`
}

var modes = []Mode{
	{
		ID:   ModeAVCaptions,
		Name: "A/V captions",
		PromptTemplate: "For each scene in this video, generate captions that describe the " +
			"scene along with any spoken text placed in quotation marks. Place each " +
			"caption into an object sent to set_timecodes with the timecode of the " +
			"caption in the video.",
		IsList: true,
	},
	{
		ID:   ModeParagraph,
		Name: "Paragraph",
		PromptTemplate: "Generate a paragraph that summarizes this video. Keep it to 3 to 5 " +
			"sentences. Place each sentence of the summary into an object sent to " +
			"set_timecodes with the timecode of the sentence in the video.",
	},
	{
		ID:   ModeKeyMoments,
		Name: "Key moments",
		PromptTemplate: "Generate bullet points for the video. Place each bullet point into " +
			"an object sent to set_timecodes with the timecode of the bullet point " +
			"in the video.",
		IsList: true,
	},
	{
		ID:   ModeHaiku,
		Name: "Haiku",
		PromptTemplate: "Generate a haiku for the video. Place each line of the haiku into " +
			"an object sent to set_timecodes with the timecode of the line in the " +
			"video. Make sure to follow the syllable count rules (5-7-5).",
	},
	{
		ID:   ModeTable,
		Name: "Table",
		PromptTemplate: "Choose 5 key shots from this video and call " +
			"set_timecodes_with_objects with the timecode, text description of 10 " +
			"words or less, and a list of objects visible in the scene (with " +
			"representative emojis).",
	},
	{
		ID:   ModeChart,
		Name: "Chart",
		PromptTemplate: "Generate chart data for this video based on the following " +
			"instructions: %s. Call set_timecodes_with_numeric_values once with the " +
			"list of data values and timecodes.",
		SubModes: []SubMode{
			{Name: "Excitement", Phrase: "for each second, estimate the level of excitement on a scale of 1 to 10"},
			{Name: "Importance", Phrase: "for each second, estimate the importance to the overall video on a scale of 1 to 10"},
			{Name: "Number of people", Phrase: "for each second, count the number of people visible"},
			{Name: SubModeCustom},
		},
	},
	{
		ID:             ModeCustom,
		Name:           "Custom",
		PromptTemplate: "Call set_timecodes once using the following instructions: %s",
		RequiresInput:  true,
	},
}

// Modes returns the full catalog in display order.
func Modes() []Mode {
	out := make([]Mode, len(modes))
	copy(out, modes)
	return out
}

// ModeByID looks up a catalog entry; ok is false for unknown ids.
func ModeByID(id string) (Mode, bool) {
	for _, m := range modes {
		if m.ID == id {
			return m, true
		}
	}
	return Mode{}, false
}

// BuildPrompt fills the mode's template. Free-text modes take input; modes
// with sub-modes take a sub-mode name, using input only for the custom
// sub-mode.
func BuildPrompt(mode Mode, subMode, input string) (string, error) {
	if !strings.Contains(mode.PromptTemplate, "%s") {
		return mode.PromptTemplate, nil
	}

	if len(mode.SubModes) > 0 {
		for _, sm := range mode.SubModes {
			if sm.Name != subMode {
				continue
			}
			if sm.Name == SubModeCustom {
				if strings.TrimSpace(input) == "" {
					return "", fmt.Errorf("mode %s: custom sub-mode requires input text", mode.ID)
				}
				return fmt.Sprintf(mode.PromptTemplate, input), nil
			}
			return fmt.Sprintf(mode.PromptTemplate, sm.Phrase), nil
		}
		return "", fmt.Errorf("mode %s: unknown sub-mode %q", mode.ID, subMode)
	}

	if strings.TrimSpace(input) == "" {
		return "", fmt.Errorf("mode %s: input text required", mode.ID)
	}
	return fmt.Sprintf(mode.PromptTemplate, input), nil
}

// Declarations returns the capability declarations offered to the model on
// every analysis request. The schema mirrors the router's payload shape.
func Declarations() []genai.FunctionDeclaration {
	timecodeItems := func(props map[string]any, required []string) map[string]any {
		return map[string]any{
			"type": "object",
			"properties": map[string]any{
				"timecodes": map[string]any{
					"type": "array",
					"items": map[string]any{
						"type":       "object",
						"properties": props,
						"required":   required,
					},
				},
			},
			"required": []string{"timecodes"},
		}
	}

	return []genai.FunctionDeclaration{
		{
			Name:        annotation.CapSetTimecodes,
			Description: "Set the timecodes for the video with associated text",
			Parameters: timecodeItems(map[string]any{
				"time": map[string]any{"type": "string"},
				"text": map[string]any{"type": "string"},
			}, []string{"time", "text"}),
		},
		{
			Name:        annotation.CapSetTimecodesWithObjects,
			Description: "Set the timecodes for the video with associated text and object list",
			Parameters: timecodeItems(map[string]any{
				"time": map[string]any{"type": "string"},
				"text": map[string]any{"type": "string"},
				"objects": map[string]any{
					"type":  "array",
					"items": map[string]any{"type": "string"},
				},
			}, []string{"time", "text", "objects"}),
		},
		{
			Name:        annotation.CapSetTimecodesWithNumValues,
			Description: "Set the timecodes for the video with associated numeric values",
			Parameters: timecodeItems(map[string]any{
				"time":  map[string]any{"type": "string"},
				"value": map[string]any{"type": "number"},
			}, []string{"time", "value"}),
		},
	}
}

package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/clipsight/clipsight-agent/internal/genai"
)

// Capability names the model is allowed to invoke. The set is closed; a call
// naming anything else is dropped as a soft failure.
const (
	CapSetTimecodes              = "set_timecodes"
	CapSetTimecodesWithObjects   = "set_timecodes_with_objects"
	CapSetTimecodesWithNumValues = "set_timecodes_with_numeric_values"
)

var ErrUnknownCapability = errors.New("unknown capability")

type handler func(args json.RawMessage) (List, error)

// Router maps capability names to handlers producing normalized annotation
// lists from function-call arguments.
type Router struct {
	handlers map[string]handler
	logger   *slog.Logger
}

func NewRouter(logger *slog.Logger) *Router {
	r := &Router{logger: logger}
	r.handlers = map[string]handler{
		CapSetTimecodes:              r.handleTimecodes,
		CapSetTimecodesWithObjects:   r.handleTimecodesWithObjects,
		CapSetTimecodesWithNumValues: r.handleTimecodesWithValues,
	}
	return r
}

// timecodesPayload is the shared argument shape of every capability.
type timecodesPayload struct {
	Timecodes []Annotation `json:"timecodes"`
}

// Dispatch routes the function calls of one model response. Only the first
// call is honored; extras are logged and ignored. An empty call slice means
// a text-only response and yields (nil, false, nil): no list change. An
// unregistered name returns ErrUnknownCapability, which callers treat as a
// logged no-op rather than a visible failure.
func (r *Router) Dispatch(calls []genai.FunctionCall) (List, bool, error) {
	if len(calls) == 0 {
		return nil, false, nil
	}
	if len(calls) > 1 && r.logger != nil {
		r.logger.Warn("response contained multiple function calls, honoring first",
			"count", len(calls), "extra", calls[1].Name)
	}

	call := calls[0]
	h, ok := r.handlers[call.Name]
	if !ok {
		if r.logger != nil {
			r.logger.Warn("model invoked unknown capability", "name", call.Name)
		}
		return nil, false, fmt.Errorf("%w: %q", ErrUnknownCapability, call.Name)
	}

	list, err := h(call.Args)
	if err != nil {
		return nil, false, fmt.Errorf("capability %s: %w", call.Name, err)
	}
	return list, true, nil
}

func (r *Router) handleTimecodes(args json.RawMessage) (List, error) {
	payload, err := decodePayload(args)
	if err != nil {
		return nil, err
	}

	list := make(List, 0, len(payload.Timecodes))
	for _, tc := range payload.Timecodes {
		list = append(list, Annotation{
			Time: tc.Time,
			Text: UnescapeText(tc.Text),
		})
	}
	return list, nil
}

func (r *Router) handleTimecodesWithObjects(args json.RawMessage) (List, error) {
	payload, err := decodePayload(args)
	if err != nil {
		return nil, err
	}

	list := make(List, 0, len(payload.Timecodes))
	for _, tc := range payload.Timecodes {
		list = append(list, Annotation{
			Time:    tc.Time,
			Text:    UnescapeText(tc.Text),
			Objects: tc.Objects,
		})
	}
	return list, nil
}

func (r *Router) handleTimecodesWithValues(args json.RawMessage) (List, error) {
	payload, err := decodePayload(args)
	if err != nil {
		return nil, err
	}

	list := make(List, 0, len(payload.Timecodes))
	for _, tc := range payload.Timecodes {
		list = append(list, Annotation{
			Time:  tc.Time,
			Value: tc.Value,
		})
	}
	return list, nil
}

func decodePayload(args json.RawMessage) (*timecodesPayload, error) {
	var payload timecodesPayload
	if err := json.Unmarshal(args, &payload); err != nil {
		return nil, fmt.Errorf("decode arguments: %w", err)
	}
	return &payload, nil
}

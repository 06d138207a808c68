package annotation

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/clipsight/clipsight-agent/internal/genai"
)

func testRouter() *Router {
	return NewRouter(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func call(name, args string) genai.FunctionCall {
	return genai.FunctionCall{Name: name, Args: json.RawMessage(args)}
}

func TestDispatch_SetTimecodes(t *testing.T) {
	r := testRouter()

	list, applied, err := r.Dispatch([]genai.FunctionCall{
		call(CapSetTimecodes, `{"timecodes":[{"time":"0:05","text":"a caption"},{"time":"0:12","text":"another"}]}`),
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !applied {
		t.Fatal("Dispatch() applied = false, want true")
	}
	if len(list) != 2 {
		t.Fatalf("len(list) = %d, want 2", len(list))
	}
	if list[0].Time != "0:05" || list[0].Text != "a caption" {
		t.Errorf("list[0] = %+v", list[0])
	}
}

func TestDispatch_UnescapesQuotes(t *testing.T) {
	r := testRouter()

	list, _, err := r.Dispatch([]genai.FunctionCall{
		call(CapSetTimecodes, `{"timecodes":[{"time":"0:05","text":"a\\'b"}]}`),
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if list[0].Text != "a'b" {
		t.Errorf("list[0].Text = %q, want %q", list[0].Text, "a'b")
	}
}

func TestDispatch_WithObjects(t *testing.T) {
	r := testRouter()

	list, _, err := r.Dispatch([]genai.FunctionCall{
		call(CapSetTimecodesWithObjects, `{"timecodes":[{"time":"1:00","text":"kitchen","objects":["pan","stove"]}]}`),
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if len(list[0].Objects) != 2 || list[0].Objects[0] != "pan" {
		t.Errorf("list[0].Objects = %v", list[0].Objects)
	}
}

func TestDispatch_WithNumericValues(t *testing.T) {
	r := testRouter()

	list, _, err := r.Dispatch([]genai.FunctionCall{
		call(CapSetTimecodesWithNumValues, `{"timecodes":[{"time":"0:01","value":7},{"time":"0:02","value":3.5}]}`),
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if list[0].Value == nil || *list[0].Value != 7 {
		t.Errorf("list[0].Value = %v, want 7", list[0].Value)
	}
	if list[1].Value == nil || *list[1].Value != 3.5 {
		t.Errorf("list[1].Value = %v, want 3.5", list[1].Value)
	}
	// Numeric results carry no text.
	if list[0].Text != "" {
		t.Errorf("list[0].Text = %q, want empty", list[0].Text)
	}
}

func TestDispatch_UnknownCapability(t *testing.T) {
	r := testRouter()

	list, applied, err := r.Dispatch([]genai.FunctionCall{
		call("set_everything", `{"timecodes":[]}`),
	})
	if !errors.Is(err, ErrUnknownCapability) {
		t.Fatalf("Dispatch() error = %v, want ErrUnknownCapability", err)
	}
	if applied || list != nil {
		t.Errorf("unknown capability must not produce a list: applied=%v list=%v", applied, list)
	}
}

func TestDispatch_NoCalls(t *testing.T) {
	r := testRouter()

	list, applied, err := r.Dispatch(nil)
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if applied || list != nil {
		t.Errorf("text-only response must not touch the list: applied=%v list=%v", applied, list)
	}
}

func TestDispatch_MultipleCallsHonorsFirst(t *testing.T) {
	r := testRouter()

	list, applied, err := r.Dispatch([]genai.FunctionCall{
		call(CapSetTimecodes, `{"timecodes":[{"time":"0:01","text":"first"}]}`),
		call(CapSetTimecodesWithObjects, `{"timecodes":[{"time":"0:02","text":"second","objects":["x"]}]}`),
	})
	if err != nil {
		t.Fatalf("Dispatch() error = %v", err)
	}
	if !applied || len(list) != 1 || list[0].Text != "first" {
		t.Errorf("expected only the first call to apply, got %+v", list)
	}
}

func TestDispatch_MalformedArgs(t *testing.T) {
	r := testRouter()

	_, applied, err := r.Dispatch([]genai.FunctionCall{
		call(CapSetTimecodes, `{"timecodes":`),
	})
	if err == nil {
		t.Fatal("Dispatch() should fail on malformed arguments")
	}
	if applied {
		t.Error("malformed arguments must not apply")
	}
}

func TestUnescapeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`a\'b`, "a'b"},
		{`it\'s \'quoted\'`, "it's 'quoted'"},
		{"plain", "plain"},
		{"", ""},
	}

	for _, tc := range tests {
		if got := UnescapeText(tc.in); got != tc.want {
			t.Errorf("UnescapeText(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

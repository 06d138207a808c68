package playback

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestParseByteRange(t *testing.T) {
	tests := []struct {
		name      string
		header    string
		size      int64
		wantStart int64
		wantEnd   int64
		wantNil   bool
		wantErr   error
	}{
		{name: "no header", header: "", size: 1000, wantNil: true},
		{name: "full range", header: "bytes=0-999", size: 1000, wantStart: 0, wantEnd: 999},
		{name: "open end", header: "bytes=500-", size: 1000, wantStart: 500, wantEnd: 999},
		{name: "suffix", header: "bytes=-500", size: 1000, wantStart: 500, wantEnd: 999},
		{name: "suffix larger than file", header: "bytes=-2000", size: 500, wantStart: 0, wantEnd: 499},
		{name: "single byte", header: "bytes=0-0", size: 1000, wantStart: 0, wantEnd: 0},
		{name: "end clamped", header: "bytes=0-2000", size: 1000, wantStart: 0, wantEnd: 999},
		{name: "multi range takes first", header: "bytes=0-99, 200-299", size: 1000, wantStart: 0, wantEnd: 99},
		{name: "start at size", header: "bytes=1000-", size: 1000, wantErr: ErrUnsatisfiable},
		{name: "beyond size", header: "bytes=1500-2000", size: 1000, wantErr: ErrUnsatisfiable},
		{name: "no unit", header: "0-100", size: 1000, wantErr: ErrInvalidRange},
		{name: "wrong unit", header: "chars=0-100", size: 1000, wantErr: ErrInvalidRange},
		{name: "garbage start", header: "bytes=abc-100", size: 1000, wantErr: ErrInvalidRange},
		{name: "garbage end", header: "bytes=0-abc", size: 1000, wantErr: ErrInvalidRange},
		{name: "zero suffix", header: "bytes=-0", size: 1000, wantErr: ErrInvalidRange},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParseByteRange(tc.header, tc.size)

			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tc.wantNil {
				if got != nil {
					t.Fatalf("range = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("range = nil, want value")
			}
			if got.Start != tc.wantStart || got.End != tc.wantEnd {
				t.Errorf("range = %d-%d, want %d-%d", got.Start, got.End, tc.wantStart, tc.wantEnd)
			}
		})
	}
}

func writePreviewFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "preview.mp4")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestServePreview_Full(t *testing.T) {
	srv := NewPreviewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	path := writePreviewFile(t, "0123456789")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/media/preview", nil)

	if err := srv.ServePreview(rr, req, path); err != nil {
		t.Fatalf("ServePreview() error = %v", err)
	}

	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rr.Code)
	}
	if rr.Body.String() != "0123456789" {
		t.Errorf("body = %q", rr.Body.String())
	}
	if got := rr.Header().Get("Accept-Ranges"); got != "bytes" {
		t.Errorf("Accept-Ranges = %q", got)
	}
	if got := rr.Header().Get("Content-Type"); got != "video/mp4" {
		t.Errorf("Content-Type = %q, want video/mp4", got)
	}
}

func TestServePreview_Partial(t *testing.T) {
	srv := NewPreviewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	path := writePreviewFile(t, "0123456789")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/media/preview", nil)
	req.Header.Set("Range", "bytes=2-5")

	if err := srv.ServePreview(rr, req, path); err != nil {
		t.Fatalf("ServePreview() error = %v", err)
	}

	if rr.Code != http.StatusPartialContent {
		t.Errorf("status = %d, want 206", rr.Code)
	}
	if rr.Body.String() != "2345" {
		t.Errorf("body = %q, want 2345", rr.Body.String())
	}
	if got := rr.Header().Get("Content-Range"); got != "bytes 2-5/10" {
		t.Errorf("Content-Range = %q", got)
	}
}

func TestServePreview_Unsatisfiable(t *testing.T) {
	srv := NewPreviewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))
	path := writePreviewFile(t, "0123456789")

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/media/preview", nil)
	req.Header.Set("Range", "bytes=100-")

	if err := srv.ServePreview(rr, req, path); err != nil {
		t.Fatalf("ServePreview() error = %v", err)
	}
	if rr.Code != http.StatusRequestedRangeNotSatisfiable {
		t.Errorf("status = %d, want 416", rr.Code)
	}
}

func TestServePreview_Missing(t *testing.T) {
	srv := NewPreviewServer(slog.New(slog.NewTextHandler(io.Discard, nil)))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/media/preview", nil)

	if err := srv.ServePreview(rr, req, filepath.Join(t.TempDir(), "gone.mp4")); err != nil {
		t.Fatalf("ServePreview() error = %v", err)
	}
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rr.Code)
	}
}

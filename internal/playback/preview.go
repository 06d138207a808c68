package playback

import (
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

// PreviewService serves the current session's local preview file to the
// player element.
type PreviewService interface {
	ServePreview(w http.ResponseWriter, r *http.Request, filePath string) error
}

// PreviewServer streams the preview file with byte-range support, which the
// browser needs to seek within the video.
type PreviewServer struct {
	logger *slog.Logger
}

func NewPreviewServer(logger *slog.Logger) *PreviewServer {
	return &PreviewServer{logger: logger}
}

func (s *PreviewServer) ServePreview(w http.ResponseWriter, r *http.Request, filePath string) error {
	file, err := os.Open(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			http.Error(w, "preview not found", http.StatusNotFound)
			return nil
		}
		return fmt.Errorf("open preview: %w", err)
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return fmt.Errorf("stat preview: %w", err)
	}
	size := stat.Size()

	contentType := mime.TypeByExtension(filepath.Ext(filePath))
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	w.Header().Set("Accept-Ranges", "bytes")
	w.Header().Set("Content-Type", contentType)

	byteRange, err := ParseByteRange(r.Header.Get("Range"), size)
	switch {
	case err == ErrUnsatisfiable:
		w.Header().Set("Content-Range", fmt.Sprintf("bytes */%d", size))
		http.Error(w, "range not satisfiable", http.StatusRequestedRangeNotSatisfiable)
		return nil
	case err == ErrInvalidRange:
		// Malformed range headers fall back to serving the whole file.
		byteRange = nil
	case err != nil:
		return err
	}

	if byteRange == nil {
		w.Header().Set("Content-Length", fmt.Sprintf("%d", size))
		w.WriteHeader(http.StatusOK)
		io.Copy(w, file)
		return nil
	}

	w.Header().Set("Content-Length", fmt.Sprintf("%d", byteRange.Length()))
	w.Header().Set("Content-Range", byteRange.ContentRange(size))
	w.WriteHeader(http.StatusPartialContent)

	if _, err := file.Seek(byteRange.Start, io.SeekStart); err != nil {
		return fmt.Errorf("seek preview: %w", err)
	}
	io.CopyN(w, file, byteRange.Length())
	return nil
}

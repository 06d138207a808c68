// Package genai wraps the hosted multimodal model behind a narrow client
// interface: upload a file, poll its processing state, run one generation
// round trip. The agent core never talks HTTP directly.
package genai

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
)

// FileState is the server-side processing state of an uploaded file.
type FileState string

const (
	FileStateProcessing FileState = "PROCESSING"
	FileStateActive     FileState = "ACTIVE"
	FileStateFailed     FileState = "FAILED"
)

// FileInfo describes an uploaded file resource. URI and MIMEType are only
// meaningful once State is FileStateActive.
type FileInfo struct {
	Name     string    `json:"name"`
	State    FileState `json:"state"`
	URI      string    `json:"uri"`
	MIMEType string    `json:"mimeType"`
}

// FunctionDeclaration describes one capability offered to the model.
type FunctionDeclaration struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// FunctionCall is one capability invocation returned by the model.
type FunctionCall struct {
	Name string          `json:"name"`
	Args json.RawMessage `json:"args"`
}

// GenerateRequest is a single prompt+file generation round trip. No
// streaming; the caller gets the complete result or an error.
type GenerateRequest struct {
	Model        string
	Prompt       string
	FileURI      string
	FileMIMEType string
	Declarations []FunctionDeclaration
}

// GenerateResult carries whichever of function calls and text the model
// produced. Both may be empty on a degenerate response.
type GenerateResult struct {
	FunctionCalls []FunctionCall
	Text          string
}

type Client interface {
	UploadFile(ctx context.Context, r io.Reader, size int64, displayName, mimeType string) (*FileInfo, error)
	GetFile(ctx context.Context, name string) (*FileInfo, error)
	Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error)
}

// StubClient satisfies Client without network access. Uploads become
// immediately active; generations return an empty text response. Used when
// no API key is configured, so the agent still starts and serves previews.
type StubClient struct {
	logger *slog.Logger
}

func NewStubClient(logger *slog.Logger) *StubClient {
	return &StubClient{logger: logger}
}

func (c *StubClient) UploadFile(ctx context.Context, r io.Reader, size int64, displayName, mimeType string) (*FileInfo, error) {
	c.logger.Info("genai stub: upload requested", "display_name", displayName, "mime_type", mimeType, "size", size)
	return &FileInfo{
		Name:     "files/stub",
		State:    FileStateActive,
		URI:      "stub://files/stub",
		MIMEType: mimeType,
	}, nil
}

func (c *StubClient) GetFile(ctx context.Context, name string) (*FileInfo, error) {
	c.logger.Debug("genai stub: file status requested", "name", name)
	return &FileInfo{Name: name, State: FileStateActive, URI: "stub://" + name}, nil
}

func (c *StubClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	c.logger.Info("genai stub: generation requested (no API key configured)", "model", req.Model)
	return &GenerateResult{Text: "No model API key is configured."}, nil
}

package genai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// APIError represents a non-2xx response from the model API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("model API request failed: HTTP %d: %s", e.StatusCode, e.Body)
}

// IsRetryable returns true for server errors (5xx). Client errors (4xx)
// are considered permanent.
func (e *APIError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// HTTPClient talks to the Gemini REST API: the Files endpoint for media
// upload and status, and generateContent for the single analysis round trip.
type HTTPClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewHTTPClient(baseURL, apiKey string, logger *slog.Logger) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger,
	}
}

type fileEnvelope struct {
	File FileInfo `json:"file"`
}

func (c *HTTPClient) UploadFile(ctx context.Context, r io.Reader, size int64, displayName, mimeType string) (*FileInfo, error) {
	uploadURL := fmt.Sprintf("%s/upload/v1beta/files?key=%s", c.baseURL, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, r)
	if err != nil {
		return nil, fmt.Errorf("create upload request: %w", err)
	}
	req.ContentLength = size
	req.Header.Set("Content-Type", mimeType)
	req.Header.Set("X-Goog-Upload-Protocol", "raw")
	req.Header.Set("X-Goog-File-Name", displayName)

	c.logger.Info("uploading media to model API",
		"display_name", displayName,
		"mime_type", mimeType,
		"body_bytes", size,
	)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var envelope fileEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("decode upload response: %w", err)
	}

	c.logger.Info("media upload accepted", "file", envelope.File.Name, "state", envelope.File.State)
	return &envelope.File, nil
}

func (c *HTTPClient) GetFile(ctx context.Context, name string) (*FileInfo, error) {
	statusURL := fmt.Sprintf("%s/v1beta/%s?key=%s", c.baseURL, name, url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create status request: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var info FileInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return nil, fmt.Errorf("decode file status: %w", err)
	}
	return &info, nil
}

// Wire shapes for generateContent. Only the fields the agent reads are
// declared.
type generateContentRequest struct {
	Contents   []content   `json:"contents"`
	Tools      []tool      `json:"tools,omitempty"`
	ToolConfig *toolConfig `json:"toolConfig,omitempty"`
}

type content struct {
	Role  string `json:"role,omitempty"`
	Parts []part `json:"parts"`
}

type part struct {
	Text         string        `json:"text,omitempty"`
	FileData     *fileData     `json:"fileData,omitempty"`
	FunctionCall *FunctionCall `json:"functionCall,omitempty"`
}

type fileData struct {
	FileURI  string `json:"fileUri"`
	MIMEType string `json:"mimeType"`
}

type tool struct {
	FunctionDeclarations []FunctionDeclaration `json:"functionDeclarations"`
}

type toolConfig struct {
	FunctionCallingConfig functionCallingConfig `json:"functionCallingConfig"`
}

type functionCallingConfig struct {
	Mode string `json:"mode"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
}

func (c *HTTPClient) Generate(ctx context.Context, genReq GenerateRequest) (*GenerateResult, error) {
	wire := generateContentRequest{
		Contents: []content{{
			Role: "user",
			Parts: []part{
				{FileData: &fileData{FileURI: genReq.FileURI, MIMEType: genReq.FileMIMEType}},
				{Text: genReq.Prompt},
			},
		}},
	}
	if len(genReq.Declarations) > 0 {
		wire.Tools = []tool{{FunctionDeclarations: genReq.Declarations}}
		wire.ToolConfig = &toolConfig{FunctionCallingConfig: functionCallingConfig{Mode: "ANY"}}
	}

	payload, err := json.Marshal(wire)
	if err != nil {
		return nil, fmt.Errorf("marshal generate request: %w", err)
	}

	genURL := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s",
		c.baseURL, url.PathEscape(genReq.Model), url.QueryEscape(c.apiKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, genURL, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("requesting generation",
		"model", genReq.Model,
		"prompt_bytes", len(genReq.Prompt),
		"declarations", len(genReq.Declarations),
	)

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp generateContentResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode generate response: %w", err)
	}

	result := &GenerateResult{}
	if len(resp.Candidates) > 0 {
		for _, p := range resp.Candidates[0].Content.Parts {
			if p.FunctionCall != nil {
				result.FunctionCalls = append(result.FunctionCalls, *p.FunctionCall)
			}
			if p.Text != "" {
				result.Text += p.Text
			}
		}
	}

	c.logger.Info("generation completed",
		"function_calls", len(result.FunctionCalls),
		"text_bytes", len(result.Text),
	)
	return result, nil
}

func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: truncate(string(body), 4096)}
	}
	return body, nil
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen]
}

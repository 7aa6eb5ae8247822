package tools

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"warden/backend/pkg/logger"
)

// PasteClient uploads oversized text (typically full search results) to a
// 0x0.st-compatible paste service and returns the public URL.
type PasteClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *zap.Logger
}

// NewPasteClient creates a paste client for the given endpoint
func NewPasteClient(baseURL string) *PasteClient {
	return &PasteClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 15 * time.Second},
		logger:     logger.Get(),
	}
}

// Create uploads content and returns its URL
func (p *PasteClient) Create(ctx context.Context, content string) (string, error) {
	var body strings.Builder
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", "results.txt")
	if err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if _, err := io.WriteString(part, content); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}
	if err := writer.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL, strings.NewReader(body.String()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("paste upload failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("paste service returned HTTP %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if err != nil {
		return "", fmt.Errorf("failed to read paste response: %w", err)
	}

	pasteURL := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(pasteURL, "http") {
		return "", fmt.Errorf("unexpected paste response: %q", pasteURL)
	}

	p.logger.Debug("Uploaded paste", zap.String("url", pasteURL), zap.Int("size", len(content)))
	return pasteURL, nil
}

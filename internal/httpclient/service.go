// service.go - JSON POST capability handed to OCR providers

package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"google.golang.org/api/googleapi"
)

// Service posts JSON bodies and returns raw response text
type Service struct {
	client *http.Client
}

// NewService creates a Service whose client gives up after timeout
func NewService(timeout time.Duration) *Service {
	return &Service{
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// NewServiceWithClient wraps an existing client
func NewServiceWithClient(client *http.Client) *Service {
	return &Service{client: client}
}

// PostJSON marshals body, POSTs it and returns the response text.
// Non-2xx answers come back as *googleapi.Error. If ctx ends first, ctx.Err() is returned.
func (s *Service) PostJSON(ctx context.Context, url string, body interface{}) (string, error) {
	requestBody, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(requestBody))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", err
	}
	defer resp.Body.Close()

	// CheckResponse reads the body itself for error statuses
	if err := googleapi.CheckResponse(resp); err != nil {
		return "", err
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", ctxErr
		}
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	return string(data), nil
}

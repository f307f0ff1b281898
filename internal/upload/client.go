package upload

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meltforce/vitalsink/internal/models"
)

// Client sends export payloads to the vitalsink webhook.
type Client struct {
	serverURL  string
	apiKey     string
	userID     string
	httpClient *http.Client
}

// NewClient creates a webhook client. apiKey may be empty when the server
// runs unauthenticated.
func NewClient(serverURL, apiKey, userID string) *Client {
	return &Client{
		serverURL: serverURL,
		apiKey:    apiKey,
		userID:    userID,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// SendPayload POSTs a raw export file body to the ingest endpoint.
// Retries up to 3 times with exponential backoff on failure.
func (c *Client) SendPayload(data []byte) (*models.WebhookResponse, error) {
	url := fmt.Sprintf("%s/api/v1/ingest/%s", c.serverURL, c.userID)

	var lastErr error
	for attempt := range 3 {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<uint(attempt-1)) * time.Second)
		}

		req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("creating request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.apiKey != "" {
			req.Header.Set("X-API-Key", c.apiKey)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusOK {
			var wr models.WebhookResponse
			if err := json.Unmarshal(body, &wr); err != nil {
				return nil, fmt.Errorf("decoding webhook response: %w", err)
			}
			return &wr, nil
		}
		lastErr = fmt.Errorf("ingest failed (status %d): %s", resp.StatusCode, body)
	}

	return nil, fmt.Errorf("after 3 attempts: %w", lastErr)
}

package classify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"moodsong/backend/internal/mood"
)

// Config holds Cohere classify parameters.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client classifies text against few-shot examples via the Cohere classify endpoint.
type Client struct {
	httpClient *http.Client
	apiKey     string
	baseURL    string
	model      string
}

// ErrMissingCredentials is returned when no API key is configured.
var ErrMissingCredentials = errors.New("classify: missing api key")

// NewClient constructs a Client if the supplied configuration is valid.
func NewClient(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, ErrMissingCredentials
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = "https://api.cohere.ai"
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "embed-english-v3.0"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		apiKey:     strings.TrimSpace(cfg.APIKey),
		baseURL:    baseURL,
		model:      model,
	}, nil
}

type classifyExample struct {
	Text  string `json:"text"`
	Label string `json:"label"`
}

type classifyRequest struct {
	Model    string            `json:"model"`
	Inputs   []string          `json:"inputs"`
	Examples []classifyExample `json:"examples"`
}

type classifyResponse struct {
	ID              string `json:"id"`
	Classifications []struct {
		Input      string  `json:"input"`
		Prediction string  `json:"prediction"`
		Confidence float64 `json:"confidence"`
	} `json:"classifications"`
	Message string `json:"message,omitempty"`
}

// Classify sends text as the single input and returns the classifications in the
// order the service ranked them.
func (c *Client) Classify(ctx context.Context, text string, examples []mood.Example) ([]mood.Classification, error) {
	if c == nil {
		return nil, errors.New("classify: client is nil")
	}

	payload := classifyRequest{
		Model:    c.model,
		Inputs:   []string{text},
		Examples: make([]classifyExample, 0, len(examples)),
	}
	for _, ex := range examples {
		payload.Examples = append(payload.Examples, classifyExample{Text: ex.Text, Label: ex.Label})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("classify: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/classify", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("classify: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("classify: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var apiErr classifyResponse
		_ = json.NewDecoder(resp.Body).Decode(&apiErr)
		if apiErr.Message != "" {
			return nil, fmt.Errorf("classify: status %d: %s", resp.StatusCode, apiErr.Message)
		}
		return nil, fmt.Errorf("classify: status %d", resp.StatusCode)
	}

	var decoded classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("classify: decode response: %w", err)
	}

	out := make([]mood.Classification, 0, len(decoded.Classifications))
	for _, item := range decoded.Classifications {
		out = append(out, mood.Classification{Label: item.Prediction, Confidence: item.Confidence})
	}
	return out, nil
}

package ocr

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// TextExtractor recognizes text in an image. Implementations return the
// recognized fragments in detection order; an image without any recognizable
// text yields an empty slice, not an error.
type TextExtractor interface {
	ExtractText(ctx context.Context, image []byte, language string) ([]string, error)
}

// Client calls a remote OCR service over HTTP.
type Client struct {
	client   *resty.Client
	endpoint string
}

// Config holds configuration for the OCR client.
type Config struct {
	Endpoint string
	APIKey   string
	Timeout  time.Duration
}

// NewClient creates a new OCR client.
func NewClient(cfg *Config) *Client {
	client := resty.New()
	if cfg.APIKey != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	}
	client.SetHeader("Content-Type", "application/json")

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	client.SetTimeout(timeout)

	return &Client{
		client:   client,
		endpoint: strings.TrimRight(cfg.Endpoint, "/") + "/ocr",
	}
}

type ocrRequest struct {
	Image    string `json:"image"`
	Language string `json:"language,omitempty"`
}

type ocrResponse struct {
	Results []struct {
		Text       string  `json:"text"`
		Confidence float64 `json:"confidence"`
	} `json:"results"`
	Error string `json:"error,omitempty"`
}

// ExtractText sends the image to the OCR service and returns the recognized
// text fragments in detection order. language is an optional hint passed
// through to the recognizer.
func (c *Client) ExtractText(ctx context.Context, image []byte, language string) ([]string, error) {
	req := ocrRequest{
		Image:    base64.StdEncoding.EncodeToString(image),
		Language: language,
	}

	var resp ocrResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		Post(c.endpoint)

	if err != nil {
		return nil, fmt.Errorf("failed to call OCR service: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		errorMsg := fmt.Sprintf("HTTP %d", httpResp.StatusCode())
		if resp.Error != "" {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), resp.Error)
		} else if len(httpResp.Body()) > 0 {
			errorMsg = fmt.Sprintf("HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
		}
		return nil, fmt.Errorf("OCR service returned error: %s", errorMsg)
	}

	if resp.Error != "" {
		return nil, fmt.Errorf("OCR service error: %s", resp.Error)
	}

	fragments := make([]string, 0, len(resp.Results))
	for _, r := range resp.Results {
		if r.Text != "" {
			fragments = append(fragments, r.Text)
		}
	}
	return fragments, nil
}

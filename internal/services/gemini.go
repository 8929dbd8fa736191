package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"companion-backend/internal/models"
)

const (
	defaultGeminiBaseURL    = "https://generativelanguage.googleapis.com"
	defaultGeminiAPIVersion = "v1beta"
	defaultConcurrentReqs   = 5
)

var (
	ErrNoSlot            = errors.New("gemini: no free request slot")
	ErrMalformedResponse = errors.New("gemini: malformed response")
)

// GeminiClient speaks the generateContent REST method of the Generative
// Language API. Non-2xx replies come back as *googleapi.Error so callers can
// branch on the status code; transport failures are returned wrapped.
type GeminiClient struct {
	apiKey     string
	baseURL    string
	apiVersion string
	httpClient *http.Client
	rateChan   chan struct{} // Token bucket
}

type GeminiOption func(*GeminiClient)

func WithBaseURL(baseURL string) GeminiOption {
	return func(c *GeminiClient) {
		c.baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	}
}

func WithAPIVersion(version string) GeminiOption {
	return func(c *GeminiClient) {
		c.apiVersion = strings.Trim(strings.TrimSpace(version), "/")
	}
}

func WithHTTPClient(httpClient *http.Client) GeminiOption {
	return func(c *GeminiClient) {
		c.httpClient = httpClient
	}
}

// WithConcurrency caps the number of backend calls in flight.
func WithConcurrency(n int) GeminiOption {
	return func(c *GeminiClient) {
		if n > 0 {
			c.rateChan = newTokenBucket(n)
		}
	}
}

func NewGeminiClient(apiKey string, opts ...GeminiOption) (*GeminiClient, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini: API key must not be empty")
	}

	c := &GeminiClient{
		apiKey:     apiKey,
		baseURL:    defaultGeminiBaseURL,
		apiVersion: defaultGeminiAPIVersion,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		rateChan:   newTokenBucket(defaultConcurrentReqs),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.baseURL == "" {
		c.baseURL = defaultGeminiBaseURL
	}
	if c.apiVersion == "" {
		c.apiVersion = defaultGeminiAPIVersion
	}
	return c, nil
}

func newTokenBucket(n int) chan struct{} {
	ch := make(chan struct{}, n)
	for i := 0; i < n; i++ {
		ch <- struct{}{}
	}
	return ch
}

// acquireRate blocks until a rate slot is available
func (c *GeminiClient) acquireRate(ctx context.Context) error {
	select {
	case <-c.rateChan:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrNoSlot, ctx.Err())
	}
}

func (c *GeminiClient) releaseRate() {
	c.rateChan <- struct{}{}
}

func (c *GeminiClient) generateURL(model string) string {
	return fmt.Sprintf("%s/%s/models/%s:generateContent", c.baseURL, c.apiVersion, url.PathEscape(model))
}

// GenerateContent posts one request to the given model.
func (c *GeminiClient) GenerateContent(ctx context.Context, model string, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error) {
	if model == "" {
		return nil, errors.New("gemini: model must not be empty")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("gemini: marshal request: %w", err)
	}

	if err := c.acquireRate(ctx); err != nil {
		return nil, err
	}
	defer c.releaseRate()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL(model), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("gemini: create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	// Header auth keeps the key out of URLs, and so out of transport error strings.
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	res, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("gemini: request failed: %w", err)
	}
	defer res.Body.Close()

	if err := googleapi.CheckResponse(res); err != nil {
		return nil, err
	}

	var out models.GenerateContentResponse
	if err := json.NewDecoder(res.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMalformedResponse, err)
	}
	return &out, nil
}

// ExtractText joins the text parts of the first candidate that has content.
func ExtractText(resp *models.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		var text strings.Builder
		for _, part := range cand.Content.Parts {
			text.WriteString(part.Text)
		}
		if text.Len() > 0 {
			return text.String()
		}
	}
	return ""
}

package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"time"
)

// Client talks to an OpenAI-compatible chat-completions endpoint
// (OpenRouter by default) with bounded retries and exponential backoff.
// Retries here are a network-reliability mechanism only; the user-facing
// regeneration limit is enforced elsewhere.
type Client struct {
	httpClient       *http.Client
	apiKey           string
	baseURL          string
	model            string
	temperature      float64
	retryMaxAttempts int
	retryBaseDelay   time.Duration
	retryMaxDelay    time.Duration
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type generateRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature,omitempty"`
}

type generateResponse struct {
	ID      string `json:"id"`
	Choices []struct {
		Message message `json:"message"`
	} `json:"choices"`
}

// APIError represents a structured API error response.
type APIError struct {
	StatusCode int            `json:"-"`
	Code       string         `json:"code,omitempty"`
	Message    string         `json:"message,omitempty"`
	Raw        map[string]any `json:"-"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		if e.Code != "" {
			return fmt.Sprintf("api error: status=%d code=%s message=%s", e.StatusCode, e.Code, e.Message)
		}
		return fmt.Sprintf("api error: status=%d message=%s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api error: status=%d", e.StatusCode)
}

// ClientOptions customizes HTTP timeout and retry/backoff behavior.
type ClientOptions struct {
	BaseURL     string
	Model       string
	Temperature float64
	HTTPTimeout time.Duration
	RetryMax    int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// NewClient builds a Client with sane defaults for any zero option.
func NewClient(apiKey string, opt ClientOptions) *Client {
	if opt.HTTPTimeout <= 0 {
		opt.HTTPTimeout = 60 * time.Second
	}
	if opt.RetryMax <= 0 {
		opt.RetryMax = 3
	}
	if opt.BaseDelay <= 0 {
		opt.BaseDelay = 500 * time.Millisecond
	}
	if opt.MaxDelay <= 0 {
		opt.MaxDelay = 4 * time.Second
	}
	if opt.BaseURL == "" {
		opt.BaseURL = "https://openrouter.ai/api/v1"
	}
	if opt.Model == "" {
		opt.Model = "google/gemini-2.5-flash-lite"
	}
	return &Client{
		httpClient:       &http.Client{Timeout: opt.HTTPTimeout},
		apiKey:           apiKey,
		baseURL:          opt.BaseURL,
		model:            opt.Model,
		temperature:      opt.Temperature,
		retryMaxAttempts: opt.RetryMax,
		retryBaseDelay:   opt.BaseDelay,
		retryMaxDelay:    opt.MaxDelay,
	}
}

// Generate sends the prompt as a single user message and returns the raw
// completion text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("AI api key is missing")
	}
	payload, err := json.Marshal(generateRequest{
		Model:       c.model,
		Messages:    []message{{Role: "user", Content: prompt}},
		Temperature: c.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}
	endpoint := c.baseURL + "/chat/completions"
	backoff := c.retryBaseDelay

	var lastErr error
	for attempt := 1; attempt <= c.retryMaxAttempts; attempt++ {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
		if err != nil {
			return "", fmt.Errorf("build request: %w", err)
		}
		httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(httpReq)
		if err != nil {
			if isRetryableNetErr(err) && attempt < c.retryMaxAttempts {
				lastErr = err
				time.Sleep(backoff)
				backoff *= 2
				continue
			}
			return "", fmt.Errorf("http request: %w", err)
		}

		text, retryable, err := c.readResponse(resp)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if !retryable || attempt >= c.retryMaxAttempts {
			break
		}
		sleep := withJitter(backoff)
		if sleep > c.retryMaxDelay {
			sleep = c.retryMaxDelay
		}
		var rle *RateLimitError
		if errors.As(err, &rle) && rle.RetryAfter > 0 {
			sleep = rle.RetryAfter
		}
		time.Sleep(sleep)
		backoff *= 2
	}
	return "", lastErr
}

// readResponse consumes one HTTP response, returning the completion text
// or a classified error plus whether a retry makes sense.
func (c *Client) readResponse(resp *http.Response) (text string, retryable bool, err error) {
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 8<<10))
		var raw map[string]any
		_ = json.Unmarshal(body, &raw)
		apiErr := &APIError{StatusCode: resp.StatusCode, Raw: raw}
		if v, ok := raw["error"].(map[string]any); ok {
			if msg, ok := v["message"].(string); ok {
				apiErr.Message = msg
			}
			if code, ok := v["code"].(string); ok {
				apiErr.Code = code
			}
		} else {
			if msg, ok := raw["message"].(string); ok {
				apiErr.Message = msg
			}
		}
		classified := classifyAPIError(apiErr, resp)
		retry := resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode <= 599)
		return "", retry, classified
	}
	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", false, fmt.Errorf("decode response: %w", err)
	}
	if len(out.Choices) == 0 {
		return "", false, errors.New("empty completion")
	}
	return out.Choices[0].Message.Content, false, nil
}

func isRetryableNetErr(err error) bool {
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return true
	}
	return errors.Is(err, io.EOF)
}

// parseRetryAfterSeconds interprets a Retry-After header value as seconds
// or an HTTP date.
func parseRetryAfterSeconds(v string) (int, error) {
	if s, err := strconv.Atoi(v); err == nil {
		return s, nil
	}
	if t, err := http.ParseTime(v); err == nil {
		d := time.Until(t)
		if d < 0 {
			d = 0
		}
		return int(d.Seconds()), nil
	}
	return 0, fmt.Errorf("invalid Retry-After: %q", v)
}

// classifyAPIError maps a generic APIError to typed errors.
func classifyAPIError(apiErr *APIError, resp *http.Response) error {
	switch sc := apiErr.StatusCode; {
	case sc == http.StatusUnauthorized || sc == http.StatusForbidden:
		return &AuthError{APIError: apiErr}
	case sc == http.StatusTooManyRequests:
		var ra time.Duration
		if v := resp.Header.Get("Retry-After"); v != "" {
			if secs, err := parseRetryAfterSeconds(v); err == nil && secs > 0 {
				ra = time.Duration(secs) * time.Second
			}
		}
		return &RateLimitError{APIError: apiErr, RetryAfter: ra}
	case sc == http.StatusNotFound && apiErr.Code == "model_not_found":
		return &ModelNotFoundError{APIError: apiErr}
	case sc == http.StatusBadRequest:
		return &BadRequestError{APIError: apiErr}
	case sc >= 500 && sc <= 599:
		return &ServerError{APIError: apiErr}
	default:
		return apiErr
	}
}

// withJitter returns a backoff duration with +/- 20% jitter applied.
func withJitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 500 * time.Millisecond
	}
	f := 0.8 + rand.Float64()*0.4
	out := time.Duration(float64(d) * f)
	if out <= 0 {
		return d
	}
	return out
}

package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/Libretto-Pic/the-sage-game/internal/catalog"
)

const (
	DefaultTimeout    = 20 * time.Second
	DefaultRetries    = 1
	DefaultRetryDelay = 500 * time.Millisecond
	maxErrorBody      = 4096
)

type ClientConfig struct {
	BaseURL    string
	APIKey     string
	Model      string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	HTTPClient *http.Client
}

// Client talks to a remote mission generation service over JSON.
// Each attempt gets its own timeout; failed attempts are retried Retries times.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	retries    int
	retryDelay time.Duration
	http       *http.Client
}

func NewClient(cfg ClientConfig) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("generator base url is required")
	}
	c := &Client{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		retries:    cfg.Retries,
		retryDelay: cfg.RetryDelay,
		http:       cfg.HTTPClient,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.retries < 0 {
		c.retries = 0
	}
	if c.retryDelay <= 0 {
		c.retryDelay = DefaultRetryDelay
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	return c, nil
}

type batchPayload struct {
	Model          string               `json:"model,omitempty"`
	Level          int                  `json:"level"`
	RecentTitles   []string             `json:"recentMissionTitles"`
	Categories     []catalog.Category   `json:"categories"`
	DifficultyHint []catalog.Difficulty `json:"difficultyHint"`
}

type singlePayload struct {
	Model          string               `json:"model,omitempty"`
	Level          int                  `json:"level"`
	RecentTitles   []string             `json:"recentMissionTitles"`
	Category       catalog.Category     `json:"category"`
	DifficultyHint []catalog.Difficulty `json:"difficultyHint"`
}

type themedPayload struct {
	Model string `json:"model,omitempty"`
	ThemedRequest
}

type batchResponse struct {
	Missions []Mission `json:"missions"`
}

type singleResponse struct {
	Mission Mission `json:"mission"`
}

type questionResponse struct {
	Question string `json:"question"`
}

func recentOrEmpty(titles []string) []string {
	if titles == nil {
		return []string{}
	}
	return titles
}

func (c *Client) Generate(ctx context.Context, req BatchRequest) ([]Mission, error) {
	payload := batchPayload{
		Model:          c.model,
		Level:          req.Level,
		RecentTitles:   recentOrEmpty(req.RecentTitles),
		Categories:     req.Categories,
		DifficultyHint: DifficultyBand(req.Level),
	}
	out, err := call[batchResponse](ctx, c, "/v1/missions", payload)
	if err != nil {
		return nil, err
	}
	return ValidateBatch(req, out.Missions)
}

func (c *Client) GenerateSingle(ctx context.Context, req SingleRequest) (Mission, error) {
	payload := singlePayload{
		Model:          c.model,
		Level:          req.Level,
		RecentTitles:   recentOrEmpty(req.RecentTitles),
		Category:       req.Category,
		DifficultyHint: DifficultyBand(req.Level),
	}
	out, err := call[singleResponse](ctx, c, "/v1/missions/single", payload)
	if err != nil {
		return Mission{}, err
	}
	return ValidateSingle(req, out.Mission)
}

func (c *Client) GenerateThemed(ctx context.Context, req ThemedRequest) (Mission, error) {
	out, err := call[singleResponse](ctx, c, "/v1/missions/themed", themedPayload{Model: c.model, ThemedRequest: req})
	if err != nil {
		return Mission{}, err
	}
	return out.Mission, nil
}

func (c *Client) AbilityQuestion(ctx context.Context, level int, ability string) (string, error) {
	payload := map[string]any{"model": c.model, "level": level, "ability": ability}
	out, err := call[questionResponse](ctx, c, "/v1/abilities/question", payload)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(out.Question) == "" {
		return "", ValidationError{Reason: "empty question"}
	}
	return out.Question, nil
}

func (c *Client) JudgeAnswer(ctx context.Context, ability, question, answer string) (Judgement, error) {
	payload := map[string]any{"model": c.model, "ability": ability, "question": question, "answer": answer}
	out, err := call[Judgement](ctx, c, "/v1/abilities/judge", payload)
	if err != nil {
		return Judgement{}, err
	}
	if strings.TrimSpace(out.Evaluation) == "" {
		return Judgement{}, ValidationError{Reason: "empty evaluation"}
	}
	return out, nil
}

// StatusError is a non-2xx response from the service.
type StatusError struct {
	Code int
	Body string
}

func (e StatusError) Error() string {
	return fmt.Sprintf("generator status %d: %s", e.Code, e.Body)
}

func retryable(err error) bool {
	var se StatusError
	if errors.As(err, &se) {
		return se.Code >= 500 || se.Code == http.StatusTooManyRequests
	}
	return true
}

// call posts payload to path, retrying transient failures. Every attempt decodes
// into a fresh T, so a failed attempt never leaks fields into the result.
func call[T any](ctx context.Context, c *Client, path string, payload any) (T, error) {
	var zero T
	body, err := json.Marshal(payload)
	if err != nil {
		return zero, fmt.Errorf("encode generator request: %w", err)
	}

	var lastErr error
	for attempt := 0; attempt <= c.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, errors.Join(lastErr, ctx.Err())
			case <-time.After(c.retryDelay):
			}
		}
		var out T
		lastErr = c.once(ctx, path, body, &out)
		if lastErr == nil {
			return out, nil
		}
		if ctx.Err() != nil || !retryable(lastErr) {
			return zero, lastErr
		}
	}
	return zero, lastErr
}

func (c *Client) once(ctx context.Context, path string, body []byte, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build generator request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	res, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("generator request: %w", err)
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(res.Body, maxErrorBody))
		return StatusError{Code: res.StatusCode, Body: strings.TrimSpace(string(msg))}
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return ValidationError{Reason: "decode: " + err.Error()}
	}
	return nil
}

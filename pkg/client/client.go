package client

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/zpam/hamspam/pkg/api"
	"github.com/zpam/hamspam/pkg/learning"
	"github.com/zpam/hamspam/pkg/service"
)

// DefaultTimeout applies when Client.Timeout is zero
const DefaultTimeout = 30 * time.Second

// APIError is a non-2xx response from the server
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("server returned %d", e.Status)
	}
	return fmt.Sprintf("server returned %d [%s] %s", e.Status, e.Code, e.Message)
}

// Client talks to a hamspam HTTP server
type Client struct {
	BaseURL string
	Timeout time.Duration
}

// New creates a client for baseURL, e.g. "http://localhost:3000"
func New(baseURL string) *Client {
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), Timeout: DefaultTimeout}
}

// Classify classifies one text
func (c *Client) Classify(text string) (learning.Classification, error) {
	var result learning.Classification
	err := c.do(fiber.MethodPost, "/classify", api.ClassifyRequest{Text: &text}, &result)
	return result, err
}

// TrainBulk sends one training batch
func (c *Client) TrainBulk(examples []service.Example) (service.TrainReport, error) {
	if examples == nil {
		examples = []service.Example{}
	}
	var report service.TrainReport
	err := c.do(fiber.MethodPost, "/train_bulk", examples, &report)
	return report, err
}

// Stats fetches model, cache and latency statistics
func (c *Client) Stats() (service.Stats, error) {
	var stats service.Stats
	err := c.do(fiber.MethodGet, "/stats", nil, &stats)
	return stats, err
}

// Health fetches the health document
func (c *Client) Health() (map[string]any, error) {
	var health map[string]any
	err := c.do(fiber.MethodGet, "/health", nil, &health)
	return health, err
}

// Token fetches statistics for one word
func (c *Client) Token(word string) (learning.TokenStats, error) {
	var stats learning.TokenStats
	err := c.do(fiber.MethodGet, "/tokens/"+url.PathEscape(word), nil, &stats)
	return stats, err
}

// TopTokens fetches the most significant tokens of kind "spam" or "ham"
func (c *Client) TopTokens(kind string, limit int) ([]learning.TokenStats, error) {
	q := url.Values{}
	q.Set("kind", kind)
	q.Set("limit", strconv.Itoa(limit))

	var result struct {
		Tokens []learning.TokenStats `json:"tokens"`
	}
	err := c.do(fiber.MethodGet, "/tokens?"+q.Encode(), nil, &result)
	return result.Tokens, err
}

func (c *Client) do(method, path string, in, out any) error {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var agent *fiber.Agent
	if method == fiber.MethodPost {
		agent = fiber.Post(c.BaseURL + path)
	} else {
		agent = fiber.Get(c.BaseURL + path)
	}

	agent.JSONEncoder(json.Marshal).Timeout(timeout)
	if in != nil {
		agent.JSON(in)
	}

	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return fmt.Errorf("request failed: %w", errors.Join(errs...))
	}

	if status < 200 || status >= 300 {
		apiErr := &APIError{Status: status}
		var envelope api.ErrorResponse
		if json.Unmarshal(body, &envelope) == nil {
			apiErr.Code = envelope.Error.Code
			apiErr.Message = envelope.Error.Message
			apiErr.RequestID = envelope.RequestID
		}
		return apiErr
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

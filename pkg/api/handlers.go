package api

import (
	"context"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/zpam/hamspam/pkg/apperr"
	"github.com/zpam/hamspam/pkg/learning"
	"github.com/zpam/hamspam/pkg/service"
)

const (
	defaultTokenLimit = 20
	maxTokenLimit     = 1000
)

// Classifier is the service surface the HTTP handlers need
type Classifier interface {
	Language() string
	Classify(ctx context.Context, text string) learning.Classification
	TrainBulk(ctx context.Context, examples []service.Example) (service.TrainReport, error)
	TokenInfo(word string) (learning.TokenStats, bool)
	TopTokens(kind string, limit int) ([]learning.TokenStats, error)
	Stats() service.Stats
}

// ClassifyRequest is the /classify request body
type ClassifyRequest struct {
	Text *string `json:"text"`
}

// Handler serves the classifier endpoints
type Handler struct {
	svc          Classifier
	maxBatchSize int
	started      time.Time
}

// NewHandler creates a handler. maxBatchSize 0 means unlimited.
func NewHandler(svc Classifier, maxBatchSize int) *Handler {
	return &Handler{svc: svc, maxBatchSize: maxBatchSize, started: time.Now()}
}

// Register mounts all routes on app
func (h *Handler) Register(app *fiber.App) {
	app.Get("/health", h.Health)
	app.Get("/stats", h.Stats)
	app.Post("/classify", h.Classify)
	app.Post("/train_bulk", h.TrainBulk)
	app.Get("/tokens", h.TopTokens)
	app.Get("/tokens/:word", h.Token)
}

func (h *Handler) Health(c *fiber.Ctx) error {
	info := h.svc.Stats()
	return c.JSON(fiber.Map{
		"status":     "ok",
		"language":   h.svc.Language(),
		"generation": info.Model.Generation,
		"cache":      info.Cache.Backend,
		"uptime":     time.Since(h.started).Round(time.Second).String(),
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) Stats(c *fiber.Ctx) error {
	return c.JSON(h.svc.Stats())
}

func (h *Handler) Classify(c *fiber.Ctx) error {
	var req ClassifyRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperr.BadRequest("malformed JSON body").WithError(err)
	}
	if req.Text == nil {
		return apperr.InvalidInput("text", "field is required")
	}

	return c.JSON(h.svc.Classify(c.UserContext(), *req.Text))
}

func (h *Handler) TrainBulk(c *fiber.Ctx) error {
	var examples []service.Example
	if err := json.Unmarshal(c.Body(), &examples); err != nil {
		return apperr.BadRequest("body must be a JSON array of {label, text} records").WithError(err)
	}

	if h.maxBatchSize > 0 && len(examples) > h.maxBatchSize {
		return apperr.PayloadTooLarge("batch exceeds max_batch_size").
			WithDetail("max_batch_size", h.maxBatchSize).
			WithDetail("received", len(examples))
	}

	report, err := h.svc.TrainBulk(c.UserContext(), examples)
	if err != nil {
		return apperr.Unavailable("training aborted").WithError(err)
	}

	return c.JSON(report)
}

func (h *Handler) Token(c *fiber.Ctx) error {
	word := c.Params("word")
	stats, ok := h.svc.TokenInfo(word)
	if !ok {
		return apperr.NotFound("token")
	}
	return c.JSON(stats)
}

func (h *Handler) TopTokens(c *fiber.Ctx) error {
	kind := strings.ToLower(c.Query("kind", learning.Spam.String()))
	limit := c.QueryInt("limit", defaultTokenLimit)
	if limit <= 0 || limit > maxTokenLimit {
		return apperr.InvalidInput("limit", "must be between 1 and 1000")
	}

	tokens, err := h.svc.TopTokens(kind, limit)
	if err != nil {
		return apperr.InvalidInput("kind", "must be spam or ham")
	}
	if tokens == nil {
		tokens = []learning.TokenStats{}
	}

	return c.JSON(fiber.Map{
		"kind":   kind,
		"tokens": tokens,
	})
}

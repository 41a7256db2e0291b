// Package gemini adapts the Gemini generative API to the assistant's chat generator.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
	"google.golang.org/genai"

	"github.com/auroramart/personalization/internal/domain"
)

// contentGenerator is the part of the genai models service the client uses
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content,
		config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Config holds the Gemini client settings
type Config struct {
	APIKey            string
	Model             string
	MaxRetries        int
	RequestsPerSecond float64
	Burst             int
}

// Client generates assistant answers with Gemini. Requests are rate limited and retried on failure.
type Client struct {
	models      contentGenerator
	model       string
	maxRetries  int
	backoff     time.Duration
	rateLimiter *rate.Limiter
	log         zerolog.Logger
}

// NewClient creates a Gemini API client
func NewClient(ctx context.Context, cfg Config, log zerolog.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: gemini api key is required", domain.ErrInvalidRequest)
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return newClient(client.Models, cfg, log), nil
}

func newClient(models contentGenerator, cfg Config, log zerolog.Logger) *Client {
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	retries := cfg.MaxRetries
	if retries <= 0 {
		retries = 3
	}
	limit := rate.Limit(cfg.RequestsPerSecond)
	if cfg.RequestsPerSecond <= 0 {
		limit = rate.Limit(1)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 5
	}

	return &Client{
		models:      models,
		model:       model,
		maxRetries:  retries,
		backoff:     500 * time.Millisecond,
		rateLimiter: rate.NewLimiter(limit, burst),
		log:         log.With().Str("component", "gemini").Logger(),
	}
}

// Contents converts a conversation into role-tagged genai contents, skipping empty turns
func Contents(conversation domain.ConversationContext) []*genai.Content {
	contents := make([]*genai.Content, 0, len(conversation))
	for _, turn := range conversation {
		if strings.TrimSpace(turn.Text) == "" {
			continue
		}
		role := genai.RoleUser
		if turn.Role == domain.RoleModel {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Text, genai.Role(role)))
	}
	return contents
}

// Generate sends the conversation and returns the answer with its token usage
func (c *Client) Generate(ctx context.Context, conversation domain.ConversationContext) (*domain.Generation, error) {
	contents := Contents(conversation)
	if len(contents) == 0 {
		return nil, fmt.Errorf("%w: empty conversation", domain.ErrInvalidRequest)
	}

	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}

		resp, err := c.models.GenerateContent(ctx, c.model, contents, nil)
		if err == nil {
			return c.toGeneration(resp)
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}

		c.log.Warn().Err(err).Int("attempt", attempt).Msg("gemini request failed")
		lastErr = err
		if attempt < c.maxRetries {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * c.backoff):
			}
		}
	}

	return nil, fmt.Errorf("%w: %d attempts: %v", domain.ErrGenerationFailed, c.maxRetries, lastErr)
}

func (c *Client) toGeneration(resp *genai.GenerateContentResponse) (*domain.Generation, error) {
	if resp == nil {
		return nil, fmt.Errorf("%w: empty response", domain.ErrGenerationFailed)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return nil, fmt.Errorf("%w: response has no text", domain.ErrGenerationFailed)
	}

	gen := &domain.Generation{Text: text, Model: c.model}
	if resp.ModelVersion != "" {
		gen.Model = resp.ModelVersion
	}
	if resp.UsageMetadata != nil {
		gen.TokenCount = int(resp.UsageMetadata.TotalTokenCount)
	}
	return gen, nil
}

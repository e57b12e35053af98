package llm

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	genai "google.golang.org/genai"

	"arthastra/internal/config"
	"arthastra/internal/pkg/apperrors"
)

// Completer is the surface the agents depend on. Implementations must be
// safe for concurrent use.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// generator is one provider handle bound to a single API key. The indirection
// exists so tests can run the rotation logic without network access.
type generator interface {
	generate(ctx context.Context, model, prompt string) (string, error)
}

type generatorFactory func(ctx context.Context, apiKey string) (generator, error)

// Client tries ordered (key, model) pairs until a completion succeeds.
// Quota-style failures rotate the key and fall through the model list;
// anything else aborts immediately.
type Client struct {
	ring    *KeyRing
	models  []string
	timeout time.Duration
	logger  *slog.Logger

	newGenerator generatorFactory

	mu        sync.Mutex
	cached    generator
	cachedKey int
}

var _ Completer = (*Client)(nil)

func NewClient(cfg config.GenAIConfig, logger *slog.Logger) (*Client, error) {
	ring, err := NewKeyRing(cfg.Keys, cfg.ExhaustedKeyCool)
	if err != nil {
		return nil, err
	}
	if len(cfg.Models) == 0 {
		return nil, fmt.Errorf("%w: at least one model name is required", apperrors.ErrInvalidArgument)
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		ring:         ring,
		models:       cfg.Models,
		timeout:      timeout,
		logger:       logger.With(slog.String("component", "llmClient")),
		newGenerator: newGenAIGenerator,
		cachedKey:    -1,
	}, nil
}

// Complete walks the key ring, and for each key walks the model list. A
// retryable error on the last model marks the key exhausted and moves on; a
// non-retryable error propagates at once. When every pair fails the final
// error surfaces as ErrRateLimited.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	var lastErr error

	for attempt := 0; attempt < c.ring.Len(); attempt++ {
		idx, key, err := c.ring.Next()
		if err != nil {
			if lastErr != nil {
				return "", fmt.Errorf("%w: %v", apperrors.ErrRateLimited, lastErr)
			}
			return "", err
		}

		gen, err := c.generatorFor(ctx, idx, key)
		if err != nil {
			c.logger.WarnContext(ctx, "Failed to build provider client", slog.Int("keyIndex", idx), slog.Any("error", err))
			lastErr = err
			continue
		}

		for _, model := range c.models {
			text, err := c.generateOnce(ctx, gen, model, prompt)
			if err == nil {
				return text, nil
			}
			lastErr = err
			if !IsRetryable(err) {
				return "", apperrors.WrapProviderError(err, "genai")
			}
			c.logger.WarnContext(ctx, "Quota hit, trying next model",
				slog.Int("keyIndex", idx), slog.String("model", model))
		}
		c.ring.MarkExhausted(idx)
	}

	return "", fmt.Errorf("%w: all provider attempts failed: %v", apperrors.ErrRateLimited, lastErr)
}

func (c *Client) generateOnce(ctx context.Context, gen generator, model, prompt string) (string, error) {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return gen.generate(cctx, model, prompt)
}

// generatorFor reuses the handle built for the previous call unless the ring
// rotated to a different key.
func (c *Client) generatorFor(ctx context.Context, idx int, key string) (generator, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cached != nil && c.cachedKey == idx {
		return c.cached, nil
	}

	gen, err := c.newGenerator(ctx, key)
	if err != nil {
		return nil, err
	}
	c.cached = gen
	c.cachedKey = idx
	return gen, nil
}

// IsRetryable classifies quota-style provider failures: the hosted endpoint
// signals them only through the error message.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") || strings.Contains(msg, "quota")
}

type genaiGenerator struct {
	client *genai.Client
}

func newGenAIGenerator(ctx context.Context, apiKey string) (generator, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &genaiGenerator{client: client}, nil
}

func (g *genaiGenerator) generate(ctx context.Context, model, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, model, contents, nil)
	if err != nil {
		return "", err
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("empty completion from model %s", model)
	}
	return text, nil
}
